package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rolodex/internal/contact/events"
	"rolodex/internal/contact/metrics"
	"rolodex/internal/contact/models"
	"rolodex/internal/contact/store"
	dErrors "rolodex/pkg/domain-errors"
	"rolodex/pkg/requestcontext"
)

// User-facing messages.
const (
	MsgConflict       = "A contact with this name or email address already exists."
	MsgNotFound       = "A contact with this id was not found."
	MsgSearchCriteria = "Please specify the name or date range search parameter."
	MsgNoResults      = "No contacts were found."
	MsgContactMissing = "A contact is required."
)

// Operation names used for metrics and spans.
const (
	opCreate = "create"
	opGet    = "get"
	opList   = "list"
	opUpdate = "update"
	opDelete = "delete"
	opSearch = "search"
)

const tracerName = "rolodex/internal/contact/service"

// Service applies the contact business rules on top of a Store.
//
// Every operation reads a fresh snapshot of all contacts, decides, and then
// performs at most one store mutation. Nothing is cached between calls, so
// the store is the single source of truth. Expected failures (not found,
// conflict, bad request) and unexpected store failures (internal) are both
// returned as the failure side of a models.Outcome.
type Service struct {
	store     store.Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher events.Publisher
	tracer    trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPublisher emits a lifecycle event after every successful mutation.
// Publishing is best effort: failures are logged and do not fail the operation.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service.
func New(contacts store.Store, opts ...Option) *Service {
	s := &Service{
		store:  contacts,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// snapshot reads every contact from the store.
func (s *Service) snapshot(ctx context.Context) ([]*models.Contact, error) {
	return s.store.GetAllContacts(ctx)
}

// findByID returns the first contact in all with the given id.
func findByID(all []*models.Contact, id int64) *models.Contact {
	for _, c := range all {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// reject records an expected failure and returns it.
func (s *Service) reject(span trace.Span, op, outcome string, start time.Time, err *dErrors.Error) *dErrors.Error {
	span.SetAttributes(attrOutcome(outcome))
	s.observe(op, outcome, start)
	return err
}

// fault converts an unexpected store failure into an internal error, logging
// the cause. Deadline failures keep their own code so logs can tell them apart.
func (s *Service) fault(ctx context.Context, span trace.Span, op string, start time.Time, err error) *dErrors.Error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.observe(op, metrics.OutcomeError, start)
	s.logger.ErrorContext(ctx, "contact store failure",
		"operation", op,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, dErrors.DefaultInternalMessage)
	}
	return dErrors.Internal(err)
}

func (s *Service) succeed(span trace.Span, op string, start time.Time) {
	span.SetAttributes(attrOutcome(metrics.OutcomeSuccess))
	s.observe(op, metrics.OutcomeSuccess, start)
}

func (s *Service) observe(op, outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.Observe(op, outcome, start)
	}
}

func (s *Service) publish(ctx context.Context, typ events.Type, c *models.Contact) {
	if s.publisher == nil {
		return
	}
	event := events.Event{
		Type:       typ,
		ContactID:  c.ID,
		Name:       c.Name,
		Emails:     c.Addresses(),
		RequestID:  requestcontext.RequestID(ctx),
		OccurredAt: requestcontext.Now(ctx),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "contact event not published",
			"type", typ,
			"contact_id", c.ID,
			"error", err,
		)
	}
}
