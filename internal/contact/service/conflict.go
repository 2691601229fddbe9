package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"

	"rolodex/internal/contact/events"
	"rolodex/internal/contact/metrics"
	"rolodex/internal/contact/models"
	"rolodex/internal/contact/store"
	dErrors "rolodex/pkg/domain-errors"
)

// Create stores candidate when no existing contact shares its name or any of
// its email addresses.
//
// The uniqueness check runs against a snapshot and the insert happens after
// it, so two concurrent creates of the same name can both pass the check.
// The store closes that window by re-checking under its own serialization;
// a create that loses the race is reported as a conflict just the same.
func (s *Service) Create(ctx context.Context, candidate *models.Contact) models.Outcome[*models.Contact] {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "contact.Create")
	defer span.End()

	if candidate == nil {
		return models.Fail[*models.Contact](s.reject(span, opCreate, metrics.OutcomeBadRequest, start,
			dErrors.New(dErrors.CodeBadRequest, MsgContactMissing)))
	}

	all, err := s.snapshot(ctx)
	if err != nil {
		return models.Fail[*models.Contact](s.fault(ctx, span, opCreate, start, err))
	}
	for _, existing := range all {
		if candidate.ConflictsWith(existing) {
			return models.Fail[*models.Contact](s.conflict(ctx, span, start, existing.ID))
		}
	}

	created, err := s.store.CreateContact(ctx, candidate)
	if errors.Is(err, store.ErrConflict) {
		return models.Fail[*models.Contact](s.conflict(ctx, span, start, 0))
	}
	if err != nil {
		return models.Fail[*models.Contact](s.fault(ctx, span, opCreate, start, err))
	}

	span.SetAttributes(attrContactID(created.ID))
	s.succeed(span, opCreate, start)
	s.logger.InfoContext(ctx, "contact created", "contact_id", created.ID)
	s.publish(ctx, events.ContactCreated, created)
	return models.Succeed(created)
}

func (s *Service) conflict(ctx context.Context, span trace.Span, start time.Time, existingID int64) *dErrors.Error {
	s.logger.InfoContext(ctx, "contact rejected as duplicate", "existing_contact_id", existingID)
	return s.reject(span, opCreate, metrics.OutcomeConflict, start,
		dErrors.New(dErrors.CodeConflict, MsgConflict))
}

// Get returns the contact with the given id.
func (s *Service) Get(ctx context.Context, id int64) models.Outcome[*models.Contact] {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "contact.Get")
	defer span.End()
	span.SetAttributes(attrContactID(id))

	all, err := s.snapshot(ctx)
	if err != nil {
		return models.Fail[*models.Contact](s.fault(ctx, span, opGet, start, err))
	}
	found := findByID(all, id)
	if found == nil {
		return models.Fail[*models.Contact](s.notFound(span, opGet, start))
	}
	s.succeed(span, opGet, start)
	return models.Succeed(found)
}

// List returns every stored contact in store order. An empty store is a
// successful empty listing.
func (s *Service) List(ctx context.Context) models.Outcome[[]*models.Contact] {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "contact.List")
	defer span.End()

	all, err := s.snapshot(ctx)
	if err != nil {
		return models.Fail[[]*models.Contact](s.fault(ctx, span, opList, start, err))
	}
	if all == nil {
		all = []*models.Contact{}
	}
	s.succeed(span, opList, start)
	return models.Succeed(all)
}

// Update replaces name, birth date and the whole email collection of an
// existing contact. It applies no uniqueness rule against other contacts.
func (s *Service) Update(ctx context.Context, candidate *models.Contact) models.Outcome[*models.Contact] {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "contact.Update")
	defer span.End()

	if candidate == nil {
		return models.Fail[*models.Contact](s.reject(span, opUpdate, metrics.OutcomeBadRequest, start,
			dErrors.New(dErrors.CodeBadRequest, MsgContactMissing)))
	}
	span.SetAttributes(attrContactID(candidate.ID))

	all, err := s.snapshot(ctx)
	if err != nil {
		return models.Fail[*models.Contact](s.fault(ctx, span, opUpdate, start, err))
	}
	if findByID(all, candidate.ID) == nil {
		return models.Fail[*models.Contact](s.notFound(span, opUpdate, start))
	}

	updated, err := s.store.UpdateContact(ctx, candidate)
	if errors.Is(err, store.ErrNotFound) {
		// deleted between the snapshot and the write
		return models.Fail[*models.Contact](s.notFound(span, opUpdate, start))
	}
	if err != nil {
		return models.Fail[*models.Contact](s.fault(ctx, span, opUpdate, start, err))
	}

	s.succeed(span, opUpdate, start)
	s.logger.InfoContext(ctx, "contact updated", "contact_id", updated.ID)
	s.publish(ctx, events.ContactUpdated, updated)
	return models.Succeed(updated)
}

// Delete removes the contact with the given id and reports the store's
// removal flag. A false flag after a successful existence check means the
// record vanished concurrently; callers decide how to surface it.
func (s *Service) Delete(ctx context.Context, id int64) models.Outcome[bool] {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "contact.Delete")
	defer span.End()
	span.SetAttributes(attrContactID(id))

	all, err := s.snapshot(ctx)
	if err != nil {
		return models.Fail[bool](s.fault(ctx, span, opDelete, start, err))
	}
	existing := findByID(all, id)
	if existing == nil {
		return models.Fail[bool](s.notFound(span, opDelete, start))
	}

	removed, err := s.store.DeleteContact(ctx, id)
	if err != nil {
		return models.Fail[bool](s.fault(ctx, span, opDelete, start, err))
	}

	s.succeed(span, opDelete, start)
	if removed {
		s.logger.InfoContext(ctx, "contact deleted", "contact_id", id)
		s.publish(ctx, events.ContactDeleted, existing)
	}
	return models.Succeed(removed)
}

func (s *Service) notFound(span trace.Span, op string, start time.Time) *dErrors.Error {
	return s.reject(span, op, metrics.OutcomeNotFound, start,
		dErrors.New(dErrors.CodeNotFound, MsgNotFound))
}
