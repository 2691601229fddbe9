package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"rolodex/internal/contact/contract"
	"rolodex/internal/contact/models"
	"rolodex/internal/contact/service"
	"rolodex/internal/platform/metrics"
	"rolodex/internal/platform/middleware"
	dErrors "rolodex/pkg/domain-errors"
	"rolodex/pkg/platform/httputil"
	"rolodex/pkg/platform/middleware/metadata"
	"rolodex/pkg/platform/middleware/requesttime"
)

// BasePath is where the contact routes are mounted.
const BasePath = "/api/v1/contact"

// User-facing messages for requests rejected before reaching the service.
const (
	MsgInvalidBody     = "The request body must be a contact in JSON form."
	MsgConversion      = "Converting the ContactContract to a Contact failed."
	MsgNameRequired    = "A contact name is required."
	MsgInvalidID       = "The contact id must be a positive integer."
	MsgInvalidDateArgs = "Birth date range parameters must be dates in the form YYYY-MM-DD."
)

const requestTimeout = 30 * time.Second

// Service defines the contact operations the handler depends on.
type Service interface {
	Create(ctx context.Context, candidate *models.Contact) models.Outcome[*models.Contact]
	Get(ctx context.Context, id int64) models.Outcome[*models.Contact]
	List(ctx context.Context) models.Outcome[[]*models.Contact]
	Update(ctx context.Context, candidate *models.Contact) models.Outcome[*models.Contact]
	Delete(ctx context.Context, id int64) models.Outcome[bool]
	Search(ctx context.Context, q service.SearchQuery) models.Outcome[[]*models.Contact]
}

// Handler serves the contact REST API.
type Handler struct {
	logger   *slog.Logger
	contacts Service
	metrics  *metrics.Metrics
}

// New creates a contact Handler. metrics may be nil.
func New(contacts Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		contacts: contacts,
		metrics:  metrics,
	}
}

// Register registers the contact routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route(BasePath, func(cr chi.Router) {
		cr.Use(middleware.Recovery(h.logger))
		cr.Use(middleware.RequestID)
		cr.Use(metadata.ClientMetadata)
		cr.Use(requesttime.Middleware)
		cr.Use(middleware.Logger(h.logger))
		cr.Use(middleware.Timeout(requestTimeout))
		cr.Use(middleware.ContentTypeJSON)
		cr.Use(middleware.LatencyMiddleware(h.metrics))

		cr.Post("/", h.handleCreate)
		cr.Get("/", h.handleList)
		cr.Put("/", h.handleUpdate)
		cr.Get("/search", h.handleSearch)
		cr.Get("/{id}", h.handleGet)
		cr.Delete("/{id}", h.handleDelete)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	candidate, ok := h.decodeContact(w, r)
	if !ok {
		return
	}

	out := h.contacts.Create(ctx, candidate)
	if !out.OK() {
		h.writeFailure(ctx, w, "create", out.Err())
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, contract.FromContact(out.Value()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out := h.contacts.List(ctx)
	if !out.OK() {
		h.writeFailure(ctx, w, "list", out.Err())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contract.FromContacts(out.Value()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.reject(ctx, w, "get", MsgInvalidID, err)
		return
	}

	out := h.contacts.Get(ctx, id)
	if !out.OK() {
		h.writeFailure(ctx, w, "get", out.Err())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contract.FromContact(out.Value()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	candidate, ok := h.decodeContact(w, r)
	if !ok {
		return
	}
	if candidate.ID < 0 {
		h.reject(ctx, w, "update", MsgInvalidID, nil)
		return
	}

	out := h.contacts.Update(ctx, candidate)
	if !out.OK() {
		h.writeFailure(ctx, w, "update", out.Err())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contract.FromContact(out.Value()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		h.reject(ctx, w, "delete", MsgInvalidID, err)
		return
	}

	out := h.contacts.Delete(ctx, id)
	if !out.OK() {
		h.writeFailure(ctx, w, "delete", out.Err())
		return
	}
	if !out.Value() {
		// passed the existence check but the store removed nothing
		h.writeFailure(ctx, w, "delete", dErrors.Internal(errors.New("delete reported no removal")))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	var q service.SearchQuery
	if name := query.Get("name"); name != "" {
		q.Name = &name
	}
	var err error
	if q.BirthDateStart, err = contract.ParseDate(query.Get("birthDateRangeStart")); err != nil {
		h.reject(ctx, w, "search", MsgInvalidDateArgs, err)
		return
	}
	if q.BirthDateEnd, err = contract.ParseDate(query.Get("birthDateRangeEnd")); err != nil {
		h.reject(ctx, w, "search", MsgInvalidDateArgs, err)
		return
	}

	out := h.contacts.Search(ctx, q)
	if !out.OK() {
		h.writeFailure(ctx, w, "search", out.Err())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contract.FromContacts(out.Value()))
}

// decodeContact reads and converts the request body, writing a bad request
// response when either step fails.
func (h *Handler) decodeContact(w http.ResponseWriter, r *http.Request) (*models.Contact, bool) {
	ctx := r.Context()

	var body *contract.ContactContract
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		h.reject(ctx, w, "decode", MsgInvalidBody, err)
		return nil, false
	}

	candidate, err := body.ToContact()
	switch {
	case errors.Is(err, contract.ErrMissingName):
		h.reject(ctx, w, "decode", MsgNameRequired, err)
		return nil, false
	case err != nil:
		h.reject(ctx, w, "decode", MsgConversion, err)
		return nil, false
	}
	return candidate, true
}

func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, op, message string, cause error) {
	if cause == nil {
		h.writeFailure(ctx, w, op, dErrors.New(dErrors.CodeBadRequest, message))
		return
	}
	h.writeFailure(ctx, w, op, dErrors.Wrap(cause, dErrors.CodeBadRequest, message))
}

func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, op string, err *dErrors.Error) {
	requestID := middleware.GetRequestID(ctx)
	if dErrors.StatusFor(dErrors.PublicCode(err.Code)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "contact request failed",
			"operation", op,
			"request_id", requestID,
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "contact request rejected",
			"operation", op,
			"request_id", requestID,
			"code", err.Code,
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}
