// Package contact is the address book module: a rule engine over a
// pluggable contact store, exposed over HTTP.
package contact

import (
	"log/slog"

	"rolodex/internal/contact/handler"
	"rolodex/internal/contact/service"
	"rolodex/internal/contact/store"
	platformmetrics "rolodex/internal/platform/metrics"
)

// Service exposes the contact rules.
type Service = service.Service

// Handler wires HTTP endpoints to the contact service.
type Handler = handler.Handler

// NewService constructs the contact service with required dependencies.
func NewService(contacts store.Store, opts ...service.Option) *Service {
	return service.New(contacts, opts...)
}

// NewHandler constructs the HTTP handler for /api/v1/contact.
func NewHandler(s *Service, logger *slog.Logger, m *platformmetrics.Metrics) *Handler {
	return handler.New(s, logger, m)
}
