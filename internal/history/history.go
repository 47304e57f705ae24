package history

import (
	"log/slog"

	"cascade/internal/history/handler"
	"cascade/internal/history/service"
)

// Service records and lists immutable audit entries.
type Service = service.Service

// Handler wires HTTP endpoints to the history service.
type Handler = handler.Handler

// NewService constructs the history service over an append-only store.
func NewService(store service.Store, opts ...service.Option) *Service {
	return service.New(store, opts...)
}

// NewHandler constructs an HTTP handler for history routes. History reads
// outlive project deletion, so the handler gates on any-state visibility.
func NewHandler(s *Service, projects handler.ProjectChecker, logger *slog.Logger) *Handler {
	return handler.New(s, projects, logger)
}
