package permission

import (
	"log/slog"

	"cascade/internal/permission/handler"
	"cascade/internal/permission/service"
)

// Service exposes the permission catalog: seeding on project initialization
// and project-scoped reads.
type Service = service.Service

// Handler wires HTTP endpoints to the permission service.
type Handler = handler.Handler

// NewService constructs the permission service with required dependencies.
func NewService(store service.Store, projects service.ProjectChecker, opts ...service.Option) *Service {
	return service.New(store, projects, opts...)
}

// NewHandler constructs an HTTP handler for permission catalog routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
