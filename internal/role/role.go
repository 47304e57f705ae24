package role

import (
	"log/slog"

	"cascade/internal/role/handler"
	"cascade/internal/role/service"
)

// Service exposes role orchestration: custom role CRUD, default-role seeding
// and policy attachment.
type Service = service.Service

// Handler wires HTTP endpoints to the role service.
type Handler = handler.Handler

// NewService constructs the role service with required dependencies.
func NewService(store service.Store, policies service.PolicyStore, members service.MemberCounter, projects service.ProjectChecker, txRunner service.StoreTx, opts ...service.Option) *Service {
	return service.New(store, policies, members, projects, txRunner, opts...)
}

// NewHandler constructs an HTTP handler for role routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
