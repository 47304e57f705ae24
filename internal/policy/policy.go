package policy

import (
	"log/slog"

	"cascade/internal/policy/handler"
	"cascade/internal/policy/service"
)

// Service exposes policy orchestration: policy CRUD and permission
// attachment.
type Service = service.Service

// Handler wires HTTP endpoints to the policy service.
type Handler = handler.Handler

// NewService constructs the policy service with required dependencies.
func NewService(store service.Store, permissions service.PermissionStore, roles service.RoleCounter, projects service.ProjectChecker, txRunner service.StoreTx, opts ...service.Option) *Service {
	return service.New(store, permissions, roles, projects, txRunner, opts...)
}

// NewHandler constructs an HTTP handler for policy routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
