package member

import (
	"log/slog"

	"cascade/internal/member/handler"
	"cascade/internal/member/service"
)

// Service exposes membership orchestration: adding, listing, re-roling and
// removing project members.
type Service = service.Service

// Handler wires HTTP endpoints to the member service.
type Handler = handler.Handler

// NewService constructs the member service with required dependencies.
func NewService(store service.Store, roles service.RoleStore, projects service.ProjectChecker, history service.HistoryRecorder, txRunner service.StoreTx, opts ...service.Option) *Service {
	return service.New(store, roles, projects, history, txRunner, opts...)
}

// NewHandler constructs an HTTP handler for membership routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}
