package project

import (
	"log/slog"

	"cascade/internal/project/handler"
	"cascade/internal/project/service"
)

// Service drives the project lifecycle: creation, updates with status
// transitions, archive/restore and soft deletion.
type Service = service.Service

// Handler wires HTTP endpoints to the project service.
type Handler = handler.Handler

// Gate answers project-visibility checks for sibling modules without pulling
// in the full lifecycle service.
type Gate = service.Gate

// StoreTx is the transaction boundary project mutations run under.
type StoreTx = service.StoreTx

// NewService constructs the project service with required dependencies.
func NewService(store service.Store, members service.MembershipRemover, roles service.RoleSeeder, permissions service.PermissionSeeder, history service.HistoryRecorder, txRunner service.StoreTx, opts ...service.Option) *Service {
	return service.New(store, members, roles, permissions, history, txRunner, opts...)
}

// NewHandler constructs an HTTP handler for project lifecycle routes.
func NewHandler(s *Service, logger *slog.Logger) *Handler {
	return handler.New(s, logger)
}

// NewGate constructs the visibility gate over the project store.
func NewGate(store service.GateStore) *Gate {
	return service.NewGate(store)
}

// NewShardedTx constructs the in-process transaction runner used with the
// memory backend.
func NewShardedTx() StoreTx {
	return service.NewShardedTx()
}
