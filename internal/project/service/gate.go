package service

import (
	"context"

	"cascade/internal/project/models"
	id "cascade/pkg/domain"
)

// GateStore is the read surface visibility checks need.
type GateStore interface {
	FindByID(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error)
	FindAny(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error)
}

// Gate answers the project-visibility question for sibling modules: the
// project exists, lives in the caller's company and is not soft-deleted.
// It wraps the store directly so modules the lifecycle Service itself
// depends on (the permission seeder, the default-role seeder) can check
// visibility without a construction cycle.
type Gate struct {
	store GateStore
}

// NewGate constructs a Gate over the project store.
func NewGate(store GateStore) *Gate {
	return &Gate{store: store}
}

// Exists returns nil when the project is visible, CodeNotFound otherwise.
// The wrong company and a soft-deleted row are indistinguishable from a
// missing id.
func (g *Gate) Exists(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) error {
	_, err := mapProjectErr(g.store.FindByID(ctx, companyID, projectID))
	return err
}

// ExistsAnyState is Exists without the soft-delete filter. Project history
// outlives the project's deletion, so history reads gate on this weaker
// check.
func (g *Gate) ExistsAnyState(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) error {
	_, err := mapProjectErr(g.store.FindAny(ctx, companyID, projectID))
	return err
}
