package service

import (
	"context"
	"errors"
	"log/slog"

	"cascade/internal/permission/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/sentinel"
	"cascade/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, permission *models.Permission) error
	FindActiveByName(ctx context.Context, projectID id.ProjectID, name string) (*models.Permission, error)
	ListActiveByProject(ctx context.Context, projectID id.ProjectID) ([]*models.Permission, error)
}

// ProjectChecker confirms a project is visible inside the caller's company
// before permissions are listed for it.
type ProjectChecker interface {
	Exists(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) error
}

// Service seeds and serves the per-project permission catalog.
type Service struct {
	store    Store
	projects ProjectChecker
	logger   *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(store Store, projects ProjectChecker, opts ...Option) *Service {
	s := &Service{store: store, projects: projects, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed materializes the permission catalog for one project. The operation is
// idempotent: entries that already exist are skipped, and only the rows
// created by this call are returned. A concurrent seeder losing the insert
// race is treated as a skip, not a failure.
func (s *Service) Seed(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*models.Permission, error) {
	now := requestcontext.Now(ctx)

	var created []*models.Permission
	for _, tpl := range models.Catalog() {
		_, err := s.store.FindActiveByName(ctx, projectID, tpl.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check permission "+tpl.Name)
		}

		permission, err := models.NewPermission(id.NewPermissionID(), projectID, companyID, tpl.Name, tpl.Description, tpl.Category, now)
		if err != nil {
			return nil, err
		}
		if err := s.store.Create(ctx, permission); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed permission "+tpl.Name)
		}
		created = append(created, permission)
	}

	if len(created) > 0 {
		s.logger.InfoContext(ctx, "seeded permission catalog",
			"project_id", projectID,
			"created", len(created),
		)
	}
	return created, nil
}

// List returns the active permissions of one project ordered by category then
// name. The project must be visible inside the caller's company.
func (s *Service) List(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*models.Permission, error) {
	if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
		return nil, err
	}

	permissions, err := s.store.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list permissions")
	}
	return permissions, nil
}
