package service

import (
	"context"
	"errors"
	"log/slog"

	permissionModels "cascade/internal/permission/models"
	"cascade/internal/policy/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/sentinel"
	"cascade/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, policy *models.Policy) error
	FindActive(ctx context.Context, projectID id.ProjectID, policyID id.PolicyID) (*models.Policy, error)
	FindActiveByName(ctx context.Context, projectID id.ProjectID, name string) (*models.Policy, error)
	ListActiveByProject(ctx context.Context, projectID id.ProjectID) ([]*models.Policy, error)
	Update(ctx context.Context, policy *models.Policy) error
	AttachPermission(ctx context.Context, policyID id.PolicyID, permissionID id.PermissionID) error
	DetachPermission(ctx context.Context, policyID id.PolicyID, permissionID id.PermissionID) error
	ListPermissionIDs(ctx context.Context, policyID id.PolicyID) ([]id.PermissionID, error)
}

// PermissionStore resolves the permission side of policy-permission links.
type PermissionStore interface {
	FindActive(ctx context.Context, projectID id.ProjectID, permissionID id.PermissionID) (*permissionModels.Permission, error)
	ListActiveByIDs(ctx context.Context, ids []id.PermissionID) ([]*permissionModels.Permission, error)
}

// RoleCounter reports how many active roles still hold a policy. Used as the
// deletion guard.
type RoleCounter interface {
	CountActiveRolesHoldingPolicy(ctx context.Context, policyID id.PolicyID) (int, error)
}

// ProjectChecker confirms the project is visible inside the caller's company.
type ProjectChecker interface {
	Exists(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) error
}

// StoreTx serializes mutations per project.
type StoreTx interface {
	RunInTx(ctx context.Context, projectID id.ProjectID, fn func(ctx context.Context) error) error
}

// Service manages project policies and their permission links. Policies are
// unique by name per project among non-removed rows.
type Service struct {
	store       Store
	permissions PermissionStore
	roles       RoleCounter
	projects    ProjectChecker
	txRunner    StoreTx
	logger      *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(store Store, permissions PermissionStore, roles RoleCounter, projects ProjectChecker, txRunner StoreTx, opts ...Option) *Service {
	s := &Service{
		store:       store,
		permissions: permissions,
		roles:       roles,
		projects:    projects,
		txRunner:    txRunner,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create adds a policy to a project.
func (s *Service) Create(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, name string) (*models.Policy, error) {
	now := requestcontext.Now(ctx)

	var policy *models.Policy
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
			return err
		}
		if err := s.checkNameFree(ctx, projectID, name); err != nil {
			return err
		}

		created, err := models.NewPolicy(id.NewPolicyID(), projectID, companyID, name, now)
		if err != nil {
			return asValidation(err)
		}
		if err := s.store.Create(ctx, created); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return nameTakenErr()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create policy")
		}
		policy = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "policy created",
		"project_id", projectID,
		"policy_id", policy.ID,
		"name", policy.Name,
	)
	return policy, nil
}

// Rename changes a policy's name. The duplicate check only runs when the name
// actually changes.
func (s *Service) Rename(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID, name string) (*models.Policy, error) {
	now := requestcontext.Now(ctx)

	var policy *models.Policy
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		var err error
		policy, err = s.findActive(ctx, companyID, projectID, policyID)
		if err != nil {
			return err
		}
		if name != policy.Name {
			if err := s.checkNameFree(ctx, projectID, name); err != nil {
				return err
			}
		}

		if err := policy.Rename(name, now); err != nil {
			return asValidation(err)
		}
		if err := s.store.Update(ctx, policy); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update policy")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "policy renamed",
		"project_id", projectID,
		"policy_id", policyID,
		"name", name,
	)
	return policy, nil
}

// Delete soft-deletes a policy. A policy still held by active roles cannot go
// away underneath them.
func (s *Service) Delete(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID) error {
	now := requestcontext.Now(ctx)

	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		policy, err := s.findActive(ctx, companyID, projectID, policyID)
		if err != nil {
			return err
		}
		if err := policy.CanDelete(); err != nil {
			return asValidation(err)
		}

		holders, err := s.roles.CountActiveRolesHoldingPolicy(ctx, policyID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count policy roles")
		}
		if holders > 0 {
			return dErrors.Newf(dErrors.CodeConflict, "Policy is currently assigned to %d role(s)", holders)
		}

		policy.ApplyDelete(now)
		if err := s.store.Update(ctx, policy); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete policy")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "policy deleted",
		"project_id", projectID,
		"policy_id", policyID,
	)
	return nil
}

// Get returns one active policy.
func (s *Service) Get(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID) (*models.Policy, error) {
	return s.findActive(ctx, companyID, projectID, policyID)
}

// List returns the project's active policies. The project must be visible
// inside the caller's company.
func (s *Service) List(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*models.Policy, error) {
	if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
		return nil, err
	}

	policies, err := s.store.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policies")
	}
	return policies, nil
}

// AttachPermission links a permission to the policy and returns the attached
// permission.
func (s *Service) AttachPermission(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID, permissionID id.PermissionID) (*permissionModels.Permission, error) {
	var permission *permissionModels.Permission
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
			return err
		}
		if _, err := s.findActive(ctx, companyID, projectID, policyID); err != nil {
			return err
		}

		var err error
		permission, err = s.findPermission(ctx, companyID, projectID, permissionID)
		if err != nil {
			return err
		}

		if err := s.store.AttachPermission(ctx, policyID, permissionID); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "Permission is already assigned to this policy")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach permission")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "permission attached to policy",
		"project_id", projectID,
		"policy_id", policyID,
		"permission_id", permissionID,
	)
	return permission, nil
}

// DetachPermission removes a permission link from the policy.
func (s *Service) DetachPermission(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID, permissionID id.PermissionID) error {
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
			return err
		}
		if _, err := s.findActive(ctx, companyID, projectID, policyID); err != nil {
			return err
		}
		if _, err := s.findPermission(ctx, companyID, projectID, permissionID); err != nil {
			return err
		}

		if err := s.store.DetachPermission(ctx, policyID, permissionID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "Permission is not assigned to this policy")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to detach permission")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "permission detached from policy",
		"project_id", projectID,
		"policy_id", policyID,
		"permission_id", permissionID,
	)
	return nil
}

// ListPermissions returns the policy's active permissions. Removed permissions
// drop out of the listing without the link being cleaned up.
func (s *Service) ListPermissions(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID) ([]*permissionModels.Permission, error) {
	if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.findActive(ctx, companyID, projectID, policyID); err != nil {
		return nil, err
	}

	permissionIDs, err := s.store.ListPermissionIDs(ctx, policyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policy permissions")
	}
	permissions, err := s.permissions.ListActiveByIDs(ctx, permissionIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load permissions")
	}
	return permissions, nil
}

func (s *Service) findActive(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID) (*models.Policy, error) {
	policy, err := s.store.FindActive(ctx, projectID, policyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Policy not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policy")
	}
	if policy.CompanyID != companyID {
		return nil, dErrors.New(dErrors.CodeNotFound, "Policy not found")
	}
	return policy, nil
}

func (s *Service) findPermission(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, permissionID id.PermissionID) (*permissionModels.Permission, error) {
	permission, err := s.permissions.FindActive(ctx, projectID, permissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Permission not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load permission")
	}
	if permission.CompanyID != companyID {
		return nil, dErrors.New(dErrors.CodeNotFound, "Permission not found")
	}
	return permission, nil
}

func (s *Service) checkNameFree(ctx context.Context, projectID id.ProjectID, name string) error {
	_, err := s.store.FindActiveByName(ctx, projectID, name)
	if err == nil {
		return nameTakenErr()
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check policy name")
	}
	return nil
}

func nameTakenErr() error {
	return dErrors.New(dErrors.CodeConflict, "Policy name already exists in this project")
}

// asValidation converts invariant violations from the domain model into
// validation errors for the API response.
func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}
