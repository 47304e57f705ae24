package service

import (
	"context"
	"errors"
	"log/slog"

	policyModels "cascade/internal/policy/models"
	"cascade/internal/role/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/sentinel"
	"cascade/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, role *models.Role) error
	FindActive(ctx context.Context, projectID id.ProjectID, roleID id.RoleID) (*models.Role, error)
	FindActiveByName(ctx context.Context, projectID id.ProjectID, name string) (*models.Role, error)
	ListActiveByProject(ctx context.Context, projectID id.ProjectID) ([]*models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	AttachPolicy(ctx context.Context, roleID id.RoleID, policyID id.PolicyID) error
	DetachPolicy(ctx context.Context, roleID id.RoleID, policyID id.PolicyID) error
	ListPolicyIDs(ctx context.Context, roleID id.RoleID) ([]id.PolicyID, error)
}

// PolicyStore resolves the policy side of role-policy links.
type PolicyStore interface {
	FindActive(ctx context.Context, projectID id.ProjectID, policyID id.PolicyID) (*policyModels.Policy, error)
	ListActiveByIDs(ctx context.Context, ids []id.PolicyID) ([]*policyModels.Policy, error)
}

// MemberCounter reports how many active memberships still hold a role. Used
// as the deletion guard.
type MemberCounter interface {
	CountActiveByRole(ctx context.Context, roleID id.RoleID) (int, error)
}

// ProjectChecker confirms the project is visible inside the caller's company.
type ProjectChecker interface {
	Exists(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) error
}

// StoreTx serializes mutations per project.
type StoreTx interface {
	RunInTx(ctx context.Context, projectID id.ProjectID, fn func(ctx context.Context) error) error
}

// Service manages project roles and their policy links. The four default
// roles are seeded at project creation and stay immutable; custom roles are
// unique by name per project among non-removed rows.
type Service struct {
	store    Store
	policies PolicyStore
	members  MemberCounter
	projects ProjectChecker
	txRunner StoreTx
	logger   *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(store Store, policies PolicyStore, members MemberCounter, projects ProjectChecker, txRunner StoreTx, opts ...Option) *Service {
	s := &Service{
		store:    store,
		policies: policies,
		members:  members,
		projects: projects,
		txRunner: txRunner,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SeedDefaults creates the default roles for a new project. Idempotent:
// names that already exist are skipped, and a concurrent seeder losing the
// insert race is a skip, not a failure. Runs in the caller's transaction.
func (s *Service) SeedDefaults(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*models.Role, error) {
	now := requestcontext.Now(ctx)

	var created []*models.Role
	for _, name := range models.DefaultRoleNames {
		_, err := s.store.FindActiveByName(ctx, projectID, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check role "+name)
		}

		role, err := models.NewRole(id.NewRoleID(), projectID, companyID, name, true, now)
		if err != nil {
			return nil, err
		}
		if err := s.store.Create(ctx, role); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed role "+name)
		}
		created = append(created, role)
	}

	if len(created) > 0 {
		s.logger.InfoContext(ctx, "seeded default roles",
			"project_id", projectID,
			"created", len(created),
		)
	}
	return created, nil
}

// Create adds a custom role. Callers can never mint default roles; the
// is_default flag is owned by the seeding path.
func (s *Service) Create(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, name string) (*models.Role, error) {
	now := requestcontext.Now(ctx)

	var role *models.Role
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
			return err
		}
		if err := s.checkNameFree(ctx, projectID, name); err != nil {
			return err
		}

		created, err := models.NewRole(id.NewRoleID(), projectID, companyID, name, false, now)
		if err != nil {
			return asValidation(err)
		}
		if err := s.store.Create(ctx, created); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return nameTakenErr(name)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create role")
		}
		role = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "role created",
		"project_id", projectID,
		"role_id", role.ID,
		"name", role.Name,
	)
	return role, nil
}

// Rename changes a custom role's name. Default roles are immutable.
func (s *Service) Rename(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID, name string) (*models.Role, error) {
	now := requestcontext.Now(ctx)

	var role *models.Role
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		var err error
		role, err = s.findActive(ctx, companyID, projectID, roleID)
		if err != nil {
			return err
		}
		if err := role.CanModify(); err != nil {
			return asValidation(err)
		}
		if name != role.Name {
			if err := s.checkNameFree(ctx, projectID, name); err != nil {
				return err
			}
		}

		if err := role.Rename(name, now); err != nil {
			return asValidation(err)
		}
		if err := s.store.Update(ctx, role); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "role renamed",
		"project_id", projectID,
		"role_id", roleID,
		"name", name,
	)
	return role, nil
}

// Delete soft-deletes a custom role. Default roles are protected, and a role
// still held by active members cannot go away underneath them.
func (s *Service) Delete(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID) error {
	now := requestcontext.Now(ctx)

	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		role, err := s.findActive(ctx, companyID, projectID, roleID)
		if err != nil {
			return err
		}
		if err := role.CanDelete(); err != nil {
			return asValidation(err)
		}

		holders, err := s.members.CountActiveByRole(ctx, roleID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count role members")
		}
		if holders > 0 {
			return dErrors.Newf(dErrors.CodeConflict, "Role is currently assigned to %d member(s)", holders)
		}

		role.ApplyDelete(now)
		if err := s.store.Update(ctx, role); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete role")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "role deleted",
		"project_id", projectID,
		"role_id", roleID,
	)
	return nil
}

// Get returns one active role.
func (s *Service) Get(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID) (*models.Role, error) {
	return s.findActive(ctx, companyID, projectID, roleID)
}

// List returns the project's active roles. The project must be visible
// inside the caller's company.
func (s *Service) List(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*models.Role, error) {
	if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
		return nil, err
	}

	roles, err := s.store.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list roles")
	}
	return roles, nil
}

// AttachPolicy links a policy to the role and returns the attached policy.
func (s *Service) AttachPolicy(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID, policyID id.PolicyID) (*policyModels.Policy, error) {
	var policy *policyModels.Policy
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
			return err
		}
		if _, err := s.findActive(ctx, companyID, projectID, roleID); err != nil {
			return err
		}

		var err error
		policy, err = s.findPolicy(ctx, companyID, projectID, policyID)
		if err != nil {
			return err
		}

		if err := s.store.AttachPolicy(ctx, roleID, policyID); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "Policy is already assigned to this role")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to attach policy")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "policy attached to role",
		"project_id", projectID,
		"role_id", roleID,
		"policy_id", policyID,
	)
	return policy, nil
}

// DetachPolicy removes a policy link from the role.
func (s *Service) DetachPolicy(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID, policyID id.PolicyID) error {
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
			return err
		}
		if _, err := s.findActive(ctx, companyID, projectID, roleID); err != nil {
			return err
		}
		if _, err := s.findPolicy(ctx, companyID, projectID, policyID); err != nil {
			return err
		}

		if err := s.store.DetachPolicy(ctx, roleID, policyID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "Policy is not assigned to this role")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to detach policy")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "policy detached from role",
		"project_id", projectID,
		"role_id", roleID,
		"policy_id", policyID,
	)
	return nil
}

// ListPolicies returns the role's active policies. Removed policies drop out
// of the listing without the link being cleaned up.
func (s *Service) ListPolicies(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID) ([]*policyModels.Policy, error) {
	if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.findActive(ctx, companyID, projectID, roleID); err != nil {
		return nil, err
	}

	policyIDs, err := s.store.ListPolicyIDs(ctx, roleID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list role policies")
	}
	policies, err := s.policies.ListActiveByIDs(ctx, policyIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policies")
	}
	return policies, nil
}

func (s *Service) findActive(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID) (*models.Role, error) {
	role, err := s.store.FindActive(ctx, projectID, roleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Role not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
	}
	if role.CompanyID != companyID {
		return nil, dErrors.New(dErrors.CodeNotFound, "Role not found")
	}
	return role, nil
}

func (s *Service) findPolicy(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID) (*policyModels.Policy, error) {
	policy, err := s.policies.FindActive(ctx, projectID, policyID)
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

func (s *Service) checkNameFree(ctx context.Context, projectID id.ProjectID, name string) error {
	_, err := s.store.FindActiveByName(ctx, projectID, name)
	if err == nil {
		return nameTakenErr(name)
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check role name")
	}
	return nil
}

func nameTakenErr(name string) error {
	return dErrors.Newf(dErrors.CodeConflict, "Role '%s' already exists in this project", name)
}

// asValidation converts invariant violations from the domain model into
// validation errors for the API response.
func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}
