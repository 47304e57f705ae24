package service

import (
	"context"
	"errors"
	"log/slog"

	historyModels "cascade/internal/history/models"
	"cascade/internal/member/models"
	roleModels "cascade/internal/role/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/sentinel"
	"cascade/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, membership *models.Membership) error
	FindByPair(ctx context.Context, projectID id.ProjectID, userID id.UserID) (*models.Membership, error)
	FindActive(ctx context.Context, projectID id.ProjectID, userID id.UserID) (*models.Membership, error)
	ListActiveByProject(ctx context.Context, projectID id.ProjectID) ([]*models.Membership, error)
	Update(ctx context.Context, membership *models.Membership) error
}

// RoleStore resolves the role a membership is being granted.
type RoleStore interface {
	FindActive(ctx context.Context, projectID id.ProjectID, roleID id.RoleID) (*roleModels.Role, error)
}

// ProjectChecker confirms the project is visible inside the caller's company.
type ProjectChecker interface {
	Exists(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) error
}

// HistoryRecorder appends audit entries inside the ambient transaction.
type HistoryRecorder interface {
	Record(ctx context.Context, entry *historyModels.Entry) error
}

// StoreTx serializes mutations per project.
type StoreTx interface {
	RunInTx(ctx context.Context, projectID id.ProjectID, fn func(ctx context.Context) error) error
}

// Service manages project memberships. A user holds at most one active role
// per project; the (project, user) row survives removal so a re-add restores
// it instead of inserting a duplicate.
type Service struct {
	store    Store
	roles    RoleStore
	projects ProjectChecker
	history  HistoryRecorder
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
func New(store Store, roles RoleStore, projects ProjectChecker, history HistoryRecorder, txRunner StoreTx, opts ...Option) *Service {
	s := &Service{
		store:    store,
		roles:    roles,
		projects: projects,
		history:  history,
		txRunner: txRunner,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add grants the user a role in the project. A previously removed membership
// is restored in place with the newly requested role; an active one is a
// conflict. The membership write and its history entry land together.
func (s *Service) Add(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, userID id.UserID, roleID id.RoleID, actorID id.UserID) (*models.Membership, error) {
	now := requestcontext.Now(ctx)

	var membership *models.Membership
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
			return err
		}
		if err := s.checkRole(ctx, companyID, projectID, roleID); err != nil {
			return err
		}

		existing, err := s.store.FindByPair(ctx, projectID, userID)
		switch {
		case err == nil && !existing.IsRemoved():
			return dErrors.New(dErrors.CodeConflict, "Member already exists in this project")
		case err == nil:
			existing.ApplyRestore(roleID, now)
			if err := s.store.Update(ctx, existing); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to restore membership")
			}
			membership = existing
		case errors.Is(err, sentinel.ErrNotFound):
			created, err := models.NewMembership(projectID, userID, companyID, roleID, now)
			if err != nil {
				return asValidation(err)
			}
			if err := s.store.Create(ctx, created); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return dErrors.New(dErrors.CodeConflict, "Member already exists in this project")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create membership")
			}
			membership = created
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up membership")
		}

		entry, err := historyModels.NewEntry(id.NewHistoryID(), projectID, companyID, historyModels.ActionMemberAdded, actorID, now)
		if err != nil {
			return err
		}
		entry.WithField("user_id", "", userID.String())
		return s.history.Record(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "member added",
		"project_id", projectID,
		"user_id", userID,
		"role_id", roleID,
	)
	return membership, nil
}

// ChangeRole reassigns the member's role. Reassigning the role the member
// already holds is a no-op and records no history.
func (s *Service) ChangeRole(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, userID id.UserID, roleID id.RoleID, actorID id.UserID) (*models.Membership, error) {
	now := requestcontext.Now(ctx)

	var membership *models.Membership
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		var err error
		membership, err = s.findActive(ctx, companyID, projectID, userID)
		if err != nil {
			return err
		}
		if err := s.checkRole(ctx, companyID, projectID, roleID); err != nil {
			return err
		}

		previous := membership.RoleID
		if !membership.ApplyRoleChange(roleID, now) {
			return nil
		}
		if err := s.store.Update(ctx, membership); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update membership")
		}

		entry, err := historyModels.NewEntry(id.NewHistoryID(), projectID, companyID, historyModels.ActionRoleAssigned, actorID, now)
		if err != nil {
			return err
		}
		entry.WithField("role_id", previous.String(), roleID.String())
		return s.history.Record(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "member role changed",
		"project_id", projectID,
		"user_id", userID,
		"role_id", roleID,
	)
	return membership, nil
}

// Remove soft-removes the member and records the removal.
func (s *Service) Remove(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, userID id.UserID, actorID id.UserID) error {
	now := requestcontext.Now(ctx)

	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		membership, err := s.findActive(ctx, companyID, projectID, userID)
		if err != nil {
			return err
		}

		if err := membership.Remove(now); err != nil {
			return asValidation(err)
		}
		if err := s.store.Update(ctx, membership); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove membership")
		}

		entry, err := historyModels.NewEntry(id.NewHistoryID(), projectID, companyID, historyModels.ActionMemberRemoved, actorID, now)
		if err != nil {
			return err
		}
		entry.WithField("user_id", userID.String(), "")
		return s.history.Record(ctx, entry)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "member removed",
		"project_id", projectID,
		"user_id", userID,
	)
	return nil
}

// Get returns one active membership.
func (s *Service) Get(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, userID id.UserID) (*models.Membership, error) {
	return s.findActive(ctx, companyID, projectID, userID)
}

// List returns the project's active members. The project must be visible
// inside the caller's company.
func (s *Service) List(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*models.Membership, error) {
	if err := s.projects.Exists(ctx, companyID, projectID); err != nil {
		return nil, err
	}

	members, err := s.store.ListActiveByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list members")
	}
	return members, nil
}

func (s *Service) findActive(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, userID id.UserID) (*models.Membership, error) {
	membership, err := s.store.FindActive(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Member not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load membership")
	}
	if membership.CompanyID != companyID {
		return nil, dErrors.New(dErrors.CodeNotFound, "Member not found")
	}
	return membership, nil
}

// checkRole confirms the role is active inside the project and company.
func (s *Service) checkRole(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID) error {
	role, err := s.roles.FindActive(ctx, projectID, roleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Role not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
	}
	if role.CompanyID != companyID {
		return dErrors.New(dErrors.CodeNotFound, "Role not found")
	}
	return nil
}

// asValidation converts invariant violations from the domain model into
// validation errors for the API response.
func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, err.Error())
	}
	return err
}
