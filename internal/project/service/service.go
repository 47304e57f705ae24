package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	historyModels "cascade/internal/history/models"
	permissionModels "cascade/internal/permission/models"
	"cascade/internal/project/metrics"
	"cascade/internal/project/models"
	roleModels "cascade/internal/role/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/sentinel"
	"cascade/pkg/requestcontext"
)

var tracer = otel.Tracer("cascade/project")

type Store interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error)
	ListByCompany(ctx context.Context, companyID id.CompanyID) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
}

// MembershipRemover fans the project's soft-deletion out to its memberships.
type MembershipRemover interface {
	RemoveAllForProject(ctx context.Context, projectID id.ProjectID, now time.Time) (int, error)
}

// RoleSeeder materializes the default roles for a new project.
type RoleSeeder interface {
	SeedDefaults(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*roleModels.Role, error)
}

// PermissionSeeder materializes the permission catalog when a project is
// initialized.
type PermissionSeeder interface {
	Seed(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*permissionModels.Permission, error)
}

// HistoryRecorder appends audit entries inside the ambient transaction.
type HistoryRecorder interface {
	Record(ctx context.Context, entry *historyModels.Entry) error
}

// Service drives the project lifecycle: creation, field updates with status
// transitions, archive/restore, and soft deletion. Every mutation runs under
// the StoreTx boundary so field changes, seeding side effects and history
// entries land together or not at all.
type Service struct {
	store       Store
	members     MembershipRemover
	roles       RoleSeeder
	permissions PermissionSeeder
	history     HistoryRecorder
	txRunner    StoreTx

	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(store Store, members MembershipRemover, roles RoleSeeder, permissions PermissionSeeder, history HistoryRecorder, txRunner StoreTx, opts ...Option) *Service {
	s := &Service{
		store:       store,
		members:     members,
		roles:       roles,
		permissions: permissions,
		history:     history,
		txRunner:    txRunner,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams carries the caller-supplied fields for a new project. Status
// is never part of it: a new project always starts as created.
type CreateParams struct {
	Name                 string
	Description          string
	CustomerID           *id.CustomerID
	ConsultationDate     *time.Time
	SubmissionDeadline   *time.Time
	NotificationDate     *time.Time
	ContractStartDate    *time.Time
	PlannedStartDate     *time.Time
	ActualStartDate      *time.Time
	ContractDeliveryDate *time.Time
	PlannedDeliveryDate  *time.Time
	ActualDeliveryDate   *time.Time
	ContractAmount       *string
	BudgetCurrency       *string
}

// extras returns the optional fields as a patch so creation reuses the same
// assignment path as updates. Name and description go through the
// constructor instead; status stays forced.
func (p CreateParams) extras() *models.Patch {
	return &models.Patch{
		CustomerID:           p.CustomerID,
		ConsultationDate:     p.ConsultationDate,
		SubmissionDeadline:   p.SubmissionDeadline,
		NotificationDate:     p.NotificationDate,
		ContractStartDate:    p.ContractStartDate,
		PlannedStartDate:     p.PlannedStartDate,
		ActualStartDate:      p.ActualStartDate,
		ContractDeliveryDate: p.ContractDeliveryDate,
		PlannedDeliveryDate:  p.PlannedDeliveryDate,
		ActualDeliveryDate:   p.ActualDeliveryDate,
		ContractAmount:       p.ContractAmount,
		BudgetCurrency:       p.BudgetCurrency,
	}
}

// Create persists a new project with status forced to created, seeds its
// default roles and records the creation history entry, all in one
// transaction.
func (s *Service) Create(ctx context.Context, companyID id.CompanyID, actorID id.UserID, params CreateParams) (*models.Project, error) {
	now := requestcontext.Now(ctx)

	project, err := models.NewProject(id.NewProjectID(), companyID, strings.TrimSpace(params.Name), params.Description, actorID, now)
	if err != nil {
		return nil, asValidation(err)
	}

	extras := params.extras()
	if err := extras.Validate(); err != nil {
		return nil, asValidation(err)
	}
	project.Apply(extras, now)

	err = s.txRunner.RunInTx(ctx, project.ID, func(ctx context.Context) error {
		if err := s.store.Create(ctx, project); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create project")
		}

		if _, err := s.roles.SeedDefaults(ctx, companyID, project.ID); err != nil {
			return err
		}

		entry, err := historyModels.NewEntry(id.NewHistoryID(), project.ID, companyID, historyModels.ActionCreated, actorID, now)
		if err != nil {
			return err
		}
		entry.WithField("status", "", string(models.StatusCreated)).
			WithComment(fmt.Sprintf("Project '%s' created", project.Name))
		return s.history.Record(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementCreated()
	s.logger.InfoContext(ctx, "project created",
		"project_id", project.ID,
		"name", project.Name,
	)
	return project, nil
}

// Update applies a partial update. A supplied status must be reachable per
// the lifecycle table or the whole call is rejected with the project
// untouched. Reaching initialized seeds the permission catalog in the same
// transaction; every changed field gets its own history entry.
func (s *Service) Update(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, patch *models.Patch, actorID id.UserID) (*models.Project, error) {
	ctx, span := tracer.Start(ctx, "project.update",
		trace.WithAttributes(attribute.String("project_id", projectID.String())),
	)
	defer span.End()

	if err := patch.Validate(); err != nil {
		return nil, asValidation(err)
	}

	now := requestcontext.Now(ctx)

	var (
		project *models.Project
		changes []models.FieldChange
		seeded  bool
	)
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		var err error
		project, err = s.find(ctx, companyID, projectID)
		if err != nil {
			return err
		}

		if err := project.CanApply(patch); err != nil {
			s.metrics.IncrementRejected()
			return asValidation(err)
		}

		changes = project.Apply(patch, now)
		if len(changes) == 0 {
			return nil
		}

		if err := s.store.Update(ctx, project); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update project")
		}

		action := historyModels.ActionUpdated
		if statusChange(changes) != nil {
			action = historyModels.ActionStatusChanged
		}

		if project.Status == models.StatusInitialized && action == historyModels.ActionStatusChanged {
			if _, err := s.permissions.Seed(ctx, companyID, projectID); err != nil {
				return err
			}
			seeded = true
		}

		for _, change := range changes {
			entry, err := historyModels.NewEntry(id.NewHistoryID(), projectID, companyID, action, actorID, now)
			if err != nil {
				return err
			}
			entry.WithField(change.Field, change.Old, change.New)
			if err := s.history.Record(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("changes", len(changes)))
	if change := statusChange(changes); change != nil {
		span.SetAttributes(
			attribute.String("from", change.Old),
			attribute.String("to", change.New),
		)
		s.metrics.RecordTransition(change.Old, change.New)
		s.logger.InfoContext(ctx, "project status changed",
			"project_id", projectID,
			"from", change.Old,
			"to", change.New,
		)
	}
	if seeded {
		s.metrics.IncrementCatalogSeeding()
	}
	return project, nil
}

// Archive moves a completed project to archived and stamps archived_at.
// Intentionally writes no history entry, matching the dedicated archive path
// rather than the generic update path.
func (s *Service) Archive(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error) {
	ctx, span := tracer.Start(ctx, "project.archive",
		trace.WithAttributes(attribute.String("project_id", projectID.String())),
	)
	defer span.End()

	now := requestcontext.Now(ctx)

	var project *models.Project
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		var err error
		project, err = s.find(ctx, companyID, projectID)
		if err != nil {
			return err
		}

		if err := project.CanArchive(); err != nil {
			s.metrics.IncrementRejected()
			return asValidation(err)
		}
		project.ApplyArchive(now)

		if err := s.store.Update(ctx, project); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to archive project")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.RecordTransition(string(models.StatusCompleted), string(models.StatusArchived))
	s.logger.InfoContext(ctx, "project archived", "project_id", projectID)
	return project, nil
}

// Restore returns an archived project to active. ArchivedAt deliberately
// stays set as a marker that the project was archived at least once. Like
// Archive, it writes no history entry.
func (s *Service) Restore(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error) {
	ctx, span := tracer.Start(ctx, "project.restore",
		trace.WithAttributes(attribute.String("project_id", projectID.String())),
	)
	defer span.End()

	now := requestcontext.Now(ctx)

	var project *models.Project
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		var err error
		project, err = s.find(ctx, companyID, projectID)
		if err != nil {
			return err
		}

		if err := project.CanRestore(); err != nil {
			s.metrics.IncrementRejected()
			return asValidation(err)
		}
		project.ApplyRestore(now)

		if err := s.store.Update(ctx, project); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to restore project")
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.RecordTransition(string(models.StatusArchived), string(models.StatusActive))
	s.logger.InfoContext(ctx, "project restored", "project_id", projectID)
	return project, nil
}

// SoftDelete marks the project removed, fans the removal out to its
// memberships and records one deleted history entry. Roles, policies and
// permissions stay untouched: their visibility dies with the project lookup.
func (s *Service) SoftDelete(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, actorID id.UserID) error {
	now := requestcontext.Now(ctx)

	var removedMembers int
	err := s.txRunner.RunInTx(ctx, projectID, func(ctx context.Context) error {
		project, err := s.find(ctx, companyID, projectID)
		if err != nil {
			return err
		}

		if err := project.SoftDelete(now); err != nil {
			return asValidation(err)
		}
		if err := s.store.Update(ctx, project); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete project")
		}

		removedMembers, err = s.members.RemoveAllForProject(ctx, projectID, now)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove project members")
		}

		entry, err := historyModels.NewEntry(id.NewHistoryID(), projectID, companyID, historyModels.ActionDeleted, actorID, now)
		if err != nil {
			return err
		}
		entry.WithField("removed_at", "", now.UTC().Format(time.RFC3339))
		return s.history.Record(ctx, entry)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "project deleted",
		"project_id", projectID,
		"removed_members", removedMembers,
	)
	return nil
}

// Get returns one visible project.
func (s *Service) Get(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error) {
	return s.find(ctx, companyID, projectID)
}

// List returns the company's non-deleted projects, newest first.
func (s *Service) List(ctx context.Context, companyID id.CompanyID) ([]*models.Project, error) {
	projects, err := s.store.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	return projects, nil
}

// Exists reports whether the project is visible inside the company. Sibling
// modules use it as their tenant-boundary check.
func (s *Service) Exists(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) error {
	_, err := s.find(ctx, companyID, projectID)
	return err
}

func (s *Service) find(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error) {
	return mapProjectErr(s.store.FindByID(ctx, companyID, projectID))
}

// mapProjectErr translates store sentinels into the API-facing error. Every
// failure to see a project reads the same, whatever the underlying cause.
func mapProjectErr(project *models.Project, err error) (*models.Project, error) {
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}
	return project, nil
}

// statusChange returns the status field change if the set contains one.
func statusChange(changes []models.FieldChange) *models.FieldChange {
	for i := range changes {
		if changes[i].Field == "status" {
			return &changes[i]
		}
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
