package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	historyModels "cascade/internal/history/models"
	historyService "cascade/internal/history/service"
	historyStore "cascade/internal/history/store/history"
	memberModels "cascade/internal/member/models"
	memberStore "cascade/internal/member/store/member"
	permissionService "cascade/internal/permission/service"
	permissionStore "cascade/internal/permission/store/permission"
	"cascade/internal/project/models"
	projectStore "cascade/internal/project/store/project"
	roleModels "cascade/internal/role/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/requestcontext"
)

// stubRoleSeeder records which projects got their default roles.
type stubRoleSeeder struct {
	calls []id.ProjectID
	err   error
}

func (s *stubRoleSeeder) SeedDefaults(_ context.Context, _ id.CompanyID, projectID id.ProjectID) ([]*roleModels.Role, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls = append(s.calls, projectID)
	return nil, nil
}

type ProjectServiceSuite struct {
	suite.Suite
	projects    *projectStore.InMemory
	members     *memberStore.InMemory
	permissions *permissionStore.InMemory
	entriesDB   *historyStore.InMemory
	roles       *stubRoleSeeder
	service     *Service

	companyID id.CompanyID
	actorID   id.UserID
	now       time.Time
	ctx       context.Context
}

func TestProjectServiceSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceSuite))
}

func (s *ProjectServiceSuite) SetupTest() {
	s.projects = projectStore.NewInMemory()
	s.members = memberStore.NewInMemory()
	s.permissions = permissionStore.NewInMemory()
	s.entriesDB = historyStore.NewInMemory()
	s.roles = &stubRoleSeeder{}

	s.service = New(
		s.projects,
		s.members,
		s.roles,
		permissionService.New(s.permissions, NewGate(s.projects)),
		historyService.New(s.entriesDB),
		NewShardedTx(),
	)

	s.companyID = id.NewCompanyID()
	s.actorID = id.NewUserID()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ProjectServiceSuite) create(name string) *models.Project {
	project, err := s.service.Create(s.ctx, s.companyID, s.actorID, CreateParams{Name: name})
	s.Require().NoError(err)
	return project
}

func (s *ProjectServiceSuite) advance(projectID id.ProjectID, target models.ProjectStatus) *models.Project {
	st := target
	project, err := s.service.Update(s.ctx, s.companyID, projectID, &models.Patch{Status: &st}, s.actorID)
	s.Require().NoError(err)
	return project
}

// completed walks a fresh project down the happy path to completed.
func (s *ProjectServiceSuite) completed(name string) *models.Project {
	project := s.create(name)
	for _, st := range []models.ProjectStatus{
		models.StatusInitialized, models.StatusConsultation, models.StatusActive, models.StatusCompleted,
	} {
		project = s.advance(project.ID, st)
	}
	return project
}

func (s *ProjectServiceSuite) entries(projectID id.ProjectID) []*historyModels.Entry {
	entries, err := s.entriesDB.ListByProject(s.ctx, s.companyID, projectID, 200, 0)
	s.Require().NoError(err)
	return entries
}

func (s *ProjectServiceSuite) TestCreate() {
	project, err := s.service.Create(s.ctx, s.companyID, s.actorID, CreateParams{
		Name:        "  Quay Wall Renovation  ",
		Description: "Rebuild the eastern quay wall",
	})
	s.Require().NoError(err)

	s.Equal("Quay Wall Renovation", project.Name)
	s.Equal(models.StatusCreated, project.Status)
	s.Equal("EUR", project.BudgetCurrency)
	s.Equal(s.companyID, project.CompanyID)
	s.Equal(s.actorID, project.CreatedBy)
	s.Equal(s.now, project.CreatedAt)

	stored, err := s.projects.FindByID(s.ctx, s.companyID, project.ID)
	s.NoError(err)
	s.Equal(project.Name, stored.Name)

	s.Equal([]id.ProjectID{project.ID}, s.roles.calls)

	entries := s.entries(project.ID)
	s.Require().Len(entries, 1)
	s.Equal(historyModels.ActionCreated, entries[0].Action)
	s.Equal("status", entries[0].FieldName)
	s.Equal("created", entries[0].NewValue)
	s.Equal("Project 'Quay Wall Renovation' created", entries[0].Comment)
	s.Equal(s.actorID, entries[0].ChangedBy)
}

// TestCreateWithExtras verifies optional fields land at creation without
// producing extra history entries.
func (s *ProjectServiceSuite) TestCreateWithExtras() {
	customerID := id.NewCustomerID()
	consultation := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	amount := "125000.00"

	project, err := s.service.Create(s.ctx, s.companyID, s.actorID, CreateParams{
		Name:             "Harbor Crane Overhaul",
		CustomerID:       &customerID,
		ConsultationDate: &consultation,
		ContractAmount:   &amount,
	})
	s.Require().NoError(err)

	s.Require().NotNil(project.CustomerID)
	s.Equal(customerID, *project.CustomerID)
	s.Require().NotNil(project.ConsultationDate)
	s.True(consultation.Equal(*project.ConsultationDate))
	s.Equal("125000.00", project.ContractAmount)

	s.Len(s.entries(project.ID), 1)
}

func (s *ProjectServiceSuite) TestCreateValidation() {
	s.Run("blank name", func() {
		_, err := s.service.Create(s.ctx, s.companyID, s.actorID, CreateParams{Name: "   "})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("bad currency code", func() {
		currency := "EURO"
		_, err := s.service.Create(s.ctx, s.companyID, s.actorID, CreateParams{
			Name:           "Dock Fender Replacement",
			BudgetCurrency: &currency,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Empty(s.roles.calls)
}

func (s *ProjectServiceSuite) TestUpdateFields() {
	project := s.create("Quay Wall Renovation")

	name := "Quay Wall Renovation Phase 2"
	desc := "Extended scope"
	updated, err := s.service.Update(s.ctx, s.companyID, project.ID, &models.Patch{Name: &name, Description: &desc}, s.actorID)
	s.Require().NoError(err)
	s.Equal(name, updated.Name)
	s.Equal(desc, updated.Description)

	entries := s.entries(project.ID)
	s.Require().Len(entries, 3)
	byField := make(map[string]*historyModels.Entry)
	for _, e := range entries[:2] {
		byField[e.FieldName] = e
	}
	s.Require().Contains(byField, "name")
	s.Equal(historyModels.ActionUpdated, byField["name"].Action)
	s.Equal("Quay Wall Renovation", byField["name"].OldValue)
	s.Equal(name, byField["name"].NewValue)
	s.Require().Contains(byField, "description")
	s.Equal(historyModels.ActionUpdated, byField["description"].Action)
}

func (s *ProjectServiceSuite) TestUpdateNoChanges() {
	project := s.create("Quay Wall Renovation")

	same := project.Name
	updated, err := s.service.Update(s.ctx, s.companyID, project.ID, &models.Patch{Name: &same}, s.actorID)
	s.Require().NoError(err)
	s.Equal(project.Name, updated.Name)
	s.Len(s.entries(project.ID), 1)

	// re-supplying the current status is a no-op, not a transition
	st := models.StatusCreated
	_, err = s.service.Update(s.ctx, s.companyID, project.ID, &models.Patch{Status: &st}, s.actorID)
	s.Require().NoError(err)
	s.Len(s.entries(project.ID), 1)

	catalog, err := s.permissions.ListActiveByProject(s.ctx, project.ID)
	s.NoError(err)
	s.Empty(catalog)
}

// TestInitializeSeedsPermissionCatalog verifies reaching initialized
// materializes all ten catalog permissions in the same call.
func (s *ProjectServiceSuite) TestInitializeSeedsPermissionCatalog() {
	project := s.create("Quay Wall Renovation")

	updated := s.advance(project.ID, models.StatusInitialized)
	s.Equal(models.StatusInitialized, updated.Status)

	catalog, err := s.permissions.ListActiveByProject(s.ctx, project.ID)
	s.NoError(err)
	s.Len(catalog, 10)

	entries := s.entries(project.ID)
	s.Require().Len(entries, 2)
	s.Equal(historyModels.ActionStatusChanged, entries[0].Action)
	s.Equal("status", entries[0].FieldName)
	s.Equal("created", entries[0].OldValue)
	s.Equal("initialized", entries[0].NewValue)
}

// TestStatusChangeLabelsAllEntries verifies a mixed update with a status
// change stamps status_changed on every entry of the call.
func (s *ProjectServiceSuite) TestStatusChangeLabelsAllEntries() {
	project := s.create("Quay Wall Renovation")

	st := models.StatusInitialized
	desc := "Scope agreed"
	_, err := s.service.Update(s.ctx, s.companyID, project.ID, &models.Patch{Status: &st, Description: &desc}, s.actorID)
	s.Require().NoError(err)

	entries := s.entries(project.ID)
	s.Require().Len(entries, 3)
	for _, e := range entries[:2] {
		s.Equal(historyModels.ActionStatusChanged, e.Action)
	}
}

// TestIllegalTransitionRejected verifies a rejected transition leaves no
// trace: no field changes, no history, no seeded permissions.
func (s *ProjectServiceSuite) TestIllegalTransitionRejected() {
	project := s.create("Quay Wall Renovation")

	st := models.StatusActive
	name := "Should not land"
	_, err := s.service.Update(s.ctx, s.companyID, project.ID, &models.Patch{Status: &st, Name: &name}, s.actorID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(err.Error(), "cannot transition project from created to active")

	stored, err := s.projects.FindByID(s.ctx, s.companyID, project.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCreated, stored.Status)
	s.Equal("Quay Wall Renovation", stored.Name)
	s.Len(s.entries(project.ID), 1)

	catalog, err := s.permissions.ListActiveByProject(s.ctx, project.ID)
	s.NoError(err)
	s.Empty(catalog)
}

func (s *ProjectServiceSuite) TestUnknownStatusRejected() {
	project := s.create("Quay Wall Renovation")

	st := models.ProjectStatus("launched")
	_, err := s.service.Update(s.ctx, s.companyID, project.ID, &models.Patch{Status: &st}, s.actorID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// TestLifecycleWalk drives the full happy path and checks the side-effect
// timestamps along the way.
func (s *ProjectServiceSuite) TestLifecycleWalk() {
	project := s.create("Quay Wall Renovation")

	for _, st := range []models.ProjectStatus{
		models.StatusInitialized,
		models.StatusConsultation,
		models.StatusActive,
		models.StatusSuspended,
		models.StatusActive,
		models.StatusCompleted,
	} {
		project = s.advance(project.ID, st)
		s.Equal(st, project.Status)
	}

	s.Require().NotNil(project.SuspendedAt)
	s.Equal(s.now, *project.SuspendedAt)
	s.Require().NotNil(project.CompletedAt)
	s.Equal(s.now, *project.CompletedAt)
}

func (s *ProjectServiceSuite) TestArchive() {
	project := s.completed("Quay Wall Renovation")

	archived, err := s.service.Archive(s.ctx, s.companyID, project.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusArchived, archived.Status)
	s.Require().NotNil(archived.ArchivedAt)
	s.Equal(s.now, *archived.ArchivedAt)
}

func (s *ProjectServiceSuite) TestArchiveRequiresCompleted() {
	project := s.create("Quay Wall Renovation")

	_, err := s.service.Archive(s.ctx, s.companyID, project.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(err.Error(), "only completed projects can be archived")
}

func (s *ProjectServiceSuite) TestArchiveAndRestoreWriteNoHistory() {
	project := s.completed("Quay Wall Renovation")
	before := len(s.entries(project.ID))

	_, err := s.service.Archive(s.ctx, s.companyID, project.ID)
	s.Require().NoError(err)
	_, err = s.service.Restore(s.ctx, s.companyID, project.ID)
	s.Require().NoError(err)

	s.Len(s.entries(project.ID), before)
}

// TestRestoreKeepsArchivedAt verifies the restore asymmetry: the project
// returns to active but keeps the archival marker.
func (s *ProjectServiceSuite) TestRestoreKeepsArchivedAt() {
	project := s.completed("Quay Wall Renovation")
	_, err := s.service.Archive(s.ctx, s.companyID, project.ID)
	s.Require().NoError(err)

	restored, err := s.service.Restore(s.ctx, s.companyID, project.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, restored.Status)
	s.NotNil(restored.ArchivedAt)
}

func (s *ProjectServiceSuite) TestRestoreRequiresArchived() {
	project := s.create("Quay Wall Renovation")

	_, err := s.service.Restore(s.ctx, s.companyID, project.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

// TestSoftDelete verifies the cascade: the project disappears, its
// memberships are removed, and the deletion is the newest history entry.
func (s *ProjectServiceSuite) TestSoftDelete() {
	project := s.create("Quay Wall Renovation")
	roleID := id.NewRoleID()
	for range 2 {
		m, err := memberModels.NewMembership(project.ID, id.NewUserID(), s.companyID, roleID, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.members.Create(s.ctx, m))
	}

	err := s.service.SoftDelete(s.ctx, s.companyID, project.ID, s.actorID)
	s.Require().NoError(err)

	_, err = s.service.Get(s.ctx, s.companyID, project.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	active, err := s.members.ListActiveByProject(s.ctx, project.ID)
	s.NoError(err)
	s.Empty(active)

	entries := s.entries(project.ID)
	s.Require().Len(entries, 2)
	s.Equal(historyModels.ActionDeleted, entries[0].Action)
	s.Equal("removed_at", entries[0].FieldName)
	s.Equal(s.now.Format(time.RFC3339), entries[0].NewValue)
}

func (s *ProjectServiceSuite) TestSoftDeleteTwice() {
	project := s.create("Quay Wall Renovation")

	s.Require().NoError(s.service.SoftDelete(s.ctx, s.companyID, project.ID, s.actorID))

	err := s.service.SoftDelete(s.ctx, s.companyID, project.ID, s.actorID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestTenantIsolation verifies a foreign company sees NotFound everywhere,
// indistinguishable from a missing project.
func (s *ProjectServiceSuite) TestTenantIsolation() {
	project := s.create("Quay Wall Renovation")
	otherCompany := id.NewCompanyID()

	_, err := s.service.Get(s.ctx, otherCompany, project.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "Project not found")

	st := models.StatusInitialized
	_, err = s.service.Update(s.ctx, otherCompany, project.ID, &models.Patch{Status: &st}, s.actorID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.Archive(s.ctx, otherCompany, project.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.True(dErrors.HasCode(s.service.Exists(s.ctx, otherCompany, project.ID), dErrors.CodeNotFound))
}

func (s *ProjectServiceSuite) TestList() {
	first := s.create("Quay Wall Renovation")
	second := s.create("Harbor Crane Overhaul")

	s.Require().NoError(s.service.SoftDelete(s.ctx, s.companyID, first.ID, s.actorID))

	projects, err := s.service.List(s.ctx, s.companyID)
	s.NoError(err)
	s.Require().Len(projects, 1)
	s.Equal(second.ID, projects[0].ID)

	other, err := s.service.List(s.ctx, id.NewCompanyID())
	s.NoError(err)
	s.Empty(other)
}

func (s *ProjectServiceSuite) TestGateExists() {
	project := s.create("Quay Wall Renovation")
	gate := NewGate(s.projects)

	s.NoError(gate.Exists(s.ctx, s.companyID, project.ID))
	s.True(dErrors.HasCode(gate.Exists(s.ctx, id.NewCompanyID(), project.ID), dErrors.CodeNotFound))
	s.True(dErrors.HasCode(gate.Exists(s.ctx, s.companyID, id.NewProjectID()), dErrors.CodeNotFound))
}
