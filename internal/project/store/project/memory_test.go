package project

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cascade/internal/project/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
)

type ProjectStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func (s *ProjectStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestProjectStoreSuite(t *testing.T) {
	suite.Run(t, new(ProjectStoreSuite))
}

func (s *ProjectStoreSuite) newProject(companyID id.CompanyID, name string) *models.Project {
	p, err := models.NewProject(id.NewProjectID(), companyID, name, "", id.NewUserID(), s.now)
	s.Require().NoError(err)
	return p
}

// TestCreationAndLookups verifies the store correctly creates and retrieves projects.
func (s *ProjectStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds project by ID", func() {
		p := s.newProject(id.NewCompanyID(), "Harbor Expansion")
		s.Require().NoError(s.store.Create(s.ctx, p))

		found, err := s.store.FindByID(s.ctx, p.CompanyID, p.ID)
		s.Require().NoError(err)
		s.Equal(p.Name, found.Name)
		s.Equal(models.StatusCreated, found.Status)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewCompanyID(), id.NewProjectID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate ID", func() {
		p := s.newProject(id.NewCompanyID(), "Duplicate")
		s.Require().NoError(s.store.Create(s.ctx, p))
		s.Require().ErrorIs(s.store.Create(s.ctx, p), sentinel.ErrConflict)
	})
}

// TestTenantIsolation verifies company mismatches behave exactly like missing rows.
func (s *ProjectStoreSuite) TestTenantIsolation() {
	s.Run("wrong company cannot see the project", func() {
		p := s.newProject(id.NewCompanyID(), "Company A Project")
		s.Require().NoError(s.store.Create(s.ctx, p))

		_, err := s.store.FindByID(s.ctx, id.NewCompanyID(), p.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("list is company-scoped", func() {
		companyA := id.NewCompanyID()
		companyB := id.NewCompanyID()
		s.Require().NoError(s.store.Create(s.ctx, s.newProject(companyA, "A1")))
		s.Require().NoError(s.store.Create(s.ctx, s.newProject(companyB, "B1")))

		listed, err := s.store.ListByCompany(s.ctx, companyA)
		s.Require().NoError(err)
		s.Require().Len(listed, 1)
		s.Equal("A1", listed[0].Name)
	})
}

// TestSoftDeletion verifies soft-deleted projects vanish from every read.
func (s *ProjectStoreSuite) TestSoftDeletion() {
	s.Run("soft-deleted project is invisible to FindByID and List", func() {
		p := s.newProject(id.NewCompanyID(), "Doomed")
		s.Require().NoError(s.store.Create(s.ctx, p))

		s.Require().NoError(p.SoftDelete(s.now.Add(time.Minute)))
		s.Require().NoError(s.store.Update(s.ctx, p))

		_, err := s.store.FindByID(s.ctx, p.CompanyID, p.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		listed, err := s.store.ListByCompany(s.ctx, p.CompanyID)
		s.Require().NoError(err)
		s.Empty(listed)
	})
}

// TestUpdates verifies the store persists mutations and isolates callers from
// its internal copies.
func (s *ProjectStoreSuite) TestUpdates() {
	s.Run("persists status changes", func() {
		p := s.newProject(id.NewCompanyID(), "Status Test")
		s.Require().NoError(s.store.Create(s.ctx, p))

		p.Status = models.StatusInitialized
		s.Require().NoError(s.store.Update(s.ctx, p))

		found, err := s.store.FindByID(s.ctx, p.CompanyID, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusInitialized, found.Status)
	})

	s.Run("returns ErrNotFound for unknown project", func() {
		p := s.newProject(id.NewCompanyID(), "Ghost")
		s.Require().ErrorIs(s.store.Update(s.ctx, p), sentinel.ErrNotFound)
	})

	s.Run("mutating a returned project does not leak into the store", func() {
		p := s.newProject(id.NewCompanyID(), "Immutable")
		s.Require().NoError(s.store.Create(s.ctx, p))

		found, err := s.store.FindByID(s.ctx, p.CompanyID, p.ID)
		s.Require().NoError(err)
		found.Name = "Mutated"

		again, err := s.store.FindByID(s.ctx, p.CompanyID, p.ID)
		s.Require().NoError(err)
		s.Equal("Immutable", again.Name)
	})
}

// TestListOrdering verifies newest-first listing.
func (s *ProjectStoreSuite) TestListOrdering() {
	companyID := id.NewCompanyID()
	first := s.newProject(companyID, "first")
	second := s.newProject(companyID, "second")
	second.CreatedAt = s.now.Add(time.Hour)

	s.Require().NoError(s.store.Create(s.ctx, first))
	s.Require().NoError(s.store.Create(s.ctx, second))

	listed, err := s.store.ListByCompany(s.ctx, companyID)
	s.Require().NoError(err)
	s.Require().Len(listed, 2)
	s.Equal("second", listed[0].Name)
	s.Equal("first", listed[1].Name)
}
