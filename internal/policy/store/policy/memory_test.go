package policy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"cascade/internal/policy/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
)

type PolicyStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func (s *PolicyStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestPolicyStoreSuite(t *testing.T) {
	suite.Run(t, new(PolicyStoreSuite))
}

func (s *PolicyStoreSuite) newPolicy(projectID id.ProjectID, name string) *models.Policy {
	p, err := models.NewPolicy(id.NewPolicyID(), projectID, id.NewCompanyID(), name, s.now)
	s.Require().NoError(err)
	return p
}

// TestNameUniqueness verifies per-project name uniqueness among non-removed policies.
func (s *PolicyStoreSuite) TestNameUniqueness() {
	projectID := id.NewProjectID()

	s.Run("rejects duplicate name", func() {
		s.Require().NoError(s.store.Create(s.ctx, s.newPolicy(projectID, "file-readers")))
		err := s.store.Create(s.ctx, s.newPolicy(projectID, "File-Readers"))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("name of a removed policy is reusable", func() {
		doomed := s.newPolicy(projectID, "short-lived")
		s.Require().NoError(s.store.Create(s.ctx, doomed))
		doomed.ApplyDelete(s.now)
		s.Require().NoError(s.store.Update(s.ctx, doomed))

		s.Require().NoError(s.store.Create(s.ctx, s.newPolicy(projectID, "short-lived")))
	})
}

// TestSetLookups verifies the resolver-facing reads filter removed rows.
func (s *PolicyStoreSuite) TestSetLookups() {
	s.Run("ListActiveByIDs drops removed and unknown policies", func() {
		live := s.newPolicy(id.NewProjectID(), "live")
		dead := s.newPolicy(id.NewProjectID(), "dead")
		s.Require().NoError(s.store.Create(s.ctx, live))
		s.Require().NoError(s.store.Create(s.ctx, dead))
		dead.ApplyDelete(s.now)
		s.Require().NoError(s.store.Update(s.ctx, dead))

		got, err := s.store.ListActiveByIDs(s.ctx, []id.PolicyID{live.ID, dead.ID, id.NewPolicyID()})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(live.ID, got[0].ID)
	})

	s.Run("empty input yields empty output", func() {
		got, err := s.store.ListActiveByIDs(s.ctx, nil)
		s.Require().NoError(err)
		s.Empty(got)
	})
}

// TestPermissionLinks verifies attach/detach semantics.
func (s *PolicyStoreSuite) TestPermissionLinks() {
	s.Run("attach is unique per pair", func() {
		p := s.newPolicy(id.NewProjectID(), "linked")
		s.Require().NoError(s.store.Create(s.ctx, p))
		permissionID := id.NewPermissionID()

		s.Require().NoError(s.store.AttachPermission(s.ctx, p.ID, permissionID))
		s.Require().ErrorIs(s.store.AttachPermission(s.ctx, p.ID, permissionID), sentinel.ErrConflict)

		ids, err := s.store.ListPermissionIDs(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Len(ids, 1)
	})

	s.Run("detach of a missing link is ErrNotFound", func() {
		p := s.newPolicy(id.NewProjectID(), "unlinked")
		s.Require().NoError(s.store.Create(s.ctx, p))
		s.Require().ErrorIs(s.store.DetachPermission(s.ctx, p.ID, id.NewPermissionID()), sentinel.ErrNotFound)
	})
}
