//go:build integration

package role_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"cascade/internal/role/models"
	"cascade/internal/role/store/role"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
	"cascade/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *role.Postgres
	companyID id.CompanyID
	projectID id.ProjectID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = role.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "projects"))

	s.companyID = id.NewCompanyID()
	s.projectID = s.seedProject(s.companyID)
}

func (s *PostgresStoreSuite) seedProject(companyID id.CompanyID) id.ProjectID {
	projectID := id.NewProjectID()
	_, err := s.postgres.DB.ExecContext(context.Background(), `
		INSERT INTO projects (id, company_id, name, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, 'created', $4, now(), now())
	`, uuid.UUID(projectID), uuid.UUID(companyID), "Seed "+uuid.NewString(), uuid.New())
	s.Require().NoError(err)
	return projectID
}

func (s *PostgresStoreSuite) seedPolicy(name string) id.PolicyID {
	policyID := id.NewPolicyID()
	_, err := s.postgres.DB.ExecContext(context.Background(), `
		INSERT INTO project_policies (id, project_id, company_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, uuid.UUID(policyID), uuid.UUID(s.projectID), uuid.UUID(s.companyID), name)
	s.Require().NoError(err)
	return policyID
}

func (s *PostgresStoreSuite) newRole(name string) *models.Role {
	r, err := models.NewRole(id.NewRoleID(), s.projectID, s.companyID, name, false, time.Now().UTC())
	s.Require().NoError(err)
	return r
}

// TestLiveNameUniqueness verifies the partial unique index: names conflict
// case-insensitively among live roles, and soft deletion frees the name.
func (s *PostgresStoreSuite) TestLiveNameUniqueness() {
	ctx := context.Background()

	editor := s.newRole("Editor")
	s.Require().NoError(s.store.Create(ctx, editor))

	s.Require().ErrorIs(s.store.Create(ctx, s.newRole("editor")), sentinel.ErrConflict)
	s.Require().ErrorIs(s.store.Create(ctx, s.newRole("EDITOR")), sentinel.ErrConflict)

	s.Require().NoError(editor.Delete(time.Now().UTC()))
	s.Require().NoError(s.store.Update(ctx, editor))

	// The name belongs to nobody once its holder is soft-deleted.
	s.Require().NoError(s.store.Create(ctx, s.newRole("Editor")))
}

// TestConcurrentSameName verifies racing creates of one name yield exactly one
// winner.
func (s *PostgresStoreSuite) TestConcurrentSameName() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := models.NewRole(id.NewRoleID(), s.projectID, s.companyID, "Contested", false, time.Now().UTC())
			if err != nil {
				return
			}
			err = s.store.Create(ctx, r)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict error")
}

// TestFindActiveByName verifies case-insensitive lookup scoped to live rows.
func (s *PostgresStoreSuite) TestFindActiveByName() {
	ctx := context.Background()

	r := s.newRole("Project Manager")
	s.Require().NoError(s.store.Create(ctx, r))

	found, err := s.store.FindActiveByName(ctx, s.projectID, "pRoJeCt MaNaGeR")
	s.Require().NoError(err)
	s.Equal(r.ID, found.ID)

	_, err = s.store.FindActiveByName(ctx, s.projectID, "Nonexistent")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(r.Delete(time.Now().UTC()))
	s.Require().NoError(s.store.Update(ctx, r))

	_, err = s.store.FindActiveByName(ctx, s.projectID, "Project Manager")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestPolicyAttachment verifies the role_policies link table semantics.
func (s *PostgresStoreSuite) TestPolicyAttachment() {
	ctx := context.Background()

	r := s.newRole("Linked")
	s.Require().NoError(s.store.Create(ctx, r))
	readPolicy := s.seedPolicy("read-documents")
	writePolicy := s.seedPolicy("write-documents")

	s.Require().NoError(s.store.AttachPolicy(ctx, r.ID, readPolicy))
	s.Require().NoError(s.store.AttachPolicy(ctx, r.ID, writePolicy))
	s.Require().ErrorIs(s.store.AttachPolicy(ctx, r.ID, readPolicy), sentinel.ErrConflict)

	ids, err := s.store.ListPolicyIDs(ctx, r.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]id.PolicyID{readPolicy, writePolicy}, ids)

	s.Require().NoError(s.store.DetachPolicy(ctx, r.ID, readPolicy))
	s.Require().ErrorIs(s.store.DetachPolicy(ctx, r.ID, readPolicy), sentinel.ErrNotFound)

	ids, err = s.store.ListPolicyIDs(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal([]id.PolicyID{writePolicy}, ids)
}

// TestCountActiveRolesHoldingPolicy verifies soft-deleted roles stop counting
// against their attached policies.
func (s *PostgresStoreSuite) TestCountActiveRolesHoldingPolicy() {
	ctx := context.Background()
	policyID := s.seedPolicy("shared-policy")

	first := s.newRole("First")
	second := s.newRole("Second")
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))
	s.Require().NoError(s.store.AttachPolicy(ctx, first.ID, policyID))
	s.Require().NoError(s.store.AttachPolicy(ctx, second.ID, policyID))

	count, err := s.store.CountActiveRolesHoldingPolicy(ctx, policyID)
	s.Require().NoError(err)
	s.Equal(2, count)

	s.Require().NoError(second.Delete(time.Now().UTC()))
	s.Require().NoError(s.store.Update(ctx, second))

	count, err = s.store.CountActiveRolesHoldingPolicy(ctx, policyID)
	s.Require().NoError(err)
	s.Equal(1, count)
}

// TestRenameAndList verifies rename persistence and live-only listing.
func (s *PostgresStoreSuite) TestRenameAndList() {
	ctx := context.Background()

	keep := s.newRole("Keep")
	gone := s.newRole("Gone")
	gone.CreatedAt = keep.CreatedAt.Add(time.Minute)
	s.Require().NoError(s.store.Create(ctx, keep))
	s.Require().NoError(s.store.Create(ctx, gone))

	s.Require().NoError(keep.Rename("Kept", time.Now().UTC()))
	s.Require().NoError(s.store.Update(ctx, keep))

	s.Require().NoError(gone.Delete(time.Now().UTC()))
	s.Require().NoError(s.store.Update(ctx, gone))

	listed, err := s.store.ListActiveByProject(ctx, s.projectID)
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal("Kept", listed[0].Name)

	ghost := s.newRole("Ghost")
	s.Require().ErrorIs(s.store.Update(ctx, ghost), sentinel.ErrNotFound)
}
