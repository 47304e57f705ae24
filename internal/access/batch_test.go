package access

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	id "cascade/pkg/domain"
)

// stubResolver records the actions it was asked about and answers through a
// pluggable decide function.
type stubResolver struct {
	mu      sync.Mutex
	actions []string
	decide  func(projectID id.ProjectID, action string) (Decision, error)
}

func (r *stubResolver) Resolve(_ context.Context, _ id.CompanyID, _ id.UserID, projectID id.ProjectID, action string) (Decision, error) {
	r.mu.Lock()
	r.actions = append(r.actions, action)
	r.mu.Unlock()

	if r.decide != nil {
		return r.decide(projectID, action)
	}
	return Decision{Allowed: true, RoleName: "owner"}, nil
}

func (r *stubResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.actions)
}

func (r *stubResolver) sawAction(action string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a == action {
			return true
		}
	}
	return false
}

type BatchSuite struct {
	suite.Suite
	resolver *stubResolver
	batch    *Batch

	companyID id.CompanyID
	userID    id.UserID
	ctx       context.Context
}

func TestBatchSuite(t *testing.T) {
	suite.Run(t, new(BatchSuite))
}

func (s *BatchSuite) SetupTest() {
	s.resolver = &stubResolver{}
	s.batch = NewBatch(s.resolver, WithBatchConcurrency(4))
	s.companyID = id.NewCompanyID()
	s.userID = id.NewUserID()
	s.ctx = context.Background()
}

// TestOrderPreserved runs enough checks to force concurrent resolution and
// verifies every decision lands in its input slot.
func (s *BatchSuite) TestOrderPreserved() {
	s.resolver.decide = func(_ id.ProjectID, action string) (Decision, error) {
		return Decision{Allowed: true, RoleName: action}, nil
	}

	checks := make([]Check, 25)
	for i := range checks {
		checks[i] = Check{ProjectID: id.NewProjectID().String(), Action: fmt.Sprintf("action-%d", i)}
	}

	decisions, err := s.batch.ResolveBatch(s.ctx, s.companyID, s.userID, checks)

	s.Require().NoError(err)
	s.Require().Len(decisions, len(checks))
	for i, decision := range decisions {
		s.Equal(fmt.Sprintf("action-%d", i), decision.RoleName)
	}
	s.Equal(len(checks), s.resolver.callCount())
}

func (s *BatchSuite) TestMissingFieldsDecidedLocally() {
	checks := []Check{
		{ProjectID: id.NewProjectID().String(), Action: "read_files"},
		{Action: "write_files"},
		{ProjectID: id.NewProjectID().String()},
	}

	decisions, err := s.batch.ResolveBatch(s.ctx, s.companyID, s.userID, checks)

	s.Require().NoError(err)
	s.Require().Len(decisions, 3)

	s.True(decisions[0].Allowed)
	s.False(decisions[1].Allowed)
	s.Equal(ReasonInvalidCheck, decisions[1].Reason)
	s.Empty(decisions[1].RoleName)
	s.False(decisions[2].Allowed)
	s.Equal(ReasonInvalidCheck, decisions[2].Reason)

	s.Equal(1, s.resolver.callCount())
}

func (s *BatchSuite) TestUnparseableProjectID() {
	checks := []Check{{ProjectID: "not-a-uuid", Action: "read_files"}}

	decisions, err := s.batch.ResolveBatch(s.ctx, s.companyID, s.userID, checks)

	s.Require().NoError(err)
	s.Require().Len(decisions, 1)
	s.False(decisions[0].Allowed)
	s.Equal(ReasonProjectNotFound, decisions[0].Reason)
	s.Zero(s.resolver.callCount())
}

func (s *BatchSuite) TestStoreFailureAbortsBatch() {
	boom := errors.New("store unavailable")
	s.resolver.decide = func(_ id.ProjectID, action string) (Decision, error) {
		if action == "write_files" {
			return Decision{}, boom
		}
		return Decision{Allowed: true}, nil
	}

	checks := []Check{
		{ProjectID: id.NewProjectID().String(), Action: "read_files"},
		{ProjectID: id.NewProjectID().String(), Action: "write_files"},
	}

	decisions, err := s.batch.ResolveBatch(s.ctx, s.companyID, s.userID, checks)

	s.ErrorIs(err, boom)
	s.Nil(decisions)
}

func (s *BatchSuite) TestEmptyBatch() {
	decisions, err := s.batch.ResolveBatch(s.ctx, s.companyID, s.userID, nil)

	s.NoError(err)
	s.Empty(decisions)
	s.Zero(s.resolver.callCount())
}

func (s *BatchSuite) TestFileChecksWidenAliases() {
	checks := []FileCheck{
		{FileID: "doc-1", ProjectID: id.NewProjectID().String(), Action: "read"},
		{FileID: "doc-2", ProjectID: id.NewProjectID().String(), Action: "write"},
		{FileID: "doc-3", ProjectID: id.NewProjectID().String(), Action: "delete_files"},
	}

	decisions, err := s.batch.ResolveFileBatch(s.ctx, s.companyID, s.userID, checks)

	s.Require().NoError(err)
	s.Require().Len(decisions, 3)
	s.True(s.resolver.sawAction("read_files"))
	s.True(s.resolver.sawAction("write_files"))
	s.True(s.resolver.sawAction("delete_files"))
	s.False(s.resolver.sawAction("read"))
}

func (s *BatchSuite) TestFileCheckRequiresFileID() {
	checks := []FileCheck{
		{ProjectID: id.NewProjectID().String(), Action: "read_files"},
	}

	decisions, err := s.batch.ResolveFileBatch(s.ctx, s.companyID, s.userID, checks)

	s.Require().NoError(err)
	s.Require().Len(decisions, 1)
	s.False(decisions[0].Allowed)
	s.Equal(ReasonInvalidCheck, decisions[0].Reason)
	s.Zero(s.resolver.callCount())
}

// TestManageAliasNeverMatches pins the alias table quirk: "manage" widens to
// a name outside the permission catalog, so it resolves but never matches.
func (s *BatchSuite) TestManageAliasNeverMatches() {
	s.resolver.decide = func(_ id.ProjectID, action string) (Decision, error) {
		// Mirrors a fully granted member: every catalog action passes.
		for _, known := range []string{"read_files", "write_files", "delete_files", "lock_files", "validate_files", "update_project", "delete_project", "manage_members", "manage_roles", "manage_policies"} {
			if action == known {
				return Decision{Allowed: true, RoleName: "owner"}, nil
			}
		}
		return Decision{Allowed: false, RoleName: "owner", Reason: ReasonPermissionDenied}, nil
	}

	checks := []FileCheck{
		{FileID: "doc-1", ProjectID: id.NewProjectID().String(), Action: "manage"},
	}

	decisions, err := s.batch.ResolveFileBatch(s.ctx, s.companyID, s.userID, checks)

	s.Require().NoError(err)
	s.Require().Len(decisions, 1)
	s.False(decisions[0].Allowed)
	s.True(s.resolver.sawAction("manage_project"))
}
