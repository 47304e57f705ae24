package access

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	memberModels "cascade/internal/member/models"
	memberStore "cascade/internal/member/store/member"
	permissionModels "cascade/internal/permission/models"
	permissionStore "cascade/internal/permission/store/permission"
	policyModels "cascade/internal/policy/models"
	policyStore "cascade/internal/policy/store/policy"
	projectModels "cascade/internal/project/models"
	projectStore "cascade/internal/project/store/project"
	roleModels "cascade/internal/role/models"
	roleStore "cascade/internal/role/store/role"
	id "cascade/pkg/domain"
)

type ResolverSuite struct {
	suite.Suite
	projects    *projectStore.InMemory
	members     *memberStore.InMemory
	roles       *roleStore.InMemory
	policies    *policyStore.InMemory
	permissions *permissionStore.InMemory
	resolver    *Resolver

	companyID id.CompanyID
	userID    id.UserID
	projectID id.ProjectID
	roleID    id.RoleID
	policyID  id.PolicyID
	now       time.Time
	ctx       context.Context
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

// SetupTest builds one complete grant chain: a project in the caller's
// company, the caller as member with role "contributor", one policy on the
// role, and the permissions read_files and update_project on the policy.
func (s *ResolverSuite) SetupTest() {
	s.projects = projectStore.NewInMemory()
	s.members = memberStore.NewInMemory()
	s.roles = roleStore.NewInMemory()
	s.policies = policyStore.NewInMemory()
	s.permissions = permissionStore.NewInMemory()
	s.resolver = NewResolver(s.projects, s.members, s.roles, s.policies, s.permissions)

	s.companyID = id.NewCompanyID()
	s.userID = id.NewUserID()
	s.projectID = id.NewProjectID()
	s.roleID = id.NewRoleID()
	s.policyID = id.NewPolicyID()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = context.Background()

	project, err := projectModels.NewProject(s.projectID, s.companyID, "Quay Wall Renovation", "", id.NewUserID(), s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.projects.Create(s.ctx, project))

	role, err := roleModels.NewRole(s.roleID, s.projectID, s.companyID, "contributor", true, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.roles.Create(s.ctx, role))

	policy, err := policyModels.NewPolicy(s.policyID, s.projectID, s.companyID, "contributor-base", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.policies.Create(s.ctx, policy))
	s.Require().NoError(s.roles.AttachPolicy(s.ctx, s.roleID, s.policyID))

	s.grant("read_files", permissionModels.CategoryFileOperations)
	s.grant("update_project", permissionModels.CategoryProjectOperations)

	membership, err := memberModels.NewMembership(s.projectID, s.userID, s.companyID, s.roleID, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.members.Create(s.ctx, membership))
}

// grant creates a permission on the suite project and attaches it to the
// suite policy.
func (s *ResolverSuite) grant(name string, category permissionModels.PermissionCategory) *permissionModels.Permission {
	permission, err := permissionModels.NewPermission(id.NewPermissionID(), s.projectID, s.companyID, name, "", category, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.permissions.Create(s.ctx, permission))
	s.Require().NoError(s.policies.AttachPermission(s.ctx, s.policyID, permission.ID))
	return permission
}

func (s *ResolverSuite) resolve(action string) Decision {
	decision, err := s.resolver.Resolve(s.ctx, s.companyID, s.userID, s.projectID, action)
	s.Require().NoError(err)
	return decision
}

func (s *ResolverSuite) TestGrantedAction() {
	decision := s.resolve("read_files")

	s.True(decision.Allowed)
	s.Equal("contributor", decision.RoleName)
	s.Empty(decision.Reason)
}

func (s *ResolverSuite) TestActionNotGranted() {
	decision := s.resolve("delete_project")

	s.False(decision.Allowed)
	s.Equal("contributor", decision.RoleName)
	s.Equal(ReasonPermissionDenied, decision.Reason)
}

func (s *ResolverSuite) TestUnknownActionIsOrdinaryDenial() {
	decision := s.resolve("fly_to_the_moon")

	s.False(decision.Allowed)
	s.Equal(ReasonPermissionDenied, decision.Reason)
}

func (s *ResolverSuite) TestProjectNotFound() {
	s.Run("unknown project", func() {
		decision, err := s.resolver.Resolve(s.ctx, s.companyID, s.userID, id.NewProjectID(), "read_files")
		s.NoError(err)
		s.False(decision.Allowed)
		s.Empty(decision.RoleName)
		s.Equal(ReasonProjectNotFound, decision.Reason)
	})

	s.Run("foreign company gets the same verdict", func() {
		decision, err := s.resolver.Resolve(s.ctx, id.NewCompanyID(), s.userID, s.projectID, "read_files")
		s.NoError(err)
		s.False(decision.Allowed)
		s.Equal(ReasonProjectNotFound, decision.Reason)
	})

	s.Run("soft-deleted project", func() {
		project, err := s.projects.FindByID(s.ctx, s.companyID, s.projectID)
		s.Require().NoError(err)
		s.Require().NoError(project.SoftDelete(s.now.Add(time.Minute)))
		s.Require().NoError(s.projects.Update(s.ctx, project))

		decision := s.resolve("read_files")
		s.False(decision.Allowed)
		s.Equal(ReasonProjectNotFound, decision.Reason)
	})
}

func (s *ResolverSuite) TestNotAMember() {
	s.Run("no membership row", func() {
		decision, err := s.resolver.Resolve(s.ctx, s.companyID, id.NewUserID(), s.projectID, "read_files")
		s.NoError(err)
		s.False(decision.Allowed)
		s.Equal(ReasonNotAMember, decision.Reason)
	})

	s.Run("removed membership", func() {
		membership, err := s.members.FindActive(s.ctx, s.projectID, s.userID)
		s.Require().NoError(err)
		s.Require().NoError(membership.Remove(s.now.Add(time.Minute)))
		s.Require().NoError(s.members.Update(s.ctx, membership))

		decision := s.resolve("read_files")
		s.False(decision.Allowed)
		s.Equal(ReasonNotAMember, decision.Reason)
	})

	s.Run("membership written under another company", func() {
		stray := id.NewUserID()
		membership, err := memberModels.NewMembership(s.projectID, stray, id.NewCompanyID(), s.roleID, s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.members.Create(s.ctx, membership))

		decision, err := s.resolver.Resolve(s.ctx, s.companyID, stray, s.projectID, "read_files")
		s.NoError(err)
		s.False(decision.Allowed)
		s.Equal(ReasonNotAMember, decision.Reason)
	})
}

func (s *ResolverSuite) TestNoValidRole() {
	role, err := s.roles.FindActive(s.ctx, s.projectID, s.roleID)
	s.Require().NoError(err)
	role.ApplyDelete(s.now.Add(time.Minute))
	s.Require().NoError(s.roles.Update(s.ctx, role))

	decision := s.resolve("read_files")

	s.False(decision.Allowed)
	s.Empty(decision.RoleName)
	s.Equal(ReasonNoValidRole, decision.Reason)
}

// The next four tests walk each remaining chain node through revocation and
// verify a previously granted action flips to denied without touching the
// rest of the chain.

func (s *ResolverSuite) TestRemovedPolicyRevokesGrants() {
	policy, err := s.policies.FindActive(s.ctx, s.projectID, s.policyID)
	s.Require().NoError(err)
	policy.ApplyDelete(s.now.Add(time.Minute))
	s.Require().NoError(s.policies.Update(s.ctx, policy))

	decision := s.resolve("read_files")

	s.False(decision.Allowed)
	s.Equal("contributor", decision.RoleName)
	s.Equal(ReasonPermissionDenied, decision.Reason)
}

func (s *ResolverSuite) TestDetachedPolicyRevokesGrants() {
	s.Require().NoError(s.roles.DetachPolicy(s.ctx, s.roleID, s.policyID))

	decision := s.resolve("read_files")

	s.False(decision.Allowed)
	s.Equal(ReasonPermissionDenied, decision.Reason)
}

func (s *ResolverSuite) TestRemovedPermissionStopsMatching() {
	// A policy link may outlive its permission; the row is filtered at read
	// time, so the stale link grants nothing.
	removedAt := s.now.Add(time.Minute)
	stale := &permissionModels.Permission{
		ID:        id.NewPermissionID(),
		ProjectID: s.projectID,
		CompanyID: s.companyID,
		Name:      "lock_files",
		Category:  permissionModels.CategoryFileOperations,
		CreatedAt: s.now,
		RemovedAt: &removedAt,
	}
	s.Require().NoError(s.permissions.Create(s.ctx, stale))
	s.Require().NoError(s.policies.AttachPermission(s.ctx, s.policyID, stale.ID))

	decision := s.resolve("lock_files")
	s.False(decision.Allowed)
	s.Equal(ReasonPermissionDenied, decision.Reason)

	still := s.resolve("read_files")
	s.True(still.Allowed)
}

func (s *ResolverSuite) TestDetachedPermissionStopsMatching() {
	permission, err := s.permissions.FindActiveByName(s.ctx, s.projectID, "read_files")
	s.Require().NoError(err)
	s.Require().NoError(s.policies.DetachPermission(s.ctx, s.policyID, permission.ID))

	decision := s.resolve("read_files")
	s.False(decision.Allowed)
	s.Equal(ReasonPermissionDenied, decision.Reason)

	still := s.resolve("update_project")
	s.True(still.Allowed)
}

// TestUnionAcrossPolicies verifies grants accumulate across policies: an
// empty second policy neither adds nor subtracts.
func (s *ResolverSuite) TestUnionAcrossPolicies() {
	empty, err := policyModels.NewPolicy(id.NewPolicyID(), s.projectID, s.companyID, "empty-extra", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.policies.Create(s.ctx, empty))
	s.Require().NoError(s.roles.AttachPolicy(s.ctx, s.roleID, empty.ID))

	decision := s.resolve("read_files")

	s.True(decision.Allowed)
	s.Equal("contributor", decision.RoleName)
}

func (s *ResolverSuite) TestRoleWithoutPolicies() {
	bare := id.NewRoleID()
	role, err := roleModels.NewRole(bare, s.projectID, s.companyID, "viewer", true, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.roles.Create(s.ctx, role))

	loner := id.NewUserID()
	membership, err := memberModels.NewMembership(s.projectID, loner, s.companyID, bare, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.members.Create(s.ctx, membership))

	decision, err := s.resolver.Resolve(s.ctx, s.companyID, loner, s.projectID, "read_files")

	s.NoError(err)
	s.False(decision.Allowed)
	s.Equal("viewer", decision.RoleName)
	s.Equal(ReasonPermissionDenied, decision.Reason)
}
