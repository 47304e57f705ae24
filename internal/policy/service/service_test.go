package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	permissionModels "cascade/internal/permission/models"
	permissionStore "cascade/internal/permission/store/permission"
	"cascade/internal/policy/models"
	policyStore "cascade/internal/policy/store/policy"
	projectModels "cascade/internal/project/models"
	projectService "cascade/internal/project/service"
	projectStore "cascade/internal/project/store/project"
	roleModels "cascade/internal/role/models"
	roleStore "cascade/internal/role/store/role"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/requestcontext"
)

type PolicyServiceSuite struct {
	suite.Suite
	policies    *policyStore.InMemory
	permissions *permissionStore.InMemory
	roles       *roleStore.InMemory
	projects    *projectStore.InMemory
	service     *Service

	companyID id.CompanyID
	actorID   id.UserID
	projectID id.ProjectID
	now       time.Time
	ctx       context.Context
}

func TestPolicyServiceSuite(t *testing.T) {
	suite.Run(t, new(PolicyServiceSuite))
}

func (s *PolicyServiceSuite) SetupTest() {
	s.policies = policyStore.NewInMemory()
	s.permissions = permissionStore.NewInMemory()
	s.roles = roleStore.NewInMemory()
	s.projects = projectStore.NewInMemory()

	s.service = New(
		s.policies,
		s.permissions,
		s.roles,
		projectService.NewGate(s.projects),
		projectService.NewShardedTx(),
	)

	s.companyID = id.NewCompanyID()
	s.actorID = id.NewUserID()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	project, err := projectModels.NewProject(id.NewProjectID(), s.companyID, "Lock Gate Replacement", "", s.actorID, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.projects.Create(s.ctx, project))
	s.projectID = project.ID
}

func (s *PolicyServiceSuite) create(name string) *models.Policy {
	policy, err := s.service.Create(s.ctx, s.companyID, s.projectID, name)
	s.Require().NoError(err)
	return policy
}

func (s *PolicyServiceSuite) permission(name string) *permissionModels.Permission {
	permission, err := permissionModels.NewPermission(
		id.NewPermissionID(), s.projectID, s.companyID,
		name, "", permissionModels.CategoryFileOperations, s.now,
	)
	s.Require().NoError(err)
	s.Require().NoError(s.permissions.Create(s.ctx, permission))
	return permission
}

func (s *PolicyServiceSuite) TestCreate() {
	policy := s.create("field-ops")

	s.Equal("field-ops", policy.Name)
	s.Equal(s.projectID, policy.ProjectID)
	s.Equal(s.companyID, policy.CompanyID)
	s.Equal(s.now, policy.CreatedAt)

	stored, err := s.policies.FindActive(s.ctx, s.projectID, policy.ID)
	s.NoError(err)
	s.Equal("field-ops", stored.Name)
}

func (s *PolicyServiceSuite) TestCreateDuplicateName() {
	s.create("field-ops")

	_, err := s.service.Create(s.ctx, s.companyID, s.projectID, "field-ops")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), "Policy name already exists in this project")

	// Uniqueness is case-insensitive, like the postgres index.
	_, err = s.service.Create(s.ctx, s.companyID, s.projectID, "Field-Ops")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *PolicyServiceSuite) TestCreateValidation() {
	_, err := s.service.Create(s.ctx, s.companyID, s.projectID, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.Create(s.ctx, s.companyID, s.projectID, strings.Repeat("x", 51))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *PolicyServiceSuite) TestCreateTenantIsolation() {
	_, err := s.service.Create(s.ctx, id.NewCompanyID(), s.projectID, "field-ops")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "Project not found")

	_, err = s.service.Create(s.ctx, s.companyID, id.NewProjectID(), "field-ops")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PolicyServiceSuite) TestRename() {
	policy := s.create("field-ops")

	renamed, err := s.service.Rename(s.ctx, s.companyID, s.projectID, policy.ID, "site-ops")
	s.Require().NoError(err)
	s.Equal("site-ops", renamed.Name)

	stored, err := s.policies.FindActive(s.ctx, s.projectID, policy.ID)
	s.NoError(err)
	s.Equal("site-ops", stored.Name)
}

func (s *PolicyServiceSuite) TestRenameDuplicate() {
	s.create("field-ops")
	policy := s.create("site-ops")

	_, err := s.service.Rename(s.ctx, s.companyID, s.projectID, policy.ID, "field-ops")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), "Policy name already exists in this project")
}

func (s *PolicyServiceSuite) TestRenameToOwnNameIsFine() {
	policy := s.create("field-ops")

	renamed, err := s.service.Rename(s.ctx, s.companyID, s.projectID, policy.ID, "field-ops")
	s.Require().NoError(err)
	s.Equal("field-ops", renamed.Name)
}

func (s *PolicyServiceSuite) TestRenameNotFound() {
	_, err := s.service.Rename(s.ctx, s.companyID, s.projectID, id.NewPolicyID(), "field-ops")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "Policy not found")
}

func (s *PolicyServiceSuite) TestDelete() {
	policy := s.create("field-ops")

	s.Require().NoError(s.service.Delete(s.ctx, s.companyID, s.projectID, policy.ID))

	_, err := s.service.Get(s.ctx, s.companyID, s.projectID, policy.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	// The name frees up once the holder is soft-deleted.
	s.create("field-ops")
}

func (s *PolicyServiceSuite) TestDeleteHeldPolicyConflicts() {
	policy := s.create("field-ops")

	role, err := roleModels.NewRole(id.NewRoleID(), s.projectID, s.companyID, "surveyor", false, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.roles.Create(s.ctx, role))
	s.Require().NoError(s.roles.AttachPolicy(s.ctx, role.ID, policy.ID))

	err = s.service.Delete(s.ctx, s.companyID, s.projectID, policy.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), "Policy is currently assigned to 1 role(s)")

	// Detaching the link unblocks deletion.
	s.Require().NoError(s.roles.DetachPolicy(s.ctx, role.ID, policy.ID))
	s.NoError(s.service.Delete(s.ctx, s.companyID, s.projectID, policy.ID))
}

func (s *PolicyServiceSuite) TestDeleteIgnoresRemovedRoleHolders() {
	policy := s.create("field-ops")

	role, err := roleModels.NewRole(id.NewRoleID(), s.projectID, s.companyID, "surveyor", false, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.roles.Create(s.ctx, role))
	s.Require().NoError(s.roles.AttachPolicy(s.ctx, role.ID, policy.ID))
	s.Require().NoError(role.Delete(s.now))
	s.Require().NoError(s.roles.Update(s.ctx, role))

	// A soft-deleted role no longer pins its policies.
	s.NoError(s.service.Delete(s.ctx, s.companyID, s.projectID, policy.ID))
}

func (s *PolicyServiceSuite) TestGet() {
	policy := s.create("field-ops")

	found, err := s.service.Get(s.ctx, s.companyID, s.projectID, policy.ID)
	s.Require().NoError(err)
	s.Equal(policy.ID, found.ID)

	_, err = s.service.Get(s.ctx, id.NewCompanyID(), s.projectID, policy.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "Policy not found")
}

func (s *PolicyServiceSuite) TestList() {
	first := s.create("field-ops")
	second := s.create("site-ops")

	policies, err := s.service.List(s.ctx, s.companyID, s.projectID)
	s.Require().NoError(err)
	s.Require().Len(policies, 2)
	s.Equal(first.ID, policies[0].ID)
	s.Equal(second.ID, policies[1].ID)

	_, err = s.service.List(s.ctx, id.NewCompanyID(), s.projectID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PolicyServiceSuite) TestAttachPermission() {
	policy := s.create("field-ops")
	permission := s.permission("download_files")

	attached, err := s.service.AttachPermission(s.ctx, s.companyID, s.projectID, policy.ID, permission.ID)
	s.Require().NoError(err)
	s.Equal(permission.ID, attached.ID)
	s.Equal("download_files", attached.Name)

	_, err = s.service.AttachPermission(s.ctx, s.companyID, s.projectID, policy.ID, permission.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Contains(err.Error(), "Permission is already assigned to this policy")
}

func (s *PolicyServiceSuite) TestAttachPermissionMissingSides() {
	policy := s.create("field-ops")
	permission := s.permission("download_files")

	_, err := s.service.AttachPermission(s.ctx, s.companyID, s.projectID, id.NewPolicyID(), permission.ID)
	s.Require().Error(err)
	s.Contains(err.Error(), "Policy not found")

	_, err = s.service.AttachPermission(s.ctx, s.companyID, s.projectID, policy.ID, id.NewPermissionID())
	s.Require().Error(err)
	s.Contains(err.Error(), "Permission not found")

	_, err = s.service.AttachPermission(s.ctx, s.companyID, id.NewProjectID(), policy.ID, permission.ID)
	s.Require().Error(err)
	s.Contains(err.Error(), "Project not found")
}

func (s *PolicyServiceSuite) TestDetachPermission() {
	policy := s.create("field-ops")
	permission := s.permission("download_files")

	_, err := s.service.AttachPermission(s.ctx, s.companyID, s.projectID, policy.ID, permission.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.service.DetachPermission(s.ctx, s.companyID, s.projectID, policy.ID, permission.ID))

	err = s.service.DetachPermission(s.ctx, s.companyID, s.projectID, policy.ID, permission.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "Permission is not assigned to this policy")
}

func (s *PolicyServiceSuite) TestListPermissionsSkipsRemoved() {
	policy := s.create("field-ops")
	kept := s.permission("download_files")

	removedAt := s.now.Add(time.Minute)
	dropped := &permissionModels.Permission{
		ID:        id.NewPermissionID(),
		ProjectID: s.projectID,
		CompanyID: s.companyID,
		Name:      "upload_files",
		Category:  permissionModels.CategoryFileOperations,
		CreatedAt: s.now,
		RemovedAt: &removedAt,
	}
	s.Require().NoError(s.permissions.Create(s.ctx, dropped))

	_, err := s.service.AttachPermission(s.ctx, s.companyID, s.projectID, policy.ID, kept.ID)
	s.Require().NoError(err)
	// The stale link goes in underneath the service; attach would reject a
	// removed permission.
	s.Require().NoError(s.policies.AttachPermission(s.ctx, policy.ID, dropped.ID))

	permissions, err := s.service.ListPermissions(s.ctx, s.companyID, s.projectID, policy.ID)
	s.Require().NoError(err)
	s.Require().Len(permissions, 1)
	s.Equal(kept.ID, permissions[0].ID)
}

func (s *PolicyServiceSuite) TestAttachRemovedPermissionRejected() {
	policy := s.create("field-ops")

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

	_, err := s.service.AttachPermission(s.ctx, s.companyID, s.projectID, policy.ID, stale.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Contains(err.Error(), "Permission not found")
}
