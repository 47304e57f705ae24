package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cascade/internal/permission/handler/mocks"
	"cascade/internal/permission/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/permission-mocks.go -package=mocks Service
type PermissionHandlerSuite struct {
	suite.Suite
	companyID id.CompanyID
	userID    id.UserID
	projectID id.ProjectID
}

func (s *PermissionHandlerSuite) SetupSuite() {
	s.companyID = id.NewCompanyID()
	s.userID = id.NewUserID()
	s.projectID = id.NewProjectID()
}

func TestPermissionHandlerSuite(t *testing.T) {
	suite.Run(t, new(PermissionHandlerSuite))
}

// newTestRouter mounts the handler on a real router so path parameters
// resolve the same way they do in production.
func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger).Register(r)
	return r, mockService
}

// authed stamps the identity claims the middleware would normally attach.
func (s *PermissionHandlerSuite) authed(req *http.Request) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), s.userID)
	ctx = requestcontext.WithCompanyID(ctx, s.companyID)
	return req.WithContext(ctx)
}

func (s *PermissionHandlerSuite) permission(name string, category models.PermissionCategory) *models.Permission {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	permission, err := models.NewPermission(
		id.NewPermissionID(), s.projectID, s.companyID, name, "", category, now,
	)
	s.Require().NoError(err)
	return permission
}

func (s *PermissionHandlerSuite) permissionsPath() string {
	return "/projects/" + s.projectID.String() + "/permissions"
}

func (s *PermissionHandlerSuite) errorBody(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *PermissionHandlerSuite) TestListPermissions() {
	router, mockService := newTestRouter(s.T())
	download := s.permission("download_files", models.CategoryFileOperations)
	update := s.permission("update_project", models.CategoryProjectOperations)

	mockService.EXPECT().
		List(gomock.Any(), s.companyID, s.projectID).
		Return([]*models.Permission{download, update}, nil)

	req := s.authed(httptest.NewRequest(http.MethodGet, s.permissionsPath(), nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	var got []*models.Permission
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Require().Len(got, 2)
	s.Equal(download.ID, got[0].ID)
	s.Equal("download_files", got[0].Name)
	s.Equal(models.CategoryFileOperations, got[0].Category)
	s.Equal(update.ID, got[1].ID)
}

func (s *PermissionHandlerSuite) TestListPermissionsProjectNotFound() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().
		List(gomock.Any(), s.companyID, s.projectID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "Project not found"))

	req := s.authed(httptest.NewRequest(http.MethodGet, s.permissionsPath(), nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusNotFound, w.Code)
	errBody := s.errorBody(w)
	s.Equal("not_found", errBody["error"])
	s.Equal("Project not found", errBody["error_description"])
}

func (s *PermissionHandlerSuite) TestListPermissionsMalformedProjectID() {
	router, _ := newTestRouter(s.T())

	req := s.authed(httptest.NewRequest(http.MethodGet, "/projects/not-a-uuid/permissions", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("invalid_input", s.errorBody(w)["error"])
}

func (s *PermissionHandlerSuite) TestListPermissionsUnauthenticated() {
	router, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodGet, s.permissionsPath(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("unauthorized", s.errorBody(w)["error"])
}
