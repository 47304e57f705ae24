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

	"cascade/internal/history/handler/mocks"
	"cascade/internal/history/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/history-mocks.go -package=mocks
type HistoryHandlerSuite struct {
	suite.Suite
	companyID id.CompanyID
	userID    id.UserID
	projectID id.ProjectID
}

func (s *HistoryHandlerSuite) SetupSuite() {
	s.companyID = id.NewCompanyID()
	s.userID = id.NewUserID()
	s.projectID = id.NewProjectID()
}

func TestHistoryHandlerSuite(t *testing.T) {
	suite.Run(t, new(HistoryHandlerSuite))
}

// newTestRouter mounts the handler on a real router so path parameters
// resolve the same way they do in production.
func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService, *mocks.MockProjectChecker) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	mockProjects := mocks.NewMockProjectChecker(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, mockProjects, logger).Register(r)
	return r, mockService, mockProjects
}

// authed stamps the identity claims the middleware would normally attach.
func (s *HistoryHandlerSuite) authed(req *http.Request) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), s.userID)
	ctx = requestcontext.WithCompanyID(ctx, s.companyID)
	return req.WithContext(ctx)
}

func (s *HistoryHandlerSuite) entry(action models.Action) *models.Entry {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entry, err := models.NewEntry(id.NewHistoryID(), s.projectID, s.companyID, action, s.userID, now)
	s.Require().NoError(err)
	return entry
}

func (s *HistoryHandlerSuite) historyPath() string {
	return "/projects/" + s.projectID.String() + "/history"
}

func (s *HistoryHandlerSuite) errorBody(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func (s *HistoryHandlerSuite) TestListHistory() {
	router, mockService, mockProjects := newTestRouter(s.T())
	statusChange := s.entry(models.ActionStatusChanged).WithField("status", "draft", "initialized")
	created := s.entry(models.ActionCreated)

	mockProjects.EXPECT().
		ExistsAnyState(gomock.Any(), s.companyID, s.projectID).
		Return(nil)
	mockService.EXPECT().
		ListByProject(gomock.Any(), s.companyID, s.projectID, 0, 0).
		Return([]*models.Entry{statusChange, created}, nil)

	req := s.authed(httptest.NewRequest(http.MethodGet, s.historyPath(), nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	var got []*models.Entry
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Require().Len(got, 2)
	s.Equal(models.ActionStatusChanged, got[0].Action)
	s.Equal("status", got[0].FieldName)
	s.Equal("draft", got[0].OldValue)
	s.Equal("initialized", got[0].NewValue)
	s.Equal(models.ActionCreated, got[1].Action)
}

func (s *HistoryHandlerSuite) TestListHistoryPagination() {
	router, mockService, mockProjects := newTestRouter(s.T())

	mockProjects.EXPECT().
		ExistsAnyState(gomock.Any(), s.companyID, s.projectID).
		Return(nil)
	mockService.EXPECT().
		ListByProject(gomock.Any(), s.companyID, s.projectID, 10, 20).
		Return([]*models.Entry{}, nil)

	req := s.authed(httptest.NewRequest(http.MethodGet, s.historyPath()+"?limit=10&offset=20", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *HistoryHandlerSuite) TestListHistoryBadLimit() {
	router, _, _ := newTestRouter(s.T())

	req := s.authed(httptest.NewRequest(http.MethodGet, s.historyPath()+"?limit=ten", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	errBody := s.errorBody(w)
	s.Equal("invalid_input", errBody["error"])
	s.Equal("limit must be an integer", errBody["error_description"])
}

func (s *HistoryHandlerSuite) TestListHistoryProjectNotFound() {
	router, _, mockProjects := newTestRouter(s.T())

	mockProjects.EXPECT().
		ExistsAnyState(gomock.Any(), s.companyID, s.projectID).
		Return(dErrors.New(dErrors.CodeNotFound, "Project not found"))

	req := s.authed(httptest.NewRequest(http.MethodGet, s.historyPath(), nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Project not found", s.errorBody(w)["error_description"])
}

func (s *HistoryHandlerSuite) TestListHistoryMalformedProjectID() {
	router, _, _ := newTestRouter(s.T())

	req := s.authed(httptest.NewRequest(http.MethodGet, "/projects/not-a-uuid/history", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("invalid_input", s.errorBody(w)["error"])
}

func (s *HistoryHandlerSuite) TestListHistoryUnauthenticated() {
	router, _, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodGet, s.historyPath(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("unauthorized", s.errorBody(w)["error"])
}
