package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cascade/internal/history/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/httputil"
	"cascade/pkg/requestcontext"
)

// Service defines the history operations the handler exposes. History is
// read-only over HTTP; entries are recorded by the lifecycle services.
type Service interface {
	ListByProject(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, limit, offset int) ([]*models.Entry, error)
}

// ProjectChecker confirms the project ever existed in the caller's company.
// History outlives the project's soft-deletion, so the check deliberately
// ignores the removed flag.
type ProjectChecker interface {
	ExistsAnyState(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) error
}

// Handler serves the project change history.
type Handler struct {
	service  Service
	projects ProjectChecker
	logger   *slog.Logger
}

// New constructs a history handler.
func New(service Service, projects ProjectChecker, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		projects: projects,
		logger:   logger,
	}
}

// Register mounts history endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/projects/{project_id}/history", h.HandleList)
}

// HandleList handles GET /projects/{project_id}/history requests. Entries
// come back newest first; limit and offset query parameters page through
// long histories.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	limit, ok := h.queryInt(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := h.queryInt(w, r, "offset")
	if !ok {
		return
	}

	if err := h.projects.ExistsAnyState(ctx, companyID, projectID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.ListByProject(ctx, companyID, projectID, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, entries)
}

// caller extracts the authenticated identity pair or writes a 401.
func (h *Handler) caller(w http.ResponseWriter, ctx context.Context) (id.CompanyID, id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	companyID := requestcontext.CompanyID(ctx)
	if userID.IsNil() || companyID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.CompanyID{}, id.UserID{}, false
	}
	return companyID, userID, true
}

// projectID parses the path parameter or writes a 400.
func (h *Handler) projectID(w http.ResponseWriter, r *http.Request) (id.ProjectID, bool) {
	projectID, err := id.ParseProjectID(chi.URLParam(r, "project_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ProjectID{}, false
	}
	return projectID, true
}

// queryInt parses an optional integer query parameter or writes a 400.
// A missing parameter comes back as zero, which the service treats as
// "use the default".
func (h *Handler) queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be an integer", name))
		return 0, false
	}
	return value, true
}
