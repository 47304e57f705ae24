package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cascade/internal/permission/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/httputil"
	"cascade/pkg/requestcontext"
)

// Service defines the permission operations the handler exposes. The catalog
// is read-only over HTTP; seeding happens inside project lifecycle
// transitions.
type Service interface {
	List(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*models.Permission, error)
}

// Handler serves the per-project permission catalog.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a permission handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts permission endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/projects/{project_id}/permissions", h.HandleList)
}

// HandleList handles GET /projects/{project_id}/permissions requests.
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

	permissions, err := h.service.List(ctx, companyID, projectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, permissions)
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
