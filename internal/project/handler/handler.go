package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cascade/internal/project/models"
	"cascade/internal/project/service"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/httputil"
	"cascade/pkg/requestcontext"
)

// Service defines the lifecycle operations the handler exposes.
type Service interface {
	Create(ctx context.Context, companyID id.CompanyID, actorID id.UserID, params service.CreateParams) (*models.Project, error)
	Update(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, patch *models.Patch, actorID id.UserID) (*models.Project, error)
	Archive(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error)
	Restore(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error)
	SoftDelete(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, actorID id.UserID) error
	Get(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*models.Project, error)
	List(ctx context.Context, companyID id.CompanyID) ([]*models.Project, error)
}

// Handler wires the project CRUD and lifecycle endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a project handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts project endpoints on the router. Paths are registered flat
// so sibling handlers can attach their own subresources under
// /projects/{project_id} without fighting over the subtree.
func (h *Handler) Register(r chi.Router) {
	r.Post("/projects", h.HandleCreate)
	r.Get("/projects", h.HandleList)
	r.Get("/projects/{project_id}", h.HandleGet)
	r.Patch("/projects/{project_id}", h.HandleUpdate)
	r.Delete("/projects/{project_id}", h.HandleDelete)
	r.Post("/projects/{project_id}/archive", h.HandleArchive)
	r.Post("/projects/{project_id}/restore", h.HandleRestore)
}

// HandleCreate handles POST /projects requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, userID, ok := h.caller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateProjectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	project, err := h.service.Create(ctx, companyID, userID, req.ToParams())
	if err != nil {
		h.logger.ErrorContext(ctx, "project creation failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "project created",
		"request_id", requestID,
		"project_id", project.ID,
		"user_id", userID,
	)
	httputil.WriteJSON(w, http.StatusCreated, project)
}

// HandleList handles GET /projects requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}

	projects, err := h.service.List(ctx, companyID)
	if err != nil {
		h.logger.ErrorContext(ctx, "project listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, projects)
}

// HandleGet handles GET /projects/{project_id} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	project, err := h.service.Get(ctx, companyID, projectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, project)
}

// HandleUpdate handles PATCH /projects/{project_id} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	companyID, userID, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateProjectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	project, err := h.service.Update(ctx, companyID, projectID, req.ToPatch(), userID)
	if err != nil {
		h.logger.WarnContext(ctx, "project update rejected",
			"request_id", requestID,
			"project_id", projectID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "project updated",
		"request_id", requestID,
		"project_id", projectID,
		"user_id", userID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, project)
}

// HandleDelete handles DELETE /projects/{project_id} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, userID, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	if err := h.service.SoftDelete(ctx, companyID, projectID, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "project deleted",
		"request_id", requestID,
		"project_id", projectID,
		"user_id", userID,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleArchive handles POST /projects/{project_id}/archive requests.
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	project, err := h.service.Archive(ctx, companyID, projectID)
	if err != nil {
		h.logger.WarnContext(ctx, "project archive rejected",
			"request_id", requestcontext.RequestID(ctx),
			"project_id", projectID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, project)
}

// HandleRestore handles POST /projects/{project_id}/restore requests.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	project, err := h.service.Restore(ctx, companyID, projectID)
	if err != nil {
		h.logger.WarnContext(ctx, "project restore rejected",
			"request_id", requestcontext.RequestID(ctx),
			"project_id", projectID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, project)
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
