package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cascade/internal/member/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/httputil"
	"cascade/pkg/requestcontext"
)

// Service defines the membership operations the handler exposes.
type Service interface {
	Add(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, userID id.UserID, roleID id.RoleID, actorID id.UserID) (*models.Membership, error)
	ChangeRole(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, userID id.UserID, roleID id.RoleID, actorID id.UserID) (*models.Membership, error)
	Remove(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, userID id.UserID, actorID id.UserID) error
	Get(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, userID id.UserID) (*models.Membership, error)
	List(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*models.Membership, error)
}

// Handler wires the project membership endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a member handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts membership endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/projects/{project_id}/members", h.HandleAdd)
	r.Get("/projects/{project_id}/members", h.HandleList)
	r.Get("/projects/{project_id}/members/{user_id}", h.HandleGet)
	r.Patch("/projects/{project_id}/members/{user_id}", h.HandleChangeRole)
	r.Delete("/projects/{project_id}/members/{user_id}", h.HandleRemove)
}

// HandleAdd handles POST /projects/{project_id}/members requests. Restoring
// a previously removed member answers 201 just like a fresh add.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, actorID, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AddMemberRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	membership, err := h.service.Add(ctx, companyID, projectID, *req.UserID, *req.RoleID, actorID)
	if err != nil {
		h.logger.WarnContext(ctx, "member add rejected",
			"request_id", requestID,
			"project_id", projectID,
			"user_id", req.UserID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "member added",
		"request_id", requestID,
		"project_id", projectID,
		"user_id", membership.UserID,
		"role_id", membership.RoleID,
	)
	httputil.WriteJSON(w, http.StatusCreated, membership)
}

// HandleList handles GET /projects/{project_id}/members requests.
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

	members, err := h.service.List(ctx, companyID, projectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, members)
}

// HandleGet handles GET /projects/{project_id}/members/{user_id} requests.
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
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	membership, err := h.service.Get(ctx, companyID, projectID, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, membership)
}

// HandleChangeRole handles PATCH /projects/{project_id}/members/{user_id}
// requests.
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, actorID, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateMemberRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	membership, err := h.service.ChangeRole(ctx, companyID, projectID, userID, *req.RoleID, actorID)
	if err != nil {
		h.logger.WarnContext(ctx, "member role change rejected",
			"request_id", requestID,
			"project_id", projectID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "member role changed",
		"request_id", requestID,
		"project_id", projectID,
		"user_id", userID,
		"role_id", membership.RoleID,
	)
	httputil.WriteJSON(w, http.StatusOK, membership)
}

// HandleRemove handles DELETE /projects/{project_id}/members/{user_id}
// requests.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, actorID, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(ctx, companyID, projectID, userID, actorID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "member removed",
		"request_id", requestID,
		"project_id", projectID,
		"user_id", userID,
	)
	w.WriteHeader(http.StatusNoContent)
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

// userID parses the member path parameter or writes a 400.
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID, err := id.ParseUserID(chi.URLParam(r, "user_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.UserID{}, false
	}
	return userID, true
}
