package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	permissionModels "cascade/internal/permission/models"
	"cascade/internal/policy/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/httputil"
	"cascade/pkg/requestcontext"
)

// Service defines the policy operations the handler exposes.
type Service interface {
	Create(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, name string) (*models.Policy, error)
	Rename(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID, name string) (*models.Policy, error)
	Delete(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID) error
	Get(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID) (*models.Policy, error)
	List(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*models.Policy, error)
	AttachPermission(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID, permissionID id.PermissionID) (*permissionModels.Permission, error)
	DetachPermission(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID, permissionID id.PermissionID) error
	ListPermissions(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, policyID id.PolicyID) ([]*permissionModels.Permission, error)
}

// Handler wires the project policy endpoints, including policy-permission
// links.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a policy handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts policy endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/projects/{project_id}/policies", h.HandleCreate)
	r.Get("/projects/{project_id}/policies", h.HandleList)
	r.Get("/projects/{project_id}/policies/{policy_id}", h.HandleGet)
	r.Patch("/projects/{project_id}/policies/{policy_id}", h.HandleRename)
	r.Delete("/projects/{project_id}/policies/{policy_id}", h.HandleDelete)
	r.Get("/projects/{project_id}/policies/{policy_id}/permissions", h.HandleListPermissions)
	r.Post("/projects/{project_id}/policies/{policy_id}/permissions", h.HandleAttachPermission)
	r.Delete("/projects/{project_id}/policies/{policy_id}/permissions/{permission_id}", h.HandleDetachPermission)
}

// HandleCreate handles POST /projects/{project_id}/policies requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreatePolicyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	policy, err := h.service.Create(ctx, companyID, projectID, *req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "policy creation rejected",
			"request_id", requestID,
			"project_id", projectID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "policy created",
		"request_id", requestID,
		"project_id", projectID,
		"policy_id", policy.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, policy)
}

// HandleList handles GET /projects/{project_id}/policies requests.
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

	policies, err := h.service.List(ctx, companyID, projectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, policies)
}

// HandleGet handles GET /projects/{project_id}/policies/{policy_id} requests.
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
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}

	policy, err := h.service.Get(ctx, companyID, projectID, policyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, policy)
}

// HandleRename handles PATCH /projects/{project_id}/policies/{policy_id}
// requests.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdatePolicyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	policy, err := h.service.Rename(ctx, companyID, projectID, policyID, *req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "policy rename rejected",
			"request_id", requestID,
			"project_id", projectID,
			"policy_id", policyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, policy)
}

// HandleDelete handles DELETE /projects/{project_id}/policies/{policy_id}
// requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, companyID, projectID, policyID); err != nil {
		h.logger.WarnContext(ctx, "policy deletion rejected",
			"request_id", requestID,
			"project_id", projectID,
			"policy_id", policyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListPermissions handles
// GET /projects/{project_id}/policies/{policy_id}/permissions requests.
func (h *Handler) HandleListPermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}

	permissions, err := h.service.ListPermissions(ctx, companyID, projectID, policyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, permissions)
}

// HandleAttachPermission handles
// POST /projects/{project_id}/policies/{policy_id}/permissions requests. The
// attached permission is echoed back.
func (h *Handler) HandleAttachPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AttachPermissionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	permission, err := h.service.AttachPermission(ctx, companyID, projectID, policyID, *req.PermissionID)
	if err != nil {
		h.logger.WarnContext(ctx, "permission attach rejected",
			"request_id", requestID,
			"project_id", projectID,
			"policy_id", policyID,
			"permission_id", req.PermissionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, permission)
}

// HandleDetachPermission handles
// DELETE /projects/{project_id}/policies/{policy_id}/permissions/{permission_id}
// requests.
func (h *Handler) HandleDetachPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}
	permissionID, ok := h.permissionID(w, r)
	if !ok {
		return
	}

	if err := h.service.DetachPermission(ctx, companyID, projectID, policyID, permissionID); err != nil {
		httputil.WriteError(w, err)
		return
	}

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

// policyID parses the policy path parameter or writes a 400.
func (h *Handler) policyID(w http.ResponseWriter, r *http.Request) (id.PolicyID, bool) {
	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policy_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.PolicyID{}, false
	}
	return policyID, true
}

// permissionID parses the permission path parameter or writes a 400.
func (h *Handler) permissionID(w http.ResponseWriter, r *http.Request) (id.PermissionID, bool) {
	permissionID, err := id.ParsePermissionID(chi.URLParam(r, "permission_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.PermissionID{}, false
	}
	return permissionID, true
}
