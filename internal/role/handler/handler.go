package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	policyModels "cascade/internal/policy/models"
	"cascade/internal/role/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/httputil"
	"cascade/pkg/requestcontext"
)

// Service defines the role operations the handler exposes.
type Service interface {
	Create(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, name string) (*models.Role, error)
	Rename(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID, name string) (*models.Role, error)
	Delete(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID) error
	Get(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID) (*models.Role, error)
	List(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) ([]*models.Role, error)
	AttachPolicy(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID, policyID id.PolicyID) (*policyModels.Policy, error)
	DetachPolicy(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID, policyID id.PolicyID) error
	ListPolicies(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID, roleID id.RoleID) ([]*policyModels.Policy, error)
}

// Handler wires the project role endpoints, including role-policy links.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a role handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts role endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/projects/{project_id}/roles", h.HandleCreate)
	r.Get("/projects/{project_id}/roles", h.HandleList)
	r.Get("/projects/{project_id}/roles/{role_id}", h.HandleGet)
	r.Patch("/projects/{project_id}/roles/{role_id}", h.HandleRename)
	r.Delete("/projects/{project_id}/roles/{role_id}", h.HandleDelete)
	r.Get("/projects/{project_id}/roles/{role_id}/policies", h.HandleListPolicies)
	r.Post("/projects/{project_id}/roles/{role_id}/policies", h.HandleAttachPolicy)
	r.Delete("/projects/{project_id}/roles/{role_id}/policies/{policy_id}", h.HandleDetachPolicy)
}

// HandleCreate handles POST /projects/{project_id}/roles requests.
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

	req, ok := httputil.DecodeAndPrepare[CreateRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	role, err := h.service.Create(ctx, companyID, projectID, *req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "role creation rejected",
			"request_id", requestID,
			"project_id", projectID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "role created",
		"request_id", requestID,
		"project_id", projectID,
		"role_id", role.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, role)
}

// HandleList handles GET /projects/{project_id}/roles requests.
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

	roles, err := h.service.List(ctx, companyID, projectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, roles)
}

// HandleGet handles GET /projects/{project_id}/roles/{role_id} requests.
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
	roleID, ok := h.roleID(w, r)
	if !ok {
		return
	}

	role, err := h.service.Get(ctx, companyID, projectID, roleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, role)
}

// HandleRename handles PATCH /projects/{project_id}/roles/{role_id} requests.
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
	roleID, ok := h.roleID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	role, err := h.service.Rename(ctx, companyID, projectID, roleID, *req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "role rename rejected",
			"request_id", requestID,
			"project_id", projectID,
			"role_id", roleID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, role)
}

// HandleDelete handles DELETE /projects/{project_id}/roles/{role_id} requests.
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
	roleID, ok := h.roleID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, companyID, projectID, roleID); err != nil {
		h.logger.WarnContext(ctx, "role deletion rejected",
			"request_id", requestID,
			"project_id", projectID,
			"role_id", roleID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListPolicies handles GET /projects/{project_id}/roles/{role_id}/policies
// requests.
func (h *Handler) HandleListPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	roleID, ok := h.roleID(w, r)
	if !ok {
		return
	}

	policies, err := h.service.ListPolicies(ctx, companyID, projectID, roleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, policies)
}

// HandleAttachPolicy handles POST /projects/{project_id}/roles/{role_id}/policies
// requests. The attached policy is echoed back.
func (h *Handler) HandleAttachPolicy(w http.ResponseWriter, r *http.Request) {
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
	roleID, ok := h.roleID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AttachPolicyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	policy, err := h.service.AttachPolicy(ctx, companyID, projectID, roleID, *req.PolicyID)
	if err != nil {
		h.logger.WarnContext(ctx, "policy attach rejected",
			"request_id", requestID,
			"project_id", projectID,
			"role_id", roleID,
			"policy_id", req.PolicyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, policy)
}

// HandleDetachPolicy handles
// DELETE /projects/{project_id}/roles/{role_id}/policies/{policy_id} requests.
func (h *Handler) HandleDetachPolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, _, ok := h.caller(w, ctx)
	if !ok {
		return
	}
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	roleID, ok := h.roleID(w, r)
	if !ok {
		return
	}
	policyID, ok := h.policyID(w, r)
	if !ok {
		return
	}

	if err := h.service.DetachPolicy(ctx, companyID, projectID, roleID, policyID); err != nil {
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

// roleID parses the role path parameter or writes a 400.
func (h *Handler) roleID(w http.ResponseWriter, r *http.Request) (id.RoleID, bool) {
	roleID, err := id.ParseRoleID(chi.URLParam(r, "role_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.RoleID{}, false
	}
	return roleID, true
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
