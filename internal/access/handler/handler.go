package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cascade/internal/access"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/httputil"
	"cascade/pkg/requestcontext"
)

// Service defines the batch authorization operations the handler exposes.
type Service interface {
	ResolveBatch(ctx context.Context, companyID id.CompanyID, userID id.UserID, checks []access.Check) ([]access.Decision, error)
	ResolveFileBatch(ctx context.Context, companyID id.CompanyID, userID id.UserID, checks []access.FileCheck) ([]access.Decision, error)
}

// Handler wires the access-check endpoints to the batch facade. These
// endpoints are called by sibling services on behalf of an authenticated
// user, so both identity claims must be present.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an access handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts access-check endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/check-project-access", h.HandleCheckProjectAccess)
	r.Post("/check-file-access", h.HandleCheckFileAccess)
}

// HandleCheckProjectAccess handles POST /check-project-access requests.
func (h *Handler) HandleCheckProjectAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	companyID, userID, ok := h.caller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CheckProjectAccessRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	entries := *req.Checks

	decisions, err := h.service.ResolveBatch(ctx, companyID, userID, req.ToChecks())
	if err != nil {
		h.logger.ErrorContext(ctx, "project access check failed",
			"request_id", requestID,
			"user_id", userID,
			"checks", len(entries),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "project access checked",
		"request_id", requestID,
		"user_id", userID,
		"checks", len(entries),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromProjectDecisions(entries, decisions))
}

// HandleCheckFileAccess handles POST /check-file-access requests.
func (h *Handler) HandleCheckFileAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	companyID, userID, ok := h.caller(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CheckFileAccessRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	entries := *req.Checks

	decisions, err := h.service.ResolveFileBatch(ctx, companyID, userID, req.ToChecks())
	if err != nil {
		h.logger.ErrorContext(ctx, "file access check failed",
			"request_id", requestID,
			"user_id", userID,
			"checks", len(entries),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "file access checked",
		"request_id", requestID,
		"user_id", userID,
		"checks", len(entries),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromFileDecisions(entries, decisions))
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
