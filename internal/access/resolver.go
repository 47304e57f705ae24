package access

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cascade/internal/access/metrics"
	memberModels "cascade/internal/member/models"
	permissionModels "cascade/internal/permission/models"
	policyModels "cascade/internal/policy/models"
	projectModels "cascade/internal/project/models"
	roleModels "cascade/internal/role/models"
	id "cascade/pkg/domain"
	dErrors "cascade/pkg/domain-errors"
	"cascade/pkg/platform/sentinel"
)

var tracer = otel.Tracer("cascade/access")

// ProjectStore is the project visibility the resolver needs: a company-scoped
// lookup that treats soft-deleted and foreign-company rows as absent.
type ProjectStore interface {
	FindByID(ctx context.Context, companyID id.CompanyID, projectID id.ProjectID) (*projectModels.Project, error)
}

// MembershipStore resolves the caller's active membership in a project.
type MembershipStore interface {
	FindActive(ctx context.Context, projectID id.ProjectID, userID id.UserID) (*memberModels.Membership, error)
}

// RoleStore resolves the membership's role and its policy attachments.
type RoleStore interface {
	FindActive(ctx context.Context, projectID id.ProjectID, roleID id.RoleID) (*roleModels.Role, error)
	ListPolicyIDs(ctx context.Context, roleID id.RoleID) ([]id.PolicyID, error)
}

// PolicyStore filters policy attachments down to live policies and expands
// them into permission attachments.
type PolicyStore interface {
	ListActiveByIDs(ctx context.Context, ids []id.PolicyID) ([]*policyModels.Policy, error)
	ListPermissionIDs(ctx context.Context, policyID id.PolicyID) ([]id.PermissionID, error)
}

// PermissionStore filters permission attachments down to live permissions.
type PermissionStore interface {
	ListActiveByIDs(ctx context.Context, ids []id.PermissionID) ([]*permissionModels.Permission, error)
}

// Resolver walks the permission chain for one (user, company, project,
// action) tuple. It holds no state between calls and reads every hop
// through the stores, so revocations and soft-deletes take effect on the
// next check without any cache invalidation.
type Resolver struct {
	projects    ProjectStore
	memberships MembershipStore
	roles       RoleStore
	policies    PolicyStore
	permissions PermissionStore

	metrics *metrics.Metrics
	logger  *slog.Logger
}

type ResolverOption func(r *Resolver)

func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithResolverMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver constructs a Resolver over the five chain stores.
func NewResolver(
	projects ProjectStore,
	memberships MembershipStore,
	roles RoleStore,
	policies PolicyStore,
	permissions PermissionStore,
	opts ...ResolverOption,
) *Resolver {
	r := &Resolver{
		projects:    projects,
		memberships: memberships,
		roles:       roles,
		policies:    policies,
		permissions: permissions,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve evaluates one authorization check. Denials caused by the chain
// itself (missing project, no membership, removed role, no matching
// permission) come back as a Decision, never as an error; only store
// failures propagate.
func (r *Resolver) Resolve(ctx context.Context, companyID id.CompanyID, userID id.UserID, projectID id.ProjectID, action string) (Decision, error) {
	ctx, span := tracer.Start(ctx, "access.resolve",
		trace.WithAttributes(
			attribute.String("project_id", projectID.String()),
			attribute.String("action", action),
		),
	)
	defer span.End()

	started := time.Now()
	decision, err := r.resolve(ctx, companyID, userID, projectID, action)
	r.metrics.ObserveResolveDuration(time.Since(started))
	if err != nil {
		span.RecordError(err)
		return Decision{}, err
	}

	r.metrics.RecordDecision(decision.Allowed, decision.Reason)
	span.SetAttributes(attribute.Bool("allowed", decision.Allowed))
	if !decision.Allowed {
		span.SetAttributes(attribute.String("reason", decision.Reason))
		r.logger.DebugContext(ctx, "access denied",
			"project_id", projectID,
			"action", action,
			"reason", decision.Reason,
		)
	}
	return decision, nil
}

// resolve is the short-circuit chain. Each hop re-checks liveness; the first
// broken hop decides the reason.
func (r *Resolver) resolve(ctx context.Context, companyID id.CompanyID, userID id.UserID, projectID id.ProjectID, action string) (Decision, error) {
	if _, err := r.projects.FindByID(ctx, companyID, projectID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return denied(ReasonProjectNotFound), nil
		}
		return Decision{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}

	membership, err := r.memberships.FindActive(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return denied(ReasonNotAMember), nil
		}
		return Decision{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load membership")
	}
	// A membership row written under another company must stay invisible
	// here even though the pair (project, user) matched.
	if membership.CompanyID != companyID {
		return denied(ReasonNotAMember), nil
	}

	role, err := r.roles.FindActive(ctx, projectID, membership.RoleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return denied(ReasonNoValidRole), nil
		}
		return Decision{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
	}

	allowed, err := r.roleGrants(ctx, role, action)
	if err != nil {
		return Decision{}, err
	}
	if !allowed {
		return Decision{Allowed: false, RoleName: role.Name, Reason: ReasonPermissionDenied}, nil
	}
	return Decision{Allowed: true, RoleName: role.Name}, nil
}

// roleGrants reports whether any live policy attached to the role carries a
// live permission named exactly action. Unknown actions simply never match.
func (r *Resolver) roleGrants(ctx context.Context, role *roleModels.Role, action string) (bool, error) {
	policyIDs, err := r.roles.ListPolicyIDs(ctx, role.ID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list role policies")
	}
	if len(policyIDs) == 0 {
		return false, nil
	}

	policies, err := r.policies.ListActiveByIDs(ctx, policyIDs)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policies")
	}

	for _, policy := range policies {
		permissionIDs, err := r.policies.ListPermissionIDs(ctx, policy.ID)
		if err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list policy permissions")
		}
		if len(permissionIDs) == 0 {
			continue
		}

		permissions, err := r.permissions.ListActiveByIDs(ctx, permissionIDs)
		if err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load permissions")
		}
		for _, permission := range permissions {
			if permission.Name == action {
				return true, nil
			}
		}
	}
	return false, nil
}
