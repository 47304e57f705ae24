// Package access implements the RBAC permission-resolution engine. A
// decision walks the chain project -> membership -> role -> policies ->
// permissions, re-reading current visibility at every hop: nothing along the
// chain is cached, so a revoked role or soft-deleted policy takes effect on
// the very next check.
package access

// Decision is the outcome of one authorization check. Exactly one of the
// deny reasons below is set when Allowed is false; RoleName is set as soon
// as the chain reached a valid role, even for denials.
type Decision struct {
	Allowed  bool
	RoleName string
	Reason   string
}

// Deny reasons, one per failure hop of the resolution chain. The project
// reason deliberately covers absence, tenant mismatch and soft-deletion
// alike, so a caller can never probe for projects in other companies.
const (
	ReasonProjectNotFound  = "Project not found"
	ReasonNotAMember       = "User is not a member of the project"
	ReasonNoValidRole      = "No valid role assigned"
	ReasonPermissionDenied = "Permission denied"
	ReasonInvalidCheck     = "Invalid check format"
)

func denied(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Check is one project-scoped authorization query. Fields arrive as raw
// strings from the transport layer; empty or malformed values resolve to
// denials, never to errors.
type Check struct {
	ProjectID string
	Action    string
}

// FileCheck is one file-scoped authorization query. FileID is opaque: it is
// validated for presence, echoed back by the transport layer, and plays no
// part in the decision, which is always project-scoped.
type FileCheck struct {
	FileID    string
	ProjectID string
	Action    string
}

// actionAliases maps the short action names some file-service callers send
// to catalog permission names. Applied at the file-check boundary before an
// action reaches the resolver; the resolver itself only ever sees catalog
// names. Note "manage" maps to a name outside the catalog and therefore can
// never match — the alias list is owned by the callers, not by the engine.
var actionAliases = map[string]string{
	"read":   "read_files",
	"write":  "write_files",
	"manage": "manage_project",
}

func normalizeFileAction(action string) string {
	if alias, ok := actionAliases[action]; ok {
		return alias
	}
	return action
}
