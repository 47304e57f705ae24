// Package domain defines typed identifiers shared across the service.
//
// Every aggregate gets its own UUID-backed type so that a ProjectID can never
// be passed where a RoleID is expected. Parsing enforces the trust-boundary
// invariant that IDs are valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "cascade/pkg/domain-errors"
)

type (
	// UserID identifies an authenticated user. Users live in the identity
	// service; this service only ever sees their IDs.
	UserID uuid.UUID

	// CompanyID is the tenant boundary. Every record in the store is scoped
	// to exactly one company.
	CompanyID uuid.UUID

	// ProjectID identifies a project aggregate.
	ProjectID uuid.UUID

	// RoleID identifies a project-scoped role.
	RoleID uuid.UUID

	// PolicyID identifies a project-scoped policy.
	PolicyID uuid.UUID

	// PermissionID identifies a catalog permission.
	PermissionID uuid.UUID

	// HistoryID identifies an immutable history entry.
	HistoryID uuid.UUID

	// CustomerID identifies the external customer a project is delivered to.
	CustomerID uuid.UUID
)

// parse converts a string into a typed ID, rejecting empty, malformed and
// nil-UUID inputs with CodeInvalidInput.
func parse[T ~[16]byte](raw string) (T, error) {
	var zero T
	if raw == "" {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return zero, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return zero, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return T(u), nil
}

func ParseUserID(raw string) (UserID, error)             { return parse[UserID](raw) }
func ParseCompanyID(raw string) (CompanyID, error)       { return parse[CompanyID](raw) }
func ParseProjectID(raw string) (ProjectID, error)       { return parse[ProjectID](raw) }
func ParseRoleID(raw string) (RoleID, error)             { return parse[RoleID](raw) }
func ParsePolicyID(raw string) (PolicyID, error)         { return parse[PolicyID](raw) }
func ParsePermissionID(raw string) (PermissionID, error) { return parse[PermissionID](raw) }
func ParseHistoryID(raw string) (HistoryID, error)       { return parse[HistoryID](raw) }
func ParseCustomerID(raw string) (CustomerID, error)     { return parse[CustomerID](raw) }

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id CompanyID) String() string    { return uuid.UUID(id).String() }
func (id ProjectID) String() string    { return uuid.UUID(id).String() }
func (id RoleID) String() string       { return uuid.UUID(id).String() }
func (id PolicyID) String() string     { return uuid.UUID(id).String() }
func (id PermissionID) String() string { return uuid.UUID(id).String() }
func (id HistoryID) String() string    { return uuid.UUID(id).String() }
func (id CustomerID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ProjectID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id RoleID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id PolicyID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id PermissionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id HistoryID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CustomerID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs render as canonical UUID strings in JSON.

func (id UserID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id CompanyID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id ProjectID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id RoleID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id PolicyID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id PermissionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id HistoryID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id CustomerID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CompanyID) UnmarshalText(b []byte) error {
	parsed, err := ParseCompanyID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ProjectID) UnmarshalText(b []byte) error {
	parsed, err := ParseProjectID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RoleID) UnmarshalText(b []byte) error {
	parsed, err := ParseRoleID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *PolicyID) UnmarshalText(b []byte) error {
	parsed, err := ParsePolicyID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *PermissionID) UnmarshalText(b []byte) error {
	parsed, err := ParsePermissionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *HistoryID) UnmarshalText(b []byte) error {
	parsed, err := ParseHistoryID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CustomerID) UnmarshalText(b []byte) error {
	parsed, err := ParseCustomerID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewUserID and friends mint fresh identifiers. Kept as functions rather than
// exposing uuid.New at call sites so stores and tests stay driver-agnostic.

func NewUserID() UserID             { return UserID(uuid.New()) }
func NewCompanyID() CompanyID       { return CompanyID(uuid.New()) }
func NewProjectID() ProjectID       { return ProjectID(uuid.New()) }
func NewRoleID() RoleID             { return RoleID(uuid.New()) }
func NewPolicyID() PolicyID         { return PolicyID(uuid.New()) }
func NewPermissionID() PermissionID { return PermissionID(uuid.New()) }
func NewHistoryID() HistoryID       { return HistoryID(uuid.New()) }
func NewCustomerID() CustomerID     { return CustomerID(uuid.New()) }
