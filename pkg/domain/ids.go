// Package domain defines the typed identifiers shared across modules. Each
// is a distinct uuid.UUID so a UserID cannot be passed where a TenantID is
// expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "tenantry/pkg/domain-errors"
)

type (
	UserID      uuid.UUID
	TenantID    uuid.UUID
	RoleID      uuid.UUID
	WorkspaceID uuid.UUID
	GroupID     uuid.UUID
)

// ID is satisfied by every identifier in this package.
type ID interface {
	~[16]byte
	String() string
	IsNil() bool
}

// Parse reads a non-nil UUID from s. label names the identifier in the
// error, e.g. "user ID".
func Parse[T ID](s, label string) (T, error) {
	if s == "" {
		return T{}, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	switch {
	case err != nil:
		return T{}, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	case u == uuid.Nil:
		return T{}, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return T(u), nil
}

func ParseUserID(s string) (UserID, error)           { return Parse[UserID](s, "user ID") }
func ParseTenantID(s string) (TenantID, error)       { return Parse[TenantID](s, "tenant ID") }
func ParseRoleID(s string) (RoleID, error)           { return Parse[RoleID](s, "role ID") }
func ParseWorkspaceID(s string) (WorkspaceID, error) { return Parse[WorkspaceID](s, "workspace ID") }
func ParseGroupID(s string) (GroupID, error)         { return Parse[GroupID](s, "group ID") }

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id TenantID) String() string    { return uuid.UUID(id).String() }
func (id RoleID) String() string      { return uuid.UUID(id).String() }
func (id WorkspaceID) String() string { return uuid.UUID(id).String() }
func (id GroupID) String() string     { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id RoleID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id WorkspaceID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id GroupID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets identifiers appear as UUID strings in JSON and logs.
func (id UserID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id TenantID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id RoleID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id WorkspaceID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id GroupID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }

// UnmarshalText accepts any UUID, including the nil UUID; use Parse at trust
// boundaries that must reject it.
func (id *UserID) UnmarshalText(b []byte) error      { return unmarshalText(id, b) }
func (id *TenantID) UnmarshalText(b []byte) error    { return unmarshalText(id, b) }
func (id *RoleID) UnmarshalText(b []byte) error      { return unmarshalText(id, b) }
func (id *WorkspaceID) UnmarshalText(b []byte) error { return unmarshalText(id, b) }
func (id *GroupID) UnmarshalText(b []byte) error     { return unmarshalText(id, b) }

func unmarshalText[T ID](dst *T, b []byte) error {
	var u uuid.UUID
	if err := u.UnmarshalText(b); err != nil {
		return err
	}
	*dst = T(u)
	return nil
}
