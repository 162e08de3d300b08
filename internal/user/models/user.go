package models

import (
	"slices"
	"time"

	id "tenantry/pkg/domain"
)

// User is an account inside a tenant. The ID is supplied by the caller on
// create and never generated. Plaintext secrets never reach this type.
type User struct {
	ID                    id.UserID   `json:"id"`
	TenantID              id.TenantID `json:"tenant_id"`
	RoleID                id.RoleID   `json:"role_id"`
	Type                  AccountType `json:"type"`
	Status                UserStatus  `json:"status"`
	Email                 string      `json:"email"`
	Name                  string      `json:"name"`
	Username              string      `json:"username,omitempty"`
	BasicAuthPasswordHash string      `json:"-"`
	PasswordHash          string      `json:"-"`
	Locale                string      `json:"locale,omitempty"`
	Timezone              string      `json:"timezone,omitempty"`
	Phone                 string      `json:"phone,omitempty"`
	Provider              string      `json:"provider"`
	DeletedAt             *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}

// Associations are the join-table memberships of a user. They are replaced
// wholesale on every write.
type Associations struct {
	WorkspaceIDs []id.WorkspaceID
	GroupIDs     []id.GroupID
}

// Clone returns a deep copy.
func (a Associations) Clone() Associations {
	return Associations{
		WorkspaceIDs: slices.Clone(a.WorkspaceIDs),
		GroupIDs:     slices.Clone(a.GroupIDs),
	}
}

// NewUser returns an unsaved user in tenantID carrying the column defaults.
func NewUser(tenantID id.TenantID) *User {
	return &User{
		TenantID: tenantID,
		Type:     DefaultAccountType,
		Status:   UserStatusActive,
		Provider: DefaultProvider,
	}
}

func (u *User) IsPersisted() bool {
	return !u.CreatedAt.IsZero()
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// SoftDelete marks the user deleted and inactive. Repeating it keeps the first stamp.
func (u *User) SoftDelete(now time.Time) {
	if u.DeletedAt == nil {
		stamp := now
		u.DeletedAt = &stamp
	}
	u.Status = UserStatusInactive
	u.UpdatedAt = now
}

// Fields exposes the castable attributes in their wire representation.
func (u *User) Fields() map[string]any {
	fields := map[string]any{
		"type":     string(u.Type),
		"status":   string(u.Status),
		"email":    u.Email,
		"name":     u.Name,
		"username": u.Username,
		"locale":   u.Locale,
		"timezone": u.Timezone,
		"phone":    u.Phone,
		"provider": u.Provider,
	}
	if !u.ID.IsNil() {
		fields["id"] = u.ID.String()
	}
	if !u.RoleID.IsNil() {
		fields["role_id"] = u.RoleID.String()
	}
	return fields
}
