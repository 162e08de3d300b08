package models

import (
	"time"

	id "tenantry/pkg/domain"
)

// Tenant is the top-level organizational account that owns users and workspaces.
// DeletedAt is derived from Status and is never set directly by callers.
type Tenant struct {
	ID        id.TenantID  `json:"id"`
	Name      string       `json:"name"`
	Status    TenantStatus `json:"status"`
	Type      TenantType   `json:"type"`
	DeletedAt *time.Time   `json:"deleted_at"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewTenant returns an unsaved tenant carrying the defaults that apply when
// the create request leaves a field out.
func NewTenant(tenantID id.TenantID, now time.Time) *Tenant {
	return &Tenant{
		ID:        tenantID,
		Status:    TenantStatusActive,
		Type:      TenantTypeTrial,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t *Tenant) IsDeleted() bool {
	return t.Status == TenantStatusDeleted
}

// transition moves the tenant to next, keeping DeletedAt consistent with the
// status: entering deleted stamps now, leaving it clears the stamp, and
// deleted to deleted keeps the original stamp.
func (t *Tenant) transition(next TenantStatus, now time.Time) {
	switch {
	case next == TenantStatusDeleted && t.DeletedAt == nil:
		stamp := now
		t.DeletedAt = &stamp
	case next != TenantStatusDeleted:
		t.DeletedAt = nil
	}
	t.Status = next
}
