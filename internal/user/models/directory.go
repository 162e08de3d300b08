package models

import id "tenantry/pkg/domain"

type Role struct {
	ID       id.RoleID   `json:"id"`
	TenantID id.TenantID `json:"tenant_id"`
	Name     string      `json:"name"`
}

// Workspace is a collaborative grouping. Contacts may only join workspaces
// that allow them.
type Workspace struct {
	ID            id.WorkspaceID `json:"id"`
	TenantID      id.TenantID    `json:"tenant_id"`
	Name          string         `json:"name"`
	AllowContacts bool           `json:"allow_contacts"`
}

// Group is a secondary membership scoped to one account audience.
type Group struct {
	ID       id.GroupID  `json:"id"`
	TenantID id.TenantID `json:"tenant_id"`
	Name     string      `json:"name"`
	Audience AccountType `json:"audience"`
}
