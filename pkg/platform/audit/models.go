package audit

import (
	"time"

	id "tenantry/pkg/domain"
)

// Event captures one account-management action. It is transport-agnostic so
// any sink can consume it.
type Event struct {
	Timestamp time.Time
	Action    Action
	TenantID  id.TenantID
	ActorID   id.UserID
	Subject   string
	RequestID string
	// ClientIP is stored anonymized.
	ClientIP  string
	UserAgent string
}

type Action string

const (
	ActionTenantCreated Action = "tenant_created"
	ActionTenantUpdated Action = "tenant_updated"
	ActionTenantDeleted Action = "tenant_deleted"
	ActionTenantEnabled Action = "tenant_enabled"
	ActionUserCreated   Action = "user_created"
	ActionUserUpdated   Action = "user_updated"
	ActionUserDeleted   Action = "user_deleted"
)
