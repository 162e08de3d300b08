package models

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusDeleted   TenantStatus = "deleted"
	TenantStatusSuspended TenantStatus = "suspended"
)

// TenantStatuses lists every accepted status.
var TenantStatuses = []string{
	string(TenantStatusActive),
	string(TenantStatusDeleted),
	string(TenantStatusSuspended),
}

type TenantType string

const (
	TenantTypeBasic      TenantType = "basic"
	TenantTypeEnterprise TenantType = "enterprise"
	TenantTypePrivate    TenantType = "private"
	TenantTypeTrial      TenantType = "trial"
)

var TenantTypes = []string{
	string(TenantTypeBasic),
	string(TenantTypeEnterprise),
	string(TenantTypePrivate),
	string(TenantTypeTrial),
}
