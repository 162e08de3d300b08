package models

// AccountType selects which association rules apply to a user.
type AccountType string

const (
	AccountTypeAgent   AccountType = "agent"
	AccountTypeContact AccountType = "contact"

	// DefaultAccountType is the column default inherited from the original
	// schema. It is deliberately outside the dispatch set, so a user created
	// without an explicit type fails with an unsupported-type error.
	DefaultAccountType AccountType = "active"
)

// AccountTypes lists the types association dispatch knows how to handle.
var AccountTypes = []string{string(AccountTypeAgent), string(AccountTypeContact)}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

var UserStatuses = []string{
	string(UserStatusActive),
	string(UserStatusInactive),
	string(UserStatusSuspended),
}

const DefaultProvider = "local"

// Constraint names raised by user stores.
const (
	ConstraintEmail   = "users_email_key"
	ConstraintRole    = "users_role_id_fkey"
	ConstraintTenant  = "users_tenant_id_fkey"
	ConstraintPrimary = "users_pkey"
)
