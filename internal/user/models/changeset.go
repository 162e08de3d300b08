package models

import (
	"regexp"
	"time"

	"tenantry/pkg/changeset"
	id "tenantry/pkg/domain"
	dErrors "tenantry/pkg/domain-errors"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	maxEmailLength    = 254
	maxNameLength     = 200
	maxUsernameLength = 128
	maxLocaleLength   = 16
	maxPhoneLength    = 32

	// bcrypt ignores input past 72 bytes.
	minPasswordLength = 8
	maxPasswordLength = 72
)

// Plaintext secret fields and the hash fields they derive.
const (
	FieldPassword          = "password"
	FieldBasicAuthPassword = "basic_auth_password"
)

// SecretFields maps each plaintext field to the stored hash field.
var SecretFields = map[string]string{
	FieldPassword:          "password_hash",
	FieldBasicAuthPassword: "basic_auth_password_hash",
}

var castable = []string{
	"type", "status", "email", "name", "role_id", "username",
	FieldBasicAuthPassword, FieldPassword, "locale", "timezone", "phone", "provider",
}

// Changeset casts and validates attrs against u. The id is accepted only for
// a user that has not been persisted yet. Secrets are validated here and
// hashed by the caller; a supplied blank secret fails the length rule.
func Changeset(u *User, attrs map[string]any) *changeset.Changeset {
	permitted := castable
	if !u.IsPersisted() {
		permitted = append([]string{"id"}, castable...)
	}
	cs := changeset.New(u.Fields()).
		KeepBlank(FieldPassword, FieldBasicAuthPassword).
		Cast(attrs, permitted...)

	cs.ValidateRequired("id", "type", "status", "email", "name", "role_id", "provider").
		ValidateFormat("email", emailPattern).
		ValidateLength("email", 0, maxEmailLength).
		ValidateLength("name", 0, maxNameLength).
		ValidateLength("username", 0, maxUsernameLength).
		ValidateLength("locale", 0, maxLocaleLength).
		ValidateLength("phone", 0, maxPhoneLength).
		ValidateLength(FieldPassword, minPasswordLength, maxPasswordLength).
		ValidateLength(FieldBasicAuthPassword, minPasswordLength, maxPasswordLength).
		ValidateInclusion("status", UserStatuses...).
		ValidateChange("id", uuidRule("id")).
		ValidateChange("role_id", uuidRule("role_id")).
		ValidateChange("timezone", timezoneRule)

	if v, ok := cs.Change(FieldBasicAuthPassword); ok && v != nil && cs.FetchString("username") == "" {
		cs.AddError("username", changeset.RuleRequired, "can't be blank when a basic auth password is set")
	}

	return cs.
		UniqueConstraint("id", ConstraintPrimary).
		UniqueConstraint("email", ConstraintEmail).
		ForeignKeyConstraint("role_id", ConstraintRole).
		ForeignKeyConstraint("tenant_id", ConstraintTenant)
}

func uuidRule(field string) func(any) []dErrors.FieldError {
	return func(v any) []dErrors.FieldError {
		s, ok := v.(string)
		if !ok {
			return []dErrors.FieldError{{Field: field, Rule: changeset.RuleCast, Message: "is invalid"}}
		}
		if _, err := id.ParseUserID(s); err != nil {
			return []dErrors.FieldError{{Field: field, Rule: changeset.RuleCast, Message: "is not a valid id"}}
		}
		return nil
	}
}

func timezoneRule(v any) []dErrors.FieldError {
	s, ok := v.(string)
	if !ok {
		return []dErrors.FieldError{{Field: "timezone", Rule: changeset.RuleCast, Message: "is invalid"}}
	}
	if _, err := time.LoadLocation(s); err != nil {
		return []dErrors.FieldError{{Field: "timezone", Rule: changeset.RuleInclusion, Message: "is not a known time zone"}}
	}
	return nil
}

// Apply returns a copy of u with the changes of a valid changeset applied.
// Plaintext secrets are never copied; only their derived hashes are.
func Apply(u *User, cs *changeset.Changeset, now time.Time) *User {
	next := *u
	str := func(field string, dst *string) {
		if v, ok := cs.Change(field); ok {
			*dst, _ = v.(string)
		}
	}
	var typ, status, userID, roleID string
	str("type", &typ)
	str("status", &status)
	str("email", &next.Email)
	str("name", &next.Name)
	str("username", &next.Username)
	str("locale", &next.Locale)
	str("timezone", &next.Timezone)
	str("phone", &next.Phone)
	str("provider", &next.Provider)
	str("password_hash", &next.PasswordHash)
	str("basic_auth_password_hash", &next.BasicAuthPasswordHash)
	str("id", &userID)
	str("role_id", &roleID)

	if typ != "" {
		next.Type = AccountType(typ)
	}
	if status != "" {
		next.Status = UserStatus(status)
	}
	if parsed, err := id.ParseUserID(userID); err == nil {
		next.ID = parsed
	}
	if parsed, err := id.ParseRoleID(roleID); err == nil {
		next.RoleID = parsed
	}
	if !next.IsPersisted() {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	return &next
}
