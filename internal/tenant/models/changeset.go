package models

import (
	"strings"
	"time"

	"tenantry/pkg/changeset"
)

// Constraint names raised by tenant stores.
const ConstraintTenantName = "tenants_name_key"

const maxTenantNameLength = 128

// Changeset validates attrs against t. The result is not applied until Apply is called.
func Changeset(t *Tenant, attrs map[string]any) *changeset.Changeset {
	cs := changeset.New(map[string]any{
		"name":   t.Name,
		"status": string(t.Status),
		"type":   string(t.Type),
	}).Cast(attrs, "name", "status", "type")

	if name, ok := cs.Change("name"); ok {
		if s, isString := name.(string); isString {
			cs.PutChange("name", strings.TrimSpace(s))
		}
	}

	return cs.
		ValidateRequired("name", "status", "type").
		ValidateLength("name", 0, maxTenantNameLength).
		ValidateInclusion("status", TenantStatuses...).
		ValidateInclusion("type", TenantTypes...).
		UniqueConstraint("name", ConstraintTenantName)
}

// Apply returns a copy of t with the changes of a valid changeset applied.
func Apply(t *Tenant, cs *changeset.Changeset, now time.Time) *Tenant {
	next := *t
	if v, ok := cs.Change("name"); ok {
		next.Name, _ = v.(string)
	}
	if v, ok := cs.Change("type"); ok {
		s, _ := v.(string)
		next.Type = TenantType(s)
	}
	status := next.Status
	if v, ok := cs.Change("status"); ok {
		s, _ := v.(string)
		status = TenantStatus(s)
	}
	next.transition(status, now)
	next.UpdatedAt = now
	return &next
}
