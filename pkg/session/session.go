// Package session describes the authenticated caller that every tenant and
// user operation is evaluated against.
package session

import (
	"context"
	"slices"

	id "tenantry/pkg/domain"
)

// Capability is a permission granted to a caller.
type Capability string

const (
	CapabilityManageTenant Capability = "manage_tenant"
)

// Account classes a caller can belong to.
const (
	AccountClassAgent   = "agent"
	AccountClassContact = "contact"
)

// Caller is the consumed session shape: which tenant the caller acts in,
// what they may do, and which account class they belong to.
type Caller struct {
	UserID       id.UserID
	TenantID     id.TenantID
	Capabilities []Capability
	AccountClass string
}

// Can reports whether the caller holds capability c.
func (c *Caller) Can(capability Capability) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Capabilities, capability)
}

// IsAgent reports whether the caller belongs to the agent account class.
func (c *Caller) IsAgent() bool {
	return c != nil && c.AccountClass == AccountClassAgent
}

type contextKeyCaller struct{}

// WithCaller stores the caller in ctx.
func WithCaller(ctx context.Context, caller *Caller) context.Context {
	return context.WithValue(ctx, contextKeyCaller{}, caller)
}

// FromContext returns the caller stored by the auth middleware, or nil.
func FromContext(ctx context.Context) *Caller {
	if c, ok := ctx.Value(contextKeyCaller{}).(*Caller); ok {
		return c
	}
	return nil
}
