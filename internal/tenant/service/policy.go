package service

import (
	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/session"
)

// CanManageTenant reports whether caller may read or modify its own tenant:
// it must hold the manage-tenant capability and belong to the agent class.
func CanManageTenant(caller *session.Caller) bool {
	return caller.Can(session.CapabilityManageTenant) && caller.IsAgent()
}

// Authorize fails with CodeForbidden unless CanManageTenant holds.
func (s *Service) Authorize(caller *session.Caller) error {
	if CanManageTenant(caller) {
		return nil
	}
	if s.metrics != nil {
		s.metrics.IncrementAuthzDenied()
	}
	return dErrors.New(dErrors.CodeForbidden, "caller may not manage this tenant")
}
