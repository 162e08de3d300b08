package service

import (
	"context"

	"tenantry/internal/user/models"
	id "tenantry/pkg/domain"
	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/session"
)

// AccountPolicy decides which of the requested workspaces and groups an
// account type may be associated with. Ineligible ids are dropped.
type AccountPolicy interface {
	EligibleWorkspaces(ctx context.Context, tenantID id.TenantID, requested []id.WorkspaceID) ([]id.WorkspaceID, error)
	EligibleGroups(ctx context.Context, tenantID id.TenantID, requested []id.GroupID) ([]id.GroupID, error)
}

// agentPolicy admits every workspace of the tenant and agent-audience groups.
type agentPolicy struct {
	dir Directory
}

func (p agentPolicy) EligibleWorkspaces(ctx context.Context, tenantID id.TenantID, requested []id.WorkspaceID) ([]id.WorkspaceID, error) {
	return workspaceIDs(ctx, p.dir, tenantID, requested, func(models.Workspace) bool { return true })
}

func (p agentPolicy) EligibleGroups(ctx context.Context, tenantID id.TenantID, requested []id.GroupID) ([]id.GroupID, error) {
	return groupIDs(ctx, p.dir, tenantID, requested, models.AccountTypeAgent)
}

// contactPolicy admits only workspaces that allow contacts and contact-audience groups.
type contactPolicy struct {
	dir Directory
}

func (p contactPolicy) EligibleWorkspaces(ctx context.Context, tenantID id.TenantID, requested []id.WorkspaceID) ([]id.WorkspaceID, error) {
	return workspaceIDs(ctx, p.dir, tenantID, requested, func(w models.Workspace) bool { return w.AllowContacts })
}

func (p contactPolicy) EligibleGroups(ctx context.Context, tenantID id.TenantID, requested []id.GroupID) ([]id.GroupID, error) {
	return groupIDs(ctx, p.dir, tenantID, requested, models.AccountTypeContact)
}

// policyFor selects the association policy for t. Every dispatchable type
// must have a case here; anything else is unsupported.
func policyFor(t models.AccountType, dir Directory) (AccountPolicy, bool) {
	switch t {
	case models.AccountTypeAgent:
		return agentPolicy{dir: dir}, true
	case models.AccountTypeContact:
		return contactPolicy{dir: dir}, true
	default:
		return nil, false
	}
}

func workspaceIDs(ctx context.Context, dir Directory, tenantID id.TenantID, requested []id.WorkspaceID, eligible func(models.Workspace) bool) ([]id.WorkspaceID, error) {
	if len(requested) == 0 {
		return []id.WorkspaceID{}, nil
	}
	found, err := dir.Workspaces(ctx, tenantID, requested)
	if err != nil {
		return nil, err
	}
	out := make([]id.WorkspaceID, 0, len(found))
	seen := make(map[id.WorkspaceID]bool, len(found))
	for _, w := range found {
		if eligible(w) && !seen[w.ID] {
			seen[w.ID] = true
			out = append(out, w.ID)
		}
	}
	return out, nil
}

func groupIDs(ctx context.Context, dir Directory, tenantID id.TenantID, requested []id.GroupID, audience models.AccountType) ([]id.GroupID, error) {
	if len(requested) == 0 {
		return []id.GroupID{}, nil
	}
	found, err := dir.Groups(ctx, tenantID, requested)
	if err != nil {
		return nil, err
	}
	out := make([]id.GroupID, 0, len(found))
	seen := make(map[id.GroupID]bool, len(found))
	for _, g := range found {
		if g.Audience == audience && !seen[g.ID] {
			seen[g.ID] = true
			out = append(out, g.ID)
		}
	}
	return out, nil
}

// CanManageUsers reports whether caller may read or mutate users of its tenant.
func CanManageUsers(caller *session.Caller) bool {
	return caller.IsAgent()
}

// Authorize fails with CodeForbidden unless CanManageUsers holds.
func (s *Service) Authorize(caller *session.Caller) error {
	if CanManageUsers(caller) {
		return nil
	}
	if s.metrics != nil {
		s.metrics.IncrementAuthzDenied()
	}
	return dErrors.New(dErrors.CodeForbidden, "caller may not manage users")
}
