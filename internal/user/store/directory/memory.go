// Package directory stores the roles, workspaces and groups users are
// associated with.
package directory

import (
	"context"
	"sync"

	"tenantry/internal/user/models"
	id "tenantry/pkg/domain"
)

// InMemory is a directory backed by maps, used by tests and the development server.
type InMemory struct {
	mu         sync.RWMutex
	roles      map[id.RoleID]models.Role
	workspaces map[id.WorkspaceID]models.Workspace
	groups     map[id.GroupID]models.Group
}

func NewInMemory() *InMemory {
	return &InMemory{
		roles:      make(map[id.RoleID]models.Role),
		workspaces: make(map[id.WorkspaceID]models.Workspace),
		groups:     make(map[id.GroupID]models.Group),
	}
}

func (s *InMemory) AddRole(_ context.Context, r models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[r.ID] = r
	return nil
}

func (s *InMemory) AddWorkspace(_ context.Context, w models.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[w.ID] = w
	return nil
}

func (s *InMemory) AddGroup(_ context.Context, g models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[g.ID] = g
	return nil
}

// RoleExists reports whether roleID belongs to tenantID, matching the reach
// of the users_role_id_fkey constraint.
func (s *InMemory) RoleExists(_ context.Context, tenantID id.TenantID, roleID id.RoleID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID]
	return ok && r.TenantID == tenantID, nil
}

// Workspaces returns the workspaces of tenantID among ids, in first-request
// order. Unknown ids, repeats and ids of other tenants are skipped.
func (s *InMemory) Workspaces(_ context.Context, tenantID id.TenantID, ids []id.WorkspaceID) ([]models.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Workspace, 0, len(ids))
	seen := make(map[id.WorkspaceID]bool, len(ids))
	for _, wid := range ids {
		if w, ok := s.workspaces[wid]; ok && w.TenantID == tenantID && !seen[wid] {
			seen[wid] = true
			out = append(out, w)
		}
	}
	return out, nil
}

// Groups returns the groups of tenantID among ids, in the order requested.
func (s *InMemory) Groups(_ context.Context, tenantID id.TenantID, ids []id.GroupID) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Group, 0, len(ids))
	seen := make(map[id.GroupID]bool, len(ids))
	for _, gid := range ids {
		if g, ok := s.groups[gid]; ok && g.TenantID == tenantID && !seen[gid] {
			seen[gid] = true
			out = append(out, g)
		}
	}
	return out, nil
}
