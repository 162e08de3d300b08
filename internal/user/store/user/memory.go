// Package user persists users and their workspace and group memberships.
package user

import (
	"context"
	"slices"
	"strings"
	"sync"

	"tenantry/internal/user/models"
	"tenantry/internal/user/query"
	"tenantry/pkg/changeset"
	id "tenantry/pkg/domain"
	"tenantry/pkg/platform/sentinel"
)

// RoleChecker resolves the role reference the way the (tenant_id, role_id)
// foreign key does.
type RoleChecker interface {
	RoleExists(ctx context.Context, tenantID id.TenantID, roleID id.RoleID) (bool, error)
}

// InMemory stores users in memory for tests and the development server.
// Emails are unique case-insensitively across all tenants, deleted users included.
type InMemory struct {
	mu       sync.RWMutex
	users    map[id.UserID]models.User
	assocs   map[id.UserID]models.Associations
	emailIdx map[string]id.UserID
	roles    RoleChecker
}

// NewInMemory returns an empty store. When roles is nil role references are not checked.
func NewInMemory(roles RoleChecker) *InMemory {
	return &InMemory{
		users:    make(map[id.UserID]models.User),
		assocs:   make(map[id.UserID]models.Associations),
		emailIdx: make(map[string]id.UserID),
		roles:    roles,
	}
}

// FindByID returns a live user of tenantID.
func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok || u.TenantID != tenantID || u.IsDeleted() {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemory) Associations(_ context.Context, userID id.UserID) (models.Associations, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assocs[userID].Clone(), nil
}

func (s *InMemory) Create(ctx context.Context, u *models.User, assoc models.Associations) error {
	if err := s.checkRole(ctx, u.TenantID, u.RoleID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.ID]; exists {
		return violation(changeset.Unique, models.ConstraintPrimary)
	}
	key := strings.ToLower(u.Email)
	if _, exists := s.emailIdx[key]; exists {
		return violation(changeset.Unique, models.ConstraintEmail)
	}
	s.users[u.ID] = *u
	s.assocs[u.ID] = assoc.Clone()
	s.emailIdx[key] = u.ID
	return nil
}

// Update replaces the user row and both association sets.
func (s *InMemory) Update(ctx context.Context, u *models.User, assoc models.Associations) error {
	if err := s.checkRole(ctx, u.TenantID, u.RoleID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[u.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	key := strings.ToLower(u.Email)
	if owner, exists := s.emailIdx[key]; exists && owner != u.ID {
		return violation(changeset.Unique, models.ConstraintEmail)
	}
	delete(s.emailIdx, strings.ToLower(current.Email))
	s.users[u.ID] = *u
	s.assocs[u.ID] = assoc.Clone()
	s.emailIdx[key] = u.ID
	return nil
}

// SoftDelete stores the deletion stamp and status of u. Memberships are kept.
func (s *InMemory) SoftDelete(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[u.ID]
	if !ok || current.TenantID != u.TenantID {
		return sentinel.ErrNotFound
	}
	current.DeletedAt = u.DeletedAt
	current.Status = u.Status
	current.UpdatedAt = u.UpdatedAt
	s.users[u.ID] = current
	return nil
}

// List applies q to the live users of tenantID.
func (s *InMemory) List(_ context.Context, tenantID id.TenantID, q query.Query) ([]*models.User, error) {
	s.mu.RLock()
	matched := make([]*models.User, 0)
	for userID, u := range s.users {
		if u.TenantID != tenantID || u.IsDeleted() {
			continue
		}
		if !q.Filter.Match(&u, s.assocs[userID]) {
			continue
		}
		row := u
		matched = append(matched, &row)
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *models.User) int {
		switch {
		case q.Sort.Less(a, b):
			return -1
		case q.Sort.Less(b, a):
			return 1
		}
		return 0
	})
	start, end := q.Page.Window(len(matched))
	return matched[start:end], nil
}

func (s *InMemory) checkRole(ctx context.Context, tenantID id.TenantID, roleID id.RoleID) error {
	if s.roles == nil {
		return nil
	}
	ok, err := s.roles.RoleExists(ctx, tenantID, roleID)
	if err != nil {
		return err
	}
	if !ok {
		return violation(changeset.ForeignKey, models.ConstraintRole)
	}
	return nil
}

func violation(kind changeset.ConstraintKind, name string) error {
	return &changeset.ConstraintViolation{Kind: kind, Name: name}
}
