package tenant

import (
	"context"
	"strings"
	"sync"

	"tenantry/internal/tenant/models"
	"tenantry/pkg/changeset"
	id "tenantry/pkg/domain"
	"tenantry/pkg/platform/sentinel"
)

// InMemory stores tenants in memory for tests and the development server.
type InMemory struct {
	mu      sync.RWMutex
	tenants map[id.TenantID]models.Tenant
	nameIdx map[string]id.TenantID
}

func NewInMemory() *InMemory {
	return &InMemory{
		tenants: make(map[id.TenantID]models.Tenant),
		nameIdx: make(map[string]id.TenantID),
	}
}

// Create inserts t. Names are unique case-insensitively.
func (s *InMemory) Create(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(t.Name)
	if _, exists := s.nameIdx[key]; exists {
		return nameTaken()
	}
	s.tenants[t.ID] = *t
	s.nameIdx[key] = t.ID
	return nil
}

func (s *InMemory) Update(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tenants[t.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	key := strings.ToLower(t.Name)
	if owner, exists := s.nameIdx[key]; exists && owner != t.ID {
		return nameTaken()
	}
	delete(s.nameIdx, strings.ToLower(current.Name))
	s.tenants[t.ID] = *t
	s.nameIdx[key] = t.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tenants[tenantID]; ok {
		return &t, nil
	}
	return nil, sentinel.ErrNotFound
}

func nameTaken() error {
	return &changeset.ConstraintViolation{Kind: changeset.Unique, Name: models.ConstraintTenantName}
}
