//go:build integration

// Package containers starts throwaway infrastructure for integration tests.
// Containers are started lazily, shared by every suite in the test binary
// and reaped by Ryuk when the process exits.
package containers

import (
	"sync"
	"testing"
)

// Manager owns the shared containers of one test binary.
type Manager struct {
	postgres shared[*PostgresContainer]
}

var manager = sync.OnceValue(func() *Manager { return &Manager{} })

// GetManager returns the process-wide Manager.
func GetManager() *Manager {
	return manager()
}

// GetPostgres returns the shared, migrated Postgres container. A failed start
// is remembered so later suites fail fast instead of retrying.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	pg, err := m.postgres.get(startPostgres)
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}
	return pg
}

// shared memoises the outcome of a single start attempt.
type shared[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (s *shared[T]) get(start func() (T, error)) (T, error) {
	s.once.Do(func() { s.val, s.err = start() })
	return s.val, s.err
}
