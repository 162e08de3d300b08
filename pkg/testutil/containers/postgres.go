//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"tenantry/internal/platform/database"
	id "tenantry/pkg/domain"
)

const postgresImage = "postgres:18-alpine"

// moduleTables lists every application table, children before parents.
var moduleTables = []string{
	"audit_events",
	"user_groups",
	"user_workspaces",
	"users",
	"groups",
	"workspaces",
	"roles",
	"tenants",
}

// PostgresContainer is a running Postgres with the tenantry schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

func startPostgres() (*PostgresContainer, error) {
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("tenantry_test"),
		postgres.WithUsername("tenantry"),
		postgres.WithPassword("tenantry"),
		postgres.WithSQLDriver("pgx"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", postgresImage, err)
	}

	pc := &PostgresContainer{Container: ctr}
	if err := pc.prepare(ctx, ctr); err != nil {
		if pc.DB != nil {
			_ = pc.DB.Close()
		}
		_ = ctr.Terminate(ctx)
		return nil, err
	}
	return pc, nil
}

func (p *PostgresContainer) prepare(ctx context.Context, ctr *postgres.PostgresContainer) error {
	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("connection string: %w", err)
	}
	p.DSN = dsn

	if p.DB, err = sql.Open("pgx", dsn); err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if err := database.Migrate(ctx, p.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// TruncateTables empties the named tables in one statement.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := "TRUNCATE TABLE " + strings.Join(tables, ", ") + " CASCADE"
	if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate %v: %w", tables, err)
	}
	return nil
}

// TruncateModuleTables resets the schema to empty between tests.
func (p *PostgresContainer) TruncateModuleTables(ctx context.Context) error {
	return p.TruncateTables(ctx, moduleTables...)
}

// Exec runs a statement against the test database.
func (p *PostgresContainer) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return p.DB.ExecContext(ctx, query, args...)
}

func (p *PostgresContainer) mustInsert(ctx context.Context, t testing.TB, query string, args ...any) {
	t.Helper()
	if _, err := p.Exec(ctx, query, args...); err != nil {
		t.Fatalf("insert fixture: %v", err)
	}
}

// CreateTestTenant inserts an active trial tenant with a unique name.
func (p *PostgresContainer) CreateTestTenant(ctx context.Context, t testing.TB) id.TenantID {
	t.Helper()
	tid := uuid.New()
	p.mustInsert(ctx, t,
		`INSERT INTO tenants (id, name, status, type, created_at, updated_at)
		 VALUES ($1, $2, 'active', 'trial', NOW(), NOW())`,
		tid, "Tenant "+tid.String())
	return id.TenantID(tid)
}

// CreateTestRole inserts a role owned by tenantID.
func (p *PostgresContainer) CreateTestRole(ctx context.Context, t testing.TB, tenantID id.TenantID) id.RoleID {
	t.Helper()
	rid := uuid.New()
	p.mustInsert(ctx, t,
		`INSERT INTO roles (id, tenant_id, name) VALUES ($1, $2, $3)`,
		rid, uuid.UUID(tenantID), "role-"+rid.String()[:8])
	return id.RoleID(rid)
}

// CreateTestWorkspace inserts a workspace owned by tenantID.
func (p *PostgresContainer) CreateTestWorkspace(ctx context.Context, t testing.TB, tenantID id.TenantID, allowContacts bool) id.WorkspaceID {
	t.Helper()
	wid := uuid.New()
	p.mustInsert(ctx, t,
		`INSERT INTO workspaces (id, tenant_id, name, allow_contacts) VALUES ($1, $2, $3, $4)`,
		wid, uuid.UUID(tenantID), "Workspace "+wid.String(), allowContacts)
	return id.WorkspaceID(wid)
}
