package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"tenantry/internal/tenant/models"
	"tenantry/pkg/changeset"
	id "tenantry/pkg/domain"
	"tenantry/pkg/platform/sentinel"
	"tenantry/pkg/platform/tx"
)

// PostgresStore persists tenants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, t *models.Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant is required")
	}
	query := `
		INSERT INTO tenants (id, name, status, type, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(t.ID),
		t.Name,
		string(t.Status),
		string(t.Type),
		t.DeletedAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return translateErr(err, "create tenant")
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, t *models.Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant is required")
	}
	query := `
		UPDATE tenants
		SET name = $2, status = $3, type = $4, deleted_at = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(t.ID),
		t.Name,
		string(t.Status),
		string(t.Type),
		t.DeletedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return translateErr(err, "update tenant")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tenant rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// FindByID locks the row when called inside a transaction so concurrent
// modifications of the same tenant serialize.
func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	query := `
		SELECT id, name, status, type, deleted_at, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`
	if _, inTx := tx.From(ctx); inTx {
		query += " FOR UPDATE"
	}
	t, err := scanTenant(tx.Exec(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(tenantID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find tenant by id: %w", err)
	}
	return t, nil
}

type tenantRow interface {
	Scan(dest ...any) error
}

func scanTenant(row tenantRow) (*models.Tenant, error) {
	var t models.Tenant
	var tenantID uuid.UUID
	var status, typ string
	var deletedAt sql.NullTime
	if err := row.Scan(&tenantID, &t.Name, &status, &typ, &deletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = id.TenantID(tenantID)
	t.Status = models.TenantStatus(status)
	t.Type = models.TenantType(typ)
	if deletedAt.Valid {
		stamp := deletedAt.Time
		t.DeletedAt = &stamp
	}
	return &t, nil
}

func translateErr(err error, action string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &changeset.ConstraintViolation{Kind: changeset.Unique, Name: pgErr.ConstraintName, Err: err}
	}
	return fmt.Errorf("%s: %w", action, err)
}
