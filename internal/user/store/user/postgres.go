package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"tenantry/internal/user/models"
	"tenantry/internal/user/query"
	"tenantry/pkg/changeset"
	id "tenantry/pkg/domain"
	"tenantry/pkg/platform/sentinel"
	"tenantry/pkg/platform/tx"
)

// PostgresStore persists users in PostgreSQL. Writes that touch memberships
// must run inside a transaction opened by tx.Postgres so the row and its
// association sets change together.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (s *PostgresStore) FindByID(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error) {
	b := psql.Select(query.Columns...).
		From("users").
		Where(sq.Eq{"users.id": userID.String(), "users.tenant_id": tenantID.String(), "users.deleted_at": nil})
	if _, inTx := tx.From(ctx); inTx {
		b = b.Suffix("FOR UPDATE")
	}
	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}
	u, err := scanUser(tx.Exec(ctx, s.db).QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) Associations(ctx context.Context, userID id.UserID) (models.Associations, error) {
	var assoc models.Associations
	exec := tx.Exec(ctx, s.db)

	rows, err := exec.QueryContext(ctx, `SELECT workspace_id FROM user_workspaces WHERE user_id = $1 ORDER BY workspace_id`, uuid.UUID(userID))
	if err != nil {
		return assoc, fmt.Errorf("query user workspaces: %w", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return assoc, fmt.Errorf("scan user workspaces: %w", err)
	}
	for _, v := range ids {
		assoc.WorkspaceIDs = append(assoc.WorkspaceIDs, id.WorkspaceID(v))
	}

	rows, err = exec.QueryContext(ctx, `SELECT group_id FROM user_groups WHERE user_id = $1 ORDER BY group_id`, uuid.UUID(userID))
	if err != nil {
		return assoc, fmt.Errorf("query user groups: %w", err)
	}
	ids, err = scanIDs(rows)
	if err != nil {
		return assoc, fmt.Errorf("scan user groups: %w", err)
	}
	for _, v := range ids {
		assoc.GroupIDs = append(assoc.GroupIDs, id.GroupID(v))
	}
	return assoc, nil
}

func (s *PostgresStore) Create(ctx context.Context, u *models.User, assoc models.Associations) error {
	if u == nil {
		return fmt.Errorf("user is required")
	}
	stmt, args, err := psql.Insert("users").
		Columns(
			"id", "tenant_id", "role_id", "type", "status", "email", "name", "username",
			"basic_auth_password_hash", "password_hash", "locale", "timezone", "phone",
			"provider", "deleted_at", "created_at", "updated_at",
		).
		Values(
			uuid.UUID(u.ID), uuid.UUID(u.TenantID), uuid.UUID(u.RoleID), string(u.Type), string(u.Status),
			u.Email, u.Name, nullable(u.Username),
			nullable(u.BasicAuthPasswordHash), nullable(u.PasswordHash), nullable(u.Locale), nullable(u.Timezone), nullable(u.Phone),
			u.Provider, u.DeletedAt, u.CreatedAt, u.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build user insert: %w", err)
	}
	if _, err := tx.Exec(ctx, s.db).ExecContext(ctx, stmt, args...); err != nil {
		return translateErr(err, "create user")
	}
	return s.replaceAssociations(ctx, u.ID, assoc)
}

func (s *PostgresStore) Update(ctx context.Context, u *models.User, assoc models.Associations) error {
	if u == nil {
		return fmt.Errorf("user is required")
	}
	stmt, args, err := psql.Update("users").
		SetMap(map[string]any{
			"role_id":                  uuid.UUID(u.RoleID),
			"type":                     string(u.Type),
			"status":                   string(u.Status),
			"email":                    u.Email,
			"name":                     u.Name,
			"username":                 nullable(u.Username),
			"basic_auth_password_hash": nullable(u.BasicAuthPasswordHash),
			"password_hash":            nullable(u.PasswordHash),
			"locale":                   nullable(u.Locale),
			"timezone":                 nullable(u.Timezone),
			"phone":                    nullable(u.Phone),
			"provider":                 u.Provider,
			"deleted_at":               u.DeletedAt,
			"updated_at":               u.UpdatedAt,
		}).
		Where(sq.Eq{"id": u.ID.String(), "tenant_id": u.TenantID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build user update: %w", err)
	}
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, stmt, args...)
	if err != nil {
		return translateErr(err, "update user")
	}
	if err := requireRow(res, "update user"); err != nil {
		return err
	}
	return s.replaceAssociations(ctx, u.ID, assoc)
}

func (s *PostgresStore) SoftDelete(ctx context.Context, u *models.User) error {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET deleted_at = $3, status = $4, updated_at = $5 WHERE id = $1 AND tenant_id = $2`,
		uuid.UUID(u.ID), uuid.UUID(u.TenantID), u.DeletedAt, string(u.Status), u.UpdatedAt,
	)
	if err != nil {
		return translateErr(err, "delete user")
	}
	return requireRow(res, "delete user")
}

func (s *PostgresStore) List(ctx context.Context, tenantID id.TenantID, q query.Query) ([]*models.User, error) {
	stmt, args, err := q.ToSQL(tenantID)
	if err != nil {
		return nil, fmt.Errorf("build user listing: %w", err)
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// replaceAssociations swaps both membership sets for userID.
func (s *PostgresStore) replaceAssociations(ctx context.Context, userID id.UserID, assoc models.Associations) error {
	exec := tx.Exec(ctx, s.db)
	uid := uuid.UUID(userID)

	if _, err := exec.ExecContext(ctx, `DELETE FROM user_workspaces WHERE user_id = $1`, uid); err != nil {
		return fmt.Errorf("clear user workspaces: %w", err)
	}
	if len(assoc.WorkspaceIDs) > 0 {
		b := psql.Insert("user_workspaces").Columns("user_id", "workspace_id")
		for _, wid := range assoc.WorkspaceIDs {
			b = b.Values(uid, uuid.UUID(wid))
		}
		if err := execInsert(ctx, exec, b, "user workspaces"); err != nil {
			return err
		}
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM user_groups WHERE user_id = $1`, uid); err != nil {
		return fmt.Errorf("clear user groups: %w", err)
	}
	if len(assoc.GroupIDs) > 0 {
		b := psql.Insert("user_groups").Columns("user_id", "group_id")
		for _, gid := range assoc.GroupIDs {
			b = b.Values(uid, uuid.UUID(gid))
		}
		if err := execInsert(ctx, exec, b, "user groups"); err != nil {
			return err
		}
	}
	return nil
}

func execInsert(ctx context.Context, exec tx.Executor, b sq.InsertBuilder, what string) error {
	stmt, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", what, err)
	}
	if _, err := exec.ExecContext(ctx, stmt, args...); err != nil {
		return translateErr(err, "insert "+what)
	}
	return nil
}

type userRow interface {
	Scan(dest ...any) error
}

// scanUser reads the columns of query.Columns, in order.
func scanUser(row userRow) (*models.User, error) {
	var u models.User
	var userID, tenantID, roleID uuid.UUID
	var typ, status string
	var username, basicHash, passwordHash, locale, timezone, phone sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&userID, &tenantID, &roleID, &typ, &status, &u.Email, &u.Name, &username,
		&basicHash, &passwordHash, &locale, &timezone, &phone,
		&u.Provider, &deletedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.ID, u.TenantID, u.RoleID = id.UserID(userID), id.TenantID(tenantID), id.RoleID(roleID)
	u.Type, u.Status = models.AccountType(typ), models.UserStatus(status)
	u.Username, u.BasicAuthPasswordHash, u.PasswordHash = username.String, basicHash.String, passwordHash.String
	u.Locale, u.Timezone, u.Phone = locale.String, timezone.String, phone.String
	if deletedAt.Valid {
		stamp := deletedAt.Time
		u.DeletedAt = &stamp
	}
	return &u, nil
}

func scanIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	var out []uuid.UUID
	for rows.Next() {
		var v uuid.UUID
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRow(res sql.Result, action string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", action, err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// translateErr maps unique and foreign key failures onto named constraint violations.
func translateErr(err error, action string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &changeset.ConstraintViolation{Kind: changeset.Unique, Name: pgErr.ConstraintName, Err: err}
		case "23503":
			return &changeset.ConstraintViolation{Kind: changeset.ForeignKey, Name: pgErr.ConstraintName, Err: err}
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}
