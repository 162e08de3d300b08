package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"tenantry/internal/user/models"
	id "tenantry/pkg/domain"
	"tenantry/pkg/platform/tx"
)

// PostgresStore reads and writes the directory tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (s *PostgresStore) AddRole(ctx context.Context, r models.Role) error {
	return s.insert(ctx, "role", psql.Insert("roles").
		Columns("id", "tenant_id", "name").
		Values(uuid.UUID(r.ID), uuid.UUID(r.TenantID), r.Name))
}

func (s *PostgresStore) AddWorkspace(ctx context.Context, w models.Workspace) error {
	return s.insert(ctx, "workspace", psql.Insert("workspaces").
		Columns("id", "tenant_id", "name", "allow_contacts").
		Values(uuid.UUID(w.ID), uuid.UUID(w.TenantID), w.Name, w.AllowContacts))
}

func (s *PostgresStore) AddGroup(ctx context.Context, g models.Group) error {
	return s.insert(ctx, "group", psql.Insert("groups").
		Columns("id", "tenant_id", "name", "audience").
		Values(uuid.UUID(g.ID), uuid.UUID(g.TenantID), g.Name, string(g.Audience)))
}

func (s *PostgresStore) insert(ctx context.Context, kind string, b sq.InsertBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", kind, err)
	}
	if _, err := tx.Exec(ctx, s.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	return nil
}

func (s *PostgresStore) RoleExists(ctx context.Context, tenantID id.TenantID, roleID id.RoleID) (bool, error) {
	var found uuid.UUID
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT id FROM roles WHERE id = $1 AND tenant_id = $2`,
		uuid.UUID(roleID), uuid.UUID(tenantID),
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find role: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) Workspaces(ctx context.Context, tenantID id.TenantID, ids []id.WorkspaceID) ([]models.Workspace, error) {
	if len(ids) == 0 {
		return []models.Workspace{}, nil
	}
	keys := make([]string, len(ids))
	for i, wid := range ids {
		keys[i] = wid.String()
	}
	query, args, err := psql.Select("id", "tenant_id", "name", "allow_contacts").
		From("workspaces").
		Where(sq.Eq{"tenant_id": tenantID.String(), "id": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build workspace query: %w", err)
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workspaces: %w", err)
	}
	defer rows.Close()

	found := make(map[id.WorkspaceID]models.Workspace, len(ids))
	for rows.Next() {
		var w models.Workspace
		var wid, tid uuid.UUID
		if err := rows.Scan(&wid, &tid, &w.Name, &w.AllowContacts); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		w.ID, w.TenantID = id.WorkspaceID(wid), id.TenantID(tid)
		found[w.ID] = w
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}

	out := make([]models.Workspace, 0, len(found))
	for _, wid := range ids {
		if w, ok := found[wid]; ok {
			out = append(out, w)
			delete(found, wid)
		}
	}
	return out, nil
}

func (s *PostgresStore) Groups(ctx context.Context, tenantID id.TenantID, ids []id.GroupID) ([]models.Group, error) {
	if len(ids) == 0 {
		return []models.Group{}, nil
	}
	keys := make([]string, len(ids))
	for i, gid := range ids {
		keys[i] = gid.String()
	}
	query, args, err := psql.Select("id", "tenant_id", "name", "audience").
		From("groups").
		Where(sq.Eq{"tenant_id": tenantID.String(), "id": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build group query: %w", err)
	}
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	found := make(map[id.GroupID]models.Group, len(ids))
	for rows.Next() {
		var g models.Group
		var gid, tid uuid.UUID
		var audience string
		if err := rows.Scan(&gid, &tid, &g.Name, &audience); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		g.ID, g.TenantID, g.Audience = id.GroupID(gid), id.TenantID(tid), models.AccountType(audience)
		found[g.ID] = g
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	out := make([]models.Group, 0, len(found))
	for _, gid := range ids {
		if g, ok := found[gid]; ok {
			out = append(out, g)
			delete(found, gid)
		}
	}
	return out, nil
}
