// Package postgres persists audit events in the audit_events table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "tenantry/pkg/domain"
	"tenantry/pkg/platform/audit"
	"tenantry/pkg/platform/tx"
)

// DefaultListLimit caps ListByTenant when no positive limit is given.
const DefaultListLimit = 100

// Store implements audit.Emitter using PostgreSQL.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Emit appends event. It joins the caller's transaction when ctx carries one.
func (s *Store) Emit(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (
			id, timestamp, action, tenant_id, actor_id,
			subject, request_id, client_ip, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var actorID *uuid.UUID
	if !event.ActorID.IsNil() {
		aid := uuid.UUID(event.ActorID)
		actorID = &aid
	}

	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		string(event.Action),
		uuid.UUID(event.TenantID),
		actorID,
		event.Subject,
		event.RequestID,
		event.ClientIP,
		event.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByTenant returns the newest events of tenantID first.
func (s *Store) ListByTenant(ctx context.Context, tenantID id.TenantID, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := `
		SELECT timestamp, action, tenant_id, actor_id, subject, request_id, client_ip, user_agent
		FROM audit_events
		WHERE tenant_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, query, uuid.UUID(tenantID), limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e       audit.Event
			action  string
			tenant  uuid.UUID
			actorID uuid.NullUUID
		)
		if err := rows.Scan(&e.Timestamp, &action, &tenant, &actorID, &e.Subject, &e.RequestID, &e.ClientIP, &e.UserAgent); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		e.TenantID = id.TenantID(tenant)
		if actorID.Valid {
			e.ActorID = id.UserID(actorID.UUID)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
