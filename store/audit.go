// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Jordancode-cyber/EV-test-app/audit"
	"github.com/Jordancode-cyber/EV-test-app/auth"
)

// InsertAuditEntry persists one audit entry. It satisfies audit.Sink.
func (s *Store) InsertAuditEntry(ctx context.Context, e audit.Entry) error {
	payload := e.Payload
	if payload == nil {
		payload = audit.Payload{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode audit payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, actor_type, actor_id, action, entity, entity_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, auth.GenerateID(), e.ActorType, optional(e.ActorID), e.Action, e.Entity, optional(e.EntityID), string(raw), toMillis(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", classify(err))
	}
	return nil
}

// ListAudit returns entries for an action, oldest first
func (s *Store) ListAudit(ctx context.Context, action string) ([]audit.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT actor_type, actor_id, action, entity, entity_id, payload, created_at
		FROM audit_log
		WHERE action = $1
		ORDER BY created_at, id
	`, action)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", classify(err))
	}
	defer rows.Close()

	entries := []audit.Entry{}
	for rows.Next() {
		var (
			e                 audit.Entry
			actorID, entityID sql.NullString
			payload           string
			createdAt         int64
		)
		if err := rows.Scan(&e.ActorType, &actorID, &e.Action, &e.Entity, &entityID, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			return nil, fmt.Errorf("decode audit payload: %w", err)
		}
		e.ActorID = actorID.String
		e.EntityID = entityID.String
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", classify(err))
	}
	return entries, nil
}

func optional(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
