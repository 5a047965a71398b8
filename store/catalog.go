// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Jordancode-cyber/EV-test-app/models"
)

const positionColumns = `id, name, seats, opens_at, closes_at, created_at`

func scanPosition(scan func(...any) error) (models.Position, error) {
	var (
		p                            models.Position
		opensAt, closesAt, createdAt int64
	)
	if err := scan(&p.ID, &p.Name, &p.Seats, &opensAt, &closesAt, &createdAt); err != nil {
		return models.Position{}, err
	}
	p.OpensAt = fromMillis(opensAt)
	p.ClosesAt = fromMillis(closesAt)
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}

// GetPosition loads a position by ID
func (s *Store) GetPosition(ctx context.Context, id string) (models.Position, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+positionColumns+` FROM election_position WHERE id = $1`, id)
	p, err := scanPosition(row.Scan)
	if err == sql.ErrNoRows {
		return models.Position{}, ErrNotFound
	}
	if err != nil {
		return models.Position{}, fmt.Errorf("query position: %w", classify(err))
	}
	return p, nil
}

// ListPositionsOpenAt returns positions whose window contains now, by name
func (s *Store) ListPositionsOpenAt(ctx context.Context, now time.Time) ([]models.Position, error) {
	ms := toMillis(now)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+positionColumns+`
		FROM election_position
		WHERE opens_at <= $1 AND closes_at >= $2
		ORDER BY name, id
	`, ms, ms)
	if err != nil {
		return nil, fmt.Errorf("query open positions: %w", classify(err))
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		p, err := scanPosition(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate positions: %w", classify(err))
	}
	return positions, nil
}

// GetCandidate loads a candidate by ID
func (s *Store) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	var c models.Candidate
	err := s.db.QueryRowContext(ctx, `
		SELECT id, position_id, name, program, status
		FROM candidate
		WHERE id = $1
	`, id).Scan(&c.ID, &c.PositionID, &c.Name, &c.Program, &c.Status)

	if err == sql.ErrNoRows {
		return models.Candidate{}, ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("query candidate: %w", classify(err))
	}
	return c, nil
}

// ListApprovedCandidates returns the APPROVED candidates of a position, by name
func (s *Store) ListApprovedCandidates(ctx context.Context, positionID string) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, position_id, name, program, status
		FROM candidate
		WHERE position_id = $1 AND status = $2
		ORDER BY name, id
	`, positionID, models.CandidateApproved)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", classify(err))
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.PositionID, &c.Name, &c.Program, &c.Status); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", classify(err))
	}
	return candidates, nil
}
