// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Jordancode-cyber/EV-test-app/auth"
	"github.com/Jordancode-cyber/EV-test-app/models"
)

// The records below are owned by external admin tooling. These writers exist
// for fixtures and tests; they never overwrite an existing row.

// InsertVoter adds an eligible voter, generating an ID when empty
func (s *Store) InsertVoter(ctx context.Context, v models.EligibleVoter) (string, error) {
	if v.ID == "" {
		v.ID = auth.GenerateID()
	}
	if v.Status == "" {
		v.Status = models.VoterEligible
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO eligible_voter (id, reg_no, name, email, phone, program, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT DO NOTHING
	`, v.ID, v.RegNo, v.Name, nullString(v.Email), nullString(v.Phone), v.Program, v.Status, toMillis(v.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("insert voter: %w", classify(err))
	}
	return v.ID, nil
}

// InsertPosition adds a position, generating an ID when empty
func (s *Store) InsertPosition(ctx context.Context, p models.Position) (string, error) {
	if p.ID == "" {
		p.ID = auth.GenerateID()
	}
	if p.Seats == 0 {
		p.Seats = 1
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO election_position (id, name, seats, opens_at, closes_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`, p.ID, p.Name, p.Seats, toMillis(p.OpensAt), toMillis(p.ClosesAt), toMillis(p.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("insert position: %w", classify(err))
	}
	return p.ID, nil
}

// InsertCandidate adds a candidate, generating an ID when empty
func (s *Store) InsertCandidate(ctx context.Context, c models.Candidate) (string, error) {
	if c.ID == "" {
		c.ID = auth.GenerateID()
	}
	if c.Status == "" {
		c.Status = models.CandidateSubmitted
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidate (id, position_id, name, program, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`, c.ID, c.PositionID, c.Name, c.Program, c.Status, toMillis(time.Now()))
	if err != nil {
		return "", fmt.Errorf("insert candidate: %w", classify(err))
	}
	return c.ID, nil
}

// Seed loads JSON fixtures (models.SeedData). Re-running it is a no-op for
// records whose IDs already exist.
func (s *Store) Seed(ctx context.Context, r io.Reader) (models.SeedData, error) {
	var data models.SeedData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return models.SeedData{}, fmt.Errorf("decode seed data: %w", err)
	}

	for _, v := range data.Voters {
		if _, err := s.InsertVoter(ctx, v); err != nil {
			return models.SeedData{}, err
		}
	}
	for _, p := range data.Positions {
		if _, err := s.InsertPosition(ctx, p); err != nil {
			return models.SeedData{}, err
		}
	}
	for _, c := range data.Candidates {
		if _, err := s.InsertCandidate(ctx, c); err != nil {
			return models.SeedData{}, err
		}
	}
	return data, nil
}
