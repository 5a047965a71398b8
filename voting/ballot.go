// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Jordancode-cyber/EV-test-app/audit"
	"github.com/Jordancode-cyber/EV-test-app/auth"
	"github.com/Jordancode-cyber/EV-test-app/models"
	"github.com/Jordancode-cyber/EV-test-app/store"
)

// loadBallot resolves a plaintext token to its unconsumed ballot. Malformed,
// unknown and expired tokens all yield ErrInvalidToken.
func (s *Service) loadBallot(ctx context.Context, token string, now time.Time) (models.Ballot, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Ballot{}, ErrInvalidToken
	}

	b, err := s.store.GetBallotByTokenHash(ctx, s.hasher.HashToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return models.Ballot{}, ErrInvalidToken
	}
	if err != nil {
		return models.Ballot{}, storeFailure("get ballot", err)
	}

	if b.ConsumedAt != nil {
		return models.Ballot{}, ErrTokenAlreadyUsed
	}
	if s.cfg.BallotTTL > 0 && now.Sub(b.IssuedAt) > s.cfg.BallotTTL {
		return models.Ballot{}, ErrInvalidToken
	}
	return b, nil
}

// RetrieveBallot returns the positions open right now, each with its
// approved candidates. It does not consume the token.
func (s *Service) RetrieveBallot(ctx context.Context, token string) ([]models.BallotPosition, error) {
	ctx, cancel := s.opContext(ctx, false)
	defer cancel()

	now := s.now()
	b, err := s.loadBallot(ctx, token, now)
	if err != nil {
		return nil, err
	}

	positions, err := s.catalog.ListPositionsOpenAt(ctx, now)
	if err != nil {
		return nil, storeFailure("list open positions", err)
	}

	content := []models.BallotPosition{}
	for _, p := range positions {
		if !IsOpen(p, now) {
			continue
		}

		candidates, err := s.catalog.ListApprovedCandidates(ctx, p.ID)
		if err != nil {
			return nil, storeFailure("list candidates", err)
		}

		bp := models.BallotPosition{
			ID:         p.ID,
			Name:       p.Name,
			Seats:      p.Seats,
			Candidates: make([]models.BallotCandidate, 0, len(candidates)),
		}
		for _, c := range candidates {
			bp.Candidates = append(bp.Candidates, models.BallotCandidate{
				ID:      c.ID,
				Name:    c.Name,
				Program: c.Program,
			})
		}
		content = append(content, bp)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorType: audit.ActorUser,
		Action:    audit.ActionBallotViewed,
		Entity:    audit.EntityBallot,
		EntityID:  b.ID,
		Payload:   audit.Payload{"positions_returned": len(content)},
	})

	return content, nil
}

// CastVotes records one vote per selection and consumes the ballot, all or
// nothing. It returns the new vote IDs in selection order.
func (s *Service) CastVotes(ctx context.Context, token string, selections []models.Selection) ([]string, error) {
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: at least one vote is required", ErrInvalidRequest)
	}
	for i, sel := range selections {
		if strings.TrimSpace(sel.PositionID) == "" || strings.TrimSpace(sel.CandidateID) == "" {
			return nil, fmt.Errorf("%w: vote %d needs position_id and candidate_id", ErrInvalidRequest, i)
		}
	}

	ctx, cancel := s.opContext(ctx, true)
	defer cancel()

	now := s.now()
	b, err := s.loadBallot(ctx, token, now)
	if err != nil {
		return nil, err
	}

	votes := make([]models.Vote, 0, len(selections))
	seen := make(map[string]bool, len(selections))
	for i, sel := range selections {
		if err := s.checkSelection(ctx, sel, now, seen); err != nil {
			var selErr *SelectionError
			if errors.As(err, &selErr) {
				selErr.Index = i
			}
			return nil, err
		}
		seen[sel.PositionID] = true

		votes = append(votes, models.Vote{
			ID:          auth.GenerateID(),
			BallotID:    b.ID,
			PositionID:  sel.PositionID,
			CandidateID: sel.CandidateID,
			CastAt:      now,
		})
	}

	err = s.store.CastBallot(ctx, b.ID, now, votes)
	switch {
	case errors.Is(err, store.ErrConflict):
		slog.Warn("ballot already consumed", "ballot_id", b.ID)
		return nil, ErrTokenAlreadyUsed
	case errors.Is(err, store.ErrDuplicate):
		slog.Warn("duplicate vote rejected by ledger", "ballot_id", b.ID)
		return nil, ErrDuplicatePositionVote
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrInvalidToken
	case err != nil:
		return nil, storeFailure("cast ballot", err)
	}

	ids := make([]string, len(votes))
	for i, v := range votes {
		ids[i] = v.ID
	}

	s.audit.Record(ctx, audit.Entry{
		ActorType: audit.ActorUser,
		Action:    audit.ActionVotesCast,
		Entity:    audit.EntityBallot,
		EntityID:  b.ID,
		Payload:   audit.Payload{"votes": ids},
	})

	slog.Info("votes cast", "ballot_id", b.ID, "votes", len(ids))
	return ids, nil
}

// checkSelection applies the window, candidate and duplicate rules in that
// order. seen holds the positions already selected earlier in the batch.
func (s *Service) checkSelection(ctx context.Context, sel models.Selection, now time.Time, seen map[string]bool) error {
	reject := func(kind error) error {
		return &SelectionError{PositionID: sel.PositionID, CandidateID: sel.CandidateID, Err: kind}
	}

	p, err := s.catalog.GetPosition(ctx, sel.PositionID)
	if errors.Is(err, store.ErrNotFound) {
		return reject(ErrPositionNotOpen)
	}
	if err != nil {
		return storeFailure("get position", err)
	}
	if !IsOpen(p, now) {
		return reject(ErrPositionNotOpen)
	}

	c, err := s.catalog.GetCandidate(ctx, sel.CandidateID)
	if errors.Is(err, store.ErrNotFound) {
		return reject(ErrCandidateNotEligible)
	}
	if err != nil {
		return storeFailure("get candidate", err)
	}
	if c.PositionID != p.ID || c.Status != models.CandidateApproved {
		return reject(ErrCandidateNotEligible)
	}

	if seen[p.ID] {
		return reject(ErrDuplicatePositionVote)
	}
	return nil
}
