// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jordancode-cyber/EV-test-app/audit"
	"github.com/Jordancode-cyber/EV-test-app/auth"
	"github.com/Jordancode-cyber/EV-test-app/models"
	"github.com/Jordancode-cyber/EV-test-app/store"
)

// Reasons recorded on verification_failed audit entries
const (
	reasonInvalidCode = "invalid_code"
	reasonExpired     = "expired"
	reasonLocked      = "locked"
)

// ChallengeRequest asks for a one-time code. ClientIP is optional and only
// stored hashed.
type ChallengeRequest struct {
	RegNo    string
	Method   string
	ClientIP string
}

// RequestChallenge issues a one-time code to an eligible voter and returns
// the challenge ID. The code is delivered through the Notifier; a delivery
// failure is logged and the challenge stays valid.
func (s *Service) RequestChallenge(ctx context.Context, req ChallengeRequest) (string, error) {
	regNo := strings.TrimSpace(req.RegNo)
	if regNo == "" {
		return "", fmt.Errorf("%w: reg_no is required", ErrInvalidRequest)
	}
	if !models.ValidMethod(req.Method) {
		return "", fmt.Errorf("%w: unsupported method %q", ErrInvalidRequest, req.Method)
	}

	ctx, cancel := s.opContext(ctx, true)
	defer cancel()

	voter, err := s.store.FindVoterByRegNo(ctx, regNo)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNotEligible
	}
	if err != nil {
		return "", storeFailure("find voter", err)
	}
	if voter.Status != models.VoterEligible {
		slog.Info("challenge refused", "voter_id", voter.ID, "status", voter.Status)
		return "", ErrNotEligible
	}

	allowed, err := s.throttle.Allow(ctx, voter.ID)
	if err != nil {
		return "", storeFailure("check rate limit", err)
	}
	if !allowed {
		slog.Warn("challenge rate limited", "voter_id", voter.ID)
		return "", ErrRateLimited
	}

	code, err := auth.GenerateOTP()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	v := models.Verification{
		ID:       auth.GenerateID(),
		VoterID:  voter.ID,
		Method:   req.Method,
		OTPHash:  s.hasher.HashCode(code),
		IssuedAt: s.now(),
	}
	if req.ClientIP != "" {
		ipHash := s.hasher.HashIP(req.ClientIP)
		v.IPHash = &ipHash
	}

	limit, since := s.throttle.Window()
	err = s.store.CreateVerification(ctx, v, limit, since)
	switch {
	case errors.Is(err, store.ErrLimitExceeded):
		slog.Warn("challenge rate limited", "voter_id", voter.ID)
		return "", ErrRateLimited
	case err != nil:
		return "", storeFailure("create verification", err)
	}

	if err := s.notifier.Send(ctx, voter, req.Method, code); err != nil {
		slog.Warn("failed to deliver verification code",
			"verification_id", v.ID,
			"method", req.Method,
			"error", err,
		)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorType: audit.ActorUser,
		ActorID:   voter.ID,
		Action:    audit.ActionVerificationRequested,
		Entity:    audit.EntityVerification,
		EntityID:  v.ID,
		Payload:   audit.Payload{"voter": voter.ID, "method": req.Method},
	})

	slog.Info("verification challenge issued", "verification_id", v.ID, "voter_id", voter.ID, "method", req.Method)
	return v.ID, nil
}

// ConfirmChallenge checks code against a challenge and, on success, issues
// a ballot. The plaintext ballot token is returned here and nowhere else.
func (s *Service) ConfirmChallenge(ctx context.Context, challengeID, code string) (string, error) {
	challengeID = strings.TrimSpace(challengeID)
	code = strings.TrimSpace(code)
	if !auth.ValidID(challengeID) {
		return "", fmt.Errorf("%w: malformed challenge_id", ErrInvalidRequest)
	}
	if code == "" {
		return "", fmt.Errorf("%w: code is required", ErrInvalidRequest)
	}

	ctx, cancel := s.opContext(ctx, true)
	defer cancel()

	v, err := s.store.GetVerification(ctx, challengeID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", storeFailure("get verification", err)
	}
	if v.VerifiedAt != nil {
		return "", ErrAlreadyConfirmed
	}

	now := s.now()
	if s.cfg.CodeTTL > 0 && now.Sub(v.IssuedAt) > s.cfg.CodeTTL {
		s.recordFailure(ctx, v, reasonExpired)
		return "", ErrInvalidCode
	}

	// Spend an attempt before comparing so parallel guesses share one budget
	err = s.store.ReserveAttempt(ctx, v.ID, s.cfg.MaxCodeAttempts)
	switch {
	case errors.Is(err, store.ErrLimitExceeded):
		s.recordFailure(ctx, v, reasonLocked)
		return "", ErrInvalidCode
	case errors.Is(err, store.ErrConflict):
		return "", ErrAlreadyConfirmed
	case errors.Is(err, store.ErrNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", storeFailure("reserve attempt", err)
	}

	if !s.hasher.MatchCode(code, v.OTPHash) {
		s.recordFailure(ctx, v, reasonInvalidCode)
		return "", ErrInvalidCode
	}

	token, err := auth.GenerateBallotToken()
	if err != nil {
		return "", fmt.Errorf("generate ballot token: %w", err)
	}

	ballot := models.Ballot{
		ID:        auth.GenerateID(),
		TokenHash: s.hasher.HashToken(token),
		IssuedAt:  now,
	}

	err = s.store.ConfirmVerification(ctx, v.ID, now, ballot)
	switch {
	case errors.Is(err, store.ErrConflict):
		return "", ErrAlreadyConfirmed
	case errors.Is(err, store.ErrNotFound):
		return "", ErrNotFound
	case err != nil:
		return "", storeFailure("confirm verification", err)
	}

	s.audit.Record(ctx, audit.Entry{
		ActorType: audit.ActorUser,
		ActorID:   v.VoterID,
		Action:    audit.ActionVerificationConfirmed,
		Entity:    audit.EntityVerification,
		EntityID:  v.ID,
		Payload:   audit.Payload{"method": v.Method},
	})

	slog.Info("ballot issued", "verification_id", v.ID)
	return token, nil
}

func (s *Service) recordFailure(ctx context.Context, v models.Verification, reason string) {
	slog.Info("verification failed", "verification_id", v.ID, "reason", reason)
	s.audit.Record(ctx, audit.Entry{
		ActorType: audit.ActorUser,
		ActorID:   v.VoterID,
		Action:    audit.ActionVerificationFailed,
		Entity:    audit.EntityVerification,
		EntityID:  v.ID,
		Payload:   audit.Payload{"reason": reason},
	})
}
