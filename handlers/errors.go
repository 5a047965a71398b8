// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Jordancode-cyber/EV-test-app/middleware"
	"github.com/Jordancode-cyber/EV-test-app/voting"
)

// errorKind maps a core error onto an HTTP status and a stable code
type errorKind struct {
	err     error
	status  int
	code    string
	message string // empty means use err.Error()
}

// Authorization and state errors get fixed messages so nothing leaks about
// why a token or code was refused.
var errorKinds = []errorKind{
	{voting.ErrInvalidRequest, http.StatusBadRequest, "invalid_request", ""},
	{voting.ErrNotEligible, http.StatusForbidden, "not_eligible", "Voter is not eligible"},
	{voting.ErrRateLimited, http.StatusTooManyRequests, "rate_limited", "Too many verification requests, try again later"},
	{voting.ErrNotFound, http.StatusNotFound, "not_found", "Challenge not found"},
	{voting.ErrAlreadyConfirmed, http.StatusConflict, "already_confirmed", "Challenge already confirmed"},
	{voting.ErrInvalidCode, http.StatusBadRequest, "invalid_code", "Invalid verification code"},
	{voting.ErrInvalidToken, http.StatusUnauthorized, "invalid_token", "Invalid ballot token"},
	{voting.ErrTokenAlreadyUsed, http.StatusConflict, "token_already_used", "Ballot token already used"},
	{voting.ErrPositionNotOpen, http.StatusUnprocessableEntity, "position_not_open", ""},
	{voting.ErrCandidateNotEligible, http.StatusUnprocessableEntity, "candidate_not_eligible", ""},
	{voting.ErrDuplicatePositionVote, http.StatusUnprocessableEntity, "duplicate_position_vote", ""},
	{voting.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "Service temporarily unavailable, retry shortly"},
}

// writeError renders a core error. Unknown errors are logged and reported
// as a generic 500.
func writeError(w http.ResponseWriter, op string, err error) {
	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}

		message := k.message
		if message == "" {
			message = err.Error()
		}

		switch k.status {
		case http.StatusUnauthorized:
			w.Header().Set("WWW-Authenticate", `Bearer realm="ballot"`)
		case http.StatusServiceUnavailable:
			slog.Warn("store unavailable", "op", op, "error", err)
			w.Header().Set("Retry-After", "1")
		}

		middleware.CodedErrorResponse(w, k.status, k.code, message)
		return
	}

	slog.Error("request failed", "op", op, "error", err)
	middleware.CodedErrorResponse(w, http.StatusInternalServerError, "internal", "Internal server error")
}
