// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the EVote API.

# Handler Types

Each handler wraps the voting service:

  - VerificationHandler: One-time code request and confirmation
  - BallotHandler: Ballot retrieval and vote casting

Handlers are created via constructor functions:

	verificationHandler := handlers.NewVerificationHandler(svc)

# Voting Flow

	POST /verify/request-otp → RequestOTP (201, returns challenge_id)
	POST /verify/confirm     → Confirm (200, returns ballot_token once)
	GET  /ballot             → GetBallot (200, open positions)
	POST /vote               → CastVotes (201, returns vote ids)

Ballot operations take the token from "Authorization: Bearer". POST /vote
falls back to a "token" body field only when the header is absent.

# Errors

writeError maps core errors to a status and a stable "code" field:

	400 invalid_request, invalid_code
	401 invalid_token
	403 not_eligible
	404 not_found
	409 already_confirmed, token_already_used
	422 position_not_open, candidate_not_eligible, duplicate_position_vote
	429 rate_limited
	503 unavailable (retryable)
	500 internal

Token and code failures use fixed messages. Selection failures include
the index of the offending selection.
*/
package handlers
