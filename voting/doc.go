// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting is the ballot credential pipeline: verify a voter with a
one-time code, issue a single-use ballot token, show the ballot, and record
the votes.

# Flow

	RequestChallenge  reg_no, method -> challenge_id    (code sent via Notifier)
	ConfirmChallenge  challenge_id, code -> token        (token returned once)
	RetrieveBallot    token -> open positions            (read-only)
	CastVotes         token, selections -> vote ids      (consumes the token)

A challenge moves from CHALLENGED to CONFIRMED exactly once. Wrong codes
leave it CHALLENGED and count towards a lockout; the voter can always ask
for a fresh challenge, subject to the Throttle.

# Guarantees

  - Only codes and tokens hashed by auth.Hasher reach the Store.
  - Confirmation updates the verification and creates the ballot in one
    transaction. Of two racing confirmations one gets ErrAlreadyConfirmed.
  - A batch of votes and the ballot's consumption commit together or not
    at all. Of two racing casts on one token, one gets ErrTokenAlreadyUsed
    (or ErrDuplicatePositionVote from the ledger's unique constraint).
  - Positions are only shown or accepted while IsOpen.

# Errors

Per-selection failures in CastVotes are *SelectionError values that
unwrap to ErrPositionNotOpen, ErrCandidateNotEligible or
ErrDuplicatePositionVote. ErrInvalidToken is returned for malformed,
unknown and expired tokens alike. ErrUnavailable marks errors the caller
may retry.

Write operations ignore the caller's cancellation but still honour
Config.OpTimeout.
*/
package voting
