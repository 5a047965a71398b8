// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the durable state behind the voting pipeline: the credential
store (verifications and ballots), the vote ledger, the read-only position and
candidate catalog, and the audit log.

The same SQL runs on PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).
Secrets are stored only as HMAC digests produced by package auth.

# Concurrency

No in-process locks are used. Both state transitions are compare-and-swap
updates inside a transaction:

	UPDATE verification SET verified_at = ..., ballot_token_hash = ...
	WHERE id = ... AND verified_at IS NULL

	UPDATE ballot SET consumed_at = ...
	WHERE id = ... AND consumed_at IS NULL

The caller that changes zero rows lost the race and gets ErrConflict. The
vote table also carries UNIQUE (ballot_id, position_id), which surfaces as
ErrDuplicate if the CAS is ever bypassed.

Two quotas are also enforced inside the write rather than checked ahead of
it. CreateVerification counts a voter's recent challenges while holding the
voter row, and ReserveAttempt spends a code attempt with a conditional
increment before the code is compared:

	UPDATE verification SET failed_attempts = failed_attempts + 1
	WHERE id = ... AND verified_at IS NULL AND failed_attempts < max

# Errors

	ErrNotFound       row does not exist
	ErrConflict       row exists but was already transitioned
	ErrDuplicate      unique constraint violated
	ErrUnavailable    timeout, lost connection, lock contention (retryable)
	ErrLimitExceeded  challenge or attempt quota used up

Driver errors are wrapped so errors.As still reaches *pq.Error or
*sqlite.Error.
*/
package store
