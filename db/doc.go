// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connections

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

PostgreSQL uses lib/pq. SQLite uses modernc.org/sqlite with a busy timeout,
foreign keys, WAL, and immediate transactions so concurrent writers queue
on the database lock.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - eligible_voter: registration numbers and eligibility status
  - election_position: positions with their voting window
  - candidate: candidates per position with approval status
  - verification: OTP challenges (digests only)
  - ballot: single-use ballot credentials (token digest, consumption time)
  - vote: cast votes, UNIQUE (ballot_id, position_id)
  - audit_log: append-only audit trail

# Relationships

	eligible_voter 1──* verification
	verification   1──? ballot
	ballot         1──* vote
	election_position 1──* candidate
	election_position 1──* vote

# Invariants Enforced by the Schema

  - ballot.token_hash is unique
  - a verification yields at most one ballot
  - verified_at and ballot_token_hash are set together
  - at most one vote per (ballot, position)

Timestamps are stored as Unix milliseconds (BIGINT).
*/
package db
