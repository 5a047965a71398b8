// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// sqlitePragmas make writers take the lock at BEGIN and wait for it instead
// of failing with SQLITE_BUSY mid-transaction.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_txlock=immediate"

// Open connects to the configured database and verifies the connection
func Open(dbType, url string) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch dbType {
	case TypePostgres:
		conn, err = sql.Open("postgres", url)
	case TypeSQLite:
		conn, err = sql.Open("sqlite", SQLiteDSN(url))
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// SQLiteDSN appends the connection pragmas to a SQLite path
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + sqlitePragmas
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Timestamps are Unix milliseconds so the schema is identical on both dialects.
const schema = `
-- Eligible voters (managed externally, read-only here)
CREATE TABLE IF NOT EXISTS eligible_voter (
    id TEXT PRIMARY KEY,
    reg_no TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT,
    phone TEXT,
    program TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'ELIGIBLE' CHECK (status IN ('ELIGIBLE', 'BLOCKED')),
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_eligible_voter_status ON eligible_voter(status);

-- Positions
CREATE TABLE IF NOT EXISTS election_position (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    seats INTEGER NOT NULL DEFAULT 1 CHECK (seats > 0),
    opens_at BIGINT NOT NULL,
    closes_at BIGINT NOT NULL,
    created_at BIGINT NOT NULL,
    CHECK (opens_at <= closes_at)
);

CREATE INDEX IF NOT EXISTS idx_position_window ON election_position(opens_at, closes_at);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id TEXT PRIMARY KEY,
    position_id TEXT NOT NULL REFERENCES election_position(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    program TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'SUBMITTED' CHECK (status IN ('SUBMITTED', 'APPROVED', 'REJECTED')),
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidate_position_status ON candidate(position_id, status);

-- Verifications (one OTP challenge each, never deleted)
CREATE TABLE IF NOT EXISTS verification (
    id TEXT PRIMARY KEY,
    voter_id TEXT NOT NULL REFERENCES eligible_voter(id) ON DELETE CASCADE,
    method TEXT NOT NULL CHECK (method IN ('email', 'sms', 'inapp')),
    otp_hash TEXT NOT NULL,
    issued_at BIGINT NOT NULL,
    verified_at BIGINT,
    ballot_token_hash TEXT,
    failed_attempts INTEGER NOT NULL DEFAULT 0,
    ip_hash TEXT,
    CHECK ((verified_at IS NULL) = (ballot_token_hash IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_verification_voter_issued ON verification(voter_id, issued_at);

-- Ballots (single-use voting rights)
CREATE TABLE IF NOT EXISTS ballot (
    id TEXT PRIMARY KEY,
    verification_id TEXT UNIQUE REFERENCES verification(id) ON DELETE SET NULL,
    token_hash TEXT NOT NULL UNIQUE,
    issued_at BIGINT NOT NULL,
    consumed_at BIGINT
);

CREATE INDEX IF NOT EXISTS idx_ballot_issued_consumed ON ballot(issued_at, consumed_at);

-- Votes (append-only ledger)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    ballot_id TEXT NOT NULL REFERENCES ballot(id),
    position_id TEXT NOT NULL REFERENCES election_position(id),
    candidate_id TEXT NOT NULL REFERENCES candidate(id),
    cast_at BIGINT NOT NULL,
    UNIQUE (ballot_id, position_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_position_candidate ON vote(position_id, candidate_id);

-- Audit log
CREATE TABLE IF NOT EXISTS audit_log (
    id TEXT PRIMARY KEY,
    actor_type TEXT NOT NULL CHECK (actor_type IN ('USER', 'SYSTEM')),
    actor_id TEXT,
    action TEXT NOT NULL,
    entity TEXT NOT NULL,
    entity_id TEXT,
    payload TEXT NOT NULL DEFAULT '{}',
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action, entity, created_at);
`
