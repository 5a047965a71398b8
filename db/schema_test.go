// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSQLiteDSN(t *testing.T) {
	testCases := []struct {
		name   string
		path   string
		prefix string
	}{
		{"plain path", "evote.db", "evote.db?"},
		{"path with query", "file:evote.db?mode=rwc", "file:evote.db?mode=rwc&"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dsn := SQLiteDSN(tc.path)
			if !strings.HasPrefix(dsn, tc.prefix) {
				t.Errorf("Expected prefix '%s', got '%s'", tc.prefix, dsn)
			}
			if !strings.Contains(dsn, "_txlock=immediate") {
				t.Error("Expected immediate transactions")
			}
			if !strings.Contains(dsn, "foreign_keys(1)") {
				t.Error("Expected foreign keys enabled")
			}
		})
	}
}

func TestOpen_UnsupportedType(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("Expected error for unsupported database type")
	}
}

func TestCreateSchema(t *testing.T) {
	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	// Safe to run twice
	for i := 0; i < 2; i++ {
		if err := CreateSchema(conn); err != nil {
			t.Fatalf("CreateSchema run %d failed: %v", i+1, err)
		}
	}

	for _, table := range []string{"eligible_voter", "election_position", "candidate", "verification", "ballot", "vote", "audit_log"} {
		var name string
		err := conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s: %v", table, err)
		}
	}
}

func TestSchemaConstraints(t *testing.T) {
	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "constraints.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}

	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := conn.Exec(query, args...); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}

	mustExec(`INSERT INTO eligible_voter (id, reg_no, name, created_at) VALUES ('v1', 'R1', 'Ann', 0)`)
	mustExec(`INSERT INTO election_position (id, name, opens_at, closes_at, created_at) VALUES ('p1', 'Chair', 0, 10, 0)`)
	mustExec(`INSERT INTO candidate (id, position_id, name, status, created_at) VALUES ('c1', 'p1', 'Cat', 'APPROVED', 0)`)
	mustExec(`INSERT INTO ballot (id, token_hash, issued_at) VALUES ('b1', 'h1', 0)`)
	mustExec(`INSERT INTO vote (id, ballot_id, position_id, candidate_id, cast_at) VALUES ('x1', 'b1', 'p1', 'c1', 0)`)

	testCases := []struct {
		name  string
		query string
	}{
		{"second vote for the same position", `INSERT INTO vote (id, ballot_id, position_id, candidate_id, cast_at) VALUES ('x2', 'b1', 'p1', 'c1', 0)`},
		{"reused token hash", `INSERT INTO ballot (id, token_hash, issued_at) VALUES ('b2', 'h1', 0)`},
		{"window closes before it opens", `INSERT INTO election_position (id, name, opens_at, closes_at, created_at) VALUES ('p2', 'Bad', 10, 0, 0)`},
		{"verified without token", `INSERT INTO verification (id, voter_id, method, otp_hash, issued_at, verified_at) VALUES ('ve1', 'v1', 'email', 'h', 0, 5)`},
		{"unknown method", `INSERT INTO verification (id, voter_id, method, otp_hash, issued_at) VALUES ('ve2', 'v1', 'fax', 'h', 0)`},
		{"vote for unknown ballot", `INSERT INTO vote (id, ballot_id, position_id, candidate_id, cast_at) VALUES ('x3', 'nope', 'p1', 'c1', 0)`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := conn.Exec(tc.query); err == nil {
				t.Error("Expected constraint violation")
			}
		})
	}
}
