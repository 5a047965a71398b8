// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Jordancode-cyber/EV-test-app/auth"
	"github.com/Jordancode-cyber/EV-test-app/cliparse"
	"github.com/Jordancode-cyber/EV-test-app/db"
	"github.com/Jordancode-cyber/EV-test-app/models"
)

// TestHashSecret is the HMAC master secret used by test configs
const TestHashSecret = "test-hash-secret"

// SetupTestDB creates a fresh SQLite database file with the full schema.
// The file lives in a per-test temp dir and is closed on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "evote.db")
	conn, err := db.Open(db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     "evote-test.db",
		DatabaseType:    cliparse.DatabaseSQLite,
		HashSecret:      TestHashSecret,
		LogFormat:       "text",
		Notifier:        cliparse.NotifierDiscard,
		CodeTTL:         10 * time.Minute,
		MaxCodeAttempts: 5,
		ChallengeLimit:  5,
		ChallengeWindow: time.Hour,
		OpTimeout:       5 * time.Second,
		AuditBuffer:     64,
	}
}

// CreateTestVoter inserts a voter and returns its ID
// status should be models.VoterEligible or models.VoterBlocked
func CreateTestVoter(t *testing.T, db *sql.DB, regNo, status string) string {
	t.Helper()

	voterID := auth.GenerateID()
	email := regNo + "@students.example.edu"
	_, err := db.Exec(`
		INSERT INTO eligible_voter (id, reg_no, name, email, program, status, created_at)
		VALUES ($1, $2, $3, $4, 'BSc Computer Science', $5, $6)
	`, voterID, regNo, "Voter "+regNo, email, status, time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterID
}

// CreateTestPosition inserts a single-seat position with the given window
func CreateTestPosition(t *testing.T, db *sql.DB, name string, opensAt, closesAt time.Time) string {
	t.Helper()

	positionID := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO election_position (id, name, seats, opens_at, closes_at, created_at)
		VALUES ($1, $2, 1, $3, $4, $5)
	`, positionID, name, opensAt.UnixMilli(), closesAt.UnixMilli(), time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return positionID
}

// CreateOpenPosition inserts a position whose window spans the next day
func CreateOpenPosition(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	now := time.Now()
	return CreateTestPosition(t, db, name, now.Add(-time.Hour), now.Add(24*time.Hour))
}

// CreateTestCandidate inserts a candidate for a position and returns its ID
func CreateTestCandidate(t *testing.T, db *sql.DB, positionID, name, status string) string {
	t.Helper()

	candidateID := auth.GenerateID()
	_, err := db.Exec(`
		INSERT INTO candidate (id, position_id, name, program, status, created_at)
		VALUES ($1, $2, $3, 'Manifesto', $4, $5)
	`, candidateID, positionID, name, status, time.Now().UnixMilli())
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return candidateID
}

// CountRows returns the number of rows in a table
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// Delivery is one code handed to a CaptureNotifier
type Delivery struct {
	RegNo  string
	Method string
	Code   string
}

// CaptureNotifier records delivered codes instead of sending them
type CaptureNotifier struct {
	mu         sync.Mutex
	deliveries []Delivery
	Err        error
}

func (c *CaptureNotifier) Send(_ context.Context, voter models.EligibleVoter, method, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliveries = append(c.deliveries, Delivery{RegNo: voter.RegNo, Method: method, Code: code})
	return c.Err
}

// LastCode returns the most recent code sent to regNo
func (c *CaptureNotifier) LastCode(t *testing.T, regNo string) string {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.deliveries) - 1; i >= 0; i-- {
		if c.deliveries[i].RegNo == regNo {
			return c.deliveries[i].Code
		}
	}
	t.Fatalf("No code delivered to %s", regNo)
	return ""
}

// Count returns the number of deliveries so far
func (c *CaptureNotifier) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deliveries)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// BearerHeader builds an Authorization header map for a ballot token
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
