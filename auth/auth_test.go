// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"encoding/base64"
	"strings"
	"testing"
)

func newTestHasher(t *testing.T, secret string) *Hasher {
	t.Helper()
	h, err := NewHasher(secret)
	if err != nil {
		t.Fatalf("NewHasher() error = %v", err)
	}
	return h
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if !ValidID(id) {
		t.Errorf("GenerateID() = %q, not a valid UUID", id)
	}

	// Test randomness - two IDs should be different
	if GenerateID() == GenerateID() {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"uuid", "6f1c2d0e-6a44-4c5e-9d53-2b1b8f0c2a10", true},
		{"empty", "", false},
		{"garbage", "not-a-uuid", false},
		{"sql", "1' OR '1'='1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidID(tt.in); got != tt.want {
				t.Errorf("ValidID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateOTP()
		if err != nil {
			t.Fatalf("GenerateOTP() error = %v", err)
		}
		if len(code) != OTPDigits {
			t.Fatalf("GenerateOTP() = %q, want %d digits", code, OTPDigits)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("GenerateOTP() = %q contains non-digit %c", code, c)
			}
		}
		if code[0] == '0' {
			t.Fatalf("GenerateOTP() = %q has leading zero", code)
		}
		seen[code] = true
	}

	if len(seen) < 150 {
		t.Errorf("GenerateOTP() produced only %d distinct codes out of 200", len(seen))
	}
}

func TestGenerateBallotToken(t *testing.T) {
	token, err := GenerateBallotToken()
	if err != nil {
		t.Fatalf("GenerateBallotToken() error = %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("GenerateBallotToken() is not URL-safe base64: %v", err)
	}
	if len(raw) != ballotTokenBytes {
		t.Errorf("GenerateBallotToken() decoded length = %d, want %d", len(raw), ballotTokenBytes)
	}

	// Should be URL-safe (no padding)
	if strings.ContainsAny(token, "=+/") {
		t.Errorf("GenerateBallotToken() = %q contains non URL-safe characters", token)
	}

	token2, _ := GenerateBallotToken()
	if token == token2 {
		t.Error("GenerateBallotToken() produced duplicate tokens")
	}
}

func TestNewHasher_EmptySecret(t *testing.T) {
	if _, err := NewHasher(""); err != ErrEmptySecret {
		t.Errorf("NewHasher(\"\") error = %v, want %v", err, ErrEmptySecret)
	}
}

func TestHasher_Deterministic(t *testing.T) {
	h := newTestHasher(t, "test-secret")

	tests := []struct {
		name string
		hash func(string) string
		in   string
	}{
		{"code", h.HashCode, "123456"},
		{"token", h.HashToken, "tok_abcdefghijklmnop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := tt.hash(tt.in)
			second := tt.hash(tt.in)

			if first != second {
				t.Error("hash is not deterministic")
			}
			if first == tt.in {
				t.Error("hash equals plaintext")
			}
			if strings.Contains(first, tt.in) {
				t.Error("hash contains plaintext")
			}
			// 256-bit digest, hex encoded
			if len(first) != 64 {
				t.Errorf("hash length = %d, want 64", len(first))
			}
		})
	}
}

func TestHasher_KeySeparation(t *testing.T) {
	h := newTestHasher(t, "test-secret")
	other := newTestHasher(t, "other-secret")

	if h.HashCode("123456") == h.HashToken("123456") {
		t.Error("code and token digests of the same input must differ")
	}
	if h.HashToken("abc") == other.HashToken("abc") {
		t.Error("digests under different secrets must differ")
	}
}

func TestHasher_MatchCode(t *testing.T) {
	h := newTestHasher(t, "test-secret")
	stored := h.HashCode("424242")

	tests := []struct {
		name string
		code string
		hash string
		want bool
	}{
		{"correct code", "424242", stored, true},
		{"wrong code", "424243", stored, false},
		{"empty code", "", stored, false},
		{"empty hash", "424242", "", false},
		{"plaintext stored", "424242", "424242", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.MatchCode(tt.code, tt.hash); got != tt.want {
				t.Errorf("MatchCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	h := newTestHasher(t, "test-secret")

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv6", "2001:db8::1"},
		{"localhost", "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := h.HashIP(tt.ip)

			// Should be 16 hex chars (8 bytes)
			if len(hash) != 16 {
				t.Errorf("HashIP() length = %d, want 16", len(hash))
			}
			if hash != h.HashIP(tt.ip) {
				t.Error("HashIP() is not deterministic")
			}
			if hash == h.HashIP(tt.ip+"0") {
				t.Error("HashIP() produced same hash for different IPs")
			}
		})
	}
}
