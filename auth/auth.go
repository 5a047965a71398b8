// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrEmptySecret = errors.New("hash secret is required")
)

// OTPDigits is the length of a one-time code.
const OTPDigits = 6

// 32 bytes = 256 bits of entropy
const ballotTokenBytes = 32

// HKDF info labels; changing one invalidates every stored digest of that kind.
const (
	infoCode  = "evote/otp-code"
	infoToken = "evote/ballot-token"
	infoIP    = "evote/client-ip"
)

// GenerateID returns a random UUID string for database records
func GenerateID() string {
	return uuid.NewString()
}

// ValidID reports whether s is a well-formed record ID
func ValidID(s string) bool {
	return uuid.Validate(s) == nil
}

// GenerateOTP creates a uniformly random numeric one-time code in
// [100000, 999999]
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time code: %w", err)
	}
	return fmt.Sprintf("%0*d", OTPDigits, n.Int64()+100000), nil
}

// GenerateBallotToken creates a random high-entropy ballot credential.
// URL-safe base64 without padding.
func GenerateBallotToken() (string, error) {
	b := make([]byte, ballotTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate ballot token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hasher produces keyed one-way digests of secrets. Each secret kind uses
// its own key derived from a single master secret, so a digest of one kind
// can never be replayed as another.
type Hasher struct {
	codeKey  []byte
	tokenKey []byte
	ipKey    []byte
}

// NewHasher derives per-purpose HMAC keys from secret
func NewHasher(secret string) (*Hasher, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	h := &Hasher{}
	for _, k := range []struct {
		info string
		dst  *[]byte
	}{
		{infoCode, &h.codeKey},
		{infoToken, &h.tokenKey},
		{infoIP, &h.ipKey},
	} {
		key := make([]byte, sha256.Size)
		r := hkdf.New(sha256.New, []byte(secret), nil, []byte(k.info))
		if _, err := io.ReadFull(r, key); err != nil {
			return nil, fmt.Errorf("failed to derive %s key: %w", k.info, err)
		}
		*k.dst = key
	}

	return h, nil
}

// HashCode returns the hex HMAC-SHA256 digest of a one-time code
func (h *Hasher) HashCode(code string) string {
	return digest(h.codeKey, code)
}

// MatchCode compares a submitted code against a stored digest in constant time
func (h *Hasher) MatchCode(code, storedHash string) bool {
	return hmac.Equal([]byte(h.HashCode(code)), []byte(storedHash))
}

// HashToken returns the hex HMAC-SHA256 digest of a ballot token
func (h *Hasher) HashToken(token string) string {
	return digest(h.tokenKey, token)
}

// HashIP creates a one-way hash of an IP address for privacy.
// Returns first 16 hex chars (64 bits) - enough for deduplication
func (h *Hasher) HashIP(ip string) string {
	mac := hmac.New(sha256.New, h.ipKey)
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil)[:8])
}

func digest(key []byte, value string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}
