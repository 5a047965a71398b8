// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides secret generation and one-way hashing for voter credentials.

# One-Time Codes

Challenge codes are 6-digit numbers drawn from crypto/rand:

	code, err := auth.GenerateOTP()

# Ballot Tokens

Ballot tokens are random 32-byte (256-bit) secrets:

	token, err := auth.GenerateBallotToken()

Tokens are URL-safe base64 encoded without padding. The plaintext is handed
to the voter exactly once; only its digest is stored.

# Hashing

A Hasher derives one HMAC-SHA256 key per secret kind from a master secret
using HKDF:

	h, err := auth.NewHasher(cfg.HashSecret)
	stored := h.HashCode(code)
	ok := h.MatchCode(submitted, stored) // constant time
	tokenHash := h.HashToken(token)

Digests are deterministic, so a token can be looked up by its hash. They are
keyed, so a leaked database cannot be brute-forced offline without the secret.

# ID Generation

Record IDs are random UUIDs:

	id := auth.GenerateID()

# IP Hashing

For privacy-preserving abuse tracking:

	hash := h.HashIP(ipAddress)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
