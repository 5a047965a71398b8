// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are decoded first (struct tags, via caarlos0/env),
then CLI flags override them.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL DSN or SQLite path (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - HashSecret: Master secret for code/token HMACs (required)
  - CodeTTL, MaxCodeAttempts: one-time code policy
  - BallotTTL: ballot token lifetime, 0 disables expiry
  - ChallengeLimit, ChallengeWindow: per-voter challenge rate limit
  - OpTimeout: deadline for a single store operation

# Environment Variables

	PORT              → -p
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	HASH_SECRET       → -hash-secret
	SEED_FILE         → -seed
	CODE_TTL          → -code-ttl
	BALLOT_TTL        → -ballot-ttl
	MAX_CODE_ATTEMPTS → -max-attempts
	CHALLENGE_LIMIT   → -challenge-limit
	CHALLENGE_WINDOW  → -challenge-window
	OP_TIMEOUT        → -op-timeout
	AUDIT_BUFFER, LOG_FORMAT (env only)

# Validation

ParseFlags returns an error if DATABASE_URL or HASH_SECRET is missing, the
database type is unknown, or a policy value is out of range.
*/
package cliparse
