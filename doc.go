// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the EVote API server.

EVote verifies eligible voters with a one-time code, issues each of them a
single-use ballot token, and records at most one vote per position per
ballot, even when a leaked token is replayed concurrently.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=evote.db HASH_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -hash-secret ...

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - HASH_SECRET (-hash-secret): Master secret for code and token HMACs

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - CODE_TTL (-code-ttl): One-time code lifetime (default: 10m)
  - BALLOT_TTL (-ballot-ttl): Ballot token lifetime, 0 for none (default: 0)
  - MAX_CODE_ATTEMPTS (-max-attempts): Wrong codes before lockout (default: 5)
  - CHALLENGE_LIMIT (-challenge-limit): Codes per voter per window (default: 5)
  - CHALLENGE_WINDOW (-challenge-window): Rate limit window (default: 1h)
  - OP_TIMEOUT (-op-timeout): Per-operation store timeout (default: 5s)
  - AUDIT_BUFFER: Audit queue size (default: 256)
  - LOG_FORMAT: text or json (default: text)
  - SEED_FILE (-seed): JSON voters, positions and candidates to load
  - NOTIFIER (-notifier): discard, file or console (default: discard)
  - NOTIFY_FILE (-notify-file): Spool file for the file notifier

There is no real email or SMS gateway. The file notifier appends codes to
an owner-only spool file; console prints them to stdout and is for
development only, since stdout is usually collected as logs.

# Architecture

  - voting: Verification, ballot issuance and vote casting
  - store: SQL credential store, vote ledger, catalog and audit log
  - auth: ID, code and token generation, HMAC hashing
  - throttle: Per-voter challenge rate limit
  - audit: Asynchronous audit recorder
  - notify: Code delivery
  - handlers, router, middleware: HTTP boundary
  - db: Connection and schema
  - cliparse: Configuration parsing
  - models: Domain and wire types

See package documentation for each component.
*/
package main
