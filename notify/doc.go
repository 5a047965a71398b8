// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify delivers one-time codes. Open picks a backend by name:
// Discard drops codes, the file backend appends them to an owner-only spool
// file, and console prints them to stdout for local development. A failed
// delivery never undoes the challenge; the voter can ask for a new code.
package notify
