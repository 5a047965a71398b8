// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package throttle rate-limits OTP challenge requests per voter with a
// sliding window counted from stored verification rows.
package throttle
