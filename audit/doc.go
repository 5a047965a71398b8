// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit records who did what to which verification or ballot.

Entries are fire-and-forget. The Recorder hands them to a Sink (the SQL
store in production) from a single background goroutine, so a slow or
failing audit write never delays a voter's request. When the queue is
full the entry is dropped and a warning is logged.

# Payload Keys

Each action carries a fixed set of payload keys:

	verification_requested  voter, method
	verification_failed     reason (invalid_code, expired, locked)
	verification_confirmed  method
	ballot_viewed           positions_returned
	votes_cast              votes

Payloads never contain one-time codes, ballot tokens, or their hashes.
Ballot entries carry no actor, and verification entries never name the
ballot, so the log cannot join a voter to their votes.

# Shutdown

Call Close after the HTTP server has stopped. It drains the queue before
returning.
*/
package audit
