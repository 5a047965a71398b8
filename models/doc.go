// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RequestOTPRequest: reg_no, method
  - ConfirmRequest: challenge_id, code
  - CastVotesRequest: votes ([]Selection), optional token

# Response Types

Types for JSON responses:

  - RequestOTPResponse: challenge_id
  - ConfirmResponse: ballot_token (plaintext, returned once)
  - BallotResponse: positions with approved candidates
  - CastVotesResponse: status, votes (created vote IDs)
  - ErrorResponse: error, message, code

# Domain Types

Persisted records:

  - EligibleVoter: registration number and eligibility status
  - Verification: one OTP challenge; stores only digests
  - Ballot: single-use voting right keyed by token digest
  - Vote: one cast choice, unique per (ballot, position)
  - Position, Candidate: election catalog

Secret-bearing fields (OTPHash, TokenHash, BallotTokenHash, IPHash) are
tagged json:"-" and never leave the server.

# Constants

Voter status:

	VoterEligible = "ELIGIBLE"
	VoterBlocked  = "BLOCKED"

Candidate status:

	CandidateSubmitted = "SUBMITTED"
	CandidateApproved  = "APPROVED"
	CandidateRejected  = "REJECTED"

Challenge methods:

	MethodEmail = "email"
	MethodSMS   = "sms"
	MethodInApp = "inapp"
*/
package models
