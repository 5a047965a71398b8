package models

import "time"

// Voter status constants
const (
	VoterEligible = "ELIGIBLE"
	VoterBlocked  = "BLOCKED"
)

// Candidate status constants
const (
	CandidateSubmitted = "SUBMITTED"
	CandidateApproved  = "APPROVED"
	CandidateRejected  = "REJECTED"
)

// Verification method constants
const (
	MethodEmail = "email"
	MethodSMS   = "sms"
	MethodInApp = "inapp"
)

// ValidMethod reports whether m is a supported challenge delivery method
func ValidMethod(m string) bool {
	switch m {
	case MethodEmail, MethodSMS, MethodInApp:
		return true
	}
	return false
}

// Request types

type RequestOTPRequest struct {
	RegNo  string `json:"reg_no"`
	Method string `json:"method"`
}

type ConfirmRequest struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
}

type CastVotesRequest struct {
	// Only honoured when no Authorization header is sent
	Token string      `json:"token,omitempty"`
	Votes []Selection `json:"votes"`
}

// Response types

type RequestOTPResponse struct {
	ChallengeID string `json:"challenge_id"`
}

type ConfirmResponse struct {
	BallotToken string `json:"ballot_token"`
}

type BallotResponse struct {
	Positions []BallotPosition `json:"positions"`
}

type CastVotesResponse struct {
	Status string   `json:"status"`
	Votes  []string `json:"votes"`
}

// Domain types

type EligibleVoter struct {
	ID        string    `json:"id"`
	RegNo     string    `json:"reg_no"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Program   string    `json:"program"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Verification struct {
	ID              string     `json:"id"`
	VoterID         string     `json:"voter_id"`
	Method          string     `json:"method"`
	OTPHash         string     `json:"-"` // Never expose in JSON
	IssuedAt        time.Time  `json:"issued_at"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	BallotTokenHash *string    `json:"-"` // Never expose in JSON
	FailedAttempts  int        `json:"failed_attempts"`
	IPHash          *string    `json:"-"`
}

type Ballot struct {
	ID             string     `json:"id"`
	VerificationID *string    `json:"verification_id,omitempty"`
	TokenHash      string     `json:"-"` // Never expose in JSON
	IssuedAt       time.Time  `json:"issued_at"`
	ConsumedAt     *time.Time `json:"consumed_at,omitempty"`
}

type Vote struct {
	ID          string    `json:"id"`
	BallotID    string    `json:"ballot_id"`
	PositionID  string    `json:"position_id"`
	CandidateID string    `json:"candidate_id"`
	CastAt      time.Time `json:"cast_at"`
}

type Position struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Seats     int       `json:"seats"`
	OpensAt   time.Time `json:"opens_at"`
	ClosesAt  time.Time `json:"closes_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Candidate struct {
	ID         string `json:"id"`
	PositionID string `json:"position_id"`
	Name       string `json:"name"`
	Program    string `json:"program"`
	Status     string `json:"status"`
}

// Selection is one (position, candidate) choice in a cast request
type Selection struct {
	PositionID  string `json:"position_id"`
	CandidateID string `json:"candidate_id"`
}

// Ballot content types

type BallotCandidate struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Program string `json:"program"`
}

type BallotPosition struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Seats      int               `json:"seats"`
	Candidates []BallotCandidate `json:"candidates"`
}

// Seed fixtures

type SeedData struct {
	Voters     []EligibleVoter `json:"voters"`
	Positions  []Position      `json:"positions"`
	Candidates []Candidate     `json:"candidates"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
