package session

import "encoding/json"

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message types.
const (
	// client -> server
	TypeAuth     = "auth"
	TypeFeedback = "feedback"
	TypeRestart  = "restart"

	// server -> client
	TypeState  = "state"
	TypeGuess  = "guess"
	TypeSolved = "solved"
	TypeError  = "error"
)

// Session phases.
const (
	PhaseGuessing = "guessing"
	PhaseSolved   = "solved"
	PhaseFailed   = "failed" // round limit reached
)

type AuthPayload struct {
	Token string `json:"token"`
}

// FeedbackPayload uses pointers so a missing field is an error, not a zero.
type FeedbackPayload struct {
	Bulls *int `json:"bulls"`
	Cows  *int `json:"cows"`
}

type GuessPayload struct {
	Round      int    `json:"round"`
	Guess      string `json:"guess"`
	Candidates int    `json:"candidates"`
}

type SolvedPayload struct {
	Secret string `json:"secret"`
	Rounds int    `json:"rounds"`
}

type RoundHistoryItem struct {
	Round int    `json:"round"`
	Guess string `json:"guess"`
	Bulls int    `json:"bulls"`
	Cows  int    `json:"cows"`
}

type StatePayload struct {
	SessionID  string             `json:"sessionId"`
	Phase      string             `json:"phase"` // guessing|solved|failed
	Round      int                `json:"round"`
	Guess      string             `json:"guess"`
	Candidates int                `json:"candidates"`
	History    []RoundHistoryItem `json:"history"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	Token     string `json:"token"`
}
