// Package feedback asks an LLM for a short gamified message after a study
// session. It never fails loudly: missing credentials mean no call, and any
// transport or decoding problem yields a fixed fallback message.
package feedback

import "strings"

// Type classifies a feedback message.
type Type string

const (
	TypeEncouragement Type = "encouragement"
	TypeVictory       Type = "victory"
	TypeTip           Type = "tip"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeEncouragement, TypeVictory, TypeTip:
		return true
	default:
		return false
	}
}

// ParseType normalizes s; ok is false for unknown values.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, t.IsValid()
}

// Request describes the session just committed.
type Request struct {
	DurationMinutes int    `json:"durationMinutes"`
	Subject         string `json:"subject"`
	Level           int    `json:"level"`
}

// Feedback is the message shown to the user.
type Feedback struct {
	Message string `json:"message"`
	Type    Type   `json:"type"`
}

// FallbackMessage is shown whenever the collaborator cannot produce a reply.
const FallbackMessage = "Session complete! Every focused minute moves you closer to the next level."

func Fallback() Feedback {
	return Feedback{Message: FallbackMessage, Type: TypeVictory}
}
