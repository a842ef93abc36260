package domain

import "time"

// MessageType selects the outreach style and its length rule.
type MessageType string

const (
	MessageConnection MessageType = "connection"  // LinkedIn connection request
	MessageJobInquiry MessageType = "job_inquiry" // longer direct inquiry
)

func (t MessageType) Valid() bool {
	return t == MessageConnection || t == MessageJobInquiry
}

// GeneratedMessage is one drafted outreach message. Append-only: a run never
// rewrites an earlier draft. Sent is the only field mutated after insert.
type GeneratedMessage struct {
	ID          int64
	FounderID   int64
	Type        MessageType
	Text        string
	CharCount   int // rune count of Text at generation time
	GeneratedAt time.Time
	Sent        bool
}
