// Package events is the in-process progress feed: the pipeline publishes
// stage transitions, the HTTP layer streams them to the UI over SSE.
package events

import (
	"encoding/json"
	"time"
)

// Event type names published by the engine.
const (
	TypeStage   = "pipeline.stage" // one profile moving through the pipeline
	TypeBatch   = "pipeline.batch" // batch item start/done
	TypeSession = "session.status" // LinkedIn auth state change
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// StagePayload reports a stage transition for one profile URL. Detail carries
// the failure cause or a warning note when there is one.
type StagePayload struct {
	URL    string `json:"url"`
	Stage  string `json:"stage"`
	Detail string `json:"detail,omitempty"`
}

// BatchPayload marks an item starting or finishing within a batch run.
// Index is zero-based.
type BatchPayload struct {
	Index int    `json:"index"`
	Total int    `json:"total"`
	URL   string `json:"url"`
	Done  bool   `json:"done"`
}

// SessionPayload reports LinkedIn session state ("authenticated",
// "unauthenticated", "error").
type SessionPayload struct {
	State  string `json:"state"`
	Detail string `json:"detail,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
