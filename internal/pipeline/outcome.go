package pipeline

import (
	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/store"
)

// Warning codes carried on otherwise usable outcomes.
const (
	WarnResearchFailed     = "research_failed"
	WarnConnectionOverflow = "connection_overflow"
	WarnPersistFailed      = "persist_failed"
)

// Warning is a non-fatal defect on an outcome: degraded research, an
// over-limit draft, or a storage write that failed after generation.
type Warning struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Message is one drafted message plus its length verdict. Overflow is only
// ever set on connection requests; the text is the model's full output.
type Message struct {
	domain.GeneratedMessage
	Limit    int
	Overflow bool
}

// Outcome is the discriminated result of processing one profile URL. Data
// gathered before a failure stays populated: a generation failure still
// carries Profile, Company, and Summary so the caller can retry generation
// without re-scraping.
type Outcome struct {
	URL      string // canonical once validation passed, the raw input before
	Stage    Stage
	Profile  *domain.Profile
	Company  *domain.CompanyInfo
	Summary  string
	Messages []Message
	Saved    store.SavedIDs
	Warnings []Warning
	Err      *StageError
}

// Failed reports whether the run ended in a terminal failure. An outcome with
// warnings only is not failed.
func (o *Outcome) Failed() bool { return o.Err != nil }

func (o *Outcome) domainMessages() []domain.GeneratedMessage {
	msgs := make([]domain.GeneratedMessage, len(o.Messages))
	for i, m := range o.Messages {
		msgs[i] = m.GeneratedMessage
	}
	return msgs
}

func (o *Outcome) fail(kind ErrKind, stage Stage, err error) *Outcome {
	o.Stage = StageFailed
	o.Err = stageErr(kind, stage, err)
	return o
}

func (o *Outcome) warn(code, detail string) {
	o.Warnings = append(o.Warnings, Warning{Code: code, Detail: detail})
}
