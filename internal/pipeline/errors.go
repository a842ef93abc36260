package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Stage is where a profile sits in its run. Stages advance strictly in order;
// a failing stage moves the outcome to StageFailed and nothing is retried.
type Stage string

const (
	StagePending     Stage = "pending"
	StageScraping    Stage = "scraping"
	StageScraped     Stage = "scraped"
	StageResearching Stage = "researching"
	StageResearched  Stage = "researched"
	StageGenerating  Stage = "generating"
	StageGenerated   Stage = "generated"
	StagePersisting  Stage = "persisting"
	StagePersisted   Stage = "persisted"
	StageFailed      Stage = "failed"
)

// ErrKind classifies pipeline failures for callers. Research and persistence
// failures normally degrade to warnings on the outcome instead of surfacing
// here; persistence shows up as an ErrKind only from the store-backed
// operations (history, mark-sent, delete).
type ErrKind string

const (
	KindInvalidInput ErrKind = "invalid_input"
	KindAuth         ErrKind = "auth"
	KindScrape       ErrKind = "scrape"
	KindResearch     ErrKind = "research"
	KindGeneration   ErrKind = "generation"
	KindPersistence  ErrKind = "persistence"
	KindNotFound     ErrKind = "not_found"
)

// StageError is the uniform failure shape the pipeline hands to callers.
// Retryable marks timeouts: the same call may succeed later, unlike a parse
// miss or bad credentials.
type StageError struct {
	Kind      ErrKind
	Stage     Stage
	Retryable bool
	Err       error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed (%s): %v", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s failed (%s)", e.Stage, e.Kind)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(kind ErrKind, stage Stage, err error) *StageError {
	return &StageError{
		Kind:      kind,
		Stage:     stage,
		Retryable: errors.Is(err, context.DeadlineExceeded),
		Err:       err,
	}
}
