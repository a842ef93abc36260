package httpapi

import (
	"context"
	"database/sql"
	"log/slog"
	"sync/atomic"

	"founderreach-engine/internal/config"
	"founderreach-engine/internal/events"
	"founderreach-engine/internal/linkedin"
	"founderreach-engine/internal/pipeline"
	"founderreach-engine/internal/store"
)

// Pipeline is the slice of the orchestrator the handlers call. The concrete
// *pipeline.Pipeline satisfies it; tests swap in a stub.
type Pipeline interface {
	ProcessSingle(ctx context.Context, rawURL string, opts pipeline.Options) *pipeline.Outcome
	ProcessBatch(ctx context.Context, urls []string, opts pipeline.Options) ([]*pipeline.Outcome, error)
	MarkSent(ctx context.Context, messageID int64) error
	History(ctx context.Context) ([]store.HistoryRow, error)
}

// Session exposes the authenticated-session surface the API needs: current
// state for /api/status and a forced re-check for /api/session/verify.
type Session interface {
	Status() linkedin.Status
	EnsureAuth(ctx context.Context) error
}

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	Pipeline Pipeline
	Session  Session

	// Config persistence
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// TechStack summarizes uploaded resume text into the short skills blurb
	// stored alongside it (inject for testability).
	TechStack func(ctx context.Context, resumeText string) (string, error)

	// ModelName is the generator model reported by /api/status.
	ModelName string

	Log *slog.Logger
}
