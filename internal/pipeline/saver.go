package pipeline

import (
	"context"
	"database/sql"

	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/store"
)

// Saver is the persistence surface the pipeline needs. DBSaver implements it
// over the store package; tests substitute a stub.
type Saver interface {
	SaveOutcome(ctx context.Context, p *domain.Profile, c *domain.CompanyInfo, msgs []domain.GeneratedMessage) (store.SavedIDs, error)
	MarkSent(ctx context.Context, messageID int64) error
	History(ctx context.Context) ([]store.HistoryRow, error)
}

// DBSaver adapts the store package to the Saver interface.
type DBSaver struct {
	DB *sql.DB
}

var _ Saver = DBSaver{}

func (s DBSaver) SaveOutcome(ctx context.Context, p *domain.Profile, c *domain.CompanyInfo, msgs []domain.GeneratedMessage) (store.SavedIDs, error) {
	return store.SaveOutcome(ctx, s.DB, p, c, msgs)
}

func (s DBSaver) MarkSent(ctx context.Context, messageID int64) error {
	return store.MarkSent(ctx, s.DB, messageID)
}

func (s DBSaver) History(ctx context.Context) ([]store.HistoryRow, error) {
	return store.History(ctx, s.DB)
}
