package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/netutil"
)

// Storage hygiene caps; message text is never capped here.
const (
	maxSummaryChars     = 10000
	maxDescriptionChars = 5000
)

type SavedIDs struct {
	FounderID  int64
	CompanyID  int64
	MessageIDs []int64
}

// SaveOutcome persists one pipeline run as a single transaction: the founder
// row is refreshed (keyed by linkedin_url), the company snapshot is replaced,
// and every message is appended. Nothing is written if any step fails, so a
// message row can never reference a founder that isn't there.
func SaveOutcome(ctx context.Context, db *sql.DB, p *domain.Profile, c *domain.CompanyInfo, msgs []domain.GeneratedMessage) (SavedIDs, error) {
	var ids SavedIDs

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ids, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)

	if _, err := tx.ExecContext(ctx, `
INSERT INTO founders(linkedin_url, full_name, headline, location, summary, processed_at)
VALUES(?,?,?,?,?,?)
ON CONFLICT(linkedin_url) DO UPDATE SET
  full_name = excluded.full_name,
  headline = excluded.headline,
  location = excluded.location,
  summary = excluded.summary,
  processed_at = excluded.processed_at;
`, p.LinkedInURL, p.FullName, p.Headline, p.Location,
		netutil.Truncate(p.About, maxSummaryChars), now); err != nil {
		return ids, fmt.Errorf("upsert founder: %w", err)
	}

	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM founders WHERE linkedin_url = ?;`, p.LinkedInURL,
	).Scan(&ids.FounderID); err != nil {
		return ids, fmt.Errorf("founder id: %w", err)
	}

	if c != nil {
		newsJSON, _ := json.Marshal(c.News)
		if c.News == nil {
			newsJSON = []byte("[]")
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO companies(founder_id, name, title, website, description, news, researched_at)
VALUES(?,?,?,?,?,?,?)
ON CONFLICT(founder_id) DO UPDATE SET
  name = excluded.name,
  title = excluded.title,
  website = excluded.website,
  description = excluded.description,
  news = excluded.news,
  researched_at = excluded.researched_at;
`, ids.FounderID, c.Name, c.Title, c.Website,
			netutil.Truncate(c.Description, maxDescriptionChars), string(newsJSON), now); err != nil {
			return ids, fmt.Errorf("upsert company: %w", err)
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM companies WHERE founder_id = ?;`, ids.FounderID,
		).Scan(&ids.CompanyID); err != nil {
			return ids, fmt.Errorf("company id: %w", err)
		}
	}

	for _, m := range msgs {
		res, err := tx.ExecContext(ctx, `
INSERT INTO messages(founder_id, message_type, message_text, char_count, generated_at, sent)
VALUES(?,?,?,?,?,0);
`, ids.FounderID, string(m.Type), m.Text, m.CharCount,
			m.GeneratedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return ids, fmt.Errorf("insert message: %w", err)
		}
		id, _ := res.LastInsertId()
		ids.MessageIDs = append(ids.MessageIDs, id)
	}

	if err := tx.Commit(); err != nil {
		return ids, err
	}
	return ids, nil
}

// DeleteFounderByMessage removes the founder owning the given message, along
// with all of their messages and the company snapshot.
func DeleteFounderByMessage(ctx context.Context, db *sql.DB, messageID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var founderID int64
	err = tx.QueryRowContext(ctx,
		`SELECT founder_id FROM messages WHERE id = ?;`, messageID,
	).Scan(&founderID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	for _, q := range []string{
		`DELETE FROM messages WHERE founder_id = ?;`,
		`DELETE FROM companies WHERE founder_id = ?;`,
		`DELETE FROM founders WHERE id = ?;`,
	} {
		if _, err := tx.ExecContext(ctx, q, founderID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Stats powers the status endpoint.
type Stats struct {
	Founders int `json:"founders"`
	Messages int `json:"messages"`
	Sent     int `json:"sent"`
}

func GetStats(ctx context.Context, db *sql.DB) (Stats, error) {
	var s Stats
	err := db.QueryRowContext(ctx, `
SELECT
  (SELECT COUNT(*) FROM founders),
  (SELECT COUNT(*) FROM messages),
  (SELECT COUNT(*) FROM messages WHERE sent = 1);
`).Scan(&s.Founders, &s.Messages, &s.Sent)
	return s, err
}
