package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// HistoryRow is one outreach message joined with its founder and company,
// shaped for the history endpoint.
type HistoryRow struct {
	ID          int64  `json:"id"`
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name"`
	LinkedInURL string `json:"linkedin_url"`
	MessageType string `json:"message_type"`
	MessageText string `json:"message_text"`
	Generated   string `json:"generated_date"`
	Sent        bool   `json:"sent"`
}

// History lists every generated message, most recent first.
func History(ctx context.Context, db *sql.DB) ([]HistoryRow, error) {
	rows, err := db.QueryContext(ctx, `
SELECT m.id, f.full_name, COALESCE(NULLIF(c.name, ''), 'N/A'), f.linkedin_url,
       m.message_type, m.message_text, m.generated_at, m.sent
FROM messages m
JOIN founders f ON m.founder_id = f.id
LEFT JOIN companies c ON c.founder_id = f.id
ORDER BY m.generated_at DESC, m.id DESC;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var r HistoryRow
		var sent int
		var generatedStr string
		if err := rows.Scan(
			&r.ID,
			&r.FullName,
			&r.CompanyName,
			&r.LinkedInURL,
			&r.MessageType,
			&r.MessageText,
			&generatedStr,
			&sent,
		); err != nil {
			return nil, err
		}
		r.Sent = sent != 0
		if ts, err := time.Parse(time.RFC3339, generatedStr); err == nil {
			r.Generated = ts.Format("2006-01-02 15:04:05")
		} else {
			r.Generated = generatedStr
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkSent flips the sent flag. Marking an already-sent message is fine;
// only an unknown id is an error.
func MarkSent(ctx context.Context, db *sql.DB, messageID int64) error {
	res, err := db.ExecContext(ctx,
		`UPDATE messages SET sent = 1 WHERE id = ?;`, messageID)
	if err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
