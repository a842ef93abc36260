package store

import (
	"context"
	"database/sql"
	"time"
)

// Resume is the single stored resume context used as default generator input.
type Resume struct {
	Filename  string `json:"filename"`
	Content   string `json:"content"`
	TechStack string `json:"tech_stack"`
	UpdatedAt string `json:"updated_at"`
}

func SaveResume(ctx context.Context, db *sql.DB, r Resume) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO resumes(id, filename, content, tech_stack, updated_at)
VALUES(1,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  filename = excluded.filename,
  content = excluded.content,
  tech_stack = excluded.tech_stack,
  updated_at = excluded.updated_at;
`, r.Filename, r.Content, r.TechStack, time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetResume returns the stored resume, or ErrNotFound when none was uploaded.
func GetResume(ctx context.Context, db *sql.DB) (Resume, error) {
	var r Resume
	err := db.QueryRowContext(ctx, `
SELECT filename, content, tech_stack, updated_at FROM resumes WHERE id = 1;
`).Scan(&r.Filename, &r.Content, &r.TechStack, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return r, ErrNotFound
	}
	return r, err
}
