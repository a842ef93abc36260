package store

import (
	"context"
	"database/sql"
	"encoding/csv"
	"io"
	"strconv"
)

// csvHeader column order is load-bearing: spreadsheets built on past exports
// break if it changes.
var csvHeader = []string{
	"message_id", "full_name", "company_name", "linkedin_url",
	"message_type", "message_text", "generated_date", "was_sent",
}

// ExportCSV streams the full message history as CSV.
func ExportCSV(ctx context.Context, db *sql.DB, w io.Writer) error {
	rows, err := History(ctx, db)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		sent := "no"
		if r.Sent {
			sent = "yes"
		}
		rec := []string{
			strconv.FormatInt(r.ID, 10),
			r.FullName,
			r.CompanyName,
			r.LinkedInURL,
			r.MessageType,
			r.MessageText,
			r.Generated,
			sent,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
