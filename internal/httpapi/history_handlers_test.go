package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/pipeline"
	"founderreach-engine/internal/store"
)

func TestMessageHistoryList(t *testing.T) {
	pl := &stubPipeline{rows: []store.HistoryRow{
		{ID: 2, FullName: "Grace Hopper", CompanyName: "Eckert-Mauchly", MessageType: "connection",
			MessageText: "Hi Grace", Generated: "2025-06-02 09:00:00"},
		{ID: 1, FullName: "Ada Lovelace", CompanyName: "N/A", MessageType: "job_inquiry",
			MessageText: "Hello Ada", Generated: "2025-06-01 12:00:00", Sent: true},
	}}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodGet, "/message_history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Grace Hopper", rows[0]["full_name"])
	assert.Equal(t, "2025-06-02 09:00:00", rows[0]["generated_date"])
	assert.Equal(t, false, rows[0]["sent"])
	assert.Equal(t, "N/A", rows[1]["company_name"])
	assert.Equal(t, true, rows[1]["sent"])
}

func TestMessageHistoryEmptyIsArray(t *testing.T) {
	h := newAPI(t, Deps{Pipeline: &stubPipeline{}})

	rec := doJSON(t, h, http.MethodGet, "/message_history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestMessageHistoryQueryFailure(t *testing.T) {
	pl := &stubPipeline{rowsErr: errors.New("disk gone")}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodGet, "/message_history", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMarkSent(t *testing.T) {
	pl := &stubPipeline{}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/mark_sent", map[string]any{"message_id": 41})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeMap(t, rec)["success"])
	assert.Equal(t, int64(41), pl.lastSentID)
}

func TestMarkSentRequiresID(t *testing.T) {
	h := newAPI(t, Deps{Pipeline: &stubPipeline{}})

	for _, body := range []map[string]any{{}, {"message_id": 0}, {"message_id": -3}} {
		rec := doJSON(t, h, http.MethodPost, "/mark_sent", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Message ID is required",
			decodeMap(t, rec)["error"].(map[string]any)["message"])
	}
}

func TestMarkSentUnknownID(t *testing.T) {
	pl := &stubPipeline{sentErr: &pipeline.StageError{
		Kind:  pipeline.KindNotFound,
		Stage: pipeline.StagePersisting,
		Err:   store.ErrNotFound,
	}}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/mark_sent", map[string]any{"message_id": 424242})
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "not_found", body["error"].(map[string]any)["code"])
}

func TestExportCSV(t *testing.T) {
	db := openTestStore(t)
	_, err := store.SaveOutcome(context.Background(), db,
		&domain.Profile{LinkedInURL: "https://www.linkedin.com/in/ada-lovelace", FullName: "Ada Lovelace"},
		&domain.CompanyInfo{Name: "Analytical Engines"},
		[]domain.GeneratedMessage{{
			Type:        domain.MessageConnection,
			Text:        "Hi Ada, \"quoted\" text",
			CharCount:   21,
			GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}})
	require.NoError(t, err)

	h := newAPI(t, Deps{DB: db, Pipeline: &stubPipeline{}})

	rec := doJSON(t, h, http.MethodGet, "/export_csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "linkedin_messages.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "message_id,full_name,company_name,linkedin_url,message_type,message_text,generated_date,was_sent", lines[0])
	assert.Contains(t, lines[1], "Ada Lovelace")
	assert.Contains(t, lines[1], "Analytical Engines")
}

func TestDeleteProfileCascades(t *testing.T) {
	db := openTestStore(t)
	ids, err := store.SaveOutcome(context.Background(), db,
		&domain.Profile{LinkedInURL: "https://www.linkedin.com/in/ada-lovelace", FullName: "Ada Lovelace"},
		&domain.CompanyInfo{Name: "Analytical Engines"},
		[]domain.GeneratedMessage{{
			Type: domain.MessageConnection, Text: "Hi", CharCount: 2, GeneratedAt: time.Now(),
		}})
	require.NoError(t, err)
	require.Len(t, ids.MessageIDs, 1)

	h := newAPI(t, Deps{DB: db, Pipeline: &stubPipeline{}})
	path := "/profiles/" + strconv.FormatInt(ids.MessageIDs[0], 10)

	rec := doJSON(t, h, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeMap(t, rec)["success"])

	var founders int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM founders;`).Scan(&founders))
	assert.Zero(t, founders)

	rec = doJSON(t, h, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProfileRejectsBadID(t *testing.T) {
	db := openTestStore(t)
	h := newAPI(t, Deps{DB: db, Pipeline: &stubPipeline{}})

	for _, path := range []string{"/profiles/abc", "/profiles/", "/profiles/0", "/profiles/1/extra"} {
		rec := doJSON(t, h, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}
