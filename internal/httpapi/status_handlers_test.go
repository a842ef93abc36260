package httpapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/linkedin"
	"founderreach-engine/internal/store"
)

func TestStatusReportsSessionModelAndCounts(t *testing.T) {
	db := openTestStore(t)
	_, err := store.SaveOutcome(context.Background(), db,
		&domain.Profile{LinkedInURL: "https://www.linkedin.com/in/ada-lovelace", FullName: "Ada Lovelace"},
		&domain.CompanyInfo{Name: "Analytical Engines"},
		[]domain.GeneratedMessage{{
			Type: domain.MessageConnection, Text: "Hi", CharCount: 2, GeneratedAt: time.Now(),
		}})
	require.NoError(t, err)

	sess := &stubSession{status: linkedin.Status{Authenticated: true, Email: "ada@example.com"}}
	h := newAPI(t, Deps{DB: db, Pipeline: &stubPipeline{}, Session: sess, ModelName: "gemini-1.5-flash"})

	rec := doJSON(t, h, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, "gemini-1.5-flash", body["model"])

	session := body["session"].(map[string]any)
	assert.Equal(t, true, session["authenticated"])
	assert.Equal(t, "ada@example.com", session["email"])

	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["founders"])
	assert.Equal(t, float64(1), stats["messages"])
	assert.Equal(t, float64(0), stats["sent"])
}

func TestVerifySession(t *testing.T) {
	db := openTestStore(t)
	sess := &stubSession{}
	h := newAPI(t, Deps{DB: db, Pipeline: &stubPipeline{}, Session: sess})

	rec := doJSON(t, h, http.MethodPost, "/api/session/verify", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sess.calls)
	assert.Equal(t, true, decodeMap(t, rec)["authenticated"])
}

func TestVerifySessionFailure(t *testing.T) {
	db := openTestStore(t)
	sess := &stubSession{authErr: errors.New("challenge page")}
	h := newAPI(t, Deps{DB: db, Pipeline: &stubPipeline{}, Session: sess})

	rec := doJSON(t, h, http.MethodPost, "/api/session/verify", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	errObj := decodeMap(t, rec)["error"].(map[string]any)
	assert.Equal(t, "auth", errObj["code"])
	assert.Contains(t, errObj["message"], "challenge page")
}
