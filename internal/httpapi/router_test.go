package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/linkedin"
	"founderreach-engine/internal/pipeline"
	"founderreach-engine/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubPipeline satisfies Pipeline with canned responses and records what the
// handlers passed it.
type stubPipeline struct {
	mu       sync.Mutex
	single   *pipeline.Outcome
	batch    []*pipeline.Outcome
	batchErr error
	sentErr  error
	rows     []store.HistoryRow
	rowsErr  error

	singleCalls int
	batchCalls  int
	lastURL     string
	lastURLs    []string
	lastOpts    pipeline.Options
	lastSentID  int64
}

func (s *stubPipeline) ProcessSingle(ctx context.Context, rawURL string, opts pipeline.Options) *pipeline.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.singleCalls++
	s.lastURL = rawURL
	s.lastOpts = opts
	if s.single != nil {
		return s.single
	}
	return persistedOutcome(rawURL)
}

func (s *stubPipeline) ProcessBatch(ctx context.Context, urls []string, opts pipeline.Options) ([]*pipeline.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchCalls++
	s.lastURLs = urls
	s.lastOpts = opts
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	if s.batch != nil {
		return s.batch, nil
	}
	outs := make([]*pipeline.Outcome, len(urls))
	for i, u := range urls {
		outs[i] = persistedOutcome(u)
	}
	return outs, nil
}

func (s *stubPipeline) MarkSent(ctx context.Context, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSentID = messageID
	return s.sentErr
}

func (s *stubPipeline) History(ctx context.Context) ([]store.HistoryRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.rowsErr
}

type stubSession struct {
	mu      sync.Mutex
	status  linkedin.Status
	authErr error
	calls   int
}

func (s *stubSession) Status() linkedin.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *stubSession) EnsureAuth(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.authErr != nil {
		return s.authErr
	}
	s.status.Authenticated = true
	s.status.LastVerified = time.Now()
	return nil
}

// persistedOutcome is a fully successful pipeline result for one URL.
func persistedOutcome(url string) *pipeline.Outcome {
	return &pipeline.Outcome{
		URL:     url,
		Stage:   pipeline.StagePersisted,
		Profile: &domain.Profile{LinkedInURL: url, FullName: "Ada Lovelace"},
		Company: &domain.CompanyInfo{ID: 3, Name: "Analytical Engines"},
		Summary: "Ada founded Analytical Engines.",
		Messages: []pipeline.Message{{
			GeneratedMessage: domain.GeneratedMessage{
				ID:        101,
				FounderID: 7,
				Type:      domain.MessageConnection,
				Text:      "Hi Ada, would love to connect.",
				CharCount: 30,
			},
			Limit: 300,
		}},
		Saved: store.SavedIDs{FounderID: 7, CompanyID: 3, MessageIDs: []int64{101}},
	}
}

func openTestStore(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))
	return db.Pool
}

// newAPI assembles the mux with the production middleware chain.
func newAPI(t *testing.T, d Deps) http.Handler {
	t.Helper()
	if d.Log == nil {
		d.Log = discardLogger()
	}
	return Chain(NewMux(d), RequestID, Recover(d.Log), AccessLog(d.Log), Cors)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), "body: %s", rec.Body.String())
	return m
}

func TestRouterMethodNotAllowed(t *testing.T) {
	h := newAPI(t, Deps{Pipeline: &stubPipeline{}})

	rec := doJSON(t, h, http.MethodGet, "/process_profile", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, h, http.MethodDelete, "/message_history", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDEchoedAndGenerated(t *testing.T) {
	h := newAPI(t, Deps{Pipeline: &stubPipeline{rows: []store.HistoryRow{}}})

	req := httptest.NewRequest(http.MethodGet, "/message_history", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = doJSON(t, h, http.MethodGet, "/message_history", nil)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 32)
}

func TestCorsPreflight(t *testing.T) {
	h := newAPI(t, Deps{Pipeline: &stubPipeline{}})

	req := httptest.NewRequest(http.MethodOptions, "/process_profile", nil)
	req.Header.Set("Origin", "tauri://localhost")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, 204, rec.Code)
	assert.Equal(t, "tauri://localhost", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverTurnsPanicIntoEnvelope(t *testing.T) {
	boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})
	h := Chain(boom, RequestID, Recover(discardLogger()))

	rec := doJSON(t, h, http.MethodGet, "/anything", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "internal_error", e.Error.Code)
	assert.NotEmpty(t, e.Error.RequestID)
}

func TestHealthz(t *testing.T) {
	h := newAPI(t, Deps{Pipeline: &stubPipeline{}})

	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeMap(t, rec)["ok"])
}
