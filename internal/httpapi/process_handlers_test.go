package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/pipeline"
	"founderreach-engine/internal/store"
)

func failedOutcome(url string, kind pipeline.ErrKind, stage pipeline.Stage, msg string) *pipeline.Outcome {
	out := &pipeline.Outcome{URL: url, Stage: pipeline.StageFailed}
	out.Err = &pipeline.StageError{Kind: kind, Stage: stage, Err: errors.New(msg)}
	return out
}

func TestProcessProfileSuccess(t *testing.T) {
	pl := &stubPipeline{}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/process_profile", map[string]any{
		"url": "https://www.linkedin.com/in/ada-lovelace",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeMap(t, rec)
	assert.Equal(t, "Ada Lovelace", body["full_name"])
	assert.Equal(t, "Analytical Engines", body["company_name"])
	assert.Equal(t, float64(101), body["message_id"])
	assert.Equal(t, "connection", body["message_type"])
	assert.Equal(t, "Hi Ada, would love to connect.", body["message_text"])
	assert.Equal(t, float64(30), body["char_count"])
	assert.Equal(t, false, body["overflow"])
	assert.NotContains(t, body, "warnings")

	assert.Equal(t, 1, pl.singleCalls)
	assert.Equal(t, "https://www.linkedin.com/in/ada-lovelace", pl.lastURL)
	assert.Equal(t, []domain.MessageType{domain.MessageConnection}, pl.lastOpts.Types)
}

func TestProcessProfileRequiresURL(t *testing.T) {
	pl := &stubPipeline{}
	h := newAPI(t, Deps{Pipeline: pl})

	for _, body := range []map[string]any{{}, {"url": "   "}} {
		rec := doJSON(t, h, http.MethodPost, "/process_profile", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeMap(t, rec)
		errObj := resp["error"].(map[string]any)
		assert.Equal(t, "invalid_input", errObj["code"])
		assert.Equal(t, "LinkedIn URL is required", errObj["message"])
	}
	assert.Zero(t, pl.singleCalls)
}

func TestProcessProfileRejectsMalformedJSON(t *testing.T) {
	pl := &stubPipeline{}
	h := newAPI(t, Deps{Pipeline: pl})

	req := doJSON(t, h, http.MethodPost, "/process_profile", nil)
	assert.Equal(t, http.StatusBadRequest, req.Code)
	assert.Zero(t, pl.singleCalls)
}

func TestProcessProfileRejectsUnknownMessageType(t *testing.T) {
	pl := &stubPipeline{}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/process_profile", map[string]any{
		"url":          "https://www.linkedin.com/in/ada-lovelace",
		"message_type": "carrier_pigeon",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, pl.singleCalls)
}

func TestProcessProfileJobInquiryCarriesContext(t *testing.T) {
	pl := &stubPipeline{}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/process_profile", map[string]any{
		"url":          "https://www.linkedin.com/in/ada-lovelace",
		"message_type": "job_inquiry",
		"tech_stack":   "Go, SQLite, a decade of backend work",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []domain.MessageType{domain.MessageJobInquiry}, pl.lastOpts.Types)
	assert.Equal(t, "Go, SQLite, a decade of backend work", pl.lastOpts.Context)
}

func TestProcessProfileFallsBackToStoredResume(t *testing.T) {
	db := openTestStore(t)
	require.NoError(t, store.SaveResume(context.Background(), db, store.Resume{
		Filename:  "resume.txt",
		Content:   "long resume text",
		TechStack: "Technical skills: Go, Postgres",
	}))

	pl := &stubPipeline{}
	h := newAPI(t, Deps{DB: db, Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/process_profile", map[string]any{
		"url": "https://www.linkedin.com/in/ada-lovelace",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Technical skills: Go, Postgres", pl.lastOpts.Context)

	// explicit tech_stack wins over the stored resume
	rec = doJSON(t, h, http.MethodPost, "/process_profile", map[string]any{
		"url":        "https://www.linkedin.com/in/ada-lovelace",
		"tech_stack": "Rust",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rust", pl.lastOpts.Context)
}

func TestProcessProfileStatusByFailureKind(t *testing.T) {
	cases := []struct {
		kind   pipeline.ErrKind
		stage  pipeline.Stage
		status int
	}{
		{pipeline.KindInvalidInput, pipeline.StagePending, http.StatusBadRequest},
		{pipeline.KindAuth, pipeline.StageScraping, http.StatusUnauthorized},
		{pipeline.KindScrape, pipeline.StageScraping, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			pl := &stubPipeline{single: failedOutcome("https://www.linkedin.com/in/x", tc.kind, tc.stage, "nope")}
			h := newAPI(t, Deps{Pipeline: pl})

			rec := doJSON(t, h, http.MethodPost, "/process_profile", map[string]any{
				"url": "https://www.linkedin.com/in/x",
			})
			require.Equal(t, tc.status, rec.Code)

			errObj := decodeMap(t, rec)["error"].(map[string]any)
			assert.Equal(t, string(tc.kind), errObj["code"])
			assert.NotEmpty(t, errObj["request_id"])
		})
	}
}

func TestProcessProfileGenerationFailureReturnsPartial(t *testing.T) {
	out := failedOutcome("https://www.linkedin.com/in/ada-lovelace",
		pipeline.KindGeneration, pipeline.StageGenerating, "model unavailable")
	out.Profile = &domain.Profile{FullName: "Ada Lovelace"}
	out.Company = &domain.CompanyInfo{Name: "Analytical Engines"}
	out.Summary = "Ada founded Analytical Engines."

	pl := &stubPipeline{single: out}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/process_profile", map[string]any{
		"url": "https://www.linkedin.com/in/ada-lovelace",
	})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	body := decodeMap(t, rec)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "generation", errObj["code"])

	partial := body["partial"].(map[string]any)
	assert.Equal(t, "Ada Lovelace", partial["full_name"])
	assert.Equal(t, "Analytical Engines", partial["company_name"])
	assert.Equal(t, "Ada founded Analytical Engines.", partial["summary"])
}

func TestProcessProfileSurfacesWarnings(t *testing.T) {
	out := persistedOutcome("https://www.linkedin.com/in/ada-lovelace")
	out.Warnings = []pipeline.Warning{
		{Code: pipeline.WarnConnectionOverflow, Detail: "connection draft is 340 characters (limit 300)"},
	}
	out.Messages[0].Overflow = true
	out.Messages[0].CharCount = 340

	pl := &stubPipeline{single: out}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/process_profile", map[string]any{
		"url": "https://www.linkedin.com/in/ada-lovelace",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, true, body["overflow"])
	assert.Equal(t, float64(340), body["char_count"])

	warnings := body["warnings"].([]any)
	require.Len(t, warnings, 1)
	assert.Equal(t, "connection_overflow", warnings[0].(map[string]any)["code"])
}

func TestProcessBatchSizeRules(t *testing.T) {
	pl := &stubPipeline{}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/process_batch", map[string]any{"urls": []string{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "At least one LinkedIn URL is required",
		decodeMap(t, rec)["error"].(map[string]any)["message"])

	six := make([]string, 6)
	for i := range six {
		six[i] = "https://www.linkedin.com/in/u"
	}
	rec = doJSON(t, h, http.MethodPost, "/process_batch", map[string]any{"urls": six})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Maximum 5 URLs allowed",
		decodeMap(t, rec)["error"].(map[string]any)["message"])

	assert.Zero(t, pl.batchCalls)
}

func TestProcessBatchMixedResults(t *testing.T) {
	ok := persistedOutcome("https://www.linkedin.com/in/ada-lovelace")
	bad := failedOutcome("https://www.linkedin.com/in/ghost",
		pipeline.KindScrape, pipeline.StageScraping, "profile unreachable")

	pl := &stubPipeline{batch: []*pipeline.Outcome{ok, bad}}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/process_batch", map[string]any{
		"urls": []string{"https://www.linkedin.com/in/ada-lovelace", "https://www.linkedin.com/in/ghost"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var entries []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)

	assert.Equal(t, "Ada Lovelace", entries[0]["full_name"])
	assert.Equal(t, "https://www.linkedin.com/in/ada-lovelace", entries[0]["linkedin_url"])

	assert.Equal(t, "https://www.linkedin.com/in/ghost", entries[1]["url"])
	errObj := entries[1]["error"].(map[string]any)
	assert.Equal(t, "scrape", errObj["code"])
	assert.Contains(t, errObj["message"], "profile unreachable")
}

func TestProcessBatchPipelineErrorMapped(t *testing.T) {
	pl := &stubPipeline{batchErr: &pipeline.StageError{
		Kind:  pipeline.KindInvalidInput,
		Stage: pipeline.StagePending,
		Err:   errors.New("batch of 4 exceeds the 3 url limit"),
	}}
	h := newAPI(t, Deps{Pipeline: pl})

	rec := doJSON(t, h, http.MethodPost, "/process_batch", map[string]any{
		"urls": []string{"a", "b", "c", "d"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
