package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/pipeline"
	"founderreach-engine/internal/store"
)

// ProcessHandler runs the scrape, research, generate, persist pipeline on
// behalf of the UI.
type ProcessHandler struct {
	DB       *sql.DB
	Pipeline Pipeline
	Log      *slog.Logger
}

type processProfileReq struct {
	URL         string `json:"url"`
	TechStack   string `json:"tech_stack"`
	MessageType string `json:"message_type"`
}

type processBatchReq struct {
	URLs      []string `json:"urls"`
	TechStack string   `json:"tech_stack"`
}

// processedProfile is the success payload for one processed URL.
type processedProfile struct {
	LinkedInURL string             `json:"linkedin_url"`
	FullName    string             `json:"full_name"`
	CompanyName string             `json:"company_name"`
	MessageID   int64              `json:"message_id"`
	MessageType domain.MessageType `json:"message_type"`
	MessageText string             `json:"message_text"`
	CharCount   int                `json:"char_count"`
	Overflow    bool               `json:"overflow"`
	Warnings    []pipeline.Warning `json:"warnings,omitempty"`
}

type partialProfile struct {
	FullName    string `json:"full_name"`
	CompanyName string `json:"company_name"`
	Summary     string `json:"summary"`
}

// generationFailure is the 502 body: the usual error envelope plus whatever
// was gathered before the model call failed, so the UI can offer a retry
// without re-scraping.
type generationFailure struct {
	APIError
	Partial partialProfile `json:"partial"`
}

func (h ProcessHandler) Single(w http.ResponseWriter, r *http.Request) {
	var req processProfileReq
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_input", "LinkedIn URL is required")
		return
	}

	typ := domain.MessageType(req.MessageType)
	if req.MessageType == "" {
		typ = domain.MessageConnection
	}
	if !typ.Valid() {
		WriteError(w, r, http.StatusBadRequest, "invalid_input",
			"message_type must be \"connection\" or \"job_inquiry\"")
		return
	}

	out := h.Pipeline.ProcessSingle(r.Context(), req.URL, pipeline.Options{
		Types:   []domain.MessageType{typ},
		Context: h.userContext(r.Context(), req.TechStack),
	})
	if out.Failed() {
		h.writeOutcomeError(w, r, out)
		return
	}
	WriteJSON(w, http.StatusOK, profilePayload(out))
}

func (h ProcessHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req processBatchReq
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.URLs) == 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_input", "At least one LinkedIn URL is required")
		return
	}
	if len(req.URLs) > 5 {
		WriteError(w, r, http.StatusBadRequest, "invalid_input", "Maximum 5 URLs allowed")
		return
	}

	// Batch runs draft connection requests; inquiries stay a one-at-a-time
	// action in the UI.
	outs, err := h.Pipeline.ProcessBatch(r.Context(), req.URLs, pipeline.Options{
		Context: h.userContext(r.Context(), req.TechStack),
	})
	if err != nil {
		var serr *pipeline.StageError
		if errors.As(err, &serr) {
			WriteStageError(w, r, serr)
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	entries := make([]any, len(outs))
	for i, out := range outs {
		if out.Failed() {
			entries[i] = batchFailure(out)
			continue
		}
		entries[i] = profilePayload(out)
	}
	WriteJSON(w, http.StatusOK, entries)
}

// userContext resolves the sender-background blurb for prompts: an explicit
// tech_stack from the request wins, otherwise the stored resume's summary.
func (h ProcessHandler) userContext(ctx context.Context, explicit string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	if h.DB == nil {
		return ""
	}
	res, err := store.GetResume(ctx, h.DB)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.Log.Warn("resume lookup failed", "err", err)
		}
		return ""
	}
	return res.TechStack
}

func (h ProcessHandler) writeOutcomeError(w http.ResponseWriter, r *http.Request, out *pipeline.Outcome) {
	serr := out.Err
	if serr.Kind == pipeline.KindGeneration && out.Profile != nil {
		var resp generationFailure
		resp.Error.Code = string(serr.Kind)
		resp.Error.Message = serr.Error()
		resp.Error.RequestID = RequestIDFrom(r.Context())
		resp.Partial.FullName = out.Profile.FullName
		resp.Partial.Summary = out.Summary
		if out.Company != nil {
			resp.Partial.CompanyName = out.Company.Name
		}
		WriteJSON(w, statusForKind(serr.Kind), resp)
		return
	}
	WriteStageError(w, r, serr)
}

// profilePayload flattens a successful outcome into the wire shape. Multiple
// drafted messages report the first; the rest are reachable via history.
func profilePayload(out *pipeline.Outcome) processedProfile {
	p := processedProfile{
		LinkedInURL: out.URL,
		FullName:    out.Profile.FullName,
		Warnings:    out.Warnings,
	}
	if out.Company != nil {
		p.CompanyName = out.Company.Name
	}
	if len(out.Messages) > 0 {
		m := out.Messages[0]
		p.MessageID = m.ID
		p.MessageType = m.Type
		p.MessageText = m.Text
		p.CharCount = m.CharCount
		p.Overflow = m.Overflow
	}
	return p
}

func batchFailure(out *pipeline.Outcome) map[string]any {
	return map[string]any{
		"url": out.URL,
		"error": map[string]string{
			"code":    string(out.Err.Kind),
			"message": out.Err.Error(),
		},
	}
}
