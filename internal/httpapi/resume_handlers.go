package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"founderreach-engine/internal/pipeline"
	"founderreach-engine/internal/store"
)

// ResumeHandler stores the single resume used as default prompt context.
type ResumeHandler struct {
	DB        *sql.DB
	TechStack func(ctx context.Context, resumeText string) (string, error)
	Log       *slog.Logger
}

type putResumeReq struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (h ResumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	res, err := store.GetResume(r.Context(), h.DB)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "no resume uploaded")
		return
	}
	if err != nil {
		h.Log.Error("resume load failed", "err", err)
		WriteError(w, r, http.StatusInternalServerError, "persistence", "failed to load resume")
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// Put replaces the stored resume and summarizes it into the short tech-stack
// blurb prompts embed. A failed summary degrades to an empty blurb with a
// warning; the upload itself still lands.
func (h ResumeHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req putResumeReq
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		WriteError(w, r, http.StatusBadRequest, "invalid_input", "resume content is required")
		return
	}

	var warnings []pipeline.Warning
	stack, err := h.TechStack(r.Context(), req.Content)
	if err != nil {
		h.Log.Warn("tech stack summary failed", "err", err)
		warnings = append(warnings, pipeline.Warning{Code: "tech_stack_failed", Detail: err.Error()})
		stack = ""
	}

	res := store.Resume{Filename: req.Filename, Content: req.Content, TechStack: stack}
	if err := store.SaveResume(r.Context(), h.DB, res); err != nil {
		h.Log.Error("resume save failed", "err", err)
		WriteError(w, r, http.StatusInternalServerError, "persistence", "failed to save resume")
		return
	}

	saved, err := store.GetResume(r.Context(), h.DB)
	if err != nil {
		saved = res
	}
	WriteJSON(w, http.StatusOK, struct {
		store.Resume
		Warnings []pipeline.Warning `json:"warnings,omitempty"`
	}{Resume: saved, Warnings: warnings})
}
