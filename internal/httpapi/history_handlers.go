package httpapi

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"founderreach-engine/internal/pipeline"
	"founderreach-engine/internal/store"
)

// HistoryHandler serves the persisted message log: listing, the sent flag,
// CSV export, and cascade deletion of a founder via one of its messages.
type HistoryHandler struct {
	DB       *sql.DB
	Pipeline Pipeline
	Log      *slog.Logger
}

type markSentReq struct {
	MessageID int64 `json:"message_id"`
}

func (h HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Pipeline.History(r.Context())
	if err != nil {
		h.Log.Error("history query failed", "err", err)
		WriteError(w, r, http.StatusInternalServerError, "persistence", "failed to load message history")
		return
	}
	if rows == nil {
		rows = []store.HistoryRow{}
	}
	WriteJSON(w, http.StatusOK, rows)
}

func (h HistoryHandler) MarkSent(w http.ResponseWriter, r *http.Request) {
	var req markSentReq
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MessageID <= 0 {
		WriteError(w, r, http.StatusBadRequest, "invalid_input", "Message ID is required")
		return
	}

	if err := h.Pipeline.MarkSent(r.Context(), req.MessageID); err != nil {
		var serr *pipeline.StageError
		status, code := http.StatusInternalServerError, "persistence"
		if errors.As(err, &serr) {
			status, code = statusForKind(serr.Kind), string(serr.Kind)
		}
		resp := struct {
			Success bool `json:"success"`
			APIError
		}{}
		resp.Error.Code = code
		resp.Error.Message = err.Error()
		resp.Error.RequestID = RequestIDFrom(r.Context())
		WriteJSON(w, status, resp)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h HistoryHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="linkedin_messages.csv"`)
	if err := store.ExportCSV(r.Context(), h.DB, w); err != nil {
		// headers are gone; all we can do is log and cut the stream short
		h.Log.Error("csv export failed", "err", err)
	}
}

// DeleteByPath removes the founder owning the message in /profiles/{id},
// cascading to its company and message rows.
func (h HistoryHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r.URL.Path, "/profiles/")
	if !ok {
		WriteError(w, r, http.StatusBadRequest, "invalid_input", "invalid message id")
		return
	}

	if err := store.DeleteFounderByMessage(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, r, http.StatusNotFound, "not_found", "no message with that id")
			return
		}
		h.Log.Error("profile delete failed", "message_id", id, "err", err)
		WriteError(w, r, http.StatusInternalServerError, "persistence", "delete failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
