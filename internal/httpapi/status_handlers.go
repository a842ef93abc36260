package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"founderreach-engine/internal/linkedin"
	"founderreach-engine/internal/store"
)

// StatusHandler reports engine state to the UI header bar.
type StatusHandler struct {
	DB        *sql.DB
	Session   Session
	ModelName string
	Log       *slog.Logger
}

type engineStatus struct {
	Session linkedin.Status `json:"session"`
	Model   string          `json:"model"`
	Stats   store.Stats     `json:"stats"`
}

func (h StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStats(r.Context(), h.DB)
	if err != nil {
		// zero counts beat a dead status bar
		h.Log.Warn("stats query failed", "err", err)
	}
	WriteJSON(w, http.StatusOK, engineStatus{
		Session: h.Session.Status(),
		Model:   h.ModelName,
		Stats:   stats,
	})
}

// VerifySession forces an immediate auth check, re-running the login flow
// when the saved cookies no longer hold.
func (h StatusHandler) VerifySession(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.EnsureAuth(r.Context()); err != nil {
		WriteError(w, r, http.StatusUnauthorized, "auth", "session verification failed: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, h.Session.Status())
}
