package httpapi

import (
	"encoding/json"
	"net/http"

	"founderreach-engine/internal/pipeline"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// statusForKind maps pipeline failure kinds onto HTTP statuses. Scrape
// failures are 422: the request was well formed, the profile was not.
func statusForKind(kind pipeline.ErrKind) int {
	switch kind {
	case pipeline.KindInvalidInput:
		return http.StatusBadRequest
	case pipeline.KindAuth:
		return http.StatusUnauthorized
	case pipeline.KindScrape:
		return http.StatusUnprocessableEntity
	case pipeline.KindGeneration:
		return http.StatusBadGateway
	case pipeline.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteStageError renders a pipeline StageError with its mapped status. The
// kind doubles as the wire error code.
func WriteStageError(w http.ResponseWriter, r *http.Request, serr *pipeline.StageError) {
	WriteError(w, r, statusForKind(serr.Kind), string(serr.Kind), serr.Error())
}
