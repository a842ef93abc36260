package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"founderreach-engine/internal/config"
	"founderreach-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setPasswordReq struct {
	Password string `json:"password"`
}

type setAPIKeyReq struct {
	APIKey string `json:"api_key"`
}

func (h SecretsHandler) SetLinkedInPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetLinkedInPassword(secrets.LinkedInKeyringAccount(cfg), req.Password); err != nil {
		http.Error(w, "failed to store password: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) SetGeminiKey(w http.ResponseWriter, r *http.Request) {
	var req setAPIKeyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := secrets.SetGeminiKey(req.APIKey); err != nil {
		http.Error(w, "failed to store API key: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteLinkedInPassword(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.DeleteLinkedInPassword(secrets.LinkedInKeyringAccount(cfg)); err != nil {
		http.Error(w, "failed to delete password: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteGeminiKey(w http.ResponseWriter, r *http.Request) {
	if err := secrets.DeleteGeminiKey(); err != nil {
		http.Error(w, "failed to delete API key: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
