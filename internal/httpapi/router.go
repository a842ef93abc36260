package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Outreach pipeline, mounted at root where the UI expects it
	ph := ProcessHandler{DB: d.DB, Pipeline: d.Pipeline, Log: d.Log}
	mux.HandleFunc("/process_profile", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Single,
	}))
	mux.HandleFunc("/process_batch", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ph.Batch,
	}))

	// Message history
	hh := HistoryHandler{DB: d.DB, Pipeline: d.Pipeline, Log: d.Log}
	mux.HandleFunc("/message_history", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.List,
	}))
	mux.HandleFunc("/mark_sent", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: hh.MarkSent,
	}))
	mux.HandleFunc("/export_csv", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.ExportCSV,
	}))
	mux.HandleFunc("/profiles/", methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: hh.DeleteByPath, // expects /profiles/{message_id}
	}))

	// Engine status and session control
	sth := StatusHandler{DB: d.DB, Session: d.Session, ModelName: d.ModelName, Log: d.Log}
	mux.HandleFunc("/api/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sth.Get,
	}))
	mux.HandleFunc("/api/session/verify", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sth.VerifySession,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/api/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/api/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/api/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use CfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/linkedin", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetLinkedInPassword,
		http.MethodDelete: sh.DeleteLinkedInPassword,
	}))
	mux.HandleFunc("/api/secrets/gemini", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetGeminiKey,
		http.MethodDelete: sh.DeleteGeminiKey,
	}))

	// Resume context
	rh := ResumeHandler{DB: d.DB, TechStack: d.TechStack, Log: d.Log}
	mux.HandleFunc("/api/resume", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Get,
		http.MethodPut: rh.Put,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Maintenance
	dbh := DBHandler{DB: d.DB}
	mux.HandleFunc("/api/db/checkpoint", dbh.Checkpoint)

	hlh := HealthHandler{}
	mux.HandleFunc("/healthz", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hlh.Health,
	}))

	return mux
}
