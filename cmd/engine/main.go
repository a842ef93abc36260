package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"founderreach-engine/internal/config"
	"founderreach-engine/internal/events"
	"founderreach-engine/internal/genai"
	"founderreach-engine/internal/httpapi"
	"founderreach-engine/internal/linkedin"
	"founderreach-engine/internal/logging"
	"founderreach-engine/internal/pipeline"
	"founderreach-engine/internal/research"
	"founderreach-engine/internal/scheduler"
	"founderreach-engine/internal/secrets"
	"founderreach-engine/internal/store"
	"founderreach-engine/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "founderreach-engine:", err)
		os.Exit(1)
	}
}

func run() error {
	dataDirFlag := flag.String("data-dir", "", "engine data directory (default $FOUNDERREACH_DATA_DIR, else the user config dir)")
	addrFlag := flag.String("addr", "", "listen address override, e.g. 127.0.0.1:8787")
	flag.Parse()

	dataDir, err := resolveDataDir(*dataDirFlag)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// one engine per data dir
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("another engine instance is already running on %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	userCfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return fmt.Errorf("config bootstrap failed: %w", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		if err := config.OverlayPrompts(&cfg, filepath.Join(dataDir, "prompts.yml")); err != nil {
			return cfg, err
		}
		normalized, _ := config.NormalizeAndValidate(cfg)
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
	}
	if *addrFlag != "" {
		cfg.Server.Addr = *addrFlag
	}
	cfgVal.Store(cfg)

	log := logging.New(cfg.Log.Level)
	if _, vr := config.NormalizeAndValidate(cfg); !vr.OK() || len(vr.Warnings) > 0 {
		for _, msg := range vr.Errors {
			log.Error("config", "error", msg)
		}
		for _, msg := range vr.Warnings {
			log.Warn("config", "warning", msg)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, "founderreach-engine", cfg)
	if err != nil {
		log.Warn("telemetry setup failed, continuing without traces", "err", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tel.Shutdown(sctx)
	}()

	dbPath := filepath.Join(dataDir, "founderreach.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	cookieFile := cfg.LinkedIn.CookieFile
	if cookieFile == "" {
		cookieFile = filepath.Join(dataDir, "cookies.json")
	}
	session, err := linkedin.NewSession(linkedin.Options{
		Email: cfg.LinkedIn.Email,
		Password: func() (string, error) {
			cur := cfgVal.Load().(config.Config)
			return secrets.GetLinkedInPassword(secrets.LinkedInKeyringAccount(cur))
		},
		CookieFile:        cookieFile,
		Timeout:           time.Duration(cfg.LinkedIn.TimeoutSeconds) * time.Second,
		RequestsPerMinute: cfg.LinkedIn.RequestsPerMinute,
		Log:               log,
	})
	if err != nil {
		return err
	}

	// Auth failures must not keep the server down: the UI needs the API up
	// to fix credentials.
	authCtx, cancelAuth := context.WithTimeout(ctx, 2*time.Minute)
	if err := session.EnsureAuth(authCtx); err != nil {
		log.Warn("linkedin auth failed at startup, set credentials and re-verify via the API", "err", err)
	}
	cancelAuth()

	llm, err := genai.NewClient(genai.Config{
		Key:             secrets.GetGeminiKey,
		BaseURL:         cfg.Gemini.BaseURL,
		Model:           cfg.Gemini.Model,
		Timeout:         time.Duration(cfg.Gemini.TimeoutSeconds) * time.Second,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	})
	if err != nil {
		return err
	}
	defer llm.Close()

	gen, err := genai.New(genai.Options{
		LLM: llm,
		Limits: genai.Limits{
			ConnectionMax: cfg.Limits.ConnectionMaxChars,
			InquiryMin:    cfg.Limits.InquiryMinChars,
			InquiryMax:    cfg.Limits.InquiryMaxChars,
		},
		Prompts: genai.PromptOverrides{
			Summary:    cfg.Prompts.Summary,
			Connection: cfg.Prompts.Connection,
			JobInquiry: cfg.Prompts.JobInquiry,
		},
		Log: log,
	})
	if err != nil {
		return fmt.Errorf("prompt templates: %w", err)
	}

	var researcher pipeline.Researcher
	if cfg.Research.Enabled {
		researcher = research.New(research.Options{
			Source: research.NewDuckDuckGo(research.SourceOptions{
				Timeout: time.Duration(cfg.Research.TimeoutSeconds) * time.Second,
			}),
			Timeout:         time.Duration(cfg.Research.TimeoutSeconds) * time.Second,
			CacheTTL:        time.Duration(cfg.Research.CacheTTLMinutes) * time.Minute,
			MaxNews:         cfg.Research.MaxNews,
			ExcludedDomains: cfg.Research.ExcludedDomains,
			Log:             log,
		})
	} else {
		log.Info("company research disabled")
	}

	hub := events.NewHub()

	limits := pipeline.DefaultLimits()
	limits.BatchMax = cfg.Limits.BatchMax
	limits.BatchDelayMin = time.Duration(cfg.LinkedIn.BatchDelayMinSeconds) * time.Second
	limits.BatchDelayMax = time.Duration(cfg.LinkedIn.BatchDelayMaxSeconds) * time.Second

	pipe, err := pipeline.New(pipeline.Deps{
		Scraper:    linkedin.NewScraper(session, log),
		Researcher: researcher,
		Generator:  gen,
		Saver:      pipeline.DBSaver{DB: db.Pool},
		Events:     hub,
		Limits:     limits,
		Log:        log,
	})
	if err != nil {
		return err
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Pipeline:    pipe,
		Session:     session,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		TechStack:   gen.SummarizeTechStack,
		ModelName:   llm.ModelName(),
		Log:         log,
	})

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.Recover(log), httpapi.AccessLog(log), httpapi.Cors),
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := randomToken(16)
	if err != nil {
		return err
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv, log))

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}

	log.Info("engine listening",
		"addr", "http://"+ln.Addr().String(),
		"db", dbPath,
		"config", userCfgPath,
	)
	// the supervising UI reads this from our stdout pipe
	log.Info("shutdown token issued", "token", token)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// server exit (incl. /shutdown) takes the whole engine down
		defer stop()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		interval := time.Duration(cfg.LinkedIn.VerifyMinutes) * time.Minute
		scheduler.Every(gctx, interval, "session-verify", log, func(tctx context.Context) error {
			err := session.EnsureAuth(tctx)
			payload := events.SessionPayload{State: "authenticated"}
			if err != nil {
				payload = events.SessionPayload{State: "unauthenticated", Detail: err.Error()}
			}
			hub.Emit(events.TypeSession, 1, payload)
			return err
		})
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err = g.Wait()
	log.Info("engine stopped")
	return err
}

func resolveDataDir(flagVal string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if env := os.Getenv("FOUNDERREACH_DATA_DIR"); env != "" {
		return env, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Join(base, "founderreach"), nil
}
