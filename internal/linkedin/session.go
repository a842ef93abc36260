// Package linkedin owns the authenticated LinkedIn session and the profile
// scraper built on top of it. One Session is created at startup and shared by
// every scrape; it is navigated, never structurally mutated, so concurrent
// reads are safe while login itself is serialized.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"founderreach-engine/internal/netutil"
	"founderreach-engine/internal/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("linkedin")

const defaultBaseURL = "https://www.linkedin.com"

// PasswordFunc defers the keychain lookup until login actually needs it.
type PasswordFunc func() (string, error)

type Options struct {
	Email             string
	Password          PasswordFunc
	CookieFile        string
	BaseURL           string // tests point this at a local server
	Timeout           time.Duration
	RequestsPerMinute int
	Log               *slog.Logger
}

type Status struct {
	Authenticated bool      `json:"authenticated"`
	Email         string    `json:"email"`
	LastVerified  time.Time `json:"last_verified"`
}

type Session struct {
	http       *resty.Client
	base       *url.URL
	email      string
	password   PasswordFunc
	cookieFile string
	limiter    *netutil.HostLimiter
	log        *slog.Logger

	mu       sync.Mutex
	authed   bool
	verified time.Time
}

func NewSession(opts Options) (*Session, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 12
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(base.Hostname()))
	client.SetTimeout(opts.Timeout)

	telemetry.InstrumentResty(client, "linkedin/http")

	s := &Session{
		http:       client,
		base:       base,
		email:      opts.Email,
		password:   opts.Password,
		cookieFile: opts.CookieFile,
		limiter:    netutil.NewHostLimiter(float64(opts.RequestsPerMinute)/60.0, 4),
		log:        opts.Log.With("component", "linkedin.session"),
	}
	if err := s.loadCookies(); err != nil {
		s.log.Debug("no saved cookies loaded", "err", err)
	}
	return s, nil
}

// Get fetches a path relative to the LinkedIn origin with the shared session.
// Landing on the auth wall is reported as ErrAuthWall so callers can tell an
// expired session from a missing page.
func (s *Session) Get(ctx context.Context, path string) ([]byte, error) {
	if err := s.limiter.WaitURL(ctx, s.base.String()); err != nil {
		return nil, err
	}

	res, err := s.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}

	final := finalURL(res)
	if isAuthWall(final) {
		return nil, &AuthError{Reason: ReasonExpired, Err: ErrAuthWall}
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch %s: status %s", path, res.Status())
	}
	return res.Body(), nil
}

// EnsureAuth verifies the session and, when the check fails, runs the
// credential login flow. Safe to call from the scheduler and handlers alike.
func (s *Session) EnsureAuth(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "session:EnsureAuth")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.verifyLocked(ctx) {
		return nil
	}

	s.log.Info("session verification failed, attempting credential login")
	if err := s.loginLocked(ctx); err != nil {
		s.authed = false
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return err
	}
	return nil
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Authenticated: s.authed, Email: s.email, LastVerified: s.verified}
}

// verifyLocked loads the feed and looks for the logged-in nav marker.
func (s *Session) verifyLocked(ctx context.Context) bool {
	body, err := s.Get(ctx, "/feed/")
	if err != nil {
		s.authed = false
		return false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		s.authed = false
		return false
	}

	if doc.Find("#global-nav, nav.global-nav, [class*=global-nav]").Length() > 0 {
		s.authed = true
		s.verified = time.Now().UTC()
		return true
	}
	s.authed = false
	return false
}

func (s *Session) loginLocked(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "session:login")
	defer span.End()

	if s.password == nil {
		return &AuthError{Reason: ReasonBadCredentials, Err: fmt.Errorf("no password source configured")}
	}
	pw, err := s.password()
	if err != nil {
		return &AuthError{Reason: ReasonBadCredentials, Err: err}
	}

	res, err := s.http.R().SetContext(ctx).Get("/login")
	if err != nil {
		return &AuthError{Reason: ReasonNetwork, Err: err}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return &AuthError{Reason: ReasonNetwork, Err: err}
	}

	form := doc.Find("form.login__form")
	if form.Length() == 0 {
		form = doc.Find("form").First()
	}
	action := form.AttrOr("action", "/checkpoint/lg/login-submit")

	fields := map[string]string{}
	form.Find("input[type=hidden]").Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", "")
		if name != "" {
			fields[name] = sel.AttrOr("value", "")
		}
	})
	fields["session_key"] = s.email
	fields["session_password"] = pw

	res, err = s.http.R().SetContext(ctx).SetFormData(fields).Post(action)
	if err != nil {
		return &AuthError{Reason: ReasonNetwork, Err: err}
	}

	final := finalURL(res)
	if strings.Contains(final, "checkpoint/challenge") {
		return &AuthError{Reason: ReasonChallenge, Err: fmt.Errorf("security challenge at %s; resolve it in a browser", final)}
	}

	if !s.verifyLocked(ctx) {
		return &AuthError{Reason: ReasonBadCredentials, Err: fmt.Errorf("nav marker absent after login")}
	}

	if err := s.saveCookies(); err != nil {
		s.log.Warn("could not persist session cookies", "err", err)
	}
	s.log.Info("linkedin login succeeded", "email", s.email)
	return nil
}

// savedCookie keeps only what the jar gives back; expiries are re-learned on
// the next login.
type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *Session) saveCookies() error {
	if s.cookieFile == "" {
		return nil
	}
	jar := s.http.GetClient().Jar
	if jar == nil {
		return nil
	}
	var out []savedCookie
	for _, c := range jar.Cookies(s.base) {
		out = append(out, savedCookie{Name: c.Name, Value: c.Value})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return os.WriteFile(s.cookieFile, b, 0o600)
}

func (s *Session) loadCookies() error {
	if s.cookieFile == "" {
		return nil
	}
	b, err := os.ReadFile(s.cookieFile)
	if err != nil {
		return err
	}
	var saved []savedCookie
	if err := json.Unmarshal(b, &saved); err != nil {
		// A corrupt cookie file is junked rather than retried forever.
		_ = os.Remove(s.cookieFile)
		return err
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{
			Name: c.Name, Value: c.Value,
			Domain: s.base.Hostname(), Path: "/",
		})
	}
	s.http.GetClient().Jar.SetCookies(s.base, cookies)
	return nil
}

func finalURL(res *resty.Response) string {
	if res == nil || res.RawResponse == nil || res.RawResponse.Request == nil {
		return ""
	}
	return res.RawResponse.Request.URL.String()
}

func isAuthWall(u string) bool {
	return strings.Contains(u, "/authwall") ||
		strings.Contains(u, "/login") ||
		strings.Contains(u, "/uas/login")
}
