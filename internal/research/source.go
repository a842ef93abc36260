// Package research gathers public company signals to ground the drafted
// messages: website, a one-line description, recent news. Everything here is
// best-effort; the pipeline treats an empty field as normal, not as failure.
package research

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"founderreach-engine/internal/netutil"
	"founderreach-engine/internal/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("research")

// Source is a search backend that answers a free-text query with a parsed
// result page. One implementation ships (DuckDuckGo); the seam exists for
// tests and for swapping in a paid search API later.
type Source interface {
	Search(ctx context.Context, query string) (*goquery.Document, error)
}

const defaultSearchBaseURL = "https://html.duckduckgo.com"

// DuckDuckGo queries the HTML (no-JS) endpoint, which returns parseable
// markup without an API key. It rotates browser user agents and rate-limits
// itself so bursts of batch research do not get the host blocked.
type DuckDuckGo struct {
	http    *resty.Client
	limiter *netutil.HostLimiter
}

type SourceOptions struct {
	BaseURL           string // tests point this at a local server
	Timeout           time.Duration
	RequestsPerMinute int
}

func NewDuckDuckGo(opts SourceOptions) *DuckDuckGo {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultSearchBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 30
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetTimeout(opts.Timeout)
	telemetry.InstrumentResty(client, "research/http")

	return &DuckDuckGo{
		http:    client,
		limiter: netutil.NewHostLimiter(float64(opts.RequestsPerMinute)/60.0, 3),
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string) (*goquery.Document, error) {
	if err := d.limiter.WaitURL(ctx, d.http.BaseURL); err != nil {
		return nil, err
	}

	res, err := d.http.R().
		SetContext(ctx).
		SetHeader("User-Agent", netutil.RandomUserAgent()).
		SetQueryParam("q", query).
		Get("/html/")
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search %q: status %s", query, res.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("search %q: parse results: %w", query, err)
	}
	return doc, nil
}
