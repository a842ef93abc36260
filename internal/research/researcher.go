package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/netutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Hosts that rank for almost any company query but never are the company's
// own site.
var builtinExcluded = []string{
	"linkedin.com",
	"facebook.com",
	"twitter.com",
	"instagram.com",
	"crunchbase.com",
	"bloomberg.com",
	"wikipedia.org",
	"youtube.com",
	"google.com",
}

type Options struct {
	Source          Source
	Timeout         time.Duration // budget for one Research call
	CacheTTL        time.Duration
	CacheSize       int
	MaxNews         int
	ExcludedDomains []string // merged with the builtin set
	Log             *slog.Logger
}

// Researcher runs the three company lookups and memoizes the result. Cached
// snapshots are copied out so callers can stamp per-founder fields (Title)
// without corrupting the cache.
type Researcher struct {
	source   Source
	cache    *expirable.LRU[string, *domain.CompanyInfo]
	excluded []string
	maxNews  int
	timeout  time.Duration
	log      *slog.Logger
}

func New(opts Options) *Researcher {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.MaxNews <= 0 {
		opts.MaxNews = 3
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	excluded := make([]string, 0, len(builtinExcluded)+len(opts.ExcludedDomains))
	excluded = append(excluded, builtinExcluded...)
	for _, d := range opts.ExcludedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			excluded = append(excluded, d)
		}
	}

	return &Researcher{
		source:   opts.Source,
		cache:    expirable.NewLRU[string, *domain.CompanyInfo](opts.CacheSize, nil, opts.CacheTTL),
		excluded: excluded,
		maxNews:  opts.MaxNews,
		timeout:  opts.Timeout,
		log:      opts.Log.With("component", "research"),
	}
}

// Research looks up website, description and news for a company name.
// Whatever succeeded is returned; the error is non-nil only when every
// lookup failed, and such results are not cached so the next run retries.
func (r *Researcher) Research(ctx context.Context, company string) (*domain.CompanyInfo, error) {
	company = strings.TrimSpace(company)
	info := &domain.CompanyInfo{Name: company, ResearchedAt: time.Now().UTC()}
	if company == "" {
		return info, nil
	}

	key := strings.ToLower(company)
	if hit, ok := r.cache.Get(key); ok {
		out := *hit
		out.ResearchedAt = time.Now().UTC()
		return &out, nil
	}

	ctx, span := tracer.Start(ctx, "research:Research")
	defer span.End()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var errs []error

	website, err := r.findWebsite(ctx, company)
	if err != nil {
		errs = append(errs, fmt.Errorf("website: %w", err))
	}
	info.Website = website

	description, err := r.findDescription(ctx, company)
	if err != nil {
		errs = append(errs, fmt.Errorf("description: %w", err))
	}
	info.Description = description

	news, err := r.findNews(ctx, company)
	if err != nil {
		errs = append(errs, fmt.Errorf("news: %w", err))
	}
	info.News = news

	if len(errs) == 3 {
		return info, errors.Join(errs...)
	}

	r.log.Info("company researched",
		"company", company,
		"website", info.Website != "",
		"description", info.Description != "",
		"news", len(info.News),
	)
	cached := *info
	r.cache.Add(key, &cached)
	return info, nil
}

// findWebsite returns the first organic result that is not a directory or
// social site.
func (r *Researcher) findWebsite(ctx context.Context, company string) (string, error) {
	doc, err := r.source.Search(ctx, company+" official website")
	if err != nil {
		return "", err
	}

	var found string
	doc.Find("a.result__url").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := normalizeResultURL(sel.AttrOr("href", ""))
		if link == "" || r.isExcluded(link) {
			return true
		}
		found = link
		return false
	})
	return found, nil
}

func (r *Researcher) findDescription(ctx context.Context, company string) (string, error) {
	doc, err := r.source.Search(ctx, "what is "+company)
	if err != nil {
		return "", err
	}

	if s := netutil.CleanText(doc.Find("a.result__snippet").First().Text()); s != "" {
		return s, nil
	}
	// Instant-answer definition box, when present.
	return netutil.CleanText(doc.Find("div.result--definition").First().Text()), nil
}

func (r *Researcher) findNews(ctx context.Context, company string) ([]domain.NewsItem, error) {
	doc, err := r.source.Search(ctx, company+" news")
	if err != nil {
		return nil, err
	}

	var items []domain.NewsItem
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := netutil.CleanText(sel.Find("a.result__a").First().Text())
		link := normalizeResultURL(sel.Find("a.result__url").First().AttrOr("href", ""))
		if title != "" && link != "" {
			items = append(items, domain.NewsItem{Title: title, URL: link})
		}
		return len(items) < r.maxNews
	})
	return items, nil
}

func (r *Researcher) isExcluded(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range r.excluded {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// normalizeResultURL unwraps DuckDuckGo's /l/ redirect and rejects anything
// that is not a plausible absolute web URL.
func normalizeResultURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return normalizeResultURL(target)
		}
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if !strings.Contains(u.Hostname(), ".") {
		return ""
	}
	return u.String()
}
