package linkedin

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/netutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
)

// Scraper turns a profile page into a structured record using the shared
// authenticated session.
type Scraper struct {
	session *Session
	log     *slog.Logger
}

func NewScraper(s *Session, log *slog.Logger) *Scraper {
	if log == nil {
		log = slog.Default()
	}
	return &Scraper{session: s, log: log.With("component", "linkedin.scraper")}
}

// ScrapeProfile fetches and parses one canonical profile URL.
func (sc *Scraper) ScrapeProfile(ctx context.Context, canonicalURL string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "scraper:ScrapeProfile")
	defer span.End()

	u, err := url.Parse(canonicalURL)
	if err != nil {
		return nil, ErrBadProfileURL
	}

	body, err := sc.session.Get(ctx, u.Path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile fetch failed")
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse profile html: %w", err)
	}

	p, err := parseProfile(doc)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	p.LinkedInURL = canonicalURL
	p.ScrapedAt = time.Now().UTC()

	sc.log.Info("profile scraped",
		"url", canonicalURL,
		"name", p.FullName,
		"experience", len(p.Experience),
	)
	return p, nil
}

// parseProfile understands both the public and the logged-in profile layout.
// FullName is the one field that must parse; everything else degrades to
// empty.
func parseProfile(doc *goquery.Document) (*domain.Profile, error) {
	p := &domain.Profile{}

	p.FullName = firstText(doc,
		"h1.top-card-layout__title",
		"main h1",
		"h1",
	)
	if p.FullName == "" {
		return nil, ErrProfileParse
	}

	p.Headline = firstText(doc,
		"h2.top-card-layout__headline",
		"div.text-body-medium.break-words",
	)
	p.Location = firstText(doc,
		".top-card-layout__first-subline .top-card__subline-item",
		"span.text-body-small.inline.t-black--light.break-words",
	)

	var about []string
	doc.Find("section[data-section=summary] p").Each(func(_ int, sel *goquery.Selection) {
		if t := netutil.CleanText(sel.Text()); t != "" {
			about = append(about, t)
		}
	})
	p.About = strings.Join(about, " ")

	doc.Find("section[data-section=experience] li").Each(func(_ int, sel *goquery.Selection) {
		e := domain.ExperienceEntry{
			Title:     netutil.CleanText(sel.Find("h3").First().Text()),
			Company:   netutil.CleanText(sel.Find("h4").First().Text()),
			DateRange: netutil.CleanText(sel.Find(".date-range, .experience-item__duration").First().Text()),
		}
		if e.Title == "" && e.Company == "" {
			return
		}
		e.Current = strings.Contains(strings.ToLower(e.DateRange), "present")
		p.Experience = append(p.Experience, e)
	})

	doc.Find("section[data-section=educationsDetails] li").Each(func(_ int, sel *goquery.Selection) {
		ed := domain.EducationEntry{
			School:    netutil.CleanText(sel.Find("h3").First().Text()),
			Degree:    netutil.CleanText(sel.Find("h4").First().Text()),
			DateRange: netutil.CleanText(sel.Find(".date-range").First().Text()),
		}
		if ed.School == "" {
			return
		}
		p.Education = append(p.Education, ed)
	})

	return p, nil
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if t := netutil.CleanText(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}
