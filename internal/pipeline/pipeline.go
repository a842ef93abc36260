// Package pipeline sequences scrape, research, generate and persist for one
// LinkedIn profile at a time, with isolated failure handling per stage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"founderreach-engine/internal/domain"
	"founderreach-engine/internal/events"
	"founderreach-engine/internal/genai"
	"founderreach-engine/internal/linkedin"
	"founderreach-engine/internal/store"
)

// Collaborator surfaces, one per stage. The concrete types from linkedin,
// research and genai satisfy them; tests substitute stubs.
type Scraper interface {
	ScrapeProfile(ctx context.Context, canonicalURL string) (*domain.Profile, error)
}

type Researcher interface {
	Research(ctx context.Context, company string) (*domain.CompanyInfo, error)
}

type Generator interface {
	Summarize(ctx context.Context, p *domain.Profile, c *domain.CompanyInfo) (string, error)
	Draft(ctx context.Context, p *domain.Profile, c *domain.CompanyInfo, summary string, typ domain.MessageType, userContext string) (genai.Draft, error)
}

// Limits bounds a run. Zero timeouts mean the parent context alone bounds the
// stage; zero delays mean no politeness pause between batch items.
type Limits struct {
	BatchMax        int
	ScrapeTimeout   time.Duration
	ResearchTimeout time.Duration
	GenerateTimeout time.Duration
	PersistTimeout  time.Duration
	BatchDelayMin   time.Duration
	BatchDelayMax   time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		BatchMax:        5,
		ScrapeTimeout:   60 * time.Second,
		ResearchTimeout: 45 * time.Second,
		GenerateTimeout: 2 * time.Minute,
		PersistTimeout:  10 * time.Second,
		BatchDelayMin:   10 * time.Second,
		BatchDelayMax:   20 * time.Second,
	}
}

// Deps holds the injected collaborators. Researcher may be nil (research
// disabled); Events may be nil (no progress feed).
type Deps struct {
	Scraper    Scraper
	Researcher Researcher
	Generator  Generator
	Saver      Saver
	Events     *events.Hub
	Limits     Limits
	Now        func() time.Time
	Log        *slog.Logger
}

// Pipeline runs profiles through the scrape, research, generate and persist
// stages.
// One logical worker: batches are strictly sequential because the scraper
// shares one authenticated session and the externals are rate-sensitive.
type Pipeline struct {
	deps   Deps
	tracer trace.Tracer
}

// Options selects what a run drafts.
type Options struct {
	// Types lists the message types to draft, in order. Empty means one
	// connection request.
	Types []domain.MessageType

	// Context is the caller's tech stack / target role, fed to the
	// generator for job inquiries.
	Context string
}

func New(deps Deps) (*Pipeline, error) {
	if deps.Scraper == nil || deps.Generator == nil || deps.Saver == nil {
		return nil, errors.New("pipeline: scraper, generator and saver are required")
	}
	if deps.Limits.BatchMax <= 0 {
		deps.Limits.BatchMax = 5
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Pipeline{
		deps:   deps,
		tracer: otel.Tracer("founderreach/pipeline"),
	}, nil
}

// ProcessSingle runs one URL through every stage and always returns an
// Outcome: either persisted, or failed at some stage with everything gathered
// up to that point still attached.
func (p *Pipeline) ProcessSingle(ctx context.Context, rawURL string, opts Options) *Outcome {
	out := &Outcome{URL: rawURL, Stage: StagePending}

	canonical, err := linkedin.CanonicalProfileURL(rawURL)
	if err != nil {
		return out.fail(KindInvalidInput, StagePending, err)
	}
	out.URL = canonical

	types := opts.Types
	if len(types) == 0 {
		types = []domain.MessageType{domain.MessageConnection}
	}
	for _, typ := range types {
		if !typ.Valid() {
			return out.fail(KindInvalidInput, StagePending, fmt.Errorf("unknown message type %q", typ))
		}
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.process",
		trace.WithAttributes(attribute.String("profile.url", canonical)))
	defer span.End()

	log := p.deps.Log.With("url", canonical)

	// scrape
	p.advance(out, StageScraping, "")
	sctx, done := p.stage(ctx, "pipeline.scrape", p.deps.Limits.ScrapeTimeout)
	profile, err := p.deps.Scraper.ScrapeProfile(sctx, canonical)
	done()
	if err != nil {
		kind := KindScrape
		var authErr *linkedin.AuthError
		if errors.As(err, &authErr) || errors.Is(err, linkedin.ErrAuthWall) {
			kind = KindAuth
		}
		log.Warn("scrape failed", "kind", string(kind), "err", err)
		return p.failAndEmit(out, kind, StageScraping, err)
	}
	out.Profile = profile
	p.advance(out, StageScraped, profile.FullName)

	// research, best effort
	companyName, title := profile.CurrentCompany()
	company := &domain.CompanyInfo{Name: companyName, Title: title}
	if companyName != "" && p.deps.Researcher != nil {
		p.advance(out, StageResearching, companyName)
		rctx, done := p.stage(ctx, "pipeline.research", p.deps.Limits.ResearchTimeout)
		info, err := p.deps.Researcher.Research(rctx, companyName)
		done()
		if err != nil {
			// degraded, never fatal: the draft just has less to work with
			out.warn(WarnResearchFailed, err.Error())
			log.Warn("research degraded", "company", companyName, "err", err)
		} else {
			info.Title = title
			company = info
		}
		p.advance(out, StageResearched, "")
	}
	out.Company = company

	// generate
	p.advance(out, StageGenerating, "")
	gctx, done := p.stage(ctx, "pipeline.generate", p.deps.Limits.GenerateTimeout)
	summary, err := p.deps.Generator.Summarize(gctx, profile, company)
	if err != nil {
		done()
		log.Warn("summary generation failed", "err", err)
		return p.failAndEmit(out, KindGeneration, StageGenerating, err)
	}
	out.Summary = summary
	for _, typ := range types {
		d, err := p.deps.Generator.Draft(gctx, profile, company, summary, typ, opts.Context)
		if err != nil {
			done()
			log.Warn("draft generation failed", "type", string(typ), "err", err)
			return p.failAndEmit(out, KindGeneration, StageGenerating, err)
		}
		m := Message{
			GeneratedMessage: domain.GeneratedMessage{
				Type:        d.Type,
				Text:        d.Text,
				CharCount:   d.CharCount,
				GeneratedAt: p.deps.Now(),
			},
			Limit:    d.Limit,
			Overflow: d.Overflow,
		}
		if d.Overflow {
			out.warn(WarnConnectionOverflow,
				fmt.Sprintf("connection draft is %d characters (limit %d)", d.CharCount, d.Limit))
		}
		out.Messages = append(out.Messages, m)
	}
	done()
	p.advance(out, StageGenerated, "")

	// persist
	p.advance(out, StagePersisting, "")
	pctx, done := p.stage(ctx, "pipeline.persist", p.deps.Limits.PersistTimeout)
	ids, err := p.deps.Saver.SaveOutcome(pctx, profile, company, out.domainMessages())
	done()
	if err != nil {
		// the caller still gets the drafted text; ids stay zero
		out.warn(WarnPersistFailed, err.Error())
		log.Error("persist failed, returning in-memory results", "err", err)
		p.advance(out, StageGenerated, "persist failed: "+err.Error())
		return out
	}
	out.Saved = ids
	out.Company.ID = ids.CompanyID
	for i := range out.Messages {
		out.Messages[i].FounderID = ids.FounderID
		if i < len(ids.MessageIDs) {
			out.Messages[i].ID = ids.MessageIDs[i]
		}
	}
	p.advance(out, StagePersisted, "")

	log.Info("profile processed",
		"founder", profile.FullName,
		"company", company.Name,
		"messages", len(out.Messages),
		"warnings", len(out.Warnings),
	)
	return out
}

// ProcessBatch runs up to Limits.BatchMax URLs sequentially, in input order,
// one outcome per input URL. Size violations are rejected before any work.
// Duplicate URLs are processed once; later occurrences share the first
// occurrence's outcome. One URL's failure never aborts the rest.
func (p *Pipeline) ProcessBatch(ctx context.Context, urls []string, opts Options) ([]*Outcome, error) {
	if len(urls) == 0 {
		return nil, stageErr(KindInvalidInput, StagePending, errors.New("at least one profile url is required"))
	}
	if len(urls) > p.deps.Limits.BatchMax {
		return nil, stageErr(KindInvalidInput, StagePending,
			fmt.Errorf("batch of %d exceeds the %d url limit", len(urls), p.deps.Limits.BatchMax))
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.batch",
		trace.WithAttributes(attribute.Int("batch.size", len(urls))))
	defer span.End()

	outcomes := make([]*Outcome, len(urls))
	first := make(map[string]int, len(urls)) // canonical URL -> first slot
	processed := 0

	for i, raw := range urls {
		canonical, err := linkedin.CanonicalProfileURL(raw)
		if err != nil {
			out := &Outcome{URL: raw, Stage: StagePending}
			outcomes[i] = out.fail(KindInvalidInput, StagePending, err)
			continue
		}
		if j, ok := first[canonical]; ok {
			outcomes[i] = outcomes[j]
			continue
		}
		first[canonical] = i

		if processed > 0 {
			p.batchDelay(ctx)
		}
		p.deps.Events.Emit(events.TypeBatch, 1,
			events.BatchPayload{Index: i, Total: len(urls), URL: canonical})

		outcomes[i] = p.ProcessSingle(ctx, canonical, opts)
		processed++

		p.deps.Events.Emit(events.TypeBatch, 1,
			events.BatchPayload{Index: i, Total: len(urls), URL: canonical, Done: true})
	}
	return outcomes, nil
}

// MarkSent flips the sent flag on a stored message. Marking twice is fine;
// an unknown id maps to KindNotFound.
func (p *Pipeline) MarkSent(ctx context.Context, messageID int64) error {
	err := p.deps.Saver.MarkSent(ctx, messageID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return stageErr(KindNotFound, StagePersisting, err)
	default:
		return stageErr(KindPersistence, StagePersisting, err)
	}
}

// History lists every drafted message, most recent first.
func (p *Pipeline) History(ctx context.Context) ([]store.HistoryRow, error) {
	rows, err := p.deps.Saver.History(ctx)
	if err != nil {
		return nil, stageErr(KindPersistence, StagePersisting, err)
	}
	return rows, nil
}

// stage opens a child span and, when timeout > 0, bounds the stage with it.
// The returned func ends both.
func (p *Pipeline) stage(ctx context.Context, name string, timeout time.Duration) (context.Context, func()) {
	ctx, span := p.tracer.Start(ctx, name)
	if timeout <= 0 {
		return ctx, func() { span.End() }
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		cancel()
		span.End()
	}
}

func (p *Pipeline) advance(out *Outcome, s Stage, detail string) {
	out.Stage = s
	p.deps.Events.Emit(events.TypeStage, 1,
		events.StagePayload{URL: out.URL, Stage: string(s), Detail: detail})
}

func (p *Pipeline) failAndEmit(out *Outcome, kind ErrKind, stage Stage, err error) *Outcome {
	out.fail(kind, stage, err)
	p.deps.Events.Emit(events.TypeStage, 1,
		events.StagePayload{URL: out.URL, Stage: string(StageFailed), Detail: err.Error()})
	return out
}

// batchDelay pauses between batch items so runs look human-paced. Cancelling
// the context cuts the pause short.
func (p *Pipeline) batchDelay(ctx context.Context) {
	lo, hi := p.deps.Limits.BatchDelayMin, p.deps.Limits.BatchDelayMax
	if hi < lo {
		hi = lo
	}
	if hi <= 0 {
		return
	}
	d := lo
	if jitter := hi - lo; jitter > 0 {
		d += time.Duration(rand.Int64N(int64(jitter) + 1))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
