package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"unicode/utf8"

	"founderreach-engine/internal/domain"
)

// LLM is the completion surface the Generator drafts against. *Client
// satisfies it; tests substitute a stub.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Limits carries the message length rules, in runes.
type Limits struct {
	ConnectionMax int // hard cap for connection requests
	InquiryMin    int // soft band for job inquiries
	InquiryMax    int
}

// DefaultLimits mirrors LinkedIn's own connection-note cap.
func DefaultLimits() Limits {
	return Limits{ConnectionMax: 300, InquiryMin: 800, InquiryMax: 1200}
}

// Draft is one generated message plus its length verdict. Text is always the
// model's full output; an over-limit draft is flagged, not cut.
type Draft struct {
	Type      domain.MessageType
	Text      string
	CharCount int // runes
	Limit     int // the applicable bound
	Overflow  bool
}

// PromptOverrides replaces the built-in prompt templates; empty fields keep
// the defaults. Templates use text/template syntax over promptData fields.
type PromptOverrides struct {
	Summary    string
	Connection string
	JobInquiry string
	TechStack  string
}

// Options configures a Generator.
type Options struct {
	LLM     LLM
	Limits  Limits
	Prompts PromptOverrides
	Log     *slog.Logger
}

// Generator turns profile + company data into a research summary and
// personalized outreach drafts.
type Generator struct {
	llm    LLM
	limits Limits
	log    *slog.Logger
	tmpl   map[string]*template.Template
}

// promptData is the field set available to prompt templates.
type promptData struct {
	FirstName   string
	FullName    string
	Company     string
	Title       string
	ProfileJSON string
	CompanyJSON string
	News        string
	Summary     string
	TechStack   string
	Resume      string
	Limit       int
	Min         int
	Max         int
}

func New(opts Options) (*Generator, error) {
	if opts.LLM == nil {
		return nil, fmt.Errorf("genai: llm is required")
	}
	if opts.Limits.ConnectionMax <= 0 {
		opts.Limits = DefaultLimits()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	g := &Generator{
		llm:    opts.LLM,
		limits: opts.Limits,
		log:    opts.Log,
		tmpl:   make(map[string]*template.Template),
	}

	sources := map[string]string{
		"summary":    defaultSummaryPrompt,
		"connection": defaultConnectionPrompt,
		"jobinquiry": defaultJobInquiryPrompt,
		"techstack":  defaultTechStackPrompt,
	}
	if opts.Prompts.Summary != "" {
		sources["summary"] = opts.Prompts.Summary
	}
	if opts.Prompts.Connection != "" {
		sources["connection"] = opts.Prompts.Connection
	}
	if opts.Prompts.JobInquiry != "" {
		sources["jobinquiry"] = opts.Prompts.JobInquiry
	}
	if opts.Prompts.TechStack != "" {
		sources["techstack"] = opts.Prompts.TechStack
	}
	for name, src := range sources {
		t, err := template.New(name).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("genai: parse %s prompt: %w", name, err)
		}
		g.tmpl[name] = t
	}
	return g, nil
}

// Summarize condenses the scraped profile and researched company into a short
// fact-dense brief that the drafting prompts personalize against.
func (g *Generator) Summarize(ctx context.Context, p *domain.Profile, c *domain.CompanyInfo) (string, error) {
	data := g.promptData(p, c, "", "")
	prompt, err := g.render("summary", data)
	if err != nil {
		return "", err
	}
	out, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize %s: %w", p.FullName, err)
	}
	return out, nil
}

// Draft generates one outreach message of the requested type. userContext is
// the caller's tech stack / target role; empty means the prompt falls back to
// whatever resume context was stored.
func (g *Generator) Draft(ctx context.Context, p *domain.Profile, c *domain.CompanyInfo, summary string, typ domain.MessageType, userContext string) (Draft, error) {
	if !typ.Valid() {
		return Draft{}, fmt.Errorf("genai: unknown message type %q", typ)
	}

	data := g.promptData(p, c, summary, userContext)

	var name string
	switch typ {
	case domain.MessageConnection:
		name = "connection"
	case domain.MessageJobInquiry:
		name = "jobinquiry"
	}
	prompt, err := g.render(name, data)
	if err != nil {
		return Draft{}, err
	}

	text, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return Draft{}, fmt.Errorf("draft %s for %s: %w", typ, p.FullName, err)
	}
	text = strings.TrimSpace(text)

	d := Draft{
		Type:      typ,
		Text:      text,
		CharCount: utf8.RuneCountInString(text),
	}
	switch typ {
	case domain.MessageConnection:
		d.Limit = g.limits.ConnectionMax
		d.Overflow = d.CharCount > d.Limit
	case domain.MessageJobInquiry:
		d.Limit = g.limits.InquiryMax
	}
	if d.Overflow {
		g.log.Warn("draft over limit",
			"type", string(typ), "chars", d.CharCount, "limit", d.Limit)
	}
	return d, nil
}

// SummarizeTechStack distills a pasted resume into the short skills/role/
// education lines that job-inquiry prompts embed as the sender's background.
func (g *Generator) SummarizeTechStack(ctx context.Context, resumeText string) (string, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return "", fmt.Errorf("genai: resume text is empty")
	}
	prompt, err := g.render("techstack", promptData{Resume: resumeText})
	if err != nil {
		return "", err
	}
	out, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize tech stack: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (g *Generator) render(name string, data promptData) (string, error) {
	var b strings.Builder
	if err := g.tmpl[name].Execute(&b, data); err != nil {
		return "", fmt.Errorf("genai: render %s prompt: %w", name, err)
	}
	return b.String(), nil
}

func (g *Generator) promptData(p *domain.Profile, c *domain.CompanyInfo, summary, userContext string) promptData {
	company, title := "", ""
	if c != nil {
		company, title = c.Name, c.Title
	}
	if company == "" && p != nil {
		company, title = p.CurrentCompany()
	}
	data := promptData{
		Company:   company,
		Title:     title,
		Summary:   summary,
		TechStack: userContext,
		Limit:     g.limits.ConnectionMax,
		Min:       g.limits.InquiryMin,
		Max:       g.limits.InquiryMax,
	}
	if data.TechStack == "" {
		data.TechStack = "[your relevant skills and experience]"
	}
	if p != nil {
		data.FirstName = p.FirstName()
		data.FullName = p.FullName
		data.ProfileJSON = profileBlock(p)
	}
	if data.FirstName == "" {
		data.FirstName = "there"
	}
	if data.Company == "" {
		data.Company = "their company"
	}
	if c != nil {
		data.CompanyJSON = companyBlock(c)
		data.News = newsBlock(c)
	}
	return data
}

// profileBlock renders the scraped profile as indented JSON, the shape the
// summary prompt expects to mine for hooks.
func profileBlock(p *domain.Profile) string {
	type entry struct {
		Title   string `json:"title"`
		Company string `json:"company"`
		Dates   string `json:"dates,omitempty"`
	}
	type school struct {
		Institution string `json:"institution"`
		Degree      string `json:"degree,omitempty"`
	}
	v := struct {
		Name       string   `json:"name"`
		Headline   string   `json:"headline,omitempty"`
		Location   string   `json:"location,omitempty"`
		About      string   `json:"about,omitempty"`
		Experience []entry  `json:"experience,omitempty"`
		Education  []school `json:"education,omitempty"`
	}{
		Name:     p.FullName,
		Headline: p.Headline,
		Location: p.Location,
		About:    p.About,
	}
	for i, e := range p.Experience {
		if i == 3 {
			break // top entries carry the signal
		}
		v.Experience = append(v.Experience, entry{Title: e.Title, Company: e.Company, Dates: e.DateRange})
	}
	for _, e := range p.Education {
		v.Education = append(v.Education, school{Institution: e.School, Degree: e.Degree})
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return p.FullName
	}
	return string(b)
}

func companyBlock(c *domain.CompanyInfo) string {
	v := struct {
		Name        string `json:"name"`
		Website     string `json:"website,omitempty"`
		Description string `json:"description,omitempty"`
	}{Name: c.Name, Website: c.Website, Description: c.Description}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return c.Name
	}
	return string(b)
}

func newsBlock(c *domain.CompanyInfo) string {
	if len(c.News) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recent news:\n")
	for _, n := range c.News {
		b.WriteString("- ")
		b.WriteString(n.Title)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
