package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills defaults into zero-valued fields and returns the
// normalized copy plus everything worth telling the user about it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(strings.ToLower(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}
	defaultInt := func(p *int, d int) {
		if *p <= 0 {
			*p = d
		}
	}

	// ---- server ----
	if strings.TrimSpace(out.Server.Addr) == "" {
		out.Server.Addr = "127.0.0.1:8787"
	}
	if !strings.HasPrefix(out.Server.Addr, "127.0.0.1:") && !strings.HasPrefix(out.Server.Addr, "localhost:") {
		res.addWarn("server.addr %q is not loopback; the API has no auth and should not be exposed.", out.Server.Addr)
	}

	// ---- linkedin ----
	if strings.TrimSpace(out.LinkedIn.Email) == "" {
		res.addWarn("linkedin.email is empty; login will fail until it is set.")
	}
	defaultInt(&out.LinkedIn.TimeoutSeconds, 30)
	defaultInt(&out.LinkedIn.VerifyMinutes, 30)
	defaultInt(&out.LinkedIn.BatchDelayMinSeconds, 10)
	defaultInt(&out.LinkedIn.BatchDelayMaxSeconds, 20)
	if out.LinkedIn.BatchDelayMaxSeconds < out.LinkedIn.BatchDelayMinSeconds {
		res.addErr("linkedin.batch_delay_max_seconds (%d) is below batch_delay_min_seconds (%d)",
			out.LinkedIn.BatchDelayMaxSeconds, out.LinkedIn.BatchDelayMinSeconds)
	}
	defaultInt(&out.LinkedIn.RequestsPerMinute, 12)
	if out.LinkedIn.RequestsPerMinute > 30 {
		res.addWarn("linkedin.requests_per_minute is high (%d) and may trip rate limits.", out.LinkedIn.RequestsPerMinute)
	}

	// ---- research ----
	defaultInt(&out.Research.TimeoutSeconds, 10)
	defaultInt(&out.Research.CacheTTLMinutes, 60)
	defaultInt(&out.Research.MaxNews, 3)
	if out.Research.MaxNews > 10 {
		res.addWarn("research.max_news is %d; only the first page of results is parsed, expect at most ~10.", out.Research.MaxNews)
	}
	out.Research.ExcludedDomains = trimList(out.Research.ExcludedDomains)

	// ---- gemini ----
	if strings.TrimSpace(out.Gemini.Model) == "" {
		out.Gemini.Model = "gemini-1.5-flash"
	}
	defaultInt(&out.Gemini.TimeoutSeconds, 60)
	defaultInt(&out.Gemini.MaxOutputTokens, 1024)

	// ---- limits ----
	defaultInt(&out.Limits.ConnectionMaxChars, 300)
	defaultInt(&out.Limits.InquiryMinChars, 800)
	defaultInt(&out.Limits.InquiryMaxChars, 1200)
	if out.Limits.InquiryMaxChars < out.Limits.InquiryMinChars {
		res.addErr("limits.inquiry_max_chars (%d) is below inquiry_min_chars (%d)",
			out.Limits.InquiryMaxChars, out.Limits.InquiryMinChars)
	}
	defaultInt(&out.Limits.BatchMax, 5)
	// One shared login session; larger batches multiply the odds of a
	// checkpoint. Hard cap at 5.
	if out.Limits.BatchMax > 5 {
		res.addWarn("limits.batch_max %d exceeds the supported maximum; using 5.", out.Limits.BatchMax)
		out.Limits.BatchMax = 5
	}

	// ---- telemetry ----
	if out.Telemetry.Protocol == "" {
		out.Telemetry.Protocol = "grpc"
	}
	switch out.Telemetry.Protocol {
	case "grpc", "http":
	default:
		res.addErr("telemetry.protocol must be grpc or http, got %q", out.Telemetry.Protocol)
	}
	if out.Telemetry.Enabled && strings.TrimSpace(out.Telemetry.Endpoint) == "" {
		res.addWarn("telemetry.enabled is true but telemetry.endpoint is empty; traces will go nowhere.")
	}

	// ---- log ----
	switch strings.ToLower(strings.TrimSpace(out.Log.Level)) {
	case "":
		out.Log.Level = "info"
	case "debug", "info", "warn", "error":
		out.Log.Level = strings.ToLower(strings.TrimSpace(out.Log.Level))
	default:
		res.addWarn("log.level %q is unknown; using info.", out.Log.Level)
		out.Log.Level = "info"
	}

	return out, res
}
