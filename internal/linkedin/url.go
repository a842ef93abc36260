package linkedin

import (
	"errors"
	"net/url"
	"strings"
)

var ErrBadProfileURL = errors.New("linkedin: not a profile URL")

// CanonicalProfileURL validates raw as a LinkedIn profile URL and returns its
// canonical form: https host, lowercased, no query/fragment, no trailing
// slash. Two inputs naming the same profile canonicalize identically, which
// is what batch dedup keys on.
func CanonicalProfileURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrBadProfileURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrBadProfileURL
	}

	host := strings.ToLower(u.Hostname())
	switch host {
	case "linkedin.com", "www.linkedin.com":
	default:
		return "", ErrBadProfileURL
	}

	path := strings.TrimSuffix(u.EscapedPath(), "/")
	if !strings.HasPrefix(path, "/in/") {
		return "", ErrBadProfileURL
	}
	slug := strings.TrimPrefix(path, "/in/")
	if slug == "" || strings.Contains(slug, "/") {
		return "", ErrBadProfileURL
	}

	return "https://www.linkedin.com/in/" + slug, nil
}
