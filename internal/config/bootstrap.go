package config

import (
	"errors"
	"os"
	"path/filepath"
)

// starterYAML is written on first run so the user has a commented file to
// edit instead of a bare marshal dump.
const starterYAML = `# FounderReach engine configuration.
# Secrets (LinkedIn password, Gemini API key) are NOT stored here; they live
# in the OS keychain. Set them via the API or keep using the UI.

server:
  addr: "127.0.0.1:8787"

linkedin:
  email: ""                    # LinkedIn account email (required)
  timeout_seconds: 30
  verify_minutes: 30           # how often the session is re-verified
  batch_delay_min_seconds: 10  # politeness delay between batch profiles
  batch_delay_max_seconds: 20
  requests_per_minute: 12

research:
  enabled: true
  timeout_seconds: 10
  cache_ttl_minutes: 60
  max_news: 3
  # extra domains to skip when picking a company website, merged with the
  # built-in social/aggregator list
  excluded_domains: []

gemini:
  model: "gemini-1.5-flash"
  timeout_seconds: 60
  max_output_tokens: 1024

limits:
  connection_max_chars: 300
  inquiry_min_chars: 800
  inquiry_max_chars: 1200
  batch_max: 5

telemetry:
  enabled: false
  endpoint: ""
  protocol: "grpc"

log:
  level: "info"
`

// EnsureUserConfig creates <cfgDir>/config.yml from the starter template if
// it does not exist yet and returns its path.
func EnsureUserConfig(cfgDir string) (string, error) {
	userPath := filepath.Join(cfgDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(userPath, []byte(starterYAML), 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}
