// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	LinkedIn struct {
		Email                string `yaml:"email"`
		CookieFile           string `yaml:"cookie_file"` // empty = <data_dir>/cookies.json
		TimeoutSeconds       int    `yaml:"timeout_seconds"`
		VerifyMinutes        int    `yaml:"verify_minutes"`
		BatchDelayMinSeconds int    `yaml:"batch_delay_min_seconds"`
		BatchDelayMaxSeconds int    `yaml:"batch_delay_max_seconds"`
		RequestsPerMinute    int    `yaml:"requests_per_minute"`
	} `yaml:"linkedin"`

	Research struct {
		Enabled         bool     `yaml:"enabled"`
		TimeoutSeconds  int      `yaml:"timeout_seconds"`
		CacheTTLMinutes int      `yaml:"cache_ttl_minutes"`
		MaxNews         int      `yaml:"max_news"`
		ExcludedDomains []string `yaml:"excluded_domains"`
	} `yaml:"research"`

	Gemini struct {
		Model           string `yaml:"model"`
		BaseURL         string `yaml:"base_url"`
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		MaxOutputTokens int    `yaml:"max_output_tokens"`
	} `yaml:"gemini"`

	Limits struct {
		ConnectionMaxChars int `yaml:"connection_max_chars"`
		InquiryMinChars    int `yaml:"inquiry_min_chars"`
		InquiryMaxChars    int `yaml:"inquiry_max_chars"`
		BatchMax           int `yaml:"batch_max"`
	} `yaml:"limits"`

	// Prompts override the built-in templates; normally left empty and set
	// through prompts.yml (see OverlayPrompts).
	Prompts struct {
		Summary    string `yaml:"summary"`
		Connection string `yaml:"connection"`
		JobInquiry string `yaml:"job_inquiry"`
	} `yaml:"prompts"`

	Telemetry struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
		Protocol string `yaml:"protocol"` // grpc/http
		Insecure bool   `yaml:"insecure"`
	} `yaml:"telemetry"`

	Log struct {
		Level string `yaml:"level"` // debug/info/warn/error
	} `yaml:"log"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
