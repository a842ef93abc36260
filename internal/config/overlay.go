// internal/config/overlay.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type PromptsFile struct {
	Prompts struct {
		Summary    string `yaml:"summary"`
		Connection string `yaml:"connection"`
		JobInquiry string `yaml:"job_inquiry"`
	} `yaml:"prompts"`
}

// OverlayPrompts merges an optional prompts.yml over the built-in prompt
// templates, so users can tune message tone without touching the main config.
func OverlayPrompts(cfg *Config, promptsPath string) error {
	b, err := os.ReadFile(promptsPath)
	if err != nil {
		// Missing prompts file should not kill startup
		return nil
	}

	var pf PromptsFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return err
	}

	if pf.Prompts.Summary != "" {
		cfg.Prompts.Summary = pf.Prompts.Summary
	}
	if pf.Prompts.Connection != "" {
		cfg.Prompts.Connection = pf.Prompts.Connection
	}
	if pf.Prompts.JobInquiry != "" {
		cfg.Prompts.JobInquiry = pf.Prompts.JobInquiry
	}
	return nil
}
