// Package config loads layered JSONC configuration for shellmind.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds per-backend credentials and overrides.
type ProviderConfig struct {
	Disable bool   `json:"disable,omitempty" yaml:"disable,omitempty"`
	APIKey  string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model   string `json:"model,omitempty" yaml:"model,omitempty"`
}

// Config is the immutable configuration handed to the Agent Loop at
// construction. It is assembled once at startup from layered sources.
type Config struct {
	Model         string                     `json:"model,omitempty" yaml:"model,omitempty"`
	Shell         string                     `json:"shell,omitempty" yaml:"shell,omitempty"`
	MaxSteps      int                        `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	MaxIdleSteps  int                        `json:"max_idle_steps,omitempty" yaml:"max_idle_steps,omitempty"`
	LLMTimeoutSec int                        `json:"llm_timeout,omitempty" yaml:"llm_timeout,omitempty"`
	SafeMode      *bool                      `json:"safe_mode,omitempty" yaml:"safe_mode,omitempty"`
	Provider      map[string]ProviderConfig  `json:"provider,omitempty" yaml:"provider,omitempty"`
}

const (
	DefaultMaxSteps      = 10
	DefaultMaxIdleSteps  = 2
	DefaultLLMTimeoutSec = 120
)

// Load merges, in increasing priority: defaults, global config, project
// config, environment variables. The provider API key variables and
// LOCAL_LLM_BASE_URL only fill values the config files left empty.
func Load(directory string) (*Config, error) {
	cfg := &Config{
		MaxSteps:      DefaultMaxSteps,
		MaxIdleSteps:  DefaultMaxIdleSteps,
		LLMTimeoutSec: DefaultLLMTimeoutSec,
		Provider:      make(map[string]ProviderConfig),
	}
	safeModeDefault := true
	cfg.SafeMode = &safeModeDefault

	globalDir := GlobalConfigDir()
	_ = loadFile(filepath.Join(globalDir, "config.json"), cfg)
	_ = loadFile(filepath.Join(globalDir, "config.jsonc"), cfg)
	_ = loadFile(filepath.Join(globalDir, "config.yaml"), cfg)

	if directory != "" {
		projectDir := filepath.Join(directory, ".shellmind")
		_ = loadFile(filepath.Join(projectDir, "config.json"), cfg)
		_ = loadFile(filepath.Join(projectDir, "config.jsonc"), cfg)
		_ = loadFile(filepath.Join(projectDir, "config.yaml"), cfg)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var loaded Config
	if filepath.Ext(path) == ".yaml" || filepath.Ext(path) == ".yml" {
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return err
		}
	} else {
		data = stripJSONComments(data)
		if err := json.Unmarshal(data, &loaded); err != nil {
			return err
		}
	}
	mergeInto(cfg, &loaded)
	return nil
}

var singleLineComment = regexp.MustCompile(`//.*`)
var multiLineComment = regexp.MustCompile(`/\*[\s\S]*?\*/`)

func stripJSONComments(data []byte) []byte {
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		lines[i] = singleLineComment.ReplaceAll(line, nil)
	}
	data = bytes.Join(lines, []byte("\n"))
	return multiLineComment.ReplaceAll(data, nil)
}

func mergeInto(target, source *Config) {
	if source.Model != "" {
		target.Model = source.Model
	}
	if source.Shell != "" {
		target.Shell = source.Shell
	}
	if source.MaxSteps != 0 {
		target.MaxSteps = source.MaxSteps
	}
	if source.MaxIdleSteps != 0 {
		target.MaxIdleSteps = source.MaxIdleSteps
	}
	if source.LLMTimeoutSec != 0 {
		target.LLMTimeoutSec = source.LLMTimeoutSec
	}
	if source.SafeMode != nil {
		target.SafeMode = source.SafeMode
	}
	if target.Provider == nil {
		target.Provider = make(map[string]ProviderConfig)
	}
	for name, p := range source.Provider {
		target.Provider[name] = p
	}
}

func applyEnvOverrides(cfg *Config) {
	providerEnvVar := map[string]string{
		"openai": "OPENAI_API_KEY",
		"claude": "ANTHROPIC_API_KEY",
		"local":  "LOCAL_LLM_API_KEY",
	}
	for name, envVar := range providerEnvVar {
		if key := os.Getenv(envVar); key != "" {
			p := cfg.Provider[name]
			if p.APIKey == "" {
				p.APIKey = key
				cfg.Provider[name] = p
			}
		}
	}
	if baseURL := os.Getenv("LOCAL_LLM_BASE_URL"); baseURL != "" {
		p := cfg.Provider["local"]
		if p.BaseURL == "" {
			p.BaseURL = baseURL
			cfg.Provider["local"] = p
		}
	}
	if model := os.Getenv("SHELLMIND_MODEL"); model != "" {
		cfg.Model = model
	}
	if v := os.Getenv("MAX_STEPS"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			cfg.MaxSteps = n
		}
	}
	if v := os.Getenv("MAX_IDLE_STEPS"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			cfg.MaxIdleSteps = n
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			cfg.LLMTimeoutSec = n
		}
	}
	if v := os.Getenv("SAFE_MODE"); v != "" {
		b := v == "true" || v == "1"
		cfg.SafeMode = &b
	}
	if shell := os.Getenv("SHELLMIND_SHELL"); shell != "" {
		cfg.Shell = shell
	}
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("not a positive integer: %q", s)
	}
	return n, nil
}

// IsSafeMode reports whether safe mode is enabled.
func (c *Config) IsSafeMode() bool {
	return c.SafeMode == nil || *c.SafeMode
}

// Save writes cfg as indented JSON to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
