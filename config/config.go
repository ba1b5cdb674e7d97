// Package config loads story_weaver settings from JSON or TOML files plus
// environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultAddr       = ":8080"
	DefaultProvider   = "gemini"
	DefaultModel      = "gemini-1.5-flash"
	DefaultSessionTTL = 30 * time.Minute
	DefaultLLMTimeout = 60 * time.Second
)

// Environment variables that win over file values.
const (
	EnvAPIKey   = "STORY_WEAVER_API_KEY"
	EnvProvider = "STORY_WEAVER_PROVIDER"
	EnvModel    = "STORY_WEAVER_MODEL"
	EnvBaseURL  = "STORY_WEAVER_BASE_URL"
	EnvAddr     = "STORY_WEAVER_ADDR"
)

// Duration reads "30m"-style strings from either file format.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config is the on-disk schema.
type Config struct {
	ServerAddr string    `json:"server_addr,omitempty" toml:"server_addr"`
	SessionTTL Duration  `json:"session_ttl,omitempty" toml:"session_ttl"`
	LogLevel   string    `json:"log_level,omitempty" toml:"log_level"`
	LLM        LLMConfig `json:"llm" toml:"llm"`
	Source     string    `json:"-" toml:"-"`
}

// LLMConfig selects and authenticates the model provider.
type LLMConfig struct {
	Provider string   `json:"provider,omitempty" toml:"provider"`
	Model    string   `json:"model,omitempty" toml:"model"`
	APIKey   string   `json:"api_key,omitempty" toml:"api_key"`
	BaseURL  string   `json:"base_url,omitempty" toml:"base_url"`
	Timeout  Duration `json:"timeout,omitempty" toml:"timeout"`
}

func Default() Config {
	return Config{
		ServerAddr: DefaultAddr,
		SessionTTL: Duration(DefaultSessionTTL),
		LogLevel:   "info",
		LLM: LLMConfig{
			Provider: DefaultProvider,
			Model:    DefaultModel,
			Timeout:  Duration(DefaultLLMTimeout),
		},
	}
}

// Load reads path on top of Default(). A missing file is not an error so the
// service can run from environment variables alone.
func Load(path string) (Config, error) {
	cfg := Default()
	cfg.Source = path
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := decode(path, data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	cfg.fillDefaults()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.LLM.APIKey, EnvAPIKey)
	set(&cfg.LLM.Provider, EnvProvider)
	set(&cfg.LLM.Model, EnvModel)
	set(&cfg.LLM.BaseURL, EnvBaseURL)
	set(&cfg.ServerAddr, EnvAddr)
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.ServerAddr == "" {
		c.ServerAddr = def.ServerAddr
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = def.SessionTTL
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = def.LLM.Provider
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = def.LLM.Timeout
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
}

// ApplyKVOverrides applies repeated -set key=value flags.
func ApplyKVOverrides(cfg Config, overrides []string) (Config, error) {
	for _, raw := range overrides {
		key, val, ok := strings.Cut(raw, "=")
		if !ok {
			return cfg, fmt.Errorf("override %q is not key=value", raw)
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "server_addr", "addr":
			cfg.ServerAddr = val
		case "log_level":
			cfg.LogLevel = val
		case "session_ttl":
			if err := cfg.SessionTTL.UnmarshalText([]byte(val)); err != nil {
				return cfg, fmt.Errorf("session_ttl: %w", err)
			}
		case "llm.provider", "provider":
			cfg.LLM.Provider = strings.ToLower(val)
		case "llm.model", "model":
			cfg.LLM.Model = val
		case "llm.api_key", "api_key":
			cfg.LLM.APIKey = val
		case "llm.base_url", "base_url":
			cfg.LLM.BaseURL = val
		case "llm.timeout":
			if err := cfg.LLM.Timeout.UnmarshalText([]byte(val)); err != nil {
				return cfg, fmt.Errorf("llm.timeout: %w", err)
			}
		default:
			return cfg, fmt.Errorf("unknown config key %q", key)
		}
	}
	return cfg, nil
}

// Validate checks what buildLLM needs. The mock provider needs no key.
func (c Config) Validate() error {
	if c.LLM.Provider == "" {
		return errors.New("llm.provider is required")
	}
	if c.LLM.Provider == "mock" {
		return nil
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm api key missing; set llm.api_key or %s", EnvAPIKey)
	}
	return nil
}

// Save writes cfg in the format implied by path's extension.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
