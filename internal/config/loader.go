package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/mkhalidi/rattil/internal/align"
)

// ValidAdvisorProviders lists known LLM provider names. Used by [Validate] to
// warn about unrecognised names.
var ValidAdvisorProviders = []string{
	"openai", "anthropic", "gemini", "ollama", "mistral", "groq",
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Align
	if cfg.Align.MatchThreshold < 0 || cfg.Align.MatchThreshold > 1 {
		errs = append(errs, fmt.Errorf("align.match_threshold %.2f is out of range [0, 1]", cfg.Align.MatchThreshold))
	}
	if cfg.Align.Strategy != "" && !align.Strategy(cfg.Align.Strategy).IsValid() {
		errs = append(errs, fmt.Errorf("align.strategy %q is invalid; valid values: jaccard, jaro-winkler", cfg.Align.Strategy))
	}

	// Store
	if cfg.Store.Driver != "" && !cfg.Store.Driver.IsValid() {
		errs = append(errs, fmt.Errorf("store.driver %q is invalid; valid values: memory, sqlite, postgres", cfg.Store.Driver))
	}
	if cfg.Store.Driver == StorePostgres && cfg.Store.PostgresDSN == "" {
		errs = append(errs, errors.New("store.postgres_dsn is required when store.driver is postgres"))
	}
	if cfg.Store.Driver == StoreSQLite && cfg.Store.SQLitePath == "" {
		errs = append(errs, errors.New("store.sqlite_path is required when store.driver is sqlite"))
	}
	if cfg.Store.Driver == StoreMemory || cfg.Store.Driver == "" {
		slog.Warn("store.driver is memory; reports will not survive a restart")
	}

	// Advisor
	if cfg.Advisor.Provider != "" && !slices.Contains(ValidAdvisorProviders, cfg.Advisor.Provider) {
		slog.Warn("unknown advisor provider — may be a typo",
			"name", cfg.Advisor.Provider,
			"known", ValidAdvisorProviders,
		)
	}
	if cfg.Advisor.Provider != "" && cfg.Advisor.Model == "" {
		errs = append(errs, errors.New("advisor.model is required when advisor.provider is set"))
	}
	if cfg.Advisor.MaxSuggestions < 0 {
		errs = append(errs, fmt.Errorf("advisor.max_suggestions %d must not be negative", cfg.Advisor.MaxSuggestions))
	}

	return errors.Join(errs...)
}
