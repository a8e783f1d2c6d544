// Package config provides the configuration schema and loader for the Rattil
// server.
package config

// LogLevel controls log verbosity for the Rattil server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// StoreDriver selects the report persistence backend.
type StoreDriver string

const (
	// StoreMemory keeps reports in process memory only.
	StoreMemory StoreDriver = "memory"

	// StoreSQLite persists reports to a local SQLite file.
	StoreSQLite StoreDriver = "sqlite"

	// StorePostgres persists reports to a PostgreSQL database.
	StorePostgres StoreDriver = "postgres"
)

// IsValid reports whether d is a recognised store driver.
func (d StoreDriver) IsValid() bool {
	switch d {
	case StoreMemory, StoreSQLite, StorePostgres:
		return true
	}
	return false
}

// Config is the root configuration structure for Rattil.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Align   AlignConfig   `yaml:"align"`
	Quran   QuranConfig   `yaml:"quran"`
	Store   StoreConfig   `yaml:"store"`
	Advisor AdvisorConfig `yaml:"advisor"`
}

// ServerConfig holds network and logging settings for the Rattil server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// AlignConfig tunes the alignment engine.
type AlignConfig struct {
	// MatchThreshold is the minimum word-similarity score in [0, 1] for a
	// spoken word to count as a match. Zero means the engine default.
	MatchThreshold float64 `yaml:"match_threshold"`

	// Strategy selects the word-similarity measure ("jaccard" or
	// "jaro-winkler"). Empty means the engine default.
	Strategy string `yaml:"strategy"`
}

// QuranConfig configures the reference text provider.
type QuranConfig struct {
	// BaseURL overrides the default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Edition selects the text edition (e.g., "quran-uthmani").
	Edition string `yaml:"edition"`
}

// StoreConfig selects and configures the report persistence backend.
type StoreConfig struct {
	// Driver selects the backend: "memory", "sqlite", or "postgres".
	// Empty defaults to "memory".
	Driver StoreDriver `yaml:"driver"`

	// PostgresDSN is the connection string when Driver is "postgres".
	PostgresDSN string `yaml:"postgres_dsn"`

	// SQLitePath is the database file path when Driver is "sqlite".
	SQLitePath string `yaml:"sqlite_path"`
}

// AdvisorConfig configures LLM-backed suggestion generation. When Provider is
// empty, only the built-in static advisor runs.
type AdvisorConfig struct {
	// Provider selects the LLM backend (e.g., "openai", "anthropic",
	// "ollama").
	Provider string `yaml:"provider"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider.
	Model string `yaml:"model"`

	// MaxSuggestions caps the number of suggestions per report. Zero means
	// the advisor default.
	MaxSuggestions int `yaml:"max_suggestions"`
}
