// Package config defines process configuration shared by the HackWreck server,
// CLI and terminal UI, and the hooks that load it.
//
// Conventions:
// - New() builds a Config with defaults; Load(ctx) layers file and env on top.
// - External errors are wrapped with ErrLoadConfig / ErrInvalidConfig.
package config

import (
	"strings"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address of the API server.
	Addr string `koanf:"addr"`

	// APIBaseURL is the server the client, CLI and TUI talk to.
	APIBaseURL string `koanf:"api_base_url"`

	// SearchPath and StatsPath locate the search and stats endpoints under APIBaseURL.
	SearchPath string `koanf:"search_path"`
	StatsPath  string `koanf:"stats_path"`

	// RequestTimeoutMS bounds client requests; zero means no client-side timeout.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// CORSOrigins is a comma-separated allow-list, or "*".
	CORSOrigins string `koanf:"cors_origins"`

	// DBDriver is sqlite, postgres or memory; DBDSN is the file path or connection string.
	DBDriver string `koanf:"db_driver"`
	DBDSN    string `koanf:"db_dsn"`

	// Gemini settings for analysis and speech.
	GeminiAPIKey string `koanf:"gemini_api_key"`
	GeminiModel  string `koanf:"gemini_model"`
	TTSModel     string `koanf:"tts_model"`
	TTSVoice     string `koanf:"tts_voice"`

	// GitHubAPIURL is used to check that submitted repositories exist.
	GitHubAPIURL string `koanf:"github_api_url"`
	VerifyRepos  bool   `koanf:"verify_repos"`

	// CacheAddr points at Redis; empty keeps narrative results in memory.
	CacheAddr       string `koanf:"cache_addr"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`

	// WorkerCount and QueueSize size the batch ingest pipeline.
	WorkerCount int `koanf:"worker_count"`
	QueueSize   int `koanf:"queue_size"`

	// ReadAloudMaxChars caps the text sent for speech synthesis.
	ReadAloudMaxChars int `koanf:"read_aloud_max_chars"`

	// MetricsEnabled exports Prometheus metrics on /metrics; MetricsRefreshSeconds
	// sets how often sampled gauges such as the project count are refreshed.
	MetricsEnabled        bool `koanf:"metrics_enabled"`
	MetricsRefreshSeconds int  `koanf:"metrics_refresh_seconds"`

	// PlayerCommand plays a local audio file; the path is appended as the last argument.
	PlayerCommand string `koanf:"player_command"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8000",
		APIBaseURL:        "http://localhost:8000",
		SearchPath:        "/api/search",
		StatsPath:         "/api/stats",
		RequestTimeoutMS:  0,
		CORSOrigins:       "http://localhost:3000,http://localhost:5173",
		DBDriver:          "sqlite",
		DBDSN:             "hackathons.db",
		GeminiModel:       "gemini-2.5-flash",
		TTSModel:          "gemini-2.5-flash-preview-tts",
		TTSVoice:          "Kore",
		GitHubAPIURL:      "https://api.github.com",
		VerifyRepos:       true,
		CacheTTLSeconds:   600,
		WorkerCount:       2,
		QueueSize:         256,
		ReadAloudMaxChars: 4000,
		PlayerCommand:     "ffplay -nodisp -autoexit -loglevel quiet",

		MetricsEnabled:        true,
		MetricsRefreshSeconds: 30,
	}
}

// RequestTimeout returns the client timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// CacheTTL returns the narrative cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// MetricsRefresh returns the sampled-gauge refresh interval.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshSeconds) * time.Second
}

// AllowedOrigins parses CORSOrigins. Blank input yields the local dev origins,
// "*" allows any origin, and trailing slashes are stripped because origins are
// compared as exact strings.
func (c *Config) AllowedOrigins() []string {
	value := strings.TrimSpace(c.CORSOrigins)
	if value == "" {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if value == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		normalized := strings.TrimRight(strings.TrimSpace(origin), "/")
		if normalized == "" {
			continue
		}
		origins = append(origins, normalized)
	}
	return origins
}

// PlayerArgs splits PlayerCommand into the executable and its leading arguments.
func (c *Config) PlayerArgs() []string {
	return strings.Fields(c.PlayerCommand)
}
