package config

import (
	"time"
)

// Config is the root configuration for the Tunegram bot.
type Config struct {
	Bot       BotConfig       `json:"bot"`
	Search    SearchConfig    `json:"search"`
	Download  DownloadConfig  `json:"download"`
	Archive   ArchiveConfig   `json:"archive"`
	Database  DatabaseConfig  `json:"database,omitempty"`
	Broadcast BroadcastConfig `json:"broadcast,omitempty"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
}

// BotConfig configures the Telegram transport and access policy.
// Token is NEVER read from the config file (secret) — only from env
// TUNEGRAM_BOT_TOKEN.
type BotConfig struct {
	Token           string `json:"-"`                          // from env TUNEGRAM_BOT_TOKEN only
	OwnerID         int64  `json:"owner_id"`                   // Telegram user ID allowed to run admin commands
	CooldownSeconds int    `json:"cooldown_seconds,omitempty"` // min seconds between deliveries per user (default 10)
	Proxy           string `json:"proxy,omitempty"`            // optional HTTP proxy URL for the Bot API
}

// Cooldown returns the per-user delivery cooldown window.
func (b BotConfig) Cooldown() time.Duration {
	if b.CooldownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.CooldownSeconds) * time.Second
}

// SearchConfig configures the YouTube Data API client.
// APIKey comes from env TUNEGRAM_YT_API_KEY only.
type SearchConfig struct {
	APIKey     string `json:"-"`                     // from env TUNEGRAM_YT_API_KEY only
	MaxResults int    `json:"max_results,omitempty"` // result-count bound for /song (default 8)
	BaseURL    string `json:"base_url,omitempty"`    // override for tests
}

// DownloadConfig configures the yt-dlp extraction step.
type DownloadConfig struct {
	TempDir      string `json:"temp_dir,omitempty"`      // artifact directory (default ./tmp)
	YtdlpPath    string `json:"ytdlp_path,omitempty"`    // yt-dlp binary (default "yt-dlp", resolved via PATH)
	AudioBitrate string `json:"audio_bitrate,omitempty"` // target bitrate passed to yt-dlp (default "192K")
}

// ArchiveConfig identifies the curated channel whose posts are indexed
// and served by /file.
type ArchiveConfig struct {
	ChannelID  int64 `json:"channel_id"`
	ScanWindow int   `json:"scan_window,omitempty"` // max index hits examined per lookup (default 50)
}

// DatabaseConfig selects the record store backend.
// PostgresDSN comes from env TUNEGRAM_POSTGRES_DSN only; when empty the
// bot runs standalone on SQLite at Path.
type DatabaseConfig struct {
	PostgresDSN string `json:"-"`              // from env TUNEGRAM_POSTGRES_DSN only
	Path        string `json:"path,omitempty"` // SQLite file (default tunegram.db)
}

// BroadcastConfig throttles the /broadcast fanout.
type BroadcastConfig struct {
	PerSecond float64 `json:"per_second,omitempty"` // outbound sends per second (default 10)
}

// TelemetryConfig configures OpenTelemetry trace export. When enabled,
// each download pipeline run is exported as a span to an
// OTLP-compatible backend.
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty"`
	Endpoint    string            `json:"endpoint,omitempty"`     // e.g. "localhost:4317"
	Protocol    string            `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`     // skip TLS (local collectors)
	ServiceName string            `json:"service_name,omitempty"` // default "tunegram"
	Headers     map[string]string `json:"headers,omitempty"`      // extra headers (auth tokens)
}
