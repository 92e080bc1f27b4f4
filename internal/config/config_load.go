package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Bot: BotConfig{
			CooldownSeconds: 10,
		},
		Search: SearchConfig{
			MaxResults: 8,
		},
		Download: DownloadConfig{
			TempDir:      "./tmp",
			YtdlpPath:    "yt-dlp",
			AudioBitrate: "192K",
		},
		Archive: ArchiveConfig{
			ScanWindow: 50,
		},
		Database: DatabaseConfig{
			Path: "tunegram.db",
		},
		Broadcast: BroadcastConfig{
			PerSecond: 10,
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error — everything can come from env.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envInt64 := func(key string, dst *int64) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				*dst = n
			}
		}
	}
	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	envStr("TUNEGRAM_BOT_TOKEN", &c.Bot.Token)
	envInt64("TUNEGRAM_OWNER_ID", &c.Bot.OwnerID)
	envInt("TUNEGRAM_COOLDOWN_SECONDS", &c.Bot.CooldownSeconds)
	envStr("TUNEGRAM_PROXY", &c.Bot.Proxy)

	envStr("TUNEGRAM_YT_API_KEY", &c.Search.APIKey)
	envInt("TUNEGRAM_MAX_SEARCH_RESULTS", &c.Search.MaxResults)

	envStr("TUNEGRAM_TEMP_DIR", &c.Download.TempDir)
	envStr("TUNEGRAM_YTDLP_PATH", &c.Download.YtdlpPath)

	envInt64("TUNEGRAM_CHANNEL_ID", &c.Archive.ChannelID)

	envStr("TUNEGRAM_POSTGRES_DSN", &c.Database.PostgresDSN)
	envStr("TUNEGRAM_DB_PATH", &c.Database.Path)

	envStr("TUNEGRAM_OTLP_ENDPOINT", &c.Telemetry.Endpoint)
	if c.Telemetry.Endpoint != "" && os.Getenv("TUNEGRAM_OTLP_ENDPOINT") != "" {
		c.Telemetry.Enabled = true
	}
}

// Validate checks that every required value is present. The caller
// treats an error as fatal at startup.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot token is not set (TUNEGRAM_BOT_TOKEN)")
	}
	if c.Bot.OwnerID == 0 {
		return fmt.Errorf("owner id is not set (TUNEGRAM_OWNER_ID or bot.owner_id)")
	}
	if c.Archive.ChannelID == 0 {
		return fmt.Errorf("archive channel id is not set (TUNEGRAM_CHANNEL_ID or archive.channel_id)")
	}
	if c.Search.APIKey == "" {
		return fmt.Errorf("YouTube API key is not set (TUNEGRAM_YT_API_KEY)")
	}
	return nil
}
