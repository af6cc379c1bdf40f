// Package config loads environment variables and provides a typed Config used by
// the chatfilter and twitchfeed binaries. The environment is read once, at process
// start; nothing re-reads it afterwards.
// For the Twitch feed requirements, use ValidateFeedReady.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxLineBytes is the input line limit when CHAT_MAX_LINE_BYTES is unset.
// Zero means unlimited; every line is decoded whatever its length.
const DefaultMaxLineBytes = 0

type Config struct {
	// Filter
	Platform       string
	MaxLineBytes   int
	UnwrapEnvelope bool

	// Logging
	LogLevel  string
	LogFormat string

	// Sidecar HTTP server (metrics, health); empty disables it.
	MetricsAddr string

	// Twitch feed
	TwitchChannel     string
	TwitchBotUsername string
	TwitchOAuthToken  string
	KeepaliveInterval time.Duration
}

// Load reads environment variables and applies defaults. An absent PLATFORM is not
// an error; it disables filtering. Malformed numeric or duration values are.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Platform = NormalizePlatform(os.Getenv("PLATFORM"))

	cfg.MaxLineBytes = DefaultMaxLineBytes
	if v := strings.TrimSpace(os.Getenv("CHAT_MAX_LINE_BYTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid CHAT_MAX_LINE_BYTES %q: want a non-negative integer", v)
		}
		cfg.MaxLineBytes = n
	}
	cfg.UnwrapEnvelope = os.Getenv("CHAT_UNWRAP_ENVELOPE") == "1"

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT")))
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	cfg.MetricsAddr = strings.TrimSpace(os.Getenv("METRICS_ADDR"))

	// Twitch
	cfg.TwitchChannel = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(os.Getenv("TWITCH_CHANNEL"))), "#")
	cfg.TwitchBotUsername = strings.TrimSpace(os.Getenv("TWITCH_BOT_USERNAME"))
	cfg.TwitchOAuthToken = strings.TrimSpace(os.Getenv("TWITCH_OAUTH_TOKEN"))
	cfg.KeepaliveInterval = 30 * time.Second
	if v := strings.TrimSpace(os.Getenv("CHAT_KEEPALIVE_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CHAT_KEEPALIVE_INTERVAL: %w", err)
		}
		cfg.KeepaliveInterval = d
	}

	return cfg, nil
}

// NormalizePlatform trims and lowercases a platform name for comparison.
func NormalizePlatform(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Anonymous reports whether the Twitch feed should join without credentials.
func (c *Config) Anonymous() bool {
	return c.TwitchBotUsername == "" || c.TwitchOAuthToken == ""
}

// ValidateFeedReady checks the fields the Twitch feed needs. Credentials are
// optional (anonymous read-only join) but must be provided as a pair.
func (c *Config) ValidateFeedReady() error {
	if c.TwitchChannel == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL")
	}
	if (c.TwitchBotUsername == "") != (c.TwitchOAuthToken == "") {
		return fmt.Errorf("incomplete twitch credentials: set both TWITCH_BOT_USERNAME and TWITCH_OAUTH_TOKEN, or neither")
	}
	if c.KeepaliveInterval < 0 {
		return fmt.Errorf("invalid CHAT_KEEPALIVE_INTERVAL %s: must not be negative", c.KeepaliveInterval)
	}
	return nil
}
