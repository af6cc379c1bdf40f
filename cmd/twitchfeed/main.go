// Command twitchfeed joins a Twitch channel over IRC and writes every chat
// message to stdout as a JSON frame, with a keepalive line at a fixed interval.
// Its output is the input chatfilter expects:
//
//	twitchfeed | PLATFORM=twitch chatfilter
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/onnwee/chatfilter/chat"
	"github.com/onnwee/chatfilter/config"
	"github.com/onnwee/chatfilter/telemetry"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	// stdout carries frames; logs go to stderr.
	slog.SetDefault(telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr))

	telemetry.Init()

	shutdown, err := telemetry.InitTracing("twitchfeed", version)
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = telemetry.WithCorrelation(ctx, uuid.New().String())

	if cfg.Anonymous() {
		slog.Info("twitch credentials not set; joining anonymously (read-only)")
	}
	if err := chat.StartTwitchFeed(ctx, cfg, os.Stdout); err != nil {
		telemetry.LoggerWithCorr(ctx).Error("twitch feed failed", slog.Any("err", err))
		stop()
		shutdown()
		os.Exit(1)
	}
}
