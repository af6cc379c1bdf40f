// Command chatfilter reads newline-delimited JSON chat frames on stdin and writes
// one "[source] author: message" line per frame to stdout.
// It:
//   - Loads configuration from the environment once (PLATFORM selects a single
//     source to keep; empty keeps everything) and initializes structured logging
//     on stderr.
//   - Drops blank lines, keepalive sentinels, and malformed or non-object frames
//     without stopping.
//   - Optionally exposes /healthz, /status, and /metrics on METRICS_ADDR.
//
// It exits 0 when stdin ends and 1 when stdin or stdout fails.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/onnwee/chatfilter/chat"
	"github.com/onnwee/chatfilter/config"
	"github.com/onnwee/chatfilter/server"
	"github.com/onnwee/chatfilter/telemetry"
)

const version = "1.0.0"

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	// stdout carries output lines; logs go to stderr.
	slog.SetDefault(telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr))

	telemetry.Init()

	shutdown, err := telemetry.InitTracing("chatfilter", version)
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Signals keep their default disposition: a blocked stdin read must not delay
	// termination.
	ctx := telemetry.WithCorrelation(context.Background(), uuid.New().String())
	err = run(ctx, cfg, os.Stdin, os.Stdout)
	shutdown()
	if err != nil {
		telemetry.LoggerWithCorr(ctx).Error("stream failed", slog.Any("err", err))
		os.Exit(1)
	}
}

// run filters in to out until in ends. The sidecar server, when configured,
// lives as long as the stream.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	log := telemetry.LoggerWithCorr(ctx)

	proc := chat.NewProcessor(chat.Options{
		Platform:       cfg.Platform,
		MaxLineBytes:   cfg.MaxLineBytes,
		UnwrapEnvelope: cfg.UnwrapEnvelope,
	})

	if cfg.MetricsAddr != "" {
		go func() {
			if err := server.Start(ctx, cfg.MetricsAddr, proc); err != nil {
				log.Error("metrics server exited with error", slog.Any("err", err))
			}
		}()
	}

	platform := proc.Filter().Platform()
	if platform == "" {
		platform = "*"
	}
	log.Info("chat filter started", slog.String("platform", platform), slog.Bool("unwrap_envelope", cfg.UnwrapEnvelope))

	err := proc.Run(ctx, in, out)
	st := proc.Stats()
	log.Debug("chat filter finished",
		slog.Int64("lines_read", st.LinesRead),
		slog.Int64("emitted", st.Emitted),
		slog.Any("dropped", st.Dropped),
	)
	return err
}
