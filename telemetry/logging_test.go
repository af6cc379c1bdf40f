package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		format   string
		minLevel slog.Level
		wantJSON bool
		wantWarn bool
	}{
		{"defaults", "info", "text", slog.LevelInfo, false, false},
		{"empty level", "", "", slog.LevelInfo, false, false},
		{"debug json", "debug", "json", slog.LevelDebug, true, false},
		{"warn", "warn", "text", slog.LevelWarn, false, false},
		{"error", "error", "json", slog.LevelError, true, false},
		{"unknown level", "loud", "text", slog.LevelInfo, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, tt.format, &buf)
			ctx := context.Background()
			if !logger.Enabled(ctx, tt.minLevel) {
				t.Errorf("level %s disabled", tt.minLevel)
			}
			if logger.Enabled(ctx, tt.minLevel-1) {
				t.Errorf("level below %s enabled", tt.minLevel)
			}
			if got := strings.Contains(buf.String(), "unknown LOG_LEVEL"); got != tt.wantWarn {
				t.Errorf("unknown level warning = %v, want %v (%q)", got, tt.wantWarn, buf.String())
			}
			logger.Error("hello")
			last := lines(buf.String())
			if isJSON := strings.HasPrefix(last[len(last)-1], "{"); isJSON != tt.wantJSON {
				t.Errorf("json output = %v, want %v (%q)", isJSON, tt.wantJSON, buf.String())
			}
		})
	}
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}
