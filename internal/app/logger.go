package app

import (
	"log/slog"
	"os"
)

// NewLogger returns the console's slog.Logger. Production runs ship JSON
// lines; everything else gets readable text. Every record carries the
// service name and environment so console and worker logs can be told
// apart downstream.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	env := "development"
	if cfg != nil && cfg.AppEnv != "" {
		env = cfg.AppEnv
	}
	return slog.New(handler).With(
		slog.String("service", "manzil-console"),
		slog.String("env", env),
	)
}
