package logger

import (
	"io"
	"log/slog"
	"os"
)

// Init builds the process logger and installs it as the slog default.
// Development gets readable text at debug level; everything else gets JSON at info.
func Init(env string) *slog.Logger {
	return initTo(os.Stdout, env)
}

func initTo(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	l := slog.New(h).With("service", "commission-api")
	slog.SetDefault(l)
	return l
}
