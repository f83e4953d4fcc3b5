package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/bnema/voxlate/internal/config"
	"github.com/fsnotify/fsnotify"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const loggerScope = "github.com/bnema/voxlate"

func newLogger(format string, level *slog.LevelVar, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case config.LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts))
	case config.LogFormatOTel:
		return slog.New(leveledHandler{Handler: otelslog.NewHandler(loggerScope), level: level})
	default:
		return slog.New(slog.NewTextHandler(w, opts))
	}
}

// leveledHandler applies the runtime level to handlers that have no level
// option of their own.
type leveledHandler struct {
	slog.Handler
	level slog.Leveler
}

func (h leveledHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.Handler.Enabled(ctx, level)
}

func (h leveledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return leveledHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h leveledHandler) WithGroup(name string) slog.Handler {
	return leveledHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}

// watchLogLevel re-reads log.level whenever the config file changes.
func (a *app) watchLogLevel() {
	if a.viper.ConfigFileUsed() == "" {
		return
	}

	a.viper.OnConfigChange(func(event fsnotify.Event) {
		if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
			return
		}
		a.applyLogLevel(a.viper.GetString("log.level"))
	})
	a.viper.WatchConfig()
}

func (a *app) applyLogLevel(raw string) {
	level, err := config.ParseLevel(raw)
	if err != nil {
		a.logger.Warn("ignore log level change", "error", err)
		return
	}
	if level == a.level.Level() {
		return
	}

	a.level.Set(level)
	a.logger.Info("log level changed", "level", level.String())
}
