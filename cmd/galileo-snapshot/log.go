package main

import (
	"context"
	"log/slog"
	"os"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/shiena/ansicolor"
	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

func initLog() {
	log = logrus.New()
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		ShowFullLevel:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	log.SetOutput(ansicolor.NewAnsiColorWriter(os.Stdout))

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
}

// engineLogger adapts the CLI's logrus logger for the engine, so
// library records and CLI output share one formatted stream.
func engineLogger() *slog.Logger {
	return slog.New(&slogBridge{})
}

// slogBridge forwards slog records into logrus.
type slogBridge struct {
	attrs []slog.Attr
}

func (b *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return log.IsLevelEnabled(logrusLevel(level))
}

func (b *slogBridge) Handle(_ context.Context, r slog.Record) error {
	fields := make(logrus.Fields, r.NumAttrs()+len(b.attrs))
	for _, a := range b.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})
	log.WithFields(fields).Log(logrusLevel(r.Level), r.Message)
	return nil
}

func (b *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(b.attrs)+len(attrs))
	merged = append(merged, b.attrs...)
	merged = append(merged, attrs...)
	return &slogBridge{attrs: merged}
}

// WithGroup flattens groups; the engine does not use them.
func (b *slogBridge) WithGroup(string) slog.Handler { return b }

func logrusLevel(l slog.Level) logrus.Level {
	switch {
	case l >= slog.LevelError:
		return logrus.ErrorLevel
	case l >= slog.LevelWarn:
		return logrus.WarnLevel
	case l >= slog.LevelInfo:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}
