package logger

import (
	"log/slog"
	"os"
)

var base *slog.Logger

func Init() {
	base = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(base)
	base.Info("logger initialized")
}

func Info(msg string, fields map[string]any) {
	get().Info(msg, args(fields)...)
}

func Warn(msg string, fields map[string]any) {
	get().Warn(msg, args(fields)...)
}

func Error(msg string, fields map[string]any) {
	get().Error(msg, args(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	get().Error(msg, args(fields)...)
	os.Exit(1)
}

func get() *slog.Logger {
	if base == nil {
		return slog.Default()
	}
	return base
}

func args(fields map[string]any) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
