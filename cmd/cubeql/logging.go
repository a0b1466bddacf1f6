package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

var logger *slog.Logger

var logLevelMap = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// initLogging points a text-handler slog.Logger at stderr using the same
// level-name convention throughout the CLI. cubeql is a one-shot invocation,
// not a long-lived process, so it has no log file to rotate into.
func initLogging(level string) {
	l, ok := logLevelMap[strings.ToLower(level)]
	if !ok {
		l = slog.LevelWarn
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(logger)
}

// debugf adapts the package logger to compile.Options.Debugf's printf-style
// signature.
func debugf(format string, args ...interface{}) {
	if logger == nil {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...))
}
