package logger

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggerWithCaller adds caller information to the logger
func LoggerWithCaller(skip int) Logger {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return GetLogger()
	}

	parts := strings.Split(file, "/")
	filename := parts[len(parts)-1]

	return GetLogger().WithField("caller", fmt.Sprintf("%s:%d", filename, line))
}

// LogEndpointCall logs one signed in-page fetch against a hidden endpoint
func LogEndpointCall(endpoint, url string, statusCode int, duration float64) {
	fields := map[string]interface{}{
		"endpoint":    endpoint,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration,
	}

	if statusCode >= 200 && statusCode < 300 {
		GetLogger().DebugWithFields("Endpoint call completed", fields)
	} else if statusCode == 0 {
		GetLogger().WarnWithFields("Endpoint call failed inside page", fields)
	} else {
		GetLogger().WarnWithFields("Endpoint call returned non-success status", fields)
	}
}

// LogRetry logs a retry decision made by the acquisition engine
func LogRetry(endpoint string, attempt int, reason string, delay time.Duration) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"attempt":  attempt,
		"reason":   reason,
		"delay":    delay,
	}).Warn("Retrying endpoint call")
}

// LogHardBlock logs a permanent block reported by an endpoint
func LogHardBlock(endpoint, target string, code int) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"target":   target,
		"code":     code,
		"action":   "blocked",
	}).Warn("Endpoint reported a hard block, giving up on direct listing")
}

// LogFallback logs a switch from a blocked listing to the search path
func LogFallback(target, query string) {
	GetLogger().WithFields(map[string]interface{}{
		"target": target,
		"query":  query,
	}).Info("Falling back to search")
}

// LogPageProgress logs pagination progress for a listing endpoint
func LogPageProgress(endpoint, target string, pages, collected, want int) {
	percentage := 0.0
	if want > 0 {
		percentage = float64(collected) / float64(want) * 100
	}

	GetLogger().WithFields(map[string]interface{}{
		"endpoint":   endpoint,
		"target":     target,
		"pages":      pages,
		"collected":  collected,
		"want":       want,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Info("Listing progress")
}

// LogSessionInvalidation logs a session parameter reset
func LogSessionInvalidation(endpoint string, consecutiveFailures int) {
	GetLogger().WithFields(map[string]interface{}{
		"endpoint":             endpoint,
		"consecutive_failures": consecutiveFailures,
	}).Warn("Invalidating session parameters")
}

// LogContextRestart logs an execution context re-warm
func LogContextRestart(reason string) {
	GetLogger().WithField("reason", reason).Warn("Restarting execution context")
}

// LogRowsWritten logs a persistence merge result
func LogRowsWritten(file string, existing, incoming, written int) {
	GetLogger().WithFields(map[string]interface{}{
		"file":     file,
		"existing": existing,
		"incoming": incoming,
		"written":  written,
	}).Info("Merged rows to disk")
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, config map[string]interface{}) {
	logger := GetLogger().WithField("component", component)

	if len(config) > 0 {
		logger = logger.WithFields(config)
	}

	logger.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(component string, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// MustGetLogger gets the logger or panics if it fails
func MustGetLogger() Logger {
	logger := GetLogger()
	if logger == nil {
		panic("logger not initialized")
	}
	return logger
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
