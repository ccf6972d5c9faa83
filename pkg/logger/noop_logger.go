package logger

import "context"

// noopLogger discards all log output. Used in tests and as a safe default.
type noopLogger struct{}

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(ctx context.Context, message string, fields ...Field)            {}
func (noopLogger) Info(ctx context.Context, message string, fields ...Field)             {}
func (noopLogger) Warn(ctx context.Context, message string, fields ...Field)             {}
func (noopLogger) Error(ctx context.Context, message string, err error, fields ...Field) {}
func (n noopLogger) WithFields(fields ...Field) Logger                                   { return n }
func (n noopLogger) WithComponent(component string) Logger                               { return n }
