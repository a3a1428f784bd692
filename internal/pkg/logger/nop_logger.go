package logger

import "go.uber.org/zap"

// NewNopLogger returns an ILogger that discards everything. Intended for
// tests and tooling that do not want log files.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}
