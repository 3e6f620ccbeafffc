// Package telemetry builds the *zap.Logger shared by simulator, stream
// and cmd/simulate, mirroring handikong-gopherex's exec/grpc/logx.New
// (a production zap config with an ISO8601 time encoder) and
// pkg/logger's always-valid package-level logger convention.
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-profile zap logger with ISO8601 timestamps.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// Must builds the logger as New does, falling back to a no-op logger
// if construction fails rather than aborting the caller — a simulation
// run should not fail to start because of a logging sink problem.
func Must() *zap.Logger {
	logger, err := New()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
