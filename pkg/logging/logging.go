// Package logging wires the service logger to zap
package logging

import (
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger. Entries flow through a zap JSON core so the
// output lines up with the rest of the platform's logs. The returned cleanup
// flushes buffered entries and should be deferred from main.
func New(level string) (ectologger.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	zlog, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return nil, nil, err
	}

	sink := func(msg ectologger.EctoLogMessage) {
		entry, err := json.Marshal(msg)
		if err != nil {
			zlog.Error("failed to encode log entry", zap.Error(err))
			return
		}
		zlog.Info("log", zap.Any("entry", json.RawMessage(entry)))
	}

	cleanup := func() { _ = zlog.Sync() }

	return ectologger.NewEctoLogger(sink), cleanup, nil
}
