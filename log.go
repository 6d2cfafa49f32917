package lace

import "go.uber.org/zap"

// newLogger builds the Runtime's logger. Production callers should
// pass their own *zap.Logger into NewRuntime; this is the fallback
// NewRuntime uses when it is given a nil logger.
func newLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger
}

// retryWarning logs the every-third-failure warning SendReq emits
// while a request is stuck retrying a full inbox.
func retryWarning(logger *zap.Logger, workerID int32, attempts int) {
	logger.Sugar().Warnw("steal request send retrying",
		"worker", workerID, "attempts", attempts)
}

// debugTD emits a termination-protocol trace line, gated on
// Config.DebugTD so it costs nothing when disabled.
func debugTD(logger *zap.Logger, enabled bool, msg string, keysAndValues ...interface{}) {
	if !enabled {
		return
	}
	logger.Sugar().Debugw(msg, keysAndValues...)
}
