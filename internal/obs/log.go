package obs

import "go.uber.org/zap"

// NewLogger returns a production zap.Logger suitable as a DB's default,
// falling back to a no-op logger if construction fails (e.g. sampling
// config rejected), matching the "never panic on logger setup" posture a
// library embedded in someone else's service needs.
func NewLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// NewDevelopmentLogger returns a human-readable zap.Logger for local
// development and tests, falling back to a no-op logger on error.
func NewDevelopmentLogger() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
