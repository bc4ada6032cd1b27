package logger

import (
	"log"

	"go.uber.org/zap"
)

// New creates a zap logger for the given environment: human-readable
// development output for local/dev, JSON production output otherwise.
func New(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)

	switch env {
	case "local", "dev", "development":
		logger, err = zap.NewDevelopment()
	default:
		logger, err = zap.NewProduction()
	}

	if err != nil {
		log.Fatalf("failed to initialize zap logger: %v", err)
	}

	return logger
}
