package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process-wide zap logger. Debug switches to the development
// config with human-readable output.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}
