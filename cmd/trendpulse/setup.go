package main

import (
	"fmt"

	"github.com/newthinker/trendpulse/internal/config"
	"github.com/newthinker/trendpulse/internal/logger"
	"go.uber.org/zap"
)

// loadConfig reads .env, then the config file or defaults, and validates.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	var cfg *config.Config
	if cfgFile != "" {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		if log != nil {
			log.Warn("no config file specified, using defaults")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// newLogger honours --debug over the configured level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if debug {
		return logger.New(true, "debug")
	}
	return logger.New(cfg.Log.Development, cfg.Log.Level)
}
