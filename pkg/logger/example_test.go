package logger_test

import (
	"errors"

	"github.com/wonny/varcalc/pkg/config"
	"github.com/wonny/varcalc/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	// Create logger (SSOT)
	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Application started")

	// Formatted logging
	log.Infof("Fetched %d series", 2)
	log.Warnf("Retry attempt %d of %d", 3, 5)
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg).WithComponent("risk")

	log.WithFields(map[string]interface{}{
		"tickers":    []string{"AAPL", "MSFT"},
		"confidence": 0.95,
		"horizon":    1,
		"var":        -225.12,
	}).Info("Estimate completed")
	// stderr: {"level":"info","env":"production","component":"risk","tickers":["AAPL","MSFT"],...}
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("no price data")
	log.WithError(err).
		WithField("ticker", "ZZZ").
		Error("Price fetch failed")
}
