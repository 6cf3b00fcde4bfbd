package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/testersen/jmsn.link/internal/config"
	"github.com/testersen/jmsn.link/pkg/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application entry point with proper error handling.
func run() error {
	configPath := flag.String("config", "", "path to configuration file")
	devMode := flag.Bool("dev", false, "enable development mode")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("jmsn.link %s (built %s)\n", Version, BuildTime)
		return nil
	}

	// Initialize logger
	if err := initLogger(*devMode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting jmsn.link",
		zap.String("version", Version),
		zap.Bool("dev_mode", *devMode),
	)

	// Load and validate configuration
	cfg, err := loadAndValidateConfig(*configPath)
	if err != nil {
		return err
	}

	return runServer(cfg)
}

// initLogger initializes the logger with appropriate settings.
func initLogger(devMode bool) error {
	logCfg := logger.DefaultConfig()
	if devMode || os.Getenv("DEV_MODE") == "true" {
		logCfg.Level = "debug"
		logCfg.Development = true
	}
	return logger.Init(logCfg)
}

// loadAndValidateConfig loads and validates configuration.
func loadAndValidateConfig(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load configuration",
			zap.Error(err),
			zap.String("path", configPath),
		)
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Reinitialize logger with config settings
	if cfg.Log.Level != "" {
		logger.SetLevel(cfg.Log.Level)
	}

	logger.Info("configuration loaded", zap.String("path", configPath))

	if err := config.Validate(cfg); err != nil {
		logger.Error("configuration validation failed", zap.Error(err))
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
