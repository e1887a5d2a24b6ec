package main

import (
	"fmt"
	"os"

	"github.com/tsugi-app/tsugi/internal/cmd"
	"github.com/tsugi-app/tsugi/internal/config"
	"github.com/tsugi-app/tsugi/internal/log"
	"github.com/tsugi-app/tsugi/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// It is unrecoverable if we cannot produce an application config
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialise logger
	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	// Set the default global logger
	log.SetDefaultLogger(logger)

	log.Info("Starting up Tsugi", "version", version.GetVersion(), "build_time", version.GetBuildTime())

	cmd.Execute(cfg)

	log.Info("Tsugi shutting down.  Goodbye!")
}
