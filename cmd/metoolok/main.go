package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/metoolok/metoolok/internal/app"
	"github.com/metoolok/metoolok/internal/config"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to config file")
	dataDir    = flag.String("data", "", "Path to data directory")
	cliMode    = flag.Bool("cli", false, "Run in CLI mode (one-shot or interactive)")
	message    = flag.String("m", "", "Message to send (CLI mode)")
	serverMode = flag.Bool("server", false, "Run in server mode")
	version    = "dev"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "--version", "-v":
			fmt.Printf("Metoolok version %s\n", version)
			return
		}
	}

	flag.Parse()

	logger := newLogger()
	defer logger.Sync()

	if err := config.LoadEnvFiles(); err != nil {
		logger.Warn("Failed to load .env files", zap.Error(err))
	}

	cfg, err := config.Load(*configPath, *dataDir)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	application, err := app.New(cfg, logger, version)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}

	logger.Info("Starting Metoolok",
		zap.String("version", version),
		zap.String("mode", mode()),
		zap.Int("skills", application.Registry.Count()),
	)

	if *serverMode || (cfg.Server.Enabled && !*cliMode && *message == "") {
		application.RunServer()
		return
	}

	application.RunCLI(*message)
}

// newLogger keeps human-readable logs in CLI use and structured JSON
// when running as a server.
func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if *serverMode {
		logger, err = zap.NewProduction()
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		if os.Getenv("METOOLOK_DEBUG") != "" {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		logger, err = cfg.Build()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return logger
}

func mode() string {
	if *serverMode {
		return "server"
	}
	return "cli"
}
