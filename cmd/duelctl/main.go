package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/duelhall/duel-server-go/internal/config"
	"github.com/duelhall/duel-server-go/internal/console"
	"github.com/duelhall/duel-server-go/internal/events"
	"github.com/duelhall/duel-server-go/internal/session"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	envFile    = flag.String("env-file", ".env", "dotenv file loaded before configuration")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", *envFile, err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, closeLogger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLogger()

	logger.Info("starting duel console",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.Uint32("max_messages", cfg.Chat.MaxMessages),
		zap.Duration("idle_ttl", cfg.Sessions.IdleTTL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sessionMgr := session.NewManager(events.NewBus(), logger,
		session.WithMaxMessages(cfg.Chat.MaxMessages),
		session.WithIdleTTL(cfg.Sessions.IdleTTL),
	)
	go sessionMgr.Run(ctx, cfg.Sessions.CleanupInterval)

	repl := console.New(sessionMgr, os.Stdout, logger)
	defer repl.Close()

	done := make(chan error, 1)
	go func() {
		done <- repl.Run(ctx, os.Stdin)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("console stopped", zap.Error(err))
		}
	}

	logger.Info("duel console stopped", zap.Int("sessions", sessionMgr.Count()))
}
