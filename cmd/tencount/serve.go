package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/tencount/internal/server"
)

// ServeCmd runs the websocket room server
type ServeCmd struct {
	Config string `short:"c" default:"tencount.hcl" help:"Path to HCL configuration file"`
	Addr   string `short:"a" help:"Server address to bind to (overrides config)"`
	Debug  bool   `help:"Enable debug logging"`
	Seed   *int64 `help:"Deterministic RNG seed (optional)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Server.LogLevel, c.Debug)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
	}

	addr := c.Addr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	}

	wsServer := server.NewServer(addr, logger)
	gameService := server.NewGameService(wsServer, logger, cfg, seed, quartz.NewReal())
	defer gameService.Stop()

	logger.Info("Starting tencount server", "addr", addr, "configBots", len(cfg.Bots))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- wsServer.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server")
		return wsServer.Stop()
	case err := <-serverErr:
		return err
	}
}

func setupLogger(level string, debug bool) *log.Logger {
	logger := log.New(os.Stderr)
	if debug {
		logger.SetLevel(log.DebugLevel)
		return logger
	}
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
