package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/lox/caribbeanpoker/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"caribbean-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to, host or host:port (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Seed     int64  `long:"seed" help:"Base dealer seed for reproducible rounds (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("caribbean-server"),
		kong.Description("Authoritative Caribbean Poker table server"),
		kong.UsageOnError(),
	)

	// Load configuration
	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		if err := applyAddr(cfg, CLI.Addr); err != nil {
			fmt.Printf("Invalid address: %v\n", err)
			ctx.Exit(1)
		}
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Seed != 0 {
		cfg.Server.Seed = CLI.Seed
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting Caribbean Poker server",
		"addr", cfg.GetServerAddress(),
		"tables", len(cfg.Tables))

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Error("Failed to create server", "error", err)
		ctx.Exit(1)
	}

	// Handle graceful shutdown
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
	logger.Info("Server stopped")
}

// applyAddr accepts either a bare host or host:port.
func applyAddr(cfg *server.ServerConfig, addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		cfg.Server.Address = addr
		return nil
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("port %q: %w", port, err)
	}
	cfg.Server.Address = host
	cfg.Server.Port = p
	return nil
}
