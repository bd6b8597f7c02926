package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/richard-senior/betscout/internal/app"
	"github.com/richard-senior/betscout/internal/config"
	"github.com/richard-senior/betscout/internal/logger"
	"github.com/richard-senior/betscout/pkg/server"
	"github.com/richard-senior/betscout/pkg/transport"
)

func main() {
	envFile := flag.String("env", ".env", "Optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(1)
	}

	// stdout belongs to the MCP transport, logs go to stderr or the log file
	logger.SetShowDateTime(true)
	if err := app.ConfigureLogging(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid logging configuration:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting", server.Name, server.Version)

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("Failed to start:", err)
		os.Exit(1)
	}
	defer a.Close()

	s := server.InitInstance(transport.NewStdioTransport())
	a.Toolbox.Register(s)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.HTTPAddr != "" {
		go func() {
			if err := s.ListenAndServe(ctx, cfg.HTTPAddr, cfg.AllowedOrigins); err != nil {
				logger.Error("HTTP listener stopped:", err)
			}
		}()
	}

	if err := s.Start(ctx); err != nil {
		logger.Error("Server error:", err)
		os.Exit(1)
	}

	logger.Info("MCP server shutting down")
}
