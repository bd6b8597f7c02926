package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/richard-senior/betscout/internal/app"
	"github.com/richard-senior/betscout/internal/config"
	"github.com/richard-senior/betscout/internal/logger"
	"github.com/richard-senior/betscout/internal/processor"
	"github.com/richard-senior/betscout/pkg/server"
	"github.com/richard-senior/betscout/pkg/transport"
)

// query runs one tool call and prints the JSON result, e.g.
//
//	query analyse_fixture fixture_id=1035037
//	echo '{"tool":"search_team","arguments":{"name":"Arsenal"}}' | query
func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	inputFile := flag.String("input", "", "Input file path (if not provided, arguments or stdin are used)")
	outputFile := flag.String("output", "", "Output file path (if not provided, stdout will be used)")
	envFile := flag.String("env", ".env", "Optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(1)
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	if err := app.ConfigureLogging(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Invalid logging configuration:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var input []byte
	switch {
	case *inputFile != "":
		input, err = os.ReadFile(*inputFile)
		if err != nil {
			logger.Fatal("Failed to read input file", err)
		}
	case flag.NArg() > 0:
		req, err := processor.ParseArgs(flag.Args())
		if err != nil {
			logger.Fatal("Invalid arguments", err)
		}
		input, err = json.Marshal(req)
		if err != nil {
			logger.Fatal("Failed to create request from command line arguments", err)
		}
	default:
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("Failed to read from stdin", err)
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.Fatal("Failed to start", err)
	}
	defer a.Close()

	s := server.NewServer(transport.NewStdioTransport())
	a.Toolbox.Register(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := processor.ProcessRequest(ctx, s, input)
	if err != nil {
		logger.Error("Failed to process request", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, result, 0644); err != nil {
			logger.Fatal("Failed to write to output file", err)
		}
		return
	}
	fmt.Println(string(result))
}
