package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hanpama/hwptext"
	"github.com/hanpama/hwptext/internal/config"
	"github.com/hanpama/hwptext/internal/mcptool"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "YAML policy `file`")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol; logs go to stderr.
	logger := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewServer(&mcp.Implementation{Name: "hwpmcp", Version: version}, nil)
	mcptool.Register(srv, hwptext.New(cfg.Extractor(logger)))

	logger.Info("hwpmcp serving on stdio", "version", version)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
