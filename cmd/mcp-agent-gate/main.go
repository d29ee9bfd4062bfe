// Package main provides the entry point for the agent gate service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	gateserver "github.com/txn2/mcp-agent-gate/internal/server"
	"github.com/txn2/mcp-agent-gate/pkg/admin"
	"github.com/txn2/mcp-agent-gate/pkg/gateway"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	configPath  string
	address     string
	adminKey    string
	showVersion bool
}

func parseFlags() serverOptions {
	opts := serverOptions{}
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.address, "address", ":8080", "HTTP listen address")
	flag.StringVar(&opts.adminKey, "admin-key", "", "API key granting admin access (overrides ADMIN_API_KEY)")
	flag.BoolVar(&opts.showVersion, "version", false, "Show version and exit")
	flag.Parse()
	return opts
}

func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}

func adminKeys(opts serverOptions) map[string]admin.User {
	key := opts.adminKey
	if key == "" {
		key = os.Getenv("ADMIN_API_KEY")
	}
	if key == "" {
		return nil
	}
	return map[string]admin.User{
		key: {UserID: "admin", Roles: []string{"admin"}},
	}
}

func run() error {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("mcp-agent-gate %s (%s, built %s)\n",
			gateserver.Version, gateserver.Commit, gateserver.Date)
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := gateway.Config{}
	if opts.configPath != "" {
		loaded, err := gateway.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	gw := gateway.New(cfg, gateway.WithLogger(logger))
	srv := gateserver.New(gw, gateserver.Config{
		Address:   opts.address,
		AdminKeys: adminKeys(opts),
		Logger:    logger,
	})

	return srv.Run(setupSignalHandler())
}
