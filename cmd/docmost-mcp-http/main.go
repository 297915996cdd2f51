// Command docmost-mcp-http starts the Docmost MCP HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"docmost-mcp/internal/config"
	"docmost-mcp/internal/dispatch"
	"docmost-mcp/internal/docmost"
	"docmost-mcp/internal/server"
	"docmost-mcp/internal/tools"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "docmost-mcp-http:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("docmost-mcp-http", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(config.ConfigPath(fs), nil)
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := cfg.Logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := docmost.New(cfg.BaseURL, cfg.APIToken, nil)
	client.Logger = logger
	if cfg.UsesLogin() {
		logger.Info("DOCMOST_API_TOKEN not set; logging in with DOCMOST_EMAIL", "email", cfg.Email)
		if _, err := client.Login(ctx, cfg.Email, cfg.Password); err != nil {
			return fmt.Errorf("docmost login: %w", err)
		}
	}

	registry := tools.Catalog()
	if cfg.ReadOnly {
		logger.Info("read-only mode enabled", "disabled_tools", strings.Join(registry.MutatingNames(), ","))
	}
	d, err := dispatch.New(dispatch.Config{
		Backend:   client,
		Registry:  registry,
		ReadOnly:  cfg.ReadOnly,
		PublicURL: cfg.PageBaseURL(),
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	srv, err := server.New(server.Config{Invoker: d, Logger: logger, Version: version})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		names := make([]string, 0)
		for _, t := range d.Tools() {
			names = append(names, t.Name)
		}
		logger.Info("starting MCP HTTP server",
			"addr", httpServer.Addr,
			"tls", cfg.TLSCertFile != "",
			"tools", strings.Join(names, ","),
		)
		if cfg.TLSCertFile != "" {
			errCh <- httpServer.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
