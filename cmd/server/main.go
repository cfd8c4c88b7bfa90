package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kyawswar87/share-mal/internal/config"
	"github.com/kyawswar87/share-mal/internal/httpapi"
	"github.com/kyawswar87/share-mal/internal/service"
	"github.com/kyawswar87/share-mal/internal/storage/sqlite"
	"github.com/kyawswar87/share-mal/internal/validation"
	"github.com/kyawswar87/share-mal/pkg/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run starts the server and blocks until it stops. Deferred cleanup runs
// before main exits with the returned code.
func run(args []string) int {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return 1
	}
	logging.Setup(cfg.Log.Level)

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Server.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		return 1
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Server.DBPath)

	v, err := validation.Default()
	if err != nil {
		slog.Error("Failed to initialize validator", "error", err)
		return 1
	}

	api := httpapi.NewServer(service.NewBillService(store, v))
	if cfg.Server.Metrics {
		api.EnableMetrics()
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		// h2c serves HTTP/2 without TLS next to HTTP/1.1
		Handler:           h2c.NewHandler(api.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", cfg.Server.Addr, "url", "http://localhost"+cfg.Server.Addr+httpapi.BasePath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		slog.Info("Shutting down", "grace", cfg.Server.ShutdownGrace.Duration)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace.Duration)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
			return 1
		}
	}
	slog.Info("Server stopped")
	return 0
}
