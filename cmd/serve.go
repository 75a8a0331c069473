package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/desertthunder/tdx/internal/repositories"
	"github.com/desertthunder/tdx/internal/server"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the reference item store until the context is cancelled or the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	dbConfig := r.config.Database
	if path := cmd.String("db"); path != "" {
		dbConfig.Path = path
	}

	serverConfig := r.config.Server
	if host := cmd.String("host"); host != "" {
		serverConfig.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		serverConfig.Port = int(port)
	}

	db, err := shared.OpenStoreDatabase(dbConfig)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := server.StoreOpts{
		Items:  repositories.NewItemRepository(db),
		Logger: r.logger,
	}
	if !cmd.Bool("no-audit") {
		opts.Requests = repositories.NewRequestLogRepository(db)
	}

	ln, err := net.Listen("tcp", serverConfig.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", serverConfig.Addr(), err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return r.serve(ctx, ln, server.NewStoreRouter(opts), dbConfig.Path)
}

// serve runs handler on ln and shuts down gracefully once ctx is done.
func (r *Runner) serve(ctx context.Context, ln net.Listener, handler http.Handler, dbPath string) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(ln)
	}()

	addr := ln.Addr().String()
	r.logger.Info("item store listening", "addr", addr, "db", dbPath)
	r.writePlain("Serving /todos on http://%s\n", displayAddr(addr))

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down item store")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// displayAddr replaces an unspecified host with localhost.
func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	if _, err := strconv.Atoi(port); err != nil {
		return addr
	}
	return net.JoinHostPort(host, port)
}
