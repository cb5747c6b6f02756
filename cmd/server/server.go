package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

// newHTTPServer builds the server with the timeouts used in production.
func (app *application) newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
// It returns the process exit code.
func (app *application) Run(ctx context.Context) int {
	server := app.newHTTPServer(app.setupRouter())

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		app.logger.Error("Failed to bind listener", slog.String("addr", server.Addr), slog.Any("error", err))
		app.cleanup()
		return 1
	}

	go func() {
		app.logger.Info("Starting server",
			slog.Int("port", app.config.Server.Port),
			slog.String("api_prefix", app.config.Server.APIPrefix))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("Server failed", slog.Any("error", err))
			// Route the failure through the same shutdown path as a signal.
			if p, ferr := os.FindProcess(os.Getpid()); ferr == nil {
				_ = p.Signal(syscall.SIGTERM)
			}
		}
	}()

	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	wait := gfshutdown.GracefulShutdown(ctx, timeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			return app.shutdown(ctx, server)
		},
	})

	exitCode := <-wait
	app.logger.Info("Server exited", slog.Int("exit_code", exitCode))
	return exitCode
}
