package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yasn/config"
	"yasn/database"
	"yasn/handlers"
	"yasn/logs"
	"yasn/routes"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logs.New(cfg.NodeEnv)
	slog.SetDefault(logger)

	logger.Info("starting server", "env", cfg.NodeEnv, "port", cfg.Port)

	connectCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	db, err := database.Connect(connectCtx, cfg.DBURL, cfg.DBName, cfg.UseTransactions, logger)
	if err != nil {
		cancel()
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	db.EnsureIndexes(connectCtx)
	cancel()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := routes.SetupRouter(cfg, handlers.New(db, logger, cfg.DBTimeout), logger, reg)
	srv := newServer(cfg.Port, router)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := Run(context.Background(), srv, signals, nil, db.Close); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type ListenFunc func(srv *http.Server) error

var defaultListen ListenFunc = func(srv *http.Server) error {
	slog.Info("listening", "addr", srv.Addr)
	return srv.ListenAndServe()
}

// Run serves srv until a signal arrives, ctx ends or listening fails, then
// shuts the server down and calls onStop with the remaining shutdown budget.
func Run(ctx context.Context, srv *http.Server, signals <-chan os.Signal, listen ListenFunc, onStop func(context.Context) error) error {
	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv)
	}()

	select {
	case sig := <-signals:
		slog.Info("shutting down", "signal", sig)
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	if onStop != nil {
		if err := onStop(shutdownCtx); err != nil {
			return errors.Join(shutdownErr, err)
		}
	}
	return shutdownErr
}
