package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coreauth/internal/config"
	"coreauth/internal/credential"
	"coreauth/internal/database"
	"coreauth/internal/handler"
	"coreauth/internal/keygen"
	"coreauth/internal/service"
	"coreauth/internal/store"
	"coreauth/internal/util"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	port := flag.Int("port", 0, "listen port (overrides PORT)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "coreauth: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	if cfg.InsecureAdminKey() {
		logger.Warn("using the built-in admin key; set ADMIN_KEY before exposing this service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("failed to close database", slog.Any("error", err))
		}
	}()

	verifier, err := credential.New(cfg.Auth.CredentialScheme, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	sheets, err := service.NewSheetSync(ctx, cfg.Sheets, logger)
	if err != nil {
		return err
	}
	if err := sheets.EnsureHeader(ctx); err != nil {
		logger.Warn("failed to write sheet header", slog.Any("error", err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	clock := keygen.SystemClock{}
	deps := service.Deps{
		Stores:  store.New(db, keygen.NewRandomGenerator(), clock, verifier),
		Clock:   clock,
		Audit:   service.NewAuditLog(db, clock),
		Metrics: service.NewMetrics(reg),
		Sheets:  sheets,
		Logger:  logger,
	}

	h := handler.New(
		service.NewAuthService(deps, cfg.Auth.EnforceExpiry),
		service.NewAdminService(cfg.AdminKey, deps),
		util.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL),
		func() error { return database.Ping(db) },
		logger,
	)
	app := handler.NewApp(h, handler.Options{
		AllowOrigins: cfg.CORS.AllowOrigins,
		Gatherer:     reg,
		AccessLog:    true,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr), slog.String("db_driver", cfg.Database.Driver))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})
	return g.Wait()
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
