package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dvdash/dashboard/internal/config"
	"github.com/dvdash/dashboard/internal/connection"
	"github.com/dvdash/dashboard/internal/dashboard"
	httpapi "github.com/dvdash/dashboard/internal/http"
	"github.com/dvdash/dashboard/internal/http/handlers"
	"github.com/dvdash/dashboard/internal/logging"
	"github.com/dvdash/dashboard/internal/metrics"
	"github.com/dvdash/dashboard/internal/storage"
	"github.com/dvdash/dashboard/internal/view"
	"github.com/spf13/pflag"
	"k8s.io/utils/clock"
)

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("DVDASH_CONFIG"), "path to TOML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DBPath != storage.MemoryDSN && !strings.HasPrefix(cfg.DBPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			logger.Error("failed to create db directory", "err", err)
			os.Exit(1)
		}
	}
	repo, err := storage.New(ctx, cfg.DBPath, logging.Component(logger, "storage"))
	if err != nil {
		logger.Error("failed to initialize storage", "err", err)
		os.Exit(1)
	}
	defer repo.Close()

	realClock := clock.RealClock{}
	reconciler := view.New(repo, realClock, logging.Component(logger, "view"))
	if err := reconciler.Init(ctx); err != nil {
		logger.Error("failed to initialize tables", "err", err)
		os.Exit(1)
	}

	m := metrics.New()
	endpoint := connection.Endpoint(cfg.FeedHost, cfg.FeedPort, cfg.FeedPath, cfg.SecurePage)
	feed := connection.New(endpoint, logging.Component(logger, "feed"),
		connection.WithIdleTimeout(cfg.IdleTimeout),
		connection.WithHandshakeTimeout(cfg.HandshakeTimeout),
		connection.WithObserver(m),
	)
	dash := dashboard.New(reconciler, realClock, m, logging.Component(logger, "dashboard"))

	go feed.Run(ctx)
	go dash.Run(ctx, feed.Messages())

	api := handlers.New(reconciler, feed, dash, repo, handlers.Branding{
		SiteLabel:  cfg.SiteLabel,
		SysopEmail: cfg.SysopEmail,
		LogoFile:   cfg.LogoFile,
		FeedHost:   cfg.FeedHost,
	}, logging.Component(logger, "http"))
	httpServer := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewRouter(api, m.Handler()))

	logger.Info("server starting", "addr", httpServer.Addr, "feed", endpoint)
	if err := httpapi.RunServer(ctx, httpServer, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server terminated with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
