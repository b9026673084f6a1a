package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/outreach-monitor/internal/api"
	"github.com/ignite/outreach-monitor/internal/cache"
	"github.com/ignite/outreach-monitor/internal/config"
	"github.com/ignite/outreach-monitor/internal/heyreach"
	"github.com/ignite/outreach-monitor/internal/pkg/logger"
	"github.com/ignite/outreach-monitor/internal/report"
	"github.com/ignite/outreach-monitor/internal/sheets"
	"github.com/ignite/outreach-monitor/internal/smartlead"
	"github.com/ignite/outreach-monitor/internal/taskmanager"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		logger.Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err.Error())
		os.Exit(1)
	}

	logger.Info("starting outreach-monitor",
		"heyreach_key", logger.RedactSecret(cfg.HeyReach.APIKey),
		"manual_senders", len(cfg.HeyReach.SenderIDs),
		"client_groups", len(cfg.HeyReach.ClientGroups))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := heyreach.NewClient(cfg.HeyReach)
	directory := heyreach.NewDirectory(client, cfg.HeyReach)
	aggregator := heyreach.NewAggregator(client, cfg.HeyReach)

	handlers := api.NewHandlers(directory, aggregator, cfg)

	if cfg.Smartlead.Enabled && cfg.Smartlead.APIKey != "" {
		handlers.SetSmartlead(smartlead.NewClient(cfg.Smartlead))
		logger.Info("smartlead client initialized")
	}

	if cfg.Sheets.SpreadsheetURL != "" {
		sheetsClient, err := sheets.NewClient(ctx, cfg.Sheets)
		if err != nil {
			logger.Warn("sheets sink disabled", "error", err.Error())
		} else {
			handlers.SetSheetSink(sheets.NewSink(sheetsClient))
			logger.Info("sheets sink initialized")
		}
	}

	if cfg.Cache.Enabled {
		resultCache := cache.New(cfg.Cache)
		defer resultCache.Close()

		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := resultCache.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, cache will serve misses", "addr", cfg.Cache.RedisAddr, "error", err.Error())
		}
		pingCancel()

		handlers.SetCache(resultCache)
		logger.Info("result cache initialized", "addr", cfg.Cache.RedisAddr, "ttl_minutes", cfg.Cache.TTLMinutes)
	}

	if cfg.Archive.Enabled && cfg.Archive.S3Bucket != "" {
		archive, err := report.NewArchive(ctx, cfg.Archive)
		if err != nil {
			logger.Warn("report archive disabled", "error", err.Error())
		} else {
			handlers.SetArchive(archive)
			logger.Info("report archive initialized", "bucket", cfg.Archive.S3Bucket)
		}
	}

	if cfg.Tasks.Enabled && cfg.Tasks.DatabaseURL != "" {
		store, err := taskmanager.Open(ctx, cfg.Tasks.DatabaseURL)
		if err != nil {
			logger.Warn("task manager disabled", "error", err.Error())
		} else {
			defer store.Close()
			handlers.SetTaskStore(store)
			logger.Info("task manager initialized")
		}
	}

	server := api.NewServer(cfg.Server, handlers)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err.Error())
	}
	logger.Info("server stopped")
}
