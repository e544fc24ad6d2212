package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/reisemkt/dashboard-api/internal/config"
	"github.com/reisemkt/dashboard-api/internal/httpx"
	"github.com/reisemkt/dashboard-api/internal/ingest"
	"github.com/reisemkt/dashboard-api/internal/period"
	"github.com/reisemkt/dashboard-api/internal/sheets"
	"github.com/reisemkt/dashboard-api/internal/store"
	"github.com/reisemkt/dashboard-api/internal/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("err", err.Error()))
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	obs := utils.NewMetrics(reg)

	cl := sheets.NewClient(sheets.NewHTTPClient(cfg.HTTPTimeout), logger)
	st := store.NewMemoryStore()
	svc := ingest.NewService(
		ingest.NewDailyLoader(cl, cfg, logger),
		ingest.NewCrmLoader(cl, cfg, logger),
		st, logger, obs)
	ctrl := period.NewController(st)

	r := httpx.NewRouter(logger, svc, ctrl, st, obs, reg)

	// first load in the background; /readyz stays 503 until it commits
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := svc.Run(ctx); err != nil {
			logger.Error("initial load failed", slog.String("err", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
