package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/routeweather/internal/api"
	"github.com/lox/routeweather/internal/chart"
	"github.com/lox/routeweather/internal/compare"
	"github.com/lox/routeweather/internal/config"
	"github.com/lox/routeweather/internal/httputil"
	"github.com/lox/routeweather/internal/logging"
	"github.com/lox/routeweather/internal/netcheck"
	"github.com/lox/routeweather/internal/openmeteo"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "routeweather: %v\n", err)
		os.Exit(2)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	weather := openmeteo.NewClient(cfg.WeatherURL, logger,
		openmeteo.WithHTTPClient(httputil.NewClient(cfg.FetchTimeout)),
		openmeteo.WithRetries(cfg.FetchRetries),
	)
	probe := netcheck.NewProbe(cfg.ProbeAddr, cfg.ProbeTimeout, logger)
	service := compare.NewService(weather, probe, cfg.Thresholds.Thresholds(), logger)
	charts := chart.NewRenderer(cfg.ChartWidth, cfg.ChartHeight)

	server := api.NewServer(service, charts, logger, cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting routeweather",
		"port", cfg.Port,
		"weather_url", cfg.WeatherURL,
		"probe_addr", cfg.ProbeAddr,
		"retries", cfg.FetchRetries,
	)
	if err := server.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
