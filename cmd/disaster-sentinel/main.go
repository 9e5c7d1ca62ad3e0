package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harsh822v/DisasterSentinel-project/internal/aggregator"
	"github.com/harsh822v/DisasterSentinel-project/internal/api"
	"github.com/harsh822v/DisasterSentinel-project/internal/config"
	"github.com/harsh822v/DisasterSentinel-project/internal/feeds"
	"github.com/harsh822v/DisasterSentinel-project/internal/logging"
	"github.com/harsh822v/DisasterSentinel-project/internal/monitor"
	"github.com/harsh822v/DisasterSentinel-project/internal/observability"
	"github.com/harsh822v/DisasterSentinel-project/internal/stream"
	"github.com/harsh822v/DisasterSentinel-project/internal/timerange"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()

	usgs := feeds.NewUSGSClient(cfg.Sources.USGSBaseURL, cfg.Sources.FetchTimeout)
	nws := feeds.NewNWSClient(cfg.Sources.NWSBaseURL, cfg.Sources.NWSUserAgent, cfg.Sources.FetchTimeout)
	openweather := feeds.NewOpenWeatherClient(cfg.Sources.OpenWeatherAPIKey, cfg.Sources.OpenWeatherBaseURL, cfg.Sources.FetchTimeout, clock, slog.Default())
	if !openweather.Enabled() {
		slog.Warn("openweather API key not configured; condition feed will contribute no events")
	}

	agg := aggregator.NewService(usgs, nws, openweather,
		aggregator.FailureMode(cfg.Aggregation.FailureMode), metrics, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Live stream of newly observed warnings for the dashboard
	broadcaster := stream.NewBroadcaster()

	var mon *monitor.Monitor
	if cfg.Monitor.Enabled {
		mon = monitor.New(monitor.Config{
			Interval:    cfg.Monitor.Interval,
			Retention:   cfg.Monitor.Retention,
			WorkerCount: cfg.Monitor.WorkerCount,
			BufferSize:  cfg.Monitor.BufferSize,
			Filter: aggregator.Filter{
				TimeRange: timerange.Hour,
				Area:      cfg.Sources.NWSArea,
				Lat:       cfg.Monitor.Lat,
				Lon:       cfg.Monitor.Lon,
			},
		}, agg, broadcaster, clock, metrics, slog.Default())
		mon.Start(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(cfg.RateLimit.RPS))

	handler := api.NewHandler(agg, broadcaster)
	handler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if mon != nil {
		mon.Stop()
	}
	broadcaster.Close() // Close all streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
