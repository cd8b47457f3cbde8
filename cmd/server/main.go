package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lanmesh/internal/core/ports"
	"lanmesh/internal/core/services"
	httphandlers "lanmesh/internal/handlers/http"
	"lanmesh/internal/infrastructure/middleware"
	"lanmesh/internal/infrastructure/monitoring"
	"lanmesh/internal/infrastructure/probe"
	"lanmesh/internal/infrastructure/push"
	"lanmesh/internal/infrastructure/repositories/memory"
	"lanmesh/pkg/config"
	"lanmesh/pkg/logger"
	"lanmesh/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	tracingCfg := tracing.DefaultConfig()
	tracingCfg.Enabled = cfg.Tracing.Enabled
	tracingCfg.JaegerURL = cfg.Tracing.JaegerURL
	tracingCfg.SampleRate = cfg.Tracing.SampleRate

	tracerProvider, err := tracing.Init(tracingCfg)
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Metrics recorder
	var recorder ports.MetricsRecorder = ports.NopMetricsRecorder{}
	if cfg.Monitoring.PrometheusEnabled {
		recorder = monitoring.NewPrometheusCollector()
	}

	// Registry and probe adapter
	registry := memory.NewRegistry(memory.Options{
		MergeUsersByName: cfg.Registry.MergeUsersByName,
	})

	prober := probe.NewProber(probe.NewExecRunner(), probe.Config{
		Timeout:    cfg.Probe.Timeout,
		CacheTTL:   cfg.Probe.CacheTTL,
		PingTarget: cfg.Probe.PingTarget,
		PingCount:  cfg.Probe.PingCount,
	}, log)
	defer prober.Stop()

	// Core services
	sessions := services.NewSessionTracker()
	networkService := services.NewNetworkService(registry, prober, sessions, recorder, log)

	// Push gateway
	hub := push.NewHub(networkService, recorder, push.Config{
		PingInterval: cfg.Push.PingInterval,
		PongTimeout:  cfg.Push.PongTimeout,
		WriteTimeout: cfg.Push.WriteTimeout,
	}, log)
	networkService.SetBroadcaster(hub)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	networkHandler := httphandlers.NewNetworkHandler(networkService)
	networkHandler.SetupRoutes(router)

	router.GET("/ws", gin.WrapF(hub.HandleWebSocket))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
			"sessions":  hub.SessionCount(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ready",
			"timestamp": time.Now(),
		})
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting lanmesh server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down lanmesh server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer provider", "error", err)
	}

	log.Info("lanmesh server stopped")
}
