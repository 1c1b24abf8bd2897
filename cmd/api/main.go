package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/jwalitptl/pharmacy-api/internal/catalog"
	"github.com/jwalitptl/pharmacy-api/internal/config"
	"github.com/jwalitptl/pharmacy-api/internal/extract"
	"github.com/jwalitptl/pharmacy-api/internal/handler"
	catalogHandler "github.com/jwalitptl/pharmacy-api/internal/handler/catalog"
	scanHandler "github.com/jwalitptl/pharmacy-api/internal/handler/scan"
	"github.com/jwalitptl/pharmacy-api/internal/middleware"
	"github.com/jwalitptl/pharmacy-api/internal/order"
	"github.com/jwalitptl/pharmacy-api/internal/recognition"
	"github.com/jwalitptl/pharmacy-api/internal/router"
	"github.com/jwalitptl/pharmacy-api/internal/session"
	"github.com/jwalitptl/pharmacy-api/pkg/logger"
	"github.com/jwalitptl/pharmacy-api/pkg/metrics"
)

func main() {
	log := logger.NewLogger(nil)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	m := metrics.NewMetrics("pharmacy", "api")

	// External service clients
	engine := recognition.NewClient(recognition.ClientConfig{
		BaseURL:      cfg.Recognition.BaseURL,
		Timeout:      cfg.Recognition.Timeout,
		PollInterval: cfg.Recognition.PollInterval,
	}, log)

	catalogClient := catalog.NewClient(catalog.ClientConfig{
		BaseURL:  cfg.Catalog.BaseURL,
		Timeout:  cfg.Catalog.Timeout,
		CacheTTL: cfg.Catalog.CacheTTL,
	}, log)

	orderClient := order.NewClient(order.ClientConfig{
		BaseURL: cfg.Order.BaseURL,
		Timeout: cfg.Order.Timeout,
	}, log)

	// Pipeline components
	extractor := extract.NewFieldExtractor(log)
	candidates := extract.NewCandidateNameExtractor()
	matcher := catalog.NewMatcher(catalogClient, catalog.MatcherConfig{
		MinScore:      cfg.Catalog.MinScore,
		MinConfidence: cfg.Catalog.MinConfidence,
		Limit:         cfg.Catalog.Limit,
		Workers:       cfg.Catalog.Workers,
	}, log)
	assembler := order.NewAssembler()

	store := session.NewStore(cfg.Session.TTL)
	sessionSvc := session.NewService(engine, extractor, candidates, matcher, assembler, orderClient, store, m, log)

	// Handlers
	h := handler.NewHandler()
	scanH := scanHandler.NewHandler(sessionSvc)
	catalogH := catalogHandler.NewHandler(catalogClient, cfg.Catalog.QueryCacheSize, catalog.SearchOptions{
		MinScore: cfg.Catalog.MinScore,
		Limit:    cfg.Catalog.Limit,
	})

	// Setup router
	routerCfg := router.RouterConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     middleware.DefaultCORSConfig(),
		SizeLimit:      middleware.DefaultSizeLimitConfig(),
		MetricsPrefix:  cfg.Monitoring.MetricsPrefix,
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		routerCfg.CORSConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerCfg.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(scanH, catalogH, h, routerCfg)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
