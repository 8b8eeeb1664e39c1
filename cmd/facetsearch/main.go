package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetsearch/internal/config"
	dbRedis "github.com/kailas-cloud/facetsearch/internal/db/redis"
	"github.com/kailas-cloud/facetsearch/internal/domain/label"
	logpkg "github.com/kailas-cloud/facetsearch/internal/logger"
	"github.com/kailas-cloud/facetsearch/internal/metrics"
	"github.com/kailas-cloud/facetsearch/internal/repository/facetcache"
	searchrepo "github.com/kailas-cloud/facetsearch/internal/repository/search"
	"github.com/kailas-cloud/facetsearch/internal/route"
	chiTransport "github.com/kailas-cloud/facetsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/facetsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/facetsearch/internal/usecase/search"
	"github.com/kailas-cloud/facetsearch/internal/version"
	"github.com/kailas-cloud/facetsearch/internal/view"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting facetsearch",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Search.Index),
		zap.Strings("facets", cfg.Search.Facets),
	)

	// Redis and Valkey speak the same protocol; both need the search module.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterSearchMetrics()

	// Repositories
	repo := searchrepo.New(store, searchrepo.Config{
		Index:      cfg.Search.Index,
		KeyPrefix:  cfg.Search.KeyPrefix,
		TitleField: cfg.Search.TitleField,
	}, metrics.BackendRequestDuration)

	var facets searchuc.FacetSource = repo
	if cfg.Cache.FacetTTLSec > 0 {
		facets = facetcache.New(
			repo, store,
			cfg.Search.KeyPrefix+cfg.Search.Index+":",
			time.Duration(cfg.Cache.FacetTTLSec)*time.Second,
			metrics.FacetCacheTotal, logger,
		)
		logger.Info("Facet cache enabled", zap.Int("ttl_sec", cfg.Cache.FacetTTLSec))
	}

	// Use case services
	searchSvc := searchuc.New(repo, facets, searchuc.Config{
		Facets:    cfg.Search.Facets,
		FacetSize: cfg.Search.FacetSize,
		PageSize:  cfg.Search.PageSize,
		MaxPage:   cfg.Search.MaxPage,
	})
	healthSvc := healthuc.New(store, store, cfg.Search.Index)

	// Views
	routes := route.NewRegistry()
	searchPath := routes.Register(route.Search, "/search")

	pages, err := buildPages(cfg, routes)
	if err != nil {
		logger.Fatal("Failed to parse templates", zap.Error(err))
	}

	server := chiTransport.NewServer(searchSvc, healthSvc, pages, routes, logger)

	r := chi.NewRouter()
	r.Use(recoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware("/metrics"))
	server.Routes(r, searchPath, cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildPages assembles the template extension and parses the page templates with it.
func buildPages(cfg config.Config, urls route.Generator) (*view.Engine, error) {
	fragments, err := view.NewFragmentEngine()
	if err != nil {
		return nil, fmt.Errorf("fragments: %w", err)
	}

	ext := view.NewExtension(
		view.NewFacetRenderer(fragments, metrics.FacetBucketsRenderedTotal),
		view.NewLinkBuilder(urls),
		view.NewLabelBridge(label.NewTable(cfg.Labels)),
		view.NewAssetRenderer(fragments, cfg.Assets.Catalog, cfg.Assets.BaseURL),
	)

	pages, err := view.NewPageEngine(ext.Funcs())
	if err != nil {
		return nil, fmt.Errorf("pages: %w", err)
	}
	return pages, nil
}

// recoverer turns a panic into a bare 500 page instead of a plain text stacktrace.
func recoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "text/html; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte("<!DOCTYPE html><title>500</title><h1>500</h1><p>internal error</p>"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx, reqLogger := logpkg.ForRequest(r.Context(), logger, requestID)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
