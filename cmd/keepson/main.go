package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/keepson/keepson/internal/config"
	"github.com/keepson/keepson/internal/db"
	dbRedis "github.com/keepson/keepson/internal/db/redis"
	logpkg "github.com/keepson/keepson/internal/logger"
	"github.com/keepson/keepson/internal/metrics"
	budgetrepo "github.com/keepson/keepson/internal/repository/budget"
	filerepo "github.com/keepson/keepson/internal/repository/file"
	"github.com/keepson/keepson/internal/repository/hintcache"
	recordrepo "github.com/keepson/keepson/internal/repository/record"
	"github.com/keepson/keepson/internal/transport/httpapi"
	oracleTransport "github.com/keepson/keepson/internal/transport/openai"
	healthuc "github.com/keepson/keepson/internal/usecase/health"
	recorduc "github.com/keepson/keepson/internal/usecase/record"
	searchuc "github.com/keepson/keepson/internal/usecase/search"
	usageuc "github.com/keepson/keepson/internal/usecase/usage"
	"github.com/keepson/keepson/internal/version"
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

	logger.Info("Starting keepson API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register oracle and search metrics explicitly (no init())
	metrics.RegisterOracleMetrics()
	metrics.RegisterSearchMetrics()

	// Single tracker shared by the oracle transports and the usage service.
	var tracker *usageuc.Tracker
	budgetCfg := cfg.Oracle.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := usageuc.ActionWarn
		if budgetCfg.Action == "reject" {
			action = usageuc.ActionReject
		}
		tracker = usageuc.NewTracker(
			cfg.Storage.KeyPrefix, budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger,
		)
		// Connect persistence, loading current counters from the database.
		budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
		tracker.WithStore(ctx, budgetStore)
	}

	oracle, baseOracle := buildOracle(cfg, store, tracker, logger)

	files, err := filerepo.New(cfg.Storage.FilesDir, int64(cfg.Storage.MaxUploadMB)<<20)
	if err != nil {
		logger.Fatal("Failed to open file storage", zap.Error(err))
	}
	records := recordrepo.New(store, cfg.Storage.KeyPrefix)

	recordSvc := recorduc.New(records, files, buildSummarizer(cfg, tracker, logger)).
		WithPagination(cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	searchSvc := searchuc.New(records, oracle)

	// Usage service reads from the shared tracker.
	var budgetReader usageuc.BudgetReader
	if tracker != nil {
		budgetReader = tracker
	}
	usageSvc := usageuc.New(budgetReader)

	// Pass nil interface (not typed nil pointer!) when the oracle is
	// disabled, so the health service skips the check entirely.
	var oracleCheck healthuc.OracleChecker
	if baseOracle != nil {
		oracleCheck = baseOracle
	}
	healthSvc := healthuc.New(store, oracleCheck)

	server := httpapi.NewServer(recordSvc, searchSvc, usageSvc, healthSvc, logger).
		WithUploadLimit(int64(cfg.Storage.MaxUploadMB) << 20)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	if len(cfg.HTTP.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.HTTP.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes(httpapi.JWTAuth(cfg.Auth.JWTSecret, cfg.Auth.Issuer)))

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// buildOracle assembles the query analysis chain: OpenAI provider wrapped
// in a circuit breaker, a budget gate, and a hint cache. Without an API
// key the search service falls back to locally generated patterns for
// every oracle call.
func buildOracle(
	cfg config.Config,
	store db.Store,
	tracker *usageuc.Tracker,
	logger *zap.Logger,
) (searchuc.Oracle, *oracleTransport.Oracle) {
	if cfg.Oracle.APIKey == "" {
		logger.Info("No oracle API key configured, search runs on generated patterns only")
		return searchuc.Disabled(), nil
	}

	// Pass nil interfaces (not typed nil pointers!) if no budget is
	// configured. Go gotcha: (*usageuc.Tracker)(nil) in an interface != nil.
	var usage oracleTransport.UsageRecorder
	var budget searchuc.BudgetChecker
	if tracker != nil {
		usage = tracker
		budget = tracker
	}

	base := oracleTransport.NewOracle(&oracleTransport.Config{
		APIKey:  cfg.Oracle.APIKey,
		BaseURL: cfg.Oracle.BaseURL,
		Model:   cfg.Oracle.Model,
		Timeout: time.Duration(cfg.Oracle.TimeoutSec) * time.Second,
		Usage:   usage,
		Logger:  logger,
	})

	breaker := searchuc.NewBreakerOracle(base, searchuc.BreakerConfig{
		MaxRequests: cfg.Oracle.Breaker.MaxRequests,
		Interval:    time.Duration(cfg.Oracle.Breaker.IntervalSec) * time.Second,
		Timeout:     time.Duration(cfg.Oracle.Breaker.TimeoutSec) * time.Second,
		MaxFailures: cfg.Oracle.Breaker.MaxFailures,
		Logger:      logger,
	})

	// Budget gate sits outside the breaker: a rejected call must not trip it.
	var oracle searchuc.Oracle = searchuc.NewInstrumentedOracle(breaker, budget, logger)

	// Hint cache is outermost: a hit skips budget and provider entirely.
	if cfg.Oracle.CacheTTLSec > 0 {
		oracle = hintcache.New(
			oracle, store, cfg.Storage.KeyPrefix,
			time.Duration(cfg.Oracle.CacheTTLSec)*time.Second,
			metrics.OracleCacheTotal, logger,
		)
	}

	logger.Info("Oracle created",
		zap.String("model", cfg.Oracle.Model),
		zap.Uint32("breaker_max_failures", cfg.Oracle.Breaker.MaxFailures),
		zap.Int("cache_ttl_sec", cfg.Oracle.CacheTTLSec),
		zap.Bool("budget_enabled", tracker != nil),
	)
	return oracle, base
}

// buildSummarizer returns nil when summaries are disabled; the record
// service then skips summary generation.
func buildSummarizer(cfg config.Config, tracker *usageuc.Tracker, logger *zap.Logger) recorduc.Summarizer {
	if !cfg.Summary.Enabled || cfg.Oracle.APIKey == "" {
		return nil
	}
	var usage oracleTransport.UsageRecorder
	if tracker != nil {
		usage = tracker
	}
	return oracleTransport.NewSummarizer(&oracleTransport.SummarizerConfig{
		APIKey:   cfg.Oracle.APIKey,
		BaseURL:  cfg.Oracle.BaseURL,
		Model:    cfg.Summary.Model,
		MaxChars: cfg.Summary.MaxChars,
		Timeout:  time.Duration(cfg.Summary.TimeoutSec) * time.Second,
		Usage:    usage,
		Logger:   logger,
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
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

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
