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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/askdex/askdex/internal/config"
	dbRedis "github.com/askdex/askdex/internal/db/redis"
	"github.com/askdex/askdex/internal/index/lexical"
	logpkg "github.com/askdex/askdex/internal/logger"
	"github.com/askdex/askdex/internal/metrics"
	passagerepo "github.com/askdex/askdex/internal/repository/passages"
	semanticrepo "github.com/askdex/askdex/internal/repository/semantic"
	"github.com/askdex/askdex/internal/transport/authz"
	chiTransport "github.com/askdex/askdex/internal/transport/chi"
	openaiTransport "github.com/askdex/askdex/internal/transport/openai"
	answeruc "github.com/askdex/askdex/internal/usecase/answer"
	healthuc "github.com/askdex/askdex/internal/usecase/health"
	ingestuc "github.com/askdex/askdex/internal/usecase/ingest"
	permissionuc "github.com/askdex/askdex/internal/usecase/permission"
	rerankuc "github.com/askdex/askdex/internal/usecase/rerank"
	retrieveuc "github.com/askdex/askdex/internal/usecase/retrieve"
	"github.com/askdex/askdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting askdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector store not ready", zap.Error(err))
	}
	logger.Info("Connected to vector store")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterRetrievalMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
		Timeout:     time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:      logger,
	})

	// Repositories and indexes
	passageStore := passagerepo.New()
	indexHolder := lexical.NewHolder()
	semanticRepo := semanticrepo.New(store, cfg.Embedding.Dimensions,
		time.Duration(cfg.Search.SourceTimeoutSec)*time.Second)

	if err := semanticRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure vector index", zap.Error(err))
	}

	// Permission filter over the external authorization service
	authzClient := authz.NewClient(&authz.Config{
		BaseURL: cfg.Authz.BaseURL,
		Token:   cfg.Authz.Token,
		Timeout: time.Duration(cfg.Authz.TimeoutSec) * time.Second,
	})
	permSvc, err := permissionuc.New(authzClient,
		time.Duration(cfg.Permissions.CacheTTLSec)*time.Second,
		cfg.Permissions.LookupConcurrency,
	)
	if err != nil {
		logger.Fatal("Failed to create permission filter", zap.Error(err))
	}
	defer permSvc.Close()

	// Optional reranker
	var reranker retrieveuc.Reranker
	if cfg.Reranker.Enabled {
		scorer := openaiTransport.NewScorer(&openaiTransport.ScorerConfig{
			APIKey:  cfg.Reranker.APIKey,
			BaseURL: cfg.Reranker.BaseURL,
			Model:   cfg.Reranker.Model,
			Timeout: time.Duration(cfg.Reranker.TimeoutSec) * time.Second,
		})
		reranker = rerankuc.New(scorer, passageStore, cfg.Reranker.Concurrency)
		logger.Info("Reranker enabled", zap.String("model", cfg.Reranker.Model))
	}

	answerSvc := answeruc.New(generator, passageStore,
		cfg.Answer.ContextTokenBudget,
		time.Duration(cfg.Answer.StalenessAgeDays)*24*time.Hour,
		cfg.Answer.MinRelevance,
	)

	retrieveSvc := retrieveuc.New(
		indexHolder, semanticRepo, embedder, permSvc,
		reranker, answerSvc, passageStore,
		cfg.Search.RRFK,
		time.Duration(cfg.Search.SourceTimeoutSec)*time.Second,
	)

	ingestSvc := ingestuc.New(passageStore, embedder, semanticRepo, indexHolder,
		cfg.Embedding.Concurrency)

	healthSvc := healthuc.New(store, embedder, indexHolder)

	server := chiTransport.NewServer(retrieveSvc, ingestSvc, healthSvc, permSvc, logger).
		WithSearchDefaults(cfg.Search.CandidateK, cfg.Search.LexicalWeight, cfg.Search.SemanticWeight)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.Use(deadlineMiddleware(time.Duration(cfg.Search.RequestDeadlineSec) * time.Second))
	server.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

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

// deadlineMiddleware caps each request's total processing time.
func deadlineMiddleware(deadline time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if deadline <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), deadline)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
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

			// Canonical log line — one line per request
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
