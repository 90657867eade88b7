package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	apiconfig "intrinsic_valuation/pkg/api/config"
	"intrinsic_valuation/pkg/api/valuation"
	"intrinsic_valuation/pkg/core/config"
	"intrinsic_valuation/pkg/core/store"
	coreValuation "intrinsic_valuation/pkg/core/valuation"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML settings file")
	flag.Parse()

	// Load environment variables
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := config.NewLogger(cfg.Logging, os.Stdout)
	log.Info().Str("config", *configPath).Msg("Starting valuation API")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres when configured, JSON files otherwise
	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = store.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Warn().Err(err).Msg("Database unavailable, falling back to file history")
		} else if err := store.EnsureSchema(ctx, pool); err != nil {
			log.Warn().Err(err).Msg("Schema setup failed, falling back to file history")
			pool.Close()
			pool = nil
		}
	}
	if pool != nil {
		defer pool.Close()
	}

	history, err := store.NewHistoryStore(pool, cfg.History.Dir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history store")
	}

	settings := apiconfig.NewSettings(coreValuation.SensitivityOptions{
		GrowthOffsets:   cfg.Sensitivity.GrowthOffsets,
		DiscountOffsets: cfg.Sensitivity.DiscountOffsets,
		Workers:         cfg.Sensitivity.Workers,
	})

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(requestLogger(log))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	apiconfig.NewHandler(settings, history.Backend(), log).RegisterRoutes(router)
	valuation.NewHandler(history, settings, log).RegisterRoutes(router)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("history", history.Backend()).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// requestLogger logs one line per HTTP request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("HTTP request")
		})
	}
}
