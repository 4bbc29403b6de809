package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/segyhp/credit-risk-engine/internal/cache"
	"github.com/segyhp/credit-risk-engine/internal/config"
	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/handler"
	"github.com/segyhp/credit-risk-engine/internal/repository"
	"github.com/segyhp/credit-risk-engine/internal/scenario"
	"github.com/segyhp/credit-risk-engine/internal/schedule"
	"github.com/segyhp/credit-risk-engine/internal/service"
	"github.com/segyhp/credit-risk-engine/pkg/logger"
	"github.com/segyhp/credit-risk-engine/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logger.SetGlobalLogger(appLogger)

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		appLogger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Initialize Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Initialize repositories
	creditRepo := repository.NewCreditRepository(db)
	scenarioRepo := repository.NewScenarioRepository(db)
	rateRepo := repository.NewRateRepository(db)
	instrumentRepo := repository.NewInstrumentRepository(db)

	// Initialize services
	rates := service.NewRateSource(rateRepo, map[domain.BaseRateIndicator]decimal.Decimal{
		domain.IndicatorKeyRate: cfg.GetDefaultRate(domain.IndicatorKeyRate),
		domain.IndicatorRUONIA:  cfg.GetDefaultRate(domain.IndicatorRUONIA),
	}, appLogger)
	scenarioCache := cache.NewScenarioCache(cache.NewRedisStore(redisClient), cfg.GetScenarioCacheTTL(), appLogger)

	optimistic, pessimistic, other := cfg.GetFallbackMultipliers()
	projector := scenario.NewProjector(scenario.FallbackMultipliers{
		Optimistic:  optimistic,
		Pessimistic: pessimistic,
		Other:       other,
	}, appLogger)

	creditService := service.NewCreditService(creditRepo, rates, schedule.NewGenerator(cfg.Business.MaxSchedulePeriods, appLogger), appLogger)
	scenarioService := service.NewScenarioService(scenarioRepo, scenarioCache, appLogger)
	instrumentService := service.NewInstrumentService(instrumentRepo, appLogger)
	analysisService := service.NewAnalysisService(creditRepo, scenarioService, instrumentService, projector, appLogger)

	// Rate uploads reprice floating schedules once a burst settles
	recalc := service.NewRecomputer(cfg.GetRecomputeDebounce(), creditService.RecalculateFloatingSchedules, appLogger)
	defer recalc.Close()
	go logRecalculations(appLogger, recalc.Results())

	healthHandler := handler.NewHealthHandler(cfg.GetHealthTimeout(), map[string]handler.Check{
		"database": db.PingContext,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	})

	// Setup routes
	router := mux.NewRouter()
	router.Use(response.CORSMiddleware, response.LoggingMiddleware(appLogger))

	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	handler.NewCreditHandler(creditService).Register(api)
	handler.NewAnalysisHandler(analysisService, scenarioService, instrumentService).Register(api)
	handler.NewRateHandler(rates, recalc).Register(api)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	go func() {
		appLogger.Info().Str("addr", server.Addr).Str("env", cfg.Server.Env).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("Server forced to shutdown")
	}

	appLogger.Info().Msg("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func logRecalculations(appLogger zerolog.Logger, results <-chan service.RecomputeResult[int]) {
	for res := range results {
		if res.Err != nil {
			appLogger.Error().Err(res.Err).Str("run_id", res.RunID.String()).Msg("Floating schedule recalculation failed")
			continue
		}
		appLogger.Info().Str("run_id", res.RunID.String()).Int("updated", res.Value).Msg("Floating schedules recalculated")
	}
}
