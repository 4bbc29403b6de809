package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/segyhp/credit-risk-engine/internal/config"
	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/repository"
	"github.com/segyhp/credit-risk-engine/internal/schedule"
	"github.com/segyhp/credit-risk-engine/internal/service"
	"github.com/segyhp/credit-risk-engine/pkg/logger"
)

// The scheduler reprices floating-rate schedules against the latest stored
// reference rates once a day.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format}).
		With().Str("process", "scheduler").Logger()
	logger.SetGlobalLogger(appLogger)

	db, err := sqlx.Connect(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	rates := service.NewRateSource(repository.NewRateRepository(db), map[domain.BaseRateIndicator]decimal.Decimal{
		domain.IndicatorKeyRate: cfg.GetDefaultRate(domain.IndicatorKeyRate),
		domain.IndicatorRUONIA:  cfg.GetDefaultRate(domain.IndicatorRUONIA),
	}, appLogger)
	credits := service.NewCreditService(
		repository.NewCreditRepository(db),
		rates,
		schedule.NewGenerator(cfg.Business.MaxSchedulePeriods, appLogger),
		appLogger,
	)

	loc := cfg.GetLocation()
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cronLogger{appLogger})))

	if _, err := c.AddFunc(cfg.Scheduler.Spec, func() {
		recalculate(credits, loc, appLogger)
	}); err != nil {
		appLogger.Fatal().Err(err).Str("spec", cfg.Scheduler.Spec).Msg("Error scheduling recalculation job")
	}

	c.Start()
	appLogger.Info().Str("spec", cfg.Scheduler.Spec).Str("timezone", loc.String()).Msg("Scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("Shutting down scheduler...")
	<-c.Stop().Done()
	appLogger.Info().Msg("Scheduler stopped")
}

func recalculate(credits *service.CreditService, loc *time.Location, appLogger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	started := time.Now()
	updated, err := credits.RecalculateFloatingSchedules(ctx, time.Now().In(loc))
	if err != nil {
		appLogger.Error().Err(err).Msg("Floating schedule recalculation failed")
		return
	}
	appLogger.Info().Int("updated", updated).Dur("took", time.Since(started)).Msg("Floating schedules recalculated")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
