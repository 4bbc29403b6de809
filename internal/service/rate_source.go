package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/repository"
	"github.com/segyhp/credit-risk-engine/internal/schedule"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
	"github.com/segyhp/credit-risk-engine/pkg/utils"
)

// RateSource supplies reference rates from the stored history, falling back
// to configured defaults when an indicator has no history yet.
type RateSource struct {
	repo      repository.RateRepository
	defaults  map[domain.BaseRateIndicator]decimal.Decimal
	validator *RequestValidator
	logger    zerolog.Logger
}

func NewRateSource(repo repository.RateRepository, defaults map[domain.BaseRateIndicator]decimal.Decimal, logger zerolog.Logger) *RateSource {
	return &RateSource{
		repo:      repo,
		defaults:  defaults,
		validator: NewRequestValidator(),
		logger:    logger.With().Str("component", "rate_source").Logger(),
	}
}

// Record stores a published rate. A second rate on the same date replaces
// the first.
func (s *RateSource) Record(ctx context.Context, point domain.RatePoint) error {
	if errs := s.validator.Check(&point); len(errs) > 0 {
		return customError.WrapValidationFailed(customError.ErrInvalidRate, errs)
	}
	point.EffectiveDate = utils.DateOnly(point.EffectiveDate)
	if err := s.repo.Add(ctx, point); err != nil {
		return customError.WrapDatabaseError(err)
	}
	s.logger.Info().
		Str("indicator", string(point.Indicator)).
		Time("effective_date", point.EffectiveDate).
		Str("rate", point.Rate.String()).
		Msg("Reference rate recorded")
	return nil
}

// Current returns the latest rate for a floating indicator.
func (s *RateSource) Current(ctx context.Context, indicator domain.BaseRateIndicator) (decimal.Decimal, error) {
	if !indicator.IsFloating() {
		return decimal.Zero, nil
	}

	latest, err := s.repo.Latest(ctx, indicator)
	if err != nil {
		return decimal.Zero, customError.WrapDatabaseError(err)
	}
	if latest != nil {
		return latest.Rate, nil
	}

	rate := s.defaults[indicator]
	s.logger.Warn().
		Str("indicator", string(indicator)).
		Str("rate", rate.String()).
		Msg("No rate history, using configured default")
	return rate, nil
}

func (s *RateSource) History(ctx context.Context, indicator domain.BaseRateIndicator) (schedule.RateHistory, error) {
	points, err := s.repo.History(ctx, indicator)
	if err != nil {
		return schedule.RateHistory{}, customError.WrapDatabaseError(err)
	}
	return schedule.NewRateHistory(points), nil
}
