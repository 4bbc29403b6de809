package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/hedging"
	"github.com/segyhp/credit-risk-engine/internal/repository"
	"github.com/segyhp/credit-risk-engine/internal/scenario"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
	"github.com/segyhp/credit-risk-engine/pkg/utils"
)

const defaultSeriesMonths = 12

// AnalysisRequest selects what to project. Empty CreditIDs means every
// credit; a zero AsOf means today.
type AnalysisRequest struct {
	OwnerID       int64                    `json:"owner_id" validate:"gte=0"`
	ScenarioID    int64                    `json:"scenario_id" validate:"required,gt=0"`
	CreditIDs     []int64                  `json:"credit_ids"`
	InstrumentIDs []int64                  `json:"instrument_ids"`
	AsOf          time.Time                `json:"as_of"`
	ViewMode      hedging.ViewMode         `json:"view_mode" validate:"omitempty,oneof=aggregate per_credit"`
	Indicator     domain.BaseRateIndicator `json:"indicator" validate:"omitempty,oneof=FIXED KEY_RATE RUONIA"`
	SeriesMonths  int                      `json:"series_months" validate:"omitempty,min=1,max=600"`
}

// PortfolioTotals sums the projections. Savings is what the chosen
// instruments save against staying unhedged, net of their cost.
type PortfolioTotals struct {
	CurrentInterest  decimal.Decimal        `json:"current_interest"`
	PastInterest     decimal.Decimal        `json:"past_interest"`
	FutureInterest   decimal.Decimal        `json:"future_interest"`
	UnhedgedInterest decimal.Decimal        `json:"unhedged_interest"`
	HedgingCost      decimal.Decimal        `json:"hedging_cost"`
	TotalInterest    decimal.Decimal        `json:"total_interest"`
	Savings          decimal.Decimal        `json:"savings"`
	Effect           hedging.ScenarioEffect `json:"hedging_effect"`
}

type AnalysisResult struct {
	Scenario        *domain.RateScenario  `json:"scenario"`
	AsOf            time.Time             `json:"as_of"`
	Projections     []scenario.Projection `json:"projections"`
	Totals          PortfolioTotals       `json:"totals"`
	Series          []hedging.SeriesPoint `json:"series"`
	Volatility      float64               `json:"volatility"`
	FallbackCredits []int64               `json:"fallback_credits,omitempty"`
}

// AnalysisService projects a credit portfolio under a rate scenario with an
// optional set of hedging instruments.
type AnalysisService struct {
	credits     repository.CreditRepository
	scenarios   *ScenarioService
	instruments *InstrumentService
	projector   *scenario.Projector
	validator   *RequestValidator
	now         func() time.Time
	logger      zerolog.Logger
}

func NewAnalysisService(
	credits repository.CreditRepository,
	scenarios *ScenarioService,
	instruments *InstrumentService,
	projector *scenario.Projector,
	logger zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		credits:     credits,
		scenarios:   scenarios,
		instruments: instruments,
		projector:   projector,
		validator:   NewRequestValidator(),
		now:         time.Now,
		logger:      logger.With().Str("component", "analysis_service").Logger(),
	}
}

func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	if errs := s.validator.Check(&req); len(errs) > 0 {
		return nil, customError.WrapValidationFailed(customError.ErrInvalidScenario, errs)
	}
	asOf := utils.DateOnly(req.AsOf)
	if req.AsOf.IsZero() {
		asOf = utils.DateOnly(s.now())
	}

	sc, err := s.findScenario(ctx, req.OwnerID, req.ScenarioID)
	if err != nil {
		return nil, err
	}
	instruments, err := s.instruments.Load(ctx, req.InstrumentIDs)
	if err != nil {
		return nil, err
	}
	credits, schedules, err := s.portfolio(ctx, req.CreditIDs)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		Scenario:    sc,
		AsOf:        asOf,
		Projections: make([]scenario.Projection, 0, len(credits)),
		Totals: PortfolioTotals{
			CurrentInterest:  decimal.Zero,
			PastInterest:     decimal.Zero,
			FutureInterest:   decimal.Zero,
			UnhedgedInterest: decimal.Zero,
			HedgingCost:      decimal.Zero,
			TotalInterest:    decimal.Zero,
		},
		Volatility: scenario.NewCurve(sc.Forecasts).StdDev(),
	}

	positions := make([]hedging.Position, 0, len(credits))
	for _, c := range credits {
		sched := schedules[c.ID]
		p := s.projector.Project(scenario.Input{
			Credit:      c,
			Schedule:    sched,
			Scenario:    sc,
			AsOf:        asOf,
			Instruments: instruments,
		})
		result.Projections = append(result.Projections, p)
		if p.Fallback {
			result.FallbackCredits = append(result.FallbackCredits, c.ID)
		}

		t := &result.Totals
		t.CurrentInterest = t.CurrentInterest.Add(c.InterestAmount(sched))
		t.PastInterest = t.PastInterest.Add(p.PastInterest)
		t.FutureInterest = t.FutureInterest.Add(p.FutureInterest)
		t.UnhedgedInterest = t.UnhedgedInterest.Add(p.UnhedgedInterest)
		t.HedgingCost = t.HedgingCost.Add(p.HedgingPremium).Add(p.UpfrontCost)
		t.TotalInterest = t.TotalInterest.Add(p.TotalInterest)

		positions = append(positions, hedging.Position{Credit: c, Schedule: sched, Instruments: instruments})
	}

	t := &result.Totals
	unhedgedTotal := t.PastInterest.Add(t.UnhedgedInterest)
	t.Savings = unhedgedTotal.Sub(t.TotalInterest).Round(2)
	t.Effect = hedging.EffectOnScenario(unhedgedTotal.Round(2), t.CurrentInterest.Round(2), effectiveness(instruments))

	result.Series = hedging.WeightedSeries(positions, seriesDates(asOf, req.SeriesMonths), s.seriesOptions(sc, asOf, req))

	s.logger.Info().
		Int64("scenario_id", sc.ID).
		Int("credits", len(credits)).
		Int("instruments", len(instruments)).
		Int("fallbacks", len(result.FallbackCredits)).
		Str("total_interest", t.TotalInterest.String()).
		Msg("Portfolio analysed")
	return result, nil
}

func (s *AnalysisService) findScenario(ctx context.Context, ownerID, id int64) (*domain.RateScenario, error) {
	visible, err := s.scenarios.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range visible {
		if visible[i].ID == id {
			return &visible[i], nil
		}
	}
	return nil, customError.WrapScenarioNotFound(id)
}

func (s *AnalysisService) portfolio(ctx context.Context, ids []int64) ([]*domain.CreditObligation, map[int64]domain.Schedule, error) {
	var credits []*domain.CreditObligation
	if len(ids) == 0 {
		all, err := s.credits.List(ctx)
		if err != nil {
			return nil, nil, dbErr(err)
		}
		credits = all
	} else {
		credits = make([]*domain.CreditObligation, 0, len(ids))
		for _, id := range ids {
			c, err := s.credits.GetByID(ctx, id)
			if err != nil {
				return nil, nil, dbErr(err)
			}
			credits = append(credits, c)
		}
	}

	creditIDs := make([]int64, len(credits))
	for i, c := range credits {
		creditIDs[i] = c.ID
	}
	schedules, err := s.credits.GetSchedules(ctx, creditIDs)
	if err != nil {
		return nil, nil, dbErr(err)
	}
	return credits, schedules, nil
}

func (s *AnalysisService) seriesOptions(sc *domain.RateScenario, asOf time.Time, req AnalysisRequest) hedging.SeriesOptions {
	curves := map[domain.BaseRateIndicator]scenario.Curve{
		domain.IndicatorKeyRate: scenario.NewCurve(scenario.ForIndicator(sc.Forecasts, domain.IndicatorKeyRate)),
		domain.IndicatorRUONIA:  scenario.NewCurve(scenario.ForIndicator(sc.Forecasts, domain.IndicatorRUONIA)),
	}
	mode := req.ViewMode
	if mode == "" {
		mode = hedging.ViewAggregate
	}
	return hedging.SeriesOptions{
		Today:     asOf,
		Mode:      mode,
		Indicator: req.Indicator,
		RateAt: func(ind domain.BaseRateIndicator, date time.Time) (decimal.Decimal, bool) {
			curve, ok := curves[ind]
			if !ok || curve.Empty() {
				return decimal.Zero, false
			}
			return curve.RateAt(date), true
		},
	}
}

func seriesDates(asOf time.Time, months int) []time.Time {
	if months <= 0 {
		months = defaultSeriesMonths
	}
	dates := make([]time.Time, 0, months+1)
	for i := 0; i <= months; i++ {
		dates = append(dates, utils.AddMonths(asOf, i))
	}
	return dates
}

// effectiveness combines the default effectiveness of every instrument.
func effectiveness(instruments []hedging.Instrument) decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(instruments))
	for _, inst := range instruments {
		values = append(values, inst.Kind().DefaultEffectiveness())
	}
	return hedging.CombinedEffectiveness(values)
}
