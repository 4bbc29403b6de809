package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/repository"
	"github.com/segyhp/credit-risk-engine/internal/schedule"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
	"github.com/segyhp/credit-risk-engine/pkg/utils"
)

type CreditService struct {
	creditRepo repository.CreditRepository
	rates      *RateSource
	generator  *schedule.Generator
	editor     *schedule.Editor
	validator  *RequestValidator
	logger     zerolog.Logger
}

func NewCreditService(
	creditRepo repository.CreditRepository,
	rates *RateSource,
	generator *schedule.Generator,
	logger zerolog.Logger,
) *CreditService {
	return &CreditService{
		creditRepo: creditRepo,
		rates:      rates,
		generator:  generator,
		editor:     schedule.NewEditor(),
		validator:  NewRequestValidator(),
		logger:     logger.With().Str("component", "credit_service").Logger(),
	}
}

// dbErr keeps business errors from the repository and wraps everything else.
func dbErr(err error) error {
	if customError.CodeOf(err) != "" {
		return err
	}
	return customError.WrapDatabaseError(err)
}

// build validates the request and generates the credit's schedule.
func (s *CreditService) build(ctx context.Context, req *domain.CreateCreditRequest) (*domain.CreditObligation, domain.Schedule, error) {
	if errs := s.validator.Check(req); len(errs) > 0 {
		return nil, nil, customError.WrapValidationFailed(customError.ErrInvalidCredit, errs)
	}

	credit := req.Credit()
	credit.StartDate = utils.DateOnly(credit.StartDate)
	credit.EndDate = utils.DateOnly(credit.EndDate)

	// floating credits take today's reference rate
	if credit.BaseRateIndicator.IsFloating() {
		rate, err := s.rates.Current(ctx, credit.BaseRateIndicator)
		if err != nil {
			return nil, nil, err
		}
		credit.BaseRateValue = rate
	}
	credit.Normalize()

	if errs := credit.Validate(); len(errs) > 0 {
		return nil, nil, customError.WrapValidationFailed(customError.ErrInvalidCredit, errs)
	}

	params := schedule.ParamsFor(credit, req.PaymentDay)
	generated := s.generator.Generate(params)
	if len(generated) == 0 {
		details := s.generator.Check(params)
		if len(details) == 0 {
			details = []domain.ValidationError{
				domain.FieldError("end_date", "term produces more payment periods than allowed"),
			}
		}
		e := customError.WrapScheduleNotGenerated(credit.ID)
		e.Details = details
		return nil, nil, e
	}
	return credit, generated, nil
}

// Create validates and stores a new credit with a freshly generated schedule
func (s *CreditService) Create(ctx context.Context, req *domain.CreateCreditRequest) (*domain.CreateCreditResponse, error) {
	credit, generated, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.creditRepo.Create(ctx, credit, generated); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info().
		Int64("credit_id", credit.ID).
		Int("periods", len(generated)).
		Str("total_rate", credit.TotalRate().String()).
		Msg("Credit created")

	return &domain.CreateCreditResponse{Credit: credit, Schedule: generated}, nil
}

func (s *CreditService) Get(ctx context.Context, id int64) (*domain.CreditObligation, error) {
	credit, err := s.creditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, dbErr(err)
	}
	return credit, nil
}

func (s *CreditService) List(ctx context.Context) ([]*domain.CreditObligation, error) {
	credits, err := s.creditRepo.List(ctx)
	if err != nil {
		return nil, dbErr(err)
	}
	return credits, nil
}

// Update replaces a credit's parameters. The schedule is regenerated, so any
// manual edits are discarded.
func (s *CreditService) Update(ctx context.Context, id int64, req *domain.CreateCreditRequest) (*domain.CreateCreditResponse, error) {
	existing, err := s.creditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, dbErr(err)
	}

	credit, generated, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	credit.ID = existing.ID
	credit.CreatedAt = existing.CreatedAt
	for i := range generated {
		generated[i].CreditID = credit.ID
	}

	if err := s.creditRepo.Update(ctx, credit, generated); err != nil {
		return nil, dbErr(err)
	}

	s.logger.Info().Int64("credit_id", id).Int("periods", len(generated)).Msg("Credit updated")
	return &domain.CreateCreditResponse{Credit: credit, Schedule: generated}, nil
}

func (s *CreditService) Delete(ctx context.Context, id int64) error {
	if err := s.creditRepo.Delete(ctx, id); err != nil {
		return dbErr(err)
	}
	s.logger.Info().Int64("credit_id", id).Msg("Credit deleted")
	return nil
}

func (s *CreditService) GetSchedule(ctx context.Context, id int64) (domain.Schedule, error) {
	if _, err := s.creditRepo.GetByID(ctx, id); err != nil {
		return nil, dbErr(err)
	}
	sched, err := s.creditRepo.GetSchedule(ctx, id)
	if err != nil {
		return nil, dbErr(err)
	}
	return sched, nil
}

// EditSchedule applies one edit to the stored schedule and returns the
// result with its validation records. Nothing is persisted.
func (s *CreditService) EditSchedule(ctx context.Context, id int64, req domain.ScheduleEditRequest) (*domain.ScheduleEditResponse, error) {
	credit, err := s.creditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, dbErr(err)
	}
	sched, err := s.creditRepo.GetSchedule(ctx, id)
	if err != nil {
		return nil, dbErr(err)
	}
	if req.Index < 0 || req.Index >= len(sched) {
		return nil, customError.WrapEditIndexOutOfRange(req.Index, len(sched))
	}

	var (
		updated domain.Schedule
		records []domain.ValidationError
	)
	switch {
	case req.OutstandingBalance != nil:
		updated, records = s.editor.SetBalance(sched, req.Index, *req.OutstandingBalance)
	case req.PeriodEndDate != nil:
		updated, records = s.editor.SetPeriodEnd(sched, req.Index, utils.DateOnly(*req.PeriodEndDate))
	default:
		return nil, customError.WrapValidationFailed(customError.ErrInvalidSchedule, []domain.ValidationError{
			domain.FieldError("", "one of outstanding_balance or period_end_date is required"),
		})
	}

	records = append(records, schedule.Validate(credit, updated)...)
	return &domain.ScheduleEditResponse{Schedule: updated, Errors: records}, nil
}

// SaveSchedule replaces the stored schedule. Error-severity records block
// the save; warnings are returned with the saved schedule.
func (s *CreditService) SaveSchedule(ctx context.Context, id int64, sched domain.Schedule) (*domain.ScheduleEditResponse, error) {
	credit, err := s.creditRepo.GetByID(ctx, id)
	if err != nil {
		return nil, dbErr(err)
	}

	out := sched.Clone()
	out.Renumber()
	for i := range out {
		out[i].CreditID = id
	}

	records := schedule.Validate(credit, out)
	if len(out) == 0 {
		records = append(records, domain.FieldError("schedule", "schedule must contain at least one period"))
	}
	if domain.HasErrors(records) {
		return nil, customError.WrapInvalidSchedule(records)
	}

	if err := s.creditRepo.ReplaceSchedule(ctx, id, out); err != nil {
		return nil, dbErr(err)
	}

	s.logger.Info().Int64("credit_id", id).Int("periods", len(out)).Msg("Schedule saved")
	return &domain.ScheduleEditResponse{Schedule: out, Errors: records}, nil
}

func (s *CreditService) ScheduleSummary(ctx context.Context, id int64) (*domain.ScheduleSummary, error) {
	sched, err := s.GetSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := schedule.Summarize(sched)
	return &summary, nil
}

// PortfolioSummary aggregates every stored credit.
func (s *CreditService) PortfolioSummary(ctx context.Context) (*domain.PortfolioSummary, error) {
	credits, err := s.creditRepo.List(ctx)
	if err != nil {
		return nil, dbErr(err)
	}

	ids := make([]int64, len(credits))
	for i, c := range credits {
		ids[i] = c.ID
	}
	schedules, err := s.creditRepo.GetSchedules(ctx, ids)
	if err != nil {
		return nil, dbErr(err)
	}

	summary := &domain.PortfolioSummary{
		TotalCount:           len(credits),
		TotalPrincipal:       decimal.Zero,
		TotalInterest:        decimal.Zero,
		TotalPayments:        decimal.Zero,
		AverageRate:          decimal.Zero,
		CurrencyBreakdown:    make(map[domain.Currency]decimal.Decimal),
		FrequencyBreakdown:   make(map[domain.PaymentFrequency]int),
		PaymentTypeBreakdown: make(map[domain.PaymentType]int),
	}

	rateSum := decimal.Zero
	for _, c := range credits {
		sched := schedules[c.ID]
		summary.TotalPrincipal = summary.TotalPrincipal.Add(c.PrincipalAmount)
		summary.TotalInterest = summary.TotalInterest.Add(c.InterestAmount(sched))
		summary.TotalPayments = summary.TotalPayments.Add(c.TotalPayment(sched))
		rateSum = rateSum.Add(c.TotalRate())

		summary.CurrencyBreakdown[c.Currency] = summary.CurrencyBreakdown[c.Currency].Add(c.PrincipalAmount)
		summary.FrequencyBreakdown[c.PaymentFrequency]++
		summary.PaymentTypeBreakdown[c.PaymentType]++
	}
	if len(credits) > 0 {
		summary.AverageRate = rateSum.Div(decimal.NewFromInt(int64(len(credits)))).Round(4)
	}
	return summary, nil
}

// RecalculateFloatingSchedules reprices the schedules of floating-rate
// credits from the reference rate history and returns how many changed.
func (s *CreditService) RecalculateFloatingSchedules(ctx context.Context, today time.Time) (int, error) {
	credits, err := s.creditRepo.List(ctx)
	if err != nil {
		return 0, dbErr(err)
	}

	histories := make(map[domain.BaseRateIndicator]schedule.RateHistory)
	changed := 0
	for _, c := range credits {
		if !c.BaseRateIndicator.IsFloating() || !c.EndDate.After(today) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return changed, err
		}

		history, ok := histories[c.BaseRateIndicator]
		if !ok {
			history, err = s.rates.History(ctx, c.BaseRateIndicator)
			if err != nil {
				return changed, err
			}
			histories[c.BaseRateIndicator] = history
		}
		if len(history) == 0 {
			s.logger.Warn().Str("indicator", string(c.BaseRateIndicator)).Msg("No rate history, schedules left unchanged")
			continue
		}

		sched, err := s.creditRepo.GetSchedule(ctx, c.ID)
		if err != nil {
			return changed, dbErr(err)
		}
		updated, n := schedule.RecalculateWithHistory(sched, history, c.CreditSpread, today, s.logger)
		if n == 0 || sameInterest(sched, updated) {
			continue
		}
		if err := s.creditRepo.ReplaceSchedule(ctx, c.ID, updated); err != nil {
			return changed, dbErr(err)
		}
		changed++
		s.logger.Info().Int64("credit_id", c.ID).Int("periods", n).Msg("Schedule repriced from rate history")
	}
	return changed, nil
}

func sameInterest(a, b domain.Schedule) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].InterestAmount.Equal(b[i].InterestAmount) || !a[i].InterestRate.Equal(b[i].InterestRate) {
			return false
		}
	}
	return true
}
