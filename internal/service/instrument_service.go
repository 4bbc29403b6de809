package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/hedging"
	"github.com/segyhp/credit-risk-engine/internal/repository"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
)

type InstrumentService struct {
	repo      repository.InstrumentRepository
	validator *RequestValidator
	logger    zerolog.Logger
}

func NewInstrumentService(repo repository.InstrumentRepository, logger zerolog.Logger) *InstrumentService {
	return &InstrumentService{
		repo:      repo,
		validator: NewRequestValidator(),
		logger:    logger.With().Str("component", "instrument_service").Logger(),
	}
}

// Create stores an instrument once its parameters build into a valid variant.
func (s *InstrumentService) Create(ctx context.Context, def *domain.InstrumentDefinition) (*domain.InstrumentDefinition, error) {
	if errs := s.validator.Check(def); len(errs) > 0 {
		return nil, customError.WrapValidationFailed(customError.ErrInvalidInstrument, errs)
	}
	inst, err := hedging.Build(*def)
	if err != nil {
		return nil, err
	}
	def.Type = string(inst.Kind())
	if def.Parameters.CostType == "" {
		def.Parameters.CostType = inst.Details().CostType
	}

	if err := s.repo.Create(ctx, def); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	s.logger.Info().Int64("instrument_id", def.ID).Str("type", def.Type).Msg("Instrument created")
	return def, nil
}

func (s *InstrumentService) List(ctx context.Context) ([]domain.InstrumentDefinition, error) {
	defs, err := s.repo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return defs, nil
}

// Load fetches and builds the requested instruments.
func (s *InstrumentService) Load(ctx context.Context, ids []int64) ([]hedging.Instrument, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	defs, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, dbErr(err)
	}
	return hedging.BuildAll(defs)
}
