package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/repository"
	"github.com/segyhp/credit-risk-engine/internal/scenario"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
	"github.com/segyhp/credit-risk-engine/pkg/utils"
)

// ScenarioCache holds each owner's scenario list. Owner 0 is the public list.
type ScenarioCache interface {
	Get(ctx context.Context, ownerID int64) ([]domain.RateScenario, bool)
	Set(ctx context.Context, ownerID int64, scenarios []domain.RateScenario)
	Invalidate(ctx context.Context, ownerIDs ...int64) error
}

// ScenarioService is the scenario store: public scenarios merged with the
// requesting owner's own.
type ScenarioService struct {
	repo      repository.ScenarioRepository
	cache     ScenarioCache
	validator *RequestValidator
	logger    zerolog.Logger
}

// NewScenarioService accepts a nil cache.
func NewScenarioService(repo repository.ScenarioRepository, cache ScenarioCache, logger zerolog.Logger) *ScenarioService {
	return &ScenarioService{
		repo:      repo,
		cache:     cache,
		validator: NewRequestValidator(),
		logger:    logger.With().Str("component", "scenario_service").Logger(),
	}
}

func (s *ScenarioService) Create(ctx context.Context, req *domain.CreateScenarioRequest) (*domain.RateScenario, error) {
	if errs := s.validator.Check(req); len(errs) > 0 {
		return nil, customError.WrapValidationFailed(customError.ErrInvalidScenario, errs)
	}

	sc := req.Scenario()
	for i := range sc.Forecasts {
		sc.Forecasts[i].ForecastDate = utils.DateOnly(sc.Forecasts[i].ForecastDate)
	}
	if err := s.repo.Create(ctx, sc); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sc.OwnerID); err != nil {
			s.logger.Warn().Err(err).Int64("owner_id", sc.OwnerID).Msg("Scenario cache invalidation failed")
		}
	}

	s.logger.Info().
		Int64("scenario_id", sc.ID).
		Int64("owner_id", sc.OwnerID).
		Int("forecasts", len(sc.Forecasts)).
		Msg("Scenario created")
	return sc, nil
}

// List returns the public scenarios and the owner's, de-duplicated by id.
func (s *ScenarioService) List(ctx context.Context, ownerID int64) ([]domain.RateScenario, error) {
	public, err := s.ownedBy(ctx, 0)
	if err != nil {
		return nil, err
	}
	if ownerID == 0 {
		return scenario.MergeScenarios(public), nil
	}
	own, err := s.ownedBy(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return scenario.MergeScenarios(own, public), nil
}

// Get returns a scenario the owner may see.
func (s *ScenarioService) Get(ctx context.Context, ownerID, id int64) (*domain.RateScenario, error) {
	sc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, dbErr(err)
	}
	if sc.OwnerID != 0 && sc.OwnerID != ownerID {
		return nil, customError.WrapScenarioNotFound(id)
	}
	return sc, nil
}

func (s *ScenarioService) ownedBy(ctx context.Context, ownerID int64) ([]domain.RateScenario, error) {
	if s.cache != nil {
		if list, ok := s.cache.Get(ctx, ownerID); ok {
			return list, nil
		}
	}

	var (
		list []domain.RateScenario
		err  error
	)
	if ownerID == 0 {
		list, err = s.repo.ListPublic(ctx)
	} else {
		list, err = s.repo.ListByOwner(ctx, ownerID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, ownerID, list)
	}
	return list, nil
}
