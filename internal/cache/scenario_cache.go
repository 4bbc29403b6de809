package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
)

// ScenarioCache caches the scenarios each owner created. Owner 0 holds the
// public scenarios.
// Cache failures never fail the caller; they are logged and treated as misses.
type ScenarioCache struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

func NewScenarioCache(store Store, ttl time.Duration, logger zerolog.Logger) *ScenarioCache {
	return &ScenarioCache{
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "scenario_cache").Logger(),
	}
}

func scenarioKey(ownerID int64) string {
	return fmt.Sprintf("scenarios:v1:owner:%d", ownerID)
}

func (c *ScenarioCache) Get(ctx context.Context, ownerID int64) ([]domain.RateScenario, bool) {
	raw, err := c.store.Get(ctx, scenarioKey(ownerID))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn().Err(err).Int64("owner_id", ownerID).Msg("Scenario cache read failed")
		}
		return nil, false
	}

	var scenarios []domain.RateScenario
	if err := msgpack.Unmarshal(raw, &scenarios); err != nil {
		c.logger.Warn().Err(err).Int64("owner_id", ownerID).Msg("Discarding undecodable scenario cache entry")
		return nil, false
	}
	return scenarios, true
}

func (c *ScenarioCache) Set(ctx context.Context, ownerID int64, scenarios []domain.RateScenario) {
	raw, err := msgpack.Marshal(scenarios)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Encoding scenarios for cache failed")
		return
	}
	if err := c.store.Set(ctx, scenarioKey(ownerID), raw, c.ttl); err != nil {
		c.logger.Warn().Err(err).Int64("owner_id", ownerID).Msg("Scenario cache write failed")
	}
}

// Invalidate drops the cached lists of the given owners.
func (c *ScenarioCache) Invalidate(ctx context.Context, ownerIDs ...int64) error {
	if len(ownerIDs) == 0 {
		return nil
	}
	keys := make([]string, len(ownerIDs))
	for i, id := range ownerIDs {
		keys[i] = scenarioKey(id)
	}
	if err := c.store.Del(ctx, keys...); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}
