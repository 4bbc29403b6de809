package repository

import (
	"context"

	"github.com/segyhp/credit-risk-engine/internal/domain"
)

// CreditRepository defines the interface for credit and schedule data operations
type CreditRepository interface {
	// Create stores a new credit with its schedule and assigns credit.ID
	Create(ctx context.Context, credit *domain.CreditObligation, schedule domain.Schedule) error

	// GetByID retrieves a credit by its ID
	GetByID(ctx context.Context, id int64) (*domain.CreditObligation, error)

	// List retrieves every credit ordered by ID
	List(ctx context.Context) ([]*domain.CreditObligation, error)

	// Update replaces the credit's fields and its whole schedule
	Update(ctx context.Context, credit *domain.CreditObligation, schedule domain.Schedule) error

	// Delete removes a credit together with its schedule
	Delete(ctx context.Context, id int64) error

	// GetSchedule retrieves the credit's schedule ordered by period
	GetSchedule(ctx context.Context, creditID int64) (domain.Schedule, error)

	// GetSchedules retrieves schedules for several credits at once
	GetSchedules(ctx context.Context, creditIDs []int64) (map[int64]domain.Schedule, error)

	// ReplaceSchedule swaps the stored schedule for a new one
	ReplaceSchedule(ctx context.Context, creditID int64, schedule domain.Schedule) error
}

// ScenarioRepository defines the interface for rate scenario data operations
type ScenarioRepository interface {
	Create(ctx context.Context, scenario *domain.RateScenario) error

	// GetByID retrieves a scenario with its forecasts
	GetByID(ctx context.Context, id int64) (*domain.RateScenario, error)

	// ListPublic retrieves scenarios without an owner
	ListPublic(ctx context.Context) ([]domain.RateScenario, error)

	// ListByOwner retrieves the scenarios a user created
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.RateScenario, error)
}

// RateRepository defines the interface for reference rate history
type RateRepository interface {
	Add(ctx context.Context, point domain.RatePoint) error

	// History retrieves every known rate for indicator ordered by date
	History(ctx context.Context, indicator domain.BaseRateIndicator) ([]domain.RatePoint, error)

	// Latest retrieves the most recent rate, or nil when none is stored
	Latest(ctx context.Context, indicator domain.BaseRateIndicator) (*domain.RatePoint, error)
}

// InstrumentRepository defines the interface for hedging instrument data operations
type InstrumentRepository interface {
	Create(ctx context.Context, def *domain.InstrumentDefinition) error
	List(ctx context.Context) ([]domain.InstrumentDefinition, error)

	// GetByIDs retrieves the requested instruments, failing if any is missing
	GetByIDs(ctx context.Context, ids []int64) ([]domain.InstrumentDefinition, error)
}
