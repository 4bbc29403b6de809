package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
)

type scenarioRepository struct {
	db *sqlx.DB
}

func NewScenarioRepository(db *sqlx.DB) ScenarioRepository {
	return &scenarioRepository{db: db}
}

func (r *scenarioRepository) Create(ctx context.Context, scenario *domain.RateScenario) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, r.db.Rebind(`
		INSERT INTO scenarios (owner_id, name, description, scenario_type)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), scenario.OwnerID, scenario.Name, scenario.Description, scenario.ScenarioType).Scan(&scenario.ID)
	if err != nil {
		return err
	}

	insert := r.db.Rebind(`
		INSERT INTO rate_forecasts (scenario_id, forecast_date, rate_value, indicator)
		VALUES (?, ?, ?, ?)
	`)
	for i := range scenario.Forecasts {
		f := &scenario.Forecasts[i]
		f.ScenarioID = scenario.ID
		if _, err := tx.ExecContext(ctx, insert, f.ScenarioID, f.ForecastDate, f.RateValue, f.Indicator); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *scenarioRepository) GetByID(ctx context.Context, id int64) (*domain.RateScenario, error) {
	var scenario domain.RateScenario
	err := r.db.GetContext(ctx, &scenario, r.db.Rebind(`
		SELECT id, owner_id, name, description, scenario_type
		FROM scenarios
		WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapScenarioNotFound(id)
	}
	if err != nil {
		return nil, err
	}

	list := []domain.RateScenario{scenario}
	if err := r.attachForecasts(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *scenarioRepository) ListPublic(ctx context.Context) ([]domain.RateScenario, error) {
	return r.list(ctx, `owner_id = 0`)
}

func (r *scenarioRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.RateScenario, error) {
	return r.list(ctx, `owner_id = ?`, ownerID)
}

func (r *scenarioRepository) list(ctx context.Context, where string, args ...interface{}) ([]domain.RateScenario, error) {
	var scenarios []domain.RateScenario
	err := r.db.SelectContext(ctx, &scenarios, r.db.Rebind(`
		SELECT id, owner_id, name, description, scenario_type
		FROM scenarios
		WHERE `+where+`
		ORDER BY id
	`), args...)
	if err != nil {
		return nil, err
	}

	if err := r.attachForecasts(ctx, scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}

func (r *scenarioRepository) attachForecasts(ctx context.Context, scenarios []domain.RateScenario) error {
	if len(scenarios) == 0 {
		return nil
	}

	ids := make([]int64, len(scenarios))
	index := make(map[int64]int, len(scenarios))
	for i, s := range scenarios {
		ids[i] = s.ID
		index[s.ID] = i
	}

	query, args, err := sqlx.In(`
		SELECT scenario_id, forecast_date, rate_value, indicator
		FROM rate_forecasts
		WHERE scenario_id IN (?)
		ORDER BY scenario_id, forecast_date
	`, ids)
	if err != nil {
		return err
	}

	var forecasts []domain.RateForecast
	if err := r.db.SelectContext(ctx, &forecasts, r.db.Rebind(query), args...); err != nil {
		return err
	}

	for _, f := range forecasts {
		f.ForecastDate = f.ForecastDate.UTC()
		i := index[f.ScenarioID]
		scenarios[i].Forecasts = append(scenarios[i].Forecasts, f)
	}
	return nil
}
