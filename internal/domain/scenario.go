package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ScenarioType string

const (
	ScenarioBase         ScenarioType = "BASE"
	ScenarioOptimistic   ScenarioType = "OPTIMISTIC"
	ScenarioPessimistic  ScenarioType = "PESSIMISTIC"
	ScenarioConservative ScenarioType = "CONSERVATIVE"
	ScenarioStress       ScenarioType = "STRESS"
	ScenarioCustom       ScenarioType = "CUSTOM"
)

// RateScenario is a named forecast of reference rates. OwnerID is zero for
// public scenarios.
type RateScenario struct {
	ID           int64          `json:"id" db:"id" msgpack:"id"`
	OwnerID      int64          `json:"owner_id" db:"owner_id" msgpack:"owner_id"`
	Name         string         `json:"name" db:"name" msgpack:"name"`
	Description  string         `json:"description,omitempty" db:"description" msgpack:"description"`
	ScenarioType ScenarioType   `json:"scenario_type" db:"scenario_type" msgpack:"scenario_type"`
	Forecasts    []RateForecast `json:"forecasts" db:"-" msgpack:"forecasts"`
}

// RateForecast is one sparse point of a scenario.
type RateForecast struct {
	ScenarioID   int64             `json:"scenario_id" db:"scenario_id" msgpack:"scenario_id"`
	ForecastDate time.Time         `json:"forecast_date" db:"forecast_date" msgpack:"forecast_date" validate:"required"`
	RateValue    decimal.Decimal   `json:"rate_value" db:"rate_value" msgpack:"rate_value" validate:"gte=0"`
	Indicator    BaseRateIndicator `json:"indicator" db:"indicator" msgpack:"indicator" validate:"omitempty,oneof=KEY_RATE RUONIA"`
}

// CreateScenarioRequest represents the request body for creating a scenario.
// OwnerID 0 publishes the scenario to every user.
type CreateScenarioRequest struct {
	OwnerID      int64          `json:"owner_id" validate:"gte=0"`
	Name         string         `json:"name" validate:"required,max=255"`
	Description  string         `json:"description" validate:"max=1000"`
	ScenarioType ScenarioType   `json:"scenario_type" validate:"required,oneof=BASE OPTIMISTIC PESSIMISTIC CONSERVATIVE STRESS CUSTOM"`
	Forecasts    []RateForecast `json:"forecasts" validate:"dive"`
}

func (r *CreateScenarioRequest) Scenario() *RateScenario {
	forecasts := make([]RateForecast, len(r.Forecasts))
	copy(forecasts, r.Forecasts)
	return &RateScenario{
		OwnerID:      r.OwnerID,
		Name:         r.Name,
		Description:  r.Description,
		ScenarioType: r.ScenarioType,
		Forecasts:    forecasts,
	}
}

// RatePoint is a reference rate that became effective on a date.
type RatePoint struct {
	Indicator     BaseRateIndicator `json:"indicator" db:"indicator" validate:"required,oneof=KEY_RATE RUONIA"`
	EffectiveDate time.Time         `json:"effective_date" db:"effective_date" validate:"required"`
	Rate          decimal.Decimal   `json:"rate" db:"rate" validate:"gte=0"`
}
