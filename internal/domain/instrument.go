package domain

import (
	"github.com/shopspring/decimal"
)

type CostType string

const (
	CostAnnual  CostType = "annual"
	CostUpfront CostType = "upfront"
)

// InstrumentParameters is the loosely typed parameter bag a hedging
// instrument is stored with. Unset rate bounds are invalid NullDecimals.
type InstrumentParameters struct {
	Cap             decimal.NullDecimal `json:"cap"`
	Floor           decimal.NullDecimal `json:"floor"`
	FixedRate       decimal.NullDecimal `json:"fixedRate"`
	Cost            decimal.Decimal     `json:"cost"`
	CostType        CostType            `json:"costType"`
	HedgePercentage decimal.Decimal     `json:"hedgePercentage"`
	HedgingTerm     int                 `json:"hedgingTerm"` // months from today
}

// InstrumentDefinition is the stored form of a hedging instrument.
type InstrumentDefinition struct {
	ID         int64                `json:"id" db:"id"`
	Name       string               `json:"name" db:"name" validate:"required,max=255"`
	Type       string               `json:"type" db:"instrument_type" validate:"required"`
	Parameters InstrumentParameters `json:"parameters" db:"-"`
}
