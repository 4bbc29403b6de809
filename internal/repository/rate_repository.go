package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/credit-risk-engine/internal/domain"
)

type rateRepository struct {
	db *sqlx.DB
}

func NewRateRepository(db *sqlx.DB) RateRepository {
	return &rateRepository{db: db}
}

// Add stores a rate, replacing any rate already recorded for that date.
func (r *rateRepository) Add(ctx context.Context, point domain.RatePoint) error {
	query := r.db.Rebind(`
		INSERT INTO rate_history (indicator, effective_date, rate)
		VALUES (?, ?, ?)
		ON CONFLICT (indicator, effective_date) DO UPDATE SET rate = excluded.rate
	`)

	_, err := r.db.ExecContext(ctx, query, point.Indicator, point.EffectiveDate, point.Rate)
	return err
}

func (r *rateRepository) History(ctx context.Context, indicator domain.BaseRateIndicator) ([]domain.RatePoint, error) {
	query := r.db.Rebind(`
		SELECT indicator, effective_date, rate
		FROM rate_history
		WHERE indicator = ?
		ORDER BY effective_date
	`)

	var points []domain.RatePoint
	if err := r.db.SelectContext(ctx, &points, query, indicator); err != nil {
		return nil, err
	}
	for i := range points {
		points[i].EffectiveDate = points[i].EffectiveDate.UTC()
	}
	return points, nil
}

func (r *rateRepository) Latest(ctx context.Context, indicator domain.BaseRateIndicator) (*domain.RatePoint, error) {
	query := r.db.Rebind(`
		SELECT indicator, effective_date, rate
		FROM rate_history
		WHERE indicator = ?
		ORDER BY effective_date DESC
		LIMIT 1
	`)

	var point domain.RatePoint
	err := r.db.GetContext(ctx, &point, query, indicator)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	point.EffectiveDate = point.EffectiveDate.UTC()
	return &point, nil
}
