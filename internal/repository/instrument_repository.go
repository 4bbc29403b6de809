package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
)

// instrumentRow is the stored shape; parameters live in a JSON column.
type instrumentRow struct {
	ID         int64          `db:"id"`
	Name       string         `db:"name"`
	Type       string         `db:"instrument_type"`
	Parameters types.JSONText `db:"parameters"`
}

func (row instrumentRow) definition() (domain.InstrumentDefinition, error) {
	def := domain.InstrumentDefinition{ID: row.ID, Name: row.Name, Type: row.Type}
	if err := row.Parameters.Unmarshal(&def.Parameters); err != nil {
		return def, fmt.Errorf("instrument %d parameters: %w", row.ID, err)
	}
	return def, nil
}

type instrumentRepository struct {
	db *sqlx.DB
}

func NewInstrumentRepository(db *sqlx.DB) InstrumentRepository {
	return &instrumentRepository{db: db}
}

func (r *instrumentRepository) Create(ctx context.Context, def *domain.InstrumentDefinition) error {
	params, err := json.Marshal(def.Parameters)
	if err != nil {
		return err
	}

	query := r.db.Rebind(`
		INSERT INTO hedging_instruments (name, instrument_type, parameters)
		VALUES (?, ?, ?)
		RETURNING id
	`)
	return r.db.QueryRowxContext(ctx, query, def.Name, def.Type, types.JSONText(params)).Scan(&def.ID)
}

func (r *instrumentRepository) List(ctx context.Context) ([]domain.InstrumentDefinition, error) {
	var rows []instrumentRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, instrument_type, parameters
		FROM hedging_instruments
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return definitions(rows)
}

func (r *instrumentRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.InstrumentDefinition, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, name, instrument_type, parameters
		FROM hedging_instruments
		WHERE id IN (?)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, err
	}

	var rows []instrumentRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	found := make(map[int64]bool, len(rows))
	for _, row := range rows {
		found[row.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, customError.WrapInstrumentNotFound(id)
		}
	}
	return definitions(rows)
}

func definitions(rows []instrumentRow) ([]domain.InstrumentDefinition, error) {
	out := make([]domain.InstrumentDefinition, 0, len(rows))
	for _, row := range rows {
		def, err := row.definition()
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}
