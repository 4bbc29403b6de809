package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	customError "github.com/segyhp/credit-risk-engine/pkg/errors"
)

const creditColumns = `id, credit_name, principal_amount, currency, start_date, end_date,
	base_rate_indicator, base_rate_value, credit_spread, payment_frequency, payment_type,
	created_at, updated_at`

const scheduleColumns = `id, credit_id, period_number, period_start_date, period_end_date,
	payment_date, outstanding_balance, interest_amount, principal_amount, total_payment,
	period_days, interest_rate, notes`

type creditRepository struct {
	db *sqlx.DB
}

func NewCreditRepository(db *sqlx.DB) CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) Create(ctx context.Context, credit *domain.CreditObligation, schedule domain.Schedule) error {
	query := r.db.Rebind(`
		INSERT INTO credits (credit_name, principal_amount, currency, start_date, end_date,
			base_rate_indicator, base_rate_value, credit_spread, payment_frequency, payment_type,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	now := time.Now().UTC()
	credit.CreatedAt, credit.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, query,
		credit.CreditName,
		credit.PrincipalAmount,
		credit.Currency,
		credit.StartDate,
		credit.EndDate,
		credit.BaseRateIndicator,
		credit.BaseRateValue,
		credit.CreditSpread,
		credit.PaymentFrequency,
		credit.PaymentType,
		credit.CreatedAt,
		credit.UpdatedAt,
	).Scan(&credit.ID)
	if err != nil {
		return err
	}

	if err := r.insertSchedule(ctx, tx, credit.ID, schedule); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *creditRepository) GetByID(ctx context.Context, id int64) (*domain.CreditObligation, error) {
	query := r.db.Rebind(`SELECT ` + creditColumns + ` FROM credits WHERE id = ?`)

	var credit domain.CreditObligation
	err := r.db.GetContext(ctx, &credit, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapCreditNotFound(id)
	}
	if err != nil {
		return nil, err
	}

	normalizeCredit(&credit)
	return &credit, nil
}

func (r *creditRepository) List(ctx context.Context) ([]*domain.CreditObligation, error) {
	query := `SELECT ` + creditColumns + ` FROM credits ORDER BY id`

	var credits []*domain.CreditObligation
	if err := r.db.SelectContext(ctx, &credits, query); err != nil {
		return nil, err
	}

	for _, c := range credits {
		normalizeCredit(c)
	}
	return credits, nil
}

func (r *creditRepository) Update(ctx context.Context, credit *domain.CreditObligation, schedule domain.Schedule) error {
	query := r.db.Rebind(`
		UPDATE credits
		SET credit_name = ?, principal_amount = ?, currency = ?, start_date = ?, end_date = ?,
			base_rate_indicator = ?, base_rate_value = ?, credit_spread = ?,
			payment_frequency = ?, payment_type = ?, updated_at = ?
		WHERE id = ?
	`)

	credit.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query,
		credit.CreditName,
		credit.PrincipalAmount,
		credit.Currency,
		credit.StartDate,
		credit.EndDate,
		credit.BaseRateIndicator,
		credit.BaseRateValue,
		credit.CreditSpread,
		credit.PaymentFrequency,
		credit.PaymentType,
		credit.UpdatedAt,
		credit.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return customError.WrapCreditNotFound(credit.ID)
	}

	if err := r.replaceSchedule(ctx, tx, credit.ID, schedule); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *creditRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// schedules first so drivers without enforced cascades stay consistent
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM payment_schedules WHERE credit_id = ?`), id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM credits WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return customError.WrapCreditNotFound(id)
	}

	return tx.Commit()
}

func (r *creditRepository) GetSchedule(ctx context.Context, creditID int64) (domain.Schedule, error) {
	query := r.db.Rebind(`
		SELECT ` + scheduleColumns + `
		FROM payment_schedules
		WHERE credit_id = ?
		ORDER BY period_number
	`)

	var schedule domain.Schedule
	if err := r.db.SelectContext(ctx, &schedule, query, creditID); err != nil {
		return nil, err
	}

	normalizeSchedule(schedule)
	return schedule, nil
}

func (r *creditRepository) GetSchedules(ctx context.Context, creditIDs []int64) (map[int64]domain.Schedule, error) {
	out := make(map[int64]domain.Schedule, len(creditIDs))
	if len(creditIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+scheduleColumns+`
		FROM payment_schedules
		WHERE credit_id IN (?)
		ORDER BY credit_id, period_number
	`, creditIDs)
	if err != nil {
		return nil, err
	}

	var rows domain.Schedule
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	normalizeSchedule(rows)
	for _, e := range rows {
		out[e.CreditID] = append(out[e.CreditID], e)
	}
	return out, nil
}

func (r *creditRepository) ReplaceSchedule(ctx context.Context, creditID int64, schedule domain.Schedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, r.db.Rebind(`SELECT COUNT(1) FROM credits WHERE id = ?`), creditID)
	if err != nil {
		return err
	}
	if exists == 0 {
		return customError.WrapCreditNotFound(creditID)
	}

	if err := r.replaceSchedule(ctx, tx, creditID, schedule); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *creditRepository) replaceSchedule(ctx context.Context, tx *sqlx.Tx, creditID int64, schedule domain.Schedule) error {
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM payment_schedules WHERE credit_id = ?`), creditID); err != nil {
		return err
	}
	return r.insertSchedule(ctx, tx, creditID, schedule)
}

func (r *creditRepository) insertSchedule(ctx context.Context, tx *sqlx.Tx, creditID int64, schedule domain.Schedule) error {
	query := r.db.Rebind(`
		INSERT INTO payment_schedules (` + scheduleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	for i := range schedule {
		e := &schedule[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.CreditID = creditID

		_, err := tx.ExecContext(ctx, query,
			e.ID,
			e.CreditID,
			e.PeriodNumber,
			e.PeriodStartDate,
			e.PeriodEndDate,
			e.PaymentDate,
			e.OutstandingBalance,
			e.InterestAmount,
			e.PrincipalAmount,
			e.TotalPayment,
			e.PeriodDays,
			e.InterestRate,
			e.Notes,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func normalizeCredit(c *domain.CreditObligation) {
	c.StartDate = c.StartDate.UTC()
	c.EndDate = c.EndDate.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
}

func normalizeSchedule(s domain.Schedule) {
	for i := range s {
		s[i].PeriodStartDate = s[i].PeriodStartDate.UTC()
		s[i].PeriodEndDate = s[i].PeriodEndDate.UTC()
		s[i].PaymentDate = s[i].PaymentDate.UTC()
	}
}
