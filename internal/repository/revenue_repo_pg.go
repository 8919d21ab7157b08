package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RevenueRepository is the read-only reporting collaborator. Revenue is
// the total_amount of PAID orders keyed by paid_at plus the retained fee
// of REFUNDED orders keyed by refunded_at; both fields are immutable
// outside the documented state transitions, so these reads need no locks.
type RevenueRepository interface {
	TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	MonthlyTotals(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error)
	DailyTotals(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error)
}

type PGRevenueRepository struct {
	db *pgxpool.Pool
}

func NewRevenueRepository(db *pgxpool.Pool) RevenueRepository {
	return &PGRevenueRepository{db: db}
}

// revenueLedger unifies the two revenue sources into (amount, booked_at).
const revenueLedger = `SELECT total_amount AS amount, paid_at AS booked_at FROM orders WHERE status='PAID' AND paid_at IS NOT NULL
	UNION ALL
	SELECT fee, refunded_at FROM orders WHERE status='REFUNDED' AND refunded_at IS NOT NULL`

func (r *PGRevenueRepository) TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM (`+revenueLedger+`) l WHERE booked_at >= $1 AND booked_at < $2`, from, to).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return total, nil
}

func (r *PGRevenueRepository) MonthlyTotals(ctx context.Context, year int) (map[time.Month]decimal.Decimal, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	rows, err := r.db.Query(ctx, `SELECT EXTRACT(MONTH FROM booked_at)::int, COALESCE(SUM(amount), 0)
		FROM (`+revenueLedger+`) l
		WHERE booked_at >= $1 AND booked_at < $2
		GROUP BY 1`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[time.Month]decimal.Decimal)
	for rows.Next() {
		var month int
		var total decimal.Decimal
		if err := rows.Scan(&month, &total); err != nil {
			return nil, err
		}
		totals[time.Month(month)] = total
	}
	return totals, rows.Err()
}

// DailyTotals returns revenue per calendar day keyed by "2006-01-02".
func (r *PGRevenueRepository) DailyTotals(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, `SELECT to_char(booked_at, 'YYYY-MM-DD'), COALESCE(SUM(amount), 0)
		FROM (`+revenueLedger+`) l
		WHERE booked_at >= $1 AND booked_at < $2
		GROUP BY 1`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var day string
		var total decimal.Decimal
		if err := rows.Scan(&day, &total); err != nil {
			return nil, err
		}
		totals[day] = total
	}
	return totals, rows.Err()
}

var _ RevenueRepository = (*PGRevenueRepository)(nil)
