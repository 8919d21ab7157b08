package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OrderRepository is the order ledger. Every state transition that also
// touches seat inventory runs as a single transaction here, so a crash
// or conflict can never leak a seat (decremented without an order, or
// released twice).
type OrderRepository interface {
	CreateReserved(ctx context.Context, order *domain.Order) error
	GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	// Reconcile lazily expires an over-age reservation. The bool reports
	// whether a transition happened; calling it again is a no-op.
	Reconcile(ctx context.Context, orderNo string, now time.Time, window time.Duration) (*domain.Order, bool, error)
	MarkPaid(ctx context.Context, orderNo string, now time.Time, window time.Duration) (*domain.Order, error)
	MarkRefunded(ctx context.Context, orderNo string, record *domain.RefundRecord, now time.Time) (*domain.Order, error)
	ExpireReservedBefore(ctx context.Context, deadline time.Time, now time.Time) ([]domain.Order, error)
}

type PGOrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PGOrderRepository{db: db}
}

const orderColumns = `id, order_no, user_id, flight_id, cabin_id, status, ticket_price, tax, fee, total_amount, created_at, paid_at, cancelled_at, refunded_at`

var seatConsumingStatuses = []string{
	string(domain.OrderStatusReserved),
	string(domain.OrderStatusPaid),
	string(domain.OrderStatusRefunding),
}

func scanOrder(row pgx.Row, o *domain.Order) error {
	return row.Scan(&o.ID, &o.OrderNo, &o.UserID, &o.FlightID, &o.CabinID, &o.Status,
		&o.TicketPrice, &o.Tax, &o.Fee, &o.TotalAmount,
		&o.CreatedAt, &o.PaidAt, &o.CancelledAt, &o.RefundedAt)
}

// CreateReserved creates a RESERVED order, taking exactly one seat from
// the chosen cabin. The duplicate-booking check, the compare-and-decrement
// and the insert commit together or not at all. The ticket price is the
// cabin price read inside the transaction; tax and total are derived
// from it here so the breakdown matches what was actually decremented.
func (r *PGOrderRepository) CreateReserved(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var flightStatus domain.FlightStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM flights WHERE id=$1`, order.FlightID).Scan(&flightStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("flight %d: %w", order.FlightID, domain.ErrNotFound)
		}
		return err
	}
	if flightStatus != domain.FlightStatusOnSale {
		return fmt.Errorf("flight %d: %w", order.FlightID, domain.ErrFlightNotOnSale)
	}

	var hasActive bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE user_id=$1 AND flight_id=$2 AND status = ANY($3))`,
		order.UserID, order.FlightID, seatConsumingStatuses).Scan(&hasActive); err != nil {
		return err
	}
	if hasActive {
		return fmt.Errorf("flight %d: %w", order.FlightID, domain.ErrDuplicateBooking)
	}

	var price decimal.Decimal
	err = tx.QueryRow(ctx, `UPDATE cabin_inventory SET available_seats = available_seats - 1, updated_at = now()
		WHERE id=$1 AND flight_id=$2 AND available_seats > 0
		RETURNING price`, order.CabinID, order.FlightID).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM cabin_inventory WHERE id=$1 AND flight_id=$2)`,
			order.CabinID, order.FlightID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("cabin %d: %w", order.CabinID, domain.ErrNotFound)
		}
		return fmt.Errorf("cabin %d: %w", order.CabinID, domain.ErrInsufficientInventory)
	}
	if err != nil {
		return err
	}

	order.Status = domain.OrderStatusReserved
	order.TicketPrice = price
	order.Tax = domain.Tax(price)
	order.Fee = decimal.Zero
	order.TotalAmount = price.Add(order.Tax)

	if err := tx.QueryRow(ctx, `INSERT INTO orders (order_no, user_id, flight_id, cabin_id, status, ticket_price, tax, fee, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		order.OrderNo, order.UserID, order.FlightID, order.CabinID, order.Status,
		order.TicketPrice, order.Tax, order.Fee, order.TotalAmount).
		Scan(&order.ID, &order.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("flight %d: %w", order.FlightID, domain.ErrDuplicateBooking)
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGOrderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_no=$1`, orderNo)
	var o domain.Order
	if err := scanOrder(row, &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderNo, domain.ErrNotFound)
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGOrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// lockOrder loads an order row under FOR UPDATE inside tx.
func lockOrder(ctx context.Context, tx pgx.Tx, orderNo string) (*domain.Order, error) {
	row := tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_no=$1 FOR UPDATE`, orderNo)
	var o domain.Order
	if err := scanOrder(row, &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", orderNo, domain.ErrNotFound)
		}
		return nil, err
	}
	return &o, nil
}

// expireLocked transitions a locked RESERVED order to CANCELLED and
// releases its seat, all inside tx. The caller has already verified the
// order is over-age.
func expireLocked(ctx context.Context, tx pgx.Tx, o *domain.Order, now time.Time) error {
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1, cancelled_at=$2 WHERE id=$3`,
		domain.OrderStatusCancelled, now, o.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE cabin_inventory SET available_seats = available_seats + 1, updated_at = now() WHERE id=$1`, o.CabinID); err != nil {
		return err
	}
	o.Status = domain.OrderStatusCancelled
	o.CancelledAt = &now
	return nil
}

func (r *PGOrderRepository) Reconcile(ctx context.Context, orderNo string, now time.Time, window time.Duration) (*domain.Order, bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	o, err := lockOrder(ctx, tx, orderNo)
	if err != nil {
		return nil, false, err
	}
	if !o.Expired(now, window) {
		return o, false, nil
	}
	if err := expireLocked(ctx, tx, o, now); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return o, true, nil
}

// MarkPaid moves a RESERVED order to PAID. Expiry is re-checked inside
// the same transaction, so a racing sweep and a pay attempt cannot both
// apply: if the reservation is over-age the expiry wins, commits, and
// the caller sees ErrOrderAlreadyCancelled. Paying an already-PAID order
// is an idempotent no-op.
func (r *PGOrderRepository) MarkPaid(ctx context.Context, orderNo string, now time.Time, window time.Duration) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	o, err := lockOrder(ctx, tx, orderNo)
	if err != nil {
		return nil, err
	}

	switch o.Status {
	case domain.OrderStatusPaid:
		return o, nil
	case domain.OrderStatusCancelled:
		return nil, fmt.Errorf("order %s: %w", orderNo, domain.ErrOrderAlreadyCancelled)
	case domain.OrderStatusRefunding, domain.OrderStatusRefunded:
		return nil, fmt.Errorf("order %s: %w", orderNo, domain.ErrInvalidState)
	}

	if o.Expired(now, window) {
		if err := expireLocked(ctx, tx, o, now); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("order %s: %w", orderNo, domain.ErrOrderAlreadyCancelled)
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1, paid_at=$2 WHERE id=$3`,
		domain.OrderStatusPaid, now, o.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatusPaid
	o.PaidAt = &now
	return o, nil
}

// MarkRefunded commits an approved refund: the order moves
// PAID -> REFUNDING -> REFUNDED, the refund record is created, the fee
// is stamped on the order and the seat returns to the pool, all in one
// transaction. Any non-PAID state aborts with ErrInvalidState and no
// inventory change.
func (r *PGOrderRepository) MarkRefunded(ctx context.Context, orderNo string, record *domain.RefundRecord, now time.Time) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	o, err := lockOrder(ctx, tx, orderNo)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.OrderStatusPaid {
		return nil, fmt.Errorf("order %s in state %s: %w", orderNo, o.Status, domain.ErrInvalidState)
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1 WHERE id=$2`, domain.OrderStatusRefunding, o.ID); err != nil {
		return nil, err
	}

	record.OrderID = o.ID
	if err := tx.QueryRow(ctx, `INSERT INTO refund_records (order_id, reason, refund_fee, refund_amount, status, approve_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, request_time`,
		record.OrderID, record.Reason, record.RefundFee, record.RefundAmount, record.Status, record.ApproveTime).
		Scan(&record.ID, &record.RequestTime); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1, fee=$2, refunded_at=$3 WHERE id=$4`,
		domain.OrderStatusRefunded, record.RefundFee, now, o.ID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE cabin_inventory SET available_seats = available_seats + 1, updated_at = now() WHERE id=$1`, o.CabinID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	o.Status = domain.OrderStatusRefunded
	o.Fee = record.RefundFee
	o.RefundedAt = &now
	return o, nil
}

// ExpireReservedBefore cancels every RESERVED order created before the
// deadline and releases each seat exactly once. Rows already locked
// by a concurrent pay or reconcile are skipped; they resolve their own
// expiry in that transaction.
func (r *PGOrderRepository) ExpireReservedBefore(ctx context.Context, deadline time.Time, now time.Time) ([]domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE status=$1 AND created_at < $2 FOR UPDATE SKIP LOCKED`,
		domain.OrderStatusReserved, deadline)
	if err != nil {
		return nil, err
	}

	var stale []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			rows.Close()
			return nil, err
		}
		stale = append(stale, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range stale {
		if err := expireLocked(ctx, tx, &stale[i], now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return stale, nil
}

var _ OrderRepository = (*PGOrderRepository)(nil)
