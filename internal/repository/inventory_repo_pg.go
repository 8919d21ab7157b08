package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InventoryRepository interface {
	GetCabin(ctx context.Context, cabinID int64) (*domain.CabinInventory, error)
	ListByFlight(ctx context.Context, flightID int64) ([]domain.CabinInventory, error)
	UpsertCapacity(ctx context.Context, flight *domain.Flight, class domain.CabinClass, newAvailable int) error
	Decrement(ctx context.Context, cabinID int64) error
	Increment(ctx context.Context, cabinID int64) error
}

type PGInventoryRepository struct {
	db *pgxpool.Pool
}

func NewInventoryRepository(db *pgxpool.Pool) InventoryRepository {
	return &PGInventoryRepository{db: db}
}

const cabinColumns = `id, flight_id, cabin_class, total_seats, available_seats, price, created_at, updated_at`

func scanCabin(row pgx.Row, c *domain.CabinInventory) error {
	return row.Scan(&c.ID, &c.FlightID, &c.CabinClass, &c.TotalSeats, &c.AvailableSeats, &c.Price, &c.CreatedAt, &c.UpdatedAt)
}

func (r *PGInventoryRepository) GetCabin(ctx context.Context, cabinID int64) (*domain.CabinInventory, error) {
	row := r.db.QueryRow(ctx, `SELECT `+cabinColumns+` FROM cabin_inventory WHERE id=$1`, cabinID)
	var c domain.CabinInventory
	if err := scanCabin(row, &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cabin %d: %w", cabinID, domain.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGInventoryRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.CabinInventory, error) {
	rows, err := r.db.Query(ctx, `SELECT `+cabinColumns+` FROM cabin_inventory WHERE flight_id=$1 ORDER BY price`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cabins := make([]domain.CabinInventory, 0)
	for rows.Next() {
		var c domain.CabinInventory
		if err := scanCabin(rows, &c); err != nil {
			return nil, err
		}
		cabins = append(cabins, c)
	}
	return cabins, rows.Err()
}

// UpsertCapacity sets a cabin's remaining availability from flight
// management. Sold seats are preserved: total is recomputed as
// sold + newAvailable, and the price is re-derived from the flight's
// current base price. A missing row with zero availability stays absent.
func (r *PGInventoryRepository) UpsertCapacity(ctx context.Context, flight *domain.Flight, class domain.CabinClass, newAvailable int) error {
	if newAvailable < 0 {
		newAvailable = 0
	}
	price := domain.CabinPrice(flight.BasePrice, class)

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var cabinID int64
	err = tx.QueryRow(ctx, `SELECT id FROM cabin_inventory WHERE flight_id=$1 AND cabin_class=$2 FOR UPDATE`, flight.ID, class).Scan(&cabinID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if newAvailable == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `INSERT INTO cabin_inventory (flight_id, cabin_class, total_seats, available_seats, price)
			VALUES ($1, $2, $3, $3, $4)`, flight.ID, class, newAvailable, price); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		var sold int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM orders WHERE cabin_id=$1 AND status = ANY($2)`,
			cabinID, seatConsumingStatuses).Scan(&sold); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE cabin_inventory SET total_seats=$1, available_seats=$2, price=$3, updated_at=now() WHERE id=$4`,
			sold+newAvailable, newAvailable, price, cabinID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Decrement atomically takes one seat from the cabin. The availability
// check and the decrement are a single statement, so no two concurrent
// callers can both succeed on the last seat.
func (r *PGInventoryRepository) Decrement(ctx context.Context, cabinID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE cabin_inventory SET available_seats = available_seats - 1, updated_at = now() WHERE id=$1 AND available_seats > 0`, cabinID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("cabin %d: %w", cabinID, domain.ErrInsufficientInventory)
	}
	return nil
}

// Increment releases one seat back to the pool.
func (r *PGInventoryRepository) Increment(ctx context.Context, cabinID int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE cabin_inventory SET available_seats = available_seats + 1, updated_at = now() WHERE id=$1`, cabinID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("cabin %d: %w", cabinID, domain.ErrNotFound)
	}
	return nil
}

var _ InventoryRepository = (*PGInventoryRepository)(nil)
