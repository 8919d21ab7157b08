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
)

type FlightRepository interface {
	Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	Create(ctx context.Context, f *domain.Flight) error
	Update(ctx context.Context, f *domain.Flight) error
	Delete(ctx context.Context, id int64) error
	FinishDeparted(ctx context.Context, cutoff time.Time) (int64, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `f.id, f.flight_no, f.airline, f.plane_type,
	da.id, da.code, da.name, da.city, da.country,
	aa.id, aa.code, aa.name, aa.city, aa.country,
	f.depart_time, f.arrive_time, f.base_price, f.status, f.created_at, f.updated_at`

const flightJoins = `FROM flights f
	JOIN airports da ON da.id = f.depart_airport_id
	JOIN airports aa ON aa.id = f.arrive_airport_id`

func scanFlight(row pgx.Row, f *domain.Flight) error {
	return row.Scan(&f.ID, &f.FlightNo, &f.Airline, &f.PlaneType,
		&f.DepartAirport.ID, &f.DepartAirport.Code, &f.DepartAirport.Name, &f.DepartAirport.City, &f.DepartAirport.Country,
		&f.ArriveAirport.ID, &f.ArriveAirport.Code, &f.ArriveAirport.Name, &f.ArriveAirport.City, &f.ArriveAirport.Country,
		&f.DepartTime, &f.ArriveTime, &f.BasePrice, &f.Status, &f.CreatedAt, &f.UpdatedAt)
}

// Search returns on-sale flights with at least one seat left, annotated
// with the cheapest cabin price. It never locks inventory rows: the
// availability it reports may be slightly stale, the authoritative check
// happens when an order is created.
func (r *PGFlightRepository) Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	dayStart := q.DepartDate.Truncate(24 * time.Hour)

	sql := `SELECT ` + flightColumns + `, MIN(ci.price) AS min_price ` + flightJoins + `
		JOIN cabin_inventory ci ON ci.flight_id = f.id AND ci.available_seats > 0
		WHERE f.status = $1
		  AND f.depart_time >= $2 AND f.depart_time < $3
		  AND (aa.city ILIKE $4 OR aa.name ILIKE $4 OR aa.code ILIKE $4)
		  AND ($5 = '' OR da.city ILIKE $6 OR da.name ILIKE $6 OR da.code ILIKE $6)
		GROUP BY f.id, da.id, aa.id`

	switch q.SortBy {
	case "depart_time":
		sql += ` ORDER BY f.depart_time`
	default:
		sql += ` ORDER BY min_price`
	}

	rows, err := r.db.Query(ctx, sql,
		domain.FlightStatusOnSale,
		dayStart, dayStart.Add(24*time.Hour),
		"%"+q.ArriveCity+"%",
		q.DepartCity, "%"+q.DepartCity+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := rows.Scan(&f.ID, &f.FlightNo, &f.Airline, &f.PlaneType,
			&f.DepartAirport.ID, &f.DepartAirport.Code, &f.DepartAirport.Name, &f.DepartAirport.City, &f.DepartAirport.Country,
			&f.ArriveAirport.ID, &f.ArriveAirport.Code, &f.ArriveAirport.Name, &f.ArriveAirport.City, &f.ArriveAirport.Country,
			&f.DepartTime, &f.ArriveTime, &f.BasePrice, &f.Status, &f.CreatedAt, &f.UpdatedAt, &f.MinPrice); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` `+flightJoins+` WHERE f.id=$1`, id)
	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("flight %d: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` `+flightJoins+` ORDER BY f.depart_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (flight_no, airline, plane_type, depart_airport_id, arrive_airport_id, depart_time, arrive_time, base_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		f.FlightNo, f.Airline, f.PlaneType, f.DepartAirport.ID, f.ArriveAirport.ID,
		f.DepartTime, f.ArriveTime, f.BasePrice, f.Status).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

func (r *PGFlightRepository) Update(ctx context.Context, f *domain.Flight) error {
	cmd, err := r.db.Exec(ctx, `UPDATE flights SET flight_no=$1, airline=$2, plane_type=$3, depart_airport_id=$4, arrive_airport_id=$5, depart_time=$6, arrive_time=$7, base_price=$8, status=$9, updated_at=now() WHERE id=$10`,
		f.FlightNo, f.Airline, f.PlaneType, f.DepartAirport.ID, f.ArriveAirport.ID,
		f.DepartTime, f.ArriveTime, f.BasePrice, f.Status, f.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("flight %d: %w", f.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a flight and its cabin rows. Flights referenced by
// orders are protected by the ledger's RESTRICT foreign key.
func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("flight %d: %w", id, domain.ErrFlightHasOrders)
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("flight %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// FinishDeparted moves on-sale flights whose departure is at or before
// the cutoff to FINISHED. Called lazily from listing paths and by the
// worker sweep.
func (r *PGFlightRepository) FinishDeparted(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE flights SET status=$1, updated_at=now() WHERE status=$2 AND depart_time <= $3`,
		domain.FlightStatusFinished, domain.FlightStatusOnSale, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
