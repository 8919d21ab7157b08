package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FlightStatus string

const (
	FlightStatusOnSale    FlightStatus = "ON_SALE"
	FlightStatusCancelled FlightStatus = "CANCELLED"
	FlightStatusFinished  FlightStatus = "FINISHED"
)

// FinishLeadTime is how long before scheduled departure a flight stops
// selling and transitions to FINISHED.
const FinishLeadTime = time.Hour

type CabinClass string

const (
	CabinEconomy  CabinClass = "ECONOMY"
	CabinBusiness CabinClass = "BUSINESS"
	CabinFirst    CabinClass = "FIRST"
)

// CabinClasses lists every cabin class in price order.
var CabinClasses = []CabinClass{CabinEconomy, CabinBusiness, CabinFirst}

type Airport struct {
	ID      int64  `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type Flight struct {
	ID            int64           `json:"id"`
	FlightNo      string          `json:"flight_no"`
	Airline       string          `json:"airline"`
	PlaneType     string          `json:"plane_type"`
	DepartAirport Airport         `json:"depart_airport"`
	ArriveAirport Airport         `json:"arrive_airport"`
	DepartTime    time.Time       `json:"depart_time"`
	ArriveTime    time.Time       `json:"arrive_time"`
	BasePrice     decimal.Decimal `json:"base_price"`
	Status        FlightStatus    `json:"status"`
	// MinPrice is the cheapest cabin with seats left, filled by search.
	MinPrice  decimal.Decimal `json:"min_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Bookable reports whether new orders may be created against the flight:
// it must be on sale and further than FinishLeadTime from departure.
func (f *Flight) Bookable(now time.Time) bool {
	return f.Status == FlightStatusOnSale && f.DepartTime.After(now.Add(FinishLeadTime))
}

// CabinInventory is the per-flight, per-cabin seat counter. The row is
// shared mutable state: available_seats changes only through the atomic
// decrement/increment statements in the inventory repository, so that
// total_seats == available_seats + seat-consuming orders at all times.
type CabinInventory struct {
	ID             int64           `json:"id"`
	FlightID       int64           `json:"flight_id"`
	CabinClass     CabinClass      `json:"cabin_class"`
	TotalSeats     int             `json:"total_seats"`
	AvailableSeats int             `json:"available_seats"`
	Price          decimal.Decimal `json:"price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FlightSearch holds the passenger-facing search filters. ArriveCity is
// required, DepartCity optional; both match against city, airport name
// and airport code.
type FlightSearch struct {
	DepartCity string
	ArriveCity string
	DepartDate time.Time
	SortBy     string // "price" (default) or "depart_time"
}
