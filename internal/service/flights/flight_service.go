package flights

import (
	"context"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/shopspring/decimal"
)

type FlightUseCase interface {
	Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error)
	GetWithCabins(ctx context.Context, id int64) (*domain.Flight, []domain.CabinInventory, error)
	List(ctx context.Context) ([]domain.Flight, error)
	Save(ctx context.Context, input SaveFlightInput) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
	FinishDeparted(ctx context.Context) (int64, error)
}

type Cache interface {
	GetSearch(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error)
	SetSearch(ctx context.Context, q domain.FlightSearch, flights []domain.Flight) error
}

// SaveFlightInput carries flight-management data: the flight itself plus
// the remaining availability per cabin. Capacity sync preserves sold
// seats (total = sold + available) and re-derives each cabin price from
// the base price.
type SaveFlightInput struct {
	ID              int64
	FlightNo        string
	Airline         string
	PlaneType       string
	DepartAirportID int64
	ArriveAirportID int64
	DepartTime      time.Time
	ArriveTime      time.Time
	BasePrice       decimal.Decimal
	Status          domain.FlightStatus
	EconomySeats    int
	BusinessSeats   int
	FirstSeats      int
}

type FlightService struct {
	repo      repository.FlightRepository
	inventory repository.InventoryRepository
	cache     Cache
	now       func() time.Time
}

func NewFlightService(repo repository.FlightRepository, inventory repository.InventoryRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, inventory: inventory, cache: cache, now: time.Now}
}

// Search serves passenger searches through the cache when possible.
// Cached results may trail inventory slightly; order creation re-checks.
func (s *FlightService) Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	if q.SortBy == "" {
		q.SortBy = "price"
	}

	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, q); err == nil && cached != nil {
			return cached, nil
		}
	}

	if _, err := s.FinishDeparted(ctx); err != nil {
		return nil, err
	}

	flights, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSearch(ctx, q, flights)
	}
	return flights, nil
}

func (s *FlightService) GetWithCabins(ctx context.Context, id int64) (*domain.Flight, []domain.CabinInventory, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	cabins, err := s.inventory.ListByFlight(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return flight, cabins, nil
}

// List is the flight-management view; departed flights are finished
// before listing, matching what passengers can actually book.
func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if _, err := s.FinishDeparted(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Save creates or updates a flight and synchronizes all three cabins to
// the requested availability.
func (s *FlightService) Save(ctx context.Context, input SaveFlightInput) (*domain.Flight, error) {
	status := input.Status
	if status == "" {
		status = domain.FlightStatusOnSale
	}

	flight := &domain.Flight{
		ID:            input.ID,
		FlightNo:      input.FlightNo,
		Airline:       input.Airline,
		PlaneType:     input.PlaneType,
		DepartAirport: domain.Airport{ID: input.DepartAirportID},
		ArriveAirport: domain.Airport{ID: input.ArriveAirportID},
		DepartTime:    input.DepartTime,
		ArriveTime:    input.ArriveTime,
		BasePrice:     input.BasePrice,
		Status:        status,
	}

	var err error
	if flight.ID == 0 {
		err = s.repo.Create(ctx, flight)
	} else {
		err = s.repo.Update(ctx, flight)
	}
	if err != nil {
		return nil, err
	}

	capacities := map[domain.CabinClass]int{
		domain.CabinEconomy:  input.EconomySeats,
		domain.CabinBusiness: input.BusinessSeats,
		domain.CabinFirst:    input.FirstSeats,
	}
	for _, class := range domain.CabinClasses {
		if err := s.inventory.UpsertCapacity(ctx, flight, class, capacities[class]); err != nil {
			return nil, err
		}
	}

	return s.repo.GetByID(ctx, flight.ID)
}

// Delete rejects flights that have orders; the ledger's foreign key
// surfaces as ErrFlightHasOrders.
func (s *FlightService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// FinishDeparted transitions on-sale flights within the finish lead time
// of departure to FINISHED.
func (s *FlightService) FinishDeparted(ctx context.Context) (int64, error) {
	return s.repo.FinishDeparted(ctx, s.now().Add(domain.FinishLeadTime))
}

var _ FlightUseCase = (*FlightService)(nil)
