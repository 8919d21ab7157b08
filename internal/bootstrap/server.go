package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/skyticket/api"
	"github.com/Domenick1991/skyticket/config"
	"github.com/Domenick1991/skyticket/internal/repository"
	"github.com/Domenick1991/skyticket/internal/service/booking"
	"github.com/Domenick1991/skyticket/internal/service/flights"
	"github.com/Domenick1991/skyticket/internal/service/revenue"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP surface: public flight search, passenger
// order routes behind the identity middleware, and the staff-only admin
// group on top of it.
func NewRouter(
	users repository.UserRepository,
	flightSvc flights.FlightUseCase,
	bookingSvc booking.BookingUseCase,
	revenueSvc revenue.RevenueUseCase,
) *gin.Engine {
	router := gin.Default()

	api.NewFlightHandler(flightSvc).Register(router.Group("/api/flights"))

	identified := router.Group("/api", api.Identity(users))
	api.NewOrderHandler(bookingSvc).Register(identified.Group("/orders"))

	staff := identified.Group("/admin", api.RequireStaff())
	api.NewAdminHandler(flightSvc, revenueSvc).Register(staff)

	return router
}

// Run serves the router and blocks until the context is canceled or the
// server fails, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
