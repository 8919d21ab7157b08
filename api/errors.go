package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/gin-gonic/gin"
)

// errorStatus maps the ledger/inventory error taxonomy onto HTTP codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientInventory),
		errors.Is(err, domain.ErrDuplicateBooking),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrOrderAlreadyCancelled),
		errors.Is(err, domain.ErrFlightHasOrders):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDepartureAlreadyOccurred),
		errors.Is(err, domain.ErrFlightNotOnSale):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStaffCannotBook):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}
