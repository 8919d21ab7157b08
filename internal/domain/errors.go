package domain

import "errors"

// Typed failures surfaced by the inventory store and order ledger.
// Callers match with errors.Is; repositories wrap them with context.
var (
	ErrNotFound                 = errors.New("not found")
	ErrInsufficientInventory    = errors.New("no seats left in cabin")
	ErrDuplicateBooking         = errors.New("active order already exists for this flight")
	ErrInvalidState             = errors.New("operation not allowed in current order state")
	ErrOrderAlreadyCancelled    = errors.New("order already cancelled")
	ErrDepartureAlreadyOccurred = errors.New("flight already departed, refund not allowed")
	ErrFlightNotOnSale          = errors.New("flight is not on sale")
	ErrFlightHasOrders          = errors.New("flight has existing orders and cannot be deleted")
	ErrStaffCannotBook          = errors.New("staff accounts cannot book tickets")
)
