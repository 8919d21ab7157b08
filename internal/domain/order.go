package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusReserved  OrderStatus = "RESERVED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunding OrderStatus = "REFUNDING"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// Terminal reports whether the status admits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// ConsumesSeat reports whether an order in this status holds a seat.
// REFUNDING counts: the seat is released only when the refund commits.
func (s OrderStatus) ConsumesSeat() bool {
	switch s {
	case OrderStatusReserved, OrderStatusPaid, OrderStatusRefunding:
		return true
	}
	return false
}

type Order struct {
	ID          int64           `json:"id"`
	OrderNo     string          `json:"order_no"`
	UserID      int64           `json:"user_id"`
	FlightID    int64           `json:"flight_id"`
	CabinID     int64           `json:"cabin_id"`
	Status      OrderStatus     `json:"status"`
	TicketPrice decimal.Decimal `json:"ticket_price"`
	Tax         decimal.Decimal `json:"tax"`
	Fee         decimal.Decimal `json:"fee"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	RefundedAt  *time.Time      `json:"refunded_at,omitempty"`
}

// Expired reports whether a reservation has outlived the payment window.
// Only RESERVED orders expire; every other status is unaffected by time.
func (o *Order) Expired(now time.Time, window time.Duration) bool {
	return o.Status == OrderStatusReserved && now.Sub(o.CreatedAt) > window
}

type RefundStatus string

const (
	RefundStatusPending  RefundStatus = "PENDING"
	RefundStatusApproved RefundStatus = "APPROVED"
	RefundStatusRejected RefundStatus = "REJECTED"
)

// RefundRecord is one-to-one with a refunded order. Refunds are
// auto-approved; PENDING and REJECTED are reachable schema states only.
type RefundRecord struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	Reason       string          `json:"reason"`
	RefundFee    decimal.Decimal `json:"refund_fee"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Status       RefundStatus    `json:"status"`
	RequestTime  time.Time       `json:"request_time"`
	ApproveTime  *time.Time      `json:"approve_time,omitempty"`
}
