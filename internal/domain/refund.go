package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	refundRateEarly = decimal.RequireFromString("0.05") // more than 48h out
	refundRateMid   = decimal.RequireFromString("0.10") // 24h..48h out
	refundRateLate  = decimal.RequireFromString("0.20") // under 24h out
)

// ComputeRefund applies the refund fee schedule to a paid order. The fee
// rate depends on how far ahead of departure the refund is requested:
// 5% beyond 48 hours, 10% between 24 and 48, 20% under 24. Once the
// scheduled departure has passed the refund is refused.
func ComputeRefund(order *Order, departTime, now time.Time) (fee, refundAmount decimal.Decimal, err error) {
	hours := departTime.Sub(now).Hours()

	var rate decimal.Decimal
	switch {
	case hours > 48:
		rate = refundRateEarly
	case hours > 24:
		rate = refundRateMid
	case hours > 0:
		rate = refundRateLate
	default:
		return decimal.Decimal{}, decimal.Decimal{}, ErrDepartureAlreadyOccurred
	}

	fee = Round2(order.TicketPrice.Mul(rate))
	refundAmount = Round2(order.TotalAmount.Sub(fee))
	return fee, refundAmount, nil
}
