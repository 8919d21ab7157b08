package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderWithPrice(t *testing.T, price string) *Order {
	t.Helper()
	p := decimal.RequireFromString(price)
	tax := Tax(p)
	return &Order{
		Status:      OrderStatusPaid,
		TicketPrice: p,
		Tax:         tax,
		TotalAmount: p.Add(tax),
	}
}

func TestComputeRefund_FeeSchedule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := orderWithPrice(t, "1000.00") // total 1050.00

	testCases := []struct {
		name         string
		hoursAhead   time.Duration
		expectedFee  string
		expectedBack string
	}{
		{"departure in 72h", 72 * time.Hour, "50.00", "1000.00"},
		{"departure in 30h", 30 * time.Hour, "100.00", "950.00"},
		{"departure in 10h", 10 * time.Hour, "200.00", "850.00"},
		{"exactly 48h uses 10%", 48 * time.Hour, "100.00", "950.00"},
		{"exactly 24h uses 20%", 24 * time.Hour, "200.00", "850.00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fee, refund, err := ComputeRefund(order, now.Add(tc.hoursAhead), now)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedFee, fee.StringFixed(2))
			assert.Equal(t, tc.expectedBack, refund.StringFixed(2))
		})
	}
}

func TestComputeRefund_AfterDeparture(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := orderWithPrice(t, "1000.00")

	for _, offset := range []time.Duration{0, -time.Minute, -48 * time.Hour} {
		_, _, err := ComputeRefund(order, now.Add(offset), now)
		assert.ErrorIs(t, err, ErrDepartureAlreadyOccurred)
	}
}

func TestTax(t *testing.T) {
	testCases := []struct {
		price    string
		expected string
	}{
		{"999.99", "50.00"}, // 49.9995 rounds up
		{"1000.00", "50.00"},
		{"0.01", "0.00"},
		{"100.10", "5.01"},
	}
	for _, tc := range testCases {
		got := Tax(decimal.RequireFromString(tc.price))
		assert.Equal(t, tc.expected, got.StringFixed(2), "price %s", tc.price)
	}
}

func TestTax_TotalBreakdown(t *testing.T) {
	price := decimal.RequireFromString("999.99")
	tax := Tax(price)
	total := price.Add(tax)
	assert.Equal(t, "1049.99", total.StringFixed(2))
}

func TestCabinPrice(t *testing.T) {
	base := decimal.RequireFromString("1333.33")

	assert.Equal(t, "1333.33", CabinPrice(base, CabinEconomy).StringFixed(2))
	assert.Equal(t, "2000.00", CabinPrice(base, CabinBusiness).StringFixed(2)) // 1999.995 rounds half away from zero
	assert.Equal(t, "2666.66", CabinPrice(base, CabinFirst).StringFixed(2))
}
