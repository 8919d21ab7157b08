package domain

import "github.com/shopspring/decimal"

// All monetary values are rounded to 2 decimal places, half away from
// zero, at every derivation point (tax, cabin price, refund fee).

var taxRate = decimal.RequireFromString("0.05")

var cabinMultipliers = map[CabinClass]decimal.Decimal{
	CabinEconomy:  decimal.RequireFromString("1.0"),
	CabinBusiness: decimal.RequireFromString("1.5"),
	CabinFirst:    decimal.RequireFromString("2.0"),
}

func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Tax is the 5% ticket tax on the cabin price.
func Tax(ticketPrice decimal.Decimal) decimal.Decimal {
	return Round2(ticketPrice.Mul(taxRate))
}

// CabinPrice derives a cabin's seat price from the flight base price.
func CabinPrice(basePrice decimal.Decimal, class CabinClass) decimal.Decimal {
	return Round2(basePrice.Mul(cabinMultipliers[class]))
}
