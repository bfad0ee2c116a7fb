package service

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// PriceNeto derives the pre-tax price from the final (customer-facing) price.
// Tax-inclusive prices are divided by (1 + tax/100); exclusive prices pass
// through. Four decimals, rounded half-up.
func PriceNeto(priceFinal, taxPercent decimal.Decimal, taxIncluded bool) decimal.Decimal {
	if !taxIncluded {
		return priceFinal.Round(4)
	}
	return priceFinal.DivRound(one.Add(taxPercent.Div(hundred)), 4)
}

// MarginPercent is the markup over cost, two decimals. A zero or negative
// cost reads as "all margin" and reports 100.
func MarginPercent(costPrice, priceNeto decimal.Decimal) decimal.Decimal {
	if costPrice.LessThanOrEqual(decimal.Zero) {
		return hundred
	}
	return priceNeto.Sub(costPrice).Div(costPrice).Mul(hundred).Round(2)
}

// PriceWithTax reconstitutes a display price from the net price, two
// decimals. Used by the storefront when no explicit public price is set.
func PriceWithTax(priceNeto, taxPercent decimal.Decimal) decimal.Decimal {
	return priceNeto.Mul(one.Add(taxPercent.Div(hundred))).Round(2)
}
