package service_test

import (
	"testing"

	"nexopos/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceNeto_TaxIncluded(t *testing.T) {
	// 1190 gross at 19% → 1000 net
	neto := service.PriceNeto(decimal.NewFromInt(1190), decimal.NewFromInt(19), true)
	assert.Equal(t, "1000", neto.String())

	// Rounding to four decimals, half-up: 1500 / 1.19 = 1260.5042...
	neto = service.PriceNeto(decimal.NewFromInt(1500), decimal.NewFromInt(19), true)
	assert.Equal(t, "1260.5042", neto.String())
}

func TestPriceNeto_TaxExclusive(t *testing.T) {
	neto := service.PriceNeto(decimal.NewFromInt(1000), decimal.NewFromInt(19), false)
	assert.Equal(t, "1000", neto.String())
}

func TestMarginPercent(t *testing.T) {
	m := service.MarginPercent(decimal.NewFromInt(800), decimal.NewFromInt(1000))
	assert.Equal(t, "25", m.String())

	// Fractional margin rounds to two decimals
	m = service.MarginPercent(decimal.NewFromInt(900), decimal.NewFromInt(1000))
	assert.Equal(t, "11.11", m.String())
}

func TestMarginPercent_ZeroCost(t *testing.T) {
	// cost ≤ 0 reads as all margin
	assert.Equal(t, "100", service.MarginPercent(decimal.Zero, decimal.NewFromInt(500)).String())
	assert.Equal(t, "100", service.MarginPercent(decimal.NewFromInt(-10), decimal.NewFromInt(500)).String())
}

func TestPriceWithTax(t *testing.T) {
	price := service.PriceWithTax(decimal.NewFromInt(1000), decimal.NewFromInt(19))
	assert.Equal(t, "1190", price.String())

	// Round-trip with PriceNeto at a clean rate
	neto := service.PriceNeto(decimal.NewFromInt(1190), decimal.NewFromInt(19), true)
	assert.Equal(t, "1190", service.PriceWithTax(neto, decimal.NewFromInt(19)).String())
}
