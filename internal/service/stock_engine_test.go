package service_test

import (
	"context"
	"testing"

	"nexopos/internal/model"
	"nexopos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecrement_StandardProduct(t *testing.T) {
	products := newStubProductRepo()
	logs := &stubLogRepo{}
	engine := service.NewStockEngine(products, logs)
	tenant := uuid.New()
	actor := testActor(tenant)

	p := seedProduct(products, tenant, "COLA-15", "Cola 1.5L", 10, 1500)

	err := engine.Decrement(nil, actor, p.ID, decimal.NewFromInt(4),
		model.ActionSale, model.ActionBundleSale, "Sale TCK-1", service.LedgerRef{})
	require.NoError(t, err)

	assert.Equal(t, "6", stockOf(p))
	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, model.ActionSale, entry.ActionType)
	assert.Equal(t, "-4", entry.QuantityChange.String())
	assert.Equal(t, "10", entry.OldStock.String())
	assert.Equal(t, "6", entry.NewStock.String())
}

func TestDecrement_InsufficientStock(t *testing.T) {
	products := newStubProductRepo()
	logs := &stubLogRepo{}
	engine := service.NewStockEngine(products, logs)
	tenant := uuid.New()

	p := seedProduct(products, tenant, "WINE-750", "Red Wine 750ml", 2, 5000)

	err := engine.Decrement(nil, testActor(tenant), p.ID, decimal.NewFromInt(5),
		model.ActionSale, model.ActionBundleSale, "Sale TCK-2", service.LedgerRef{})

	var insufficient *service.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Red Wine 750ml", insufficient.Product)
	assert.Equal(t, "5", insufficient.Requested.String())
	assert.Equal(t, "2", insufficient.Available.String())

	// Nothing moved, nothing logged
	assert.Equal(t, "2", stockOf(p))
	assert.Empty(t, logs.entries)
}

func TestReturn_NeverFailsOnAvailability(t *testing.T) {
	products := newStubProductRepo()
	logs := &stubLogRepo{}
	engine := service.NewStockEngine(products, logs)
	tenant := uuid.New()

	p := seedProduct(products, tenant, "NUTS-100", "Mixed Nuts 100g", 0, 800)

	err := engine.Return(nil, testActor(tenant), p.ID, decimal.NewFromInt(3),
		model.ActionWebOrderReturn, model.ActionWebOrderReturn, "Web order WEB-1 cancelled: stock returned", service.LedgerRef{})
	require.NoError(t, err)
	assert.Equal(t, "3", stockOf(p))
}

func TestEffectiveStock_BundleDerivation(t *testing.T) {
	products := newStubProductRepo()
	logs := &stubLogRepo{}
	engine := service.NewStockEngine(products, logs)
	tenant := uuid.New()

	compA := seedProduct(products, tenant, "GIN-700", "Gin 700ml", 10, 9000)
	compB := seedProduct(products, tenant, "TONIC-200", "Tonic Water 200ml", 7, 600)
	bundle := seedBundle(products, tenant, "GT-KIT", "Gin Tonic Kit", -1, 12000,
		map[*model.Product]int64{compA: 2, compB: 1})

	// min(floor(10/2), floor(7/1)) = 5
	available, err := engine.EffectiveStock(context.Background(), bundle)
	require.NoError(t, err)
	assert.Equal(t, "5", available.String())
}

func TestEffectiveStock_TrackedCeilingClips(t *testing.T) {
	products := newStubProductRepo()
	engine := service.NewStockEngine(products, &stubLogRepo{})
	tenant := uuid.New()

	comp := seedProduct(products, tenant, "BEER-500", "Craft Beer 500ml", 60, 1500)
	// Components allow 10 packs, but only 3 boxes were assembled
	bundle := seedBundle(products, tenant, "BEER-6P", "Beer Six Pack", 3, 8000,
		map[*model.Product]int64{comp: 6})

	available, err := engine.EffectiveStock(context.Background(), bundle)
	require.NoError(t, err)
	assert.Equal(t, "3", available.String())
}

func TestDecrement_BundleRoutesToComponents(t *testing.T) {
	products := newStubProductRepo()
	logs := &stubLogRepo{}
	engine := service.NewStockEngine(products, logs)
	tenant := uuid.New()
	actor := testActor(tenant)

	comp := seedProduct(products, tenant, "BEER-500", "Craft Beer 500ml", 20, 1500)
	bundle := seedBundle(products, tenant, "BEER-6P", "Beer Six Pack", 3, 8000,
		map[*model.Product]int64{comp: 6})

	err := engine.Decrement(nil, actor, bundle.ID, decimal.NewFromInt(2),
		model.ActionSale, model.ActionBundleSale, "Sale TCK-3", service.LedgerRef{})
	require.NoError(t, err)

	// Component loses 2×6, the tracked bundle ceiling loses 2
	assert.Equal(t, "8", stockOf(comp))
	assert.Equal(t, "1", stockOf(bundle))

	entries := logs.byAction(model.ActionBundleSale)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.True(t, e.OldStock.Add(e.QuantityChange).Equal(e.NewStock),
			"ledger entry must conserve stock")
	}
}

func TestDecrement_BundleFailsOnComponentDeficit(t *testing.T) {
	products := newStubProductRepo()
	logs := &stubLogRepo{}
	engine := service.NewStockEngine(products, logs)
	tenant := uuid.New()

	comp := seedProduct(products, tenant, "BEER-500", "Craft Beer 500ml", 5, 1500)
	bundle := seedBundle(products, tenant, "BEER-6P", "Beer Six Pack", -1, 8000,
		map[*model.Product]int64{comp: 6})

	err := engine.Decrement(nil, testActor(tenant), bundle.ID, decimal.NewFromInt(1),
		model.ActionSale, model.ActionBundleSale, "Sale TCK-4", service.LedgerRef{})

	var insufficient *service.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Craft Beer 500ml", insufficient.Product)
}

func TestAppendMarker_ZeroQuantityEntry(t *testing.T) {
	products := newStubProductRepo()
	logs := &stubLogRepo{}
	engine := service.NewStockEngine(products, logs)
	tenant := uuid.New()
	actor := testActor(tenant)

	p := seedProduct(products, tenant, "COLA-15", "Cola 1.5L", 12, 1500)

	require.NoError(t, engine.Decrement(nil, actor, p.ID, decimal.NewFromInt(2),
		model.ActionSale, model.ActionBundleSale, "Sale TCK-5", service.LedgerRef{}))

	err := engine.AppendMarker(nil, actor, p.ID, model.ActionPriceOverride,
		"Price override on Cola 1.5L: 1500 → 1200 (Sale TCK-5)", service.LedgerRef{})
	require.NoError(t, err)

	markers := logs.byAction(model.ActionPriceOverride)
	require.Len(t, markers, 1)
	entry := markers[0]
	assert.True(t, entry.QuantityChange.IsZero())
	// The marker snapshots the stock after the movement it accompanies.
	assert.Equal(t, "10", entry.OldStock.String())
	assert.Equal(t, "10", entry.NewStock.String())
	assert.Equal(t, "10", stockOf(p))
}

func TestAppendEntry_RefusesNonConservingArithmetic(t *testing.T) {
	products := newStubProductRepo()
	logs := &stubLogRepo{}
	engine := service.NewStockEngine(products, logs)
	tenant := uuid.New()

	p := seedProduct(products, tenant, "GIN-700", "Gin 700ml", 10, 9000)

	// 10 + (-4) != 5: the entry must be refused before anything persists.
	err := engine.AppendEntry(nil, testActor(tenant), p, model.ActionManualAdjust,
		decimal.NewFromInt(-4), decimal.NewFromInt(10), decimal.NewFromInt(5),
		"Stock adjustment", service.LedgerRef{})

	var violation *service.InvariantViolationError
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Msg, "does not conserve stock")
	assert.Empty(t, logs.entries)
}

func TestDecrement_BundleWithoutComponentsRefused(t *testing.T) {
	products := newStubProductRepo()
	logs := &stubLogRepo{}
	engine := service.NewStockEngine(products, logs)
	tenant := uuid.New()

	// A bundle whose relations were removed out from under it must not
	// silently decrement nothing.
	bundle := seedBundle(products, tenant, "GT-KIT", "Gin Tonic Kit", -1, 12000,
		map[*model.Product]int64{})

	err := engine.Decrement(nil, testActor(tenant), bundle.ID, decimal.NewFromInt(1),
		model.ActionSale, model.ActionBundleSale, "Sale TCK-6", service.LedgerRef{})

	var violation *service.InvariantViolationError
	require.ErrorAs(t, err, &violation)
	assert.Empty(t, logs.entries)
}
