package service_test

import (
	"context"
	"strings"
	"testing"

	"nexopos/internal/dto"
	"nexopos/internal/model"
	"nexopos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSaleSvc() (service.SaleService, *stubSaleRepo, *stubProductRepo, *stubLogRepo) {
	products := newStubProductRepo()
	sales := newStubSaleRepo()
	logs := &stubLogRepo{}
	engine := service.NewStockEngine(products, logs)
	svc := service.NewSaleService(sales, products, newStubShopConfigRepo(), engine, "/tmp/receipts")
	return svc, sales, products, logs
}

func TestProcessSale_DecrementsAndLogs(t *testing.T) {
	svc, sales, products, logs := buildSaleSvc()
	tenant := uuid.New()
	actor := testActor(tenant)

	p := seedProduct(products, tenant, "COLA-15", "Cola 1.5L", 10, 1500)

	resp, err := svc.ProcessSale(context.Background(), actor, dto.ProcessSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(4)},
		},
		TotalAmount: decimal.NewFromInt(6000),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.SaleNumber, "TCK-"))
	assert.Equal(t, model.SaleStatusCompleted, resp.Status)
	// Header arithmetic: subtotal = total / 1.19 rounded to whole units
	assert.Equal(t, "5042", resp.SubtotalAmount.String())
	assert.Equal(t, "958", resp.TotalTax.String())

	assert.Equal(t, "6", stockOf(p))

	saleEntries := logs.byAction(model.ActionSale)
	require.Len(t, saleEntries, 1)
	assert.Equal(t, "-4", saleEntries[0].QuantityChange.String())
	assert.Equal(t, "10", saleEntries[0].OldStock.String())
	assert.Equal(t, "6", saleEntries[0].NewStock.String())
	require.NotNil(t, saleEntries[0].SaleID)

	stored, err := sales.FindByID(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	// Line snapshots frozen at sale time
	item := stored.Items[0]
	assert.Equal(t, "1500", item.UnitPrice.String())
	assert.Equal(t, "1260.5042", item.NetPriceAtSale.String())
	assert.Equal(t, "239.4958", item.UnitTax.String())
}

func TestProcessSale_PriceOverrideMarker(t *testing.T) {
	svc, _, products, logs := buildSaleSvc()
	tenant := uuid.New()

	p := seedProduct(products, tenant, "COLA-15", "Cola 1.5L", 10, 1500)
	custom := decimal.NewFromInt(1200)

	_, err := svc.ProcessSale(context.Background(), testActor(tenant), dto.ProcessSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(4), CustomPrice: &custom},
		},
		TotalAmount: decimal.NewFromInt(4800),
	})
	require.NoError(t, err)

	markers := logs.byAction(model.ActionPriceOverride)
	require.Len(t, markers, 1)
	assert.True(t, markers[0].QuantityChange.IsZero())
	assert.True(t, markers[0].OldStock.Equal(markers[0].NewStock))
	assert.Contains(t, markers[0].Reason, "1500")
	assert.Contains(t, markers[0].Reason, "1200")
	// The snapshot is taken after the line's decrement.
	assert.Equal(t, "6", markers[0].OldStock.String())
}

func TestProcessSale_PriceOverrideMarkerAtCatalogPrice(t *testing.T) {
	svc, _, products, logs := buildSaleSvc()
	tenant := uuid.New()

	p := seedProduct(products, tenant, "COLA-15", "Cola 1.5L", 10, 1500)
	custom := decimal.NewFromInt(1500)

	// An explicit custom price is recorded even when it matches the catalog.
	_, err := svc.ProcessSale(context.Background(), testActor(tenant), dto.ProcessSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(4), CustomPrice: &custom},
		},
		TotalAmount: decimal.NewFromInt(6000),
	})
	require.NoError(t, err)

	markers := logs.byAction(model.ActionPriceOverride)
	require.Len(t, markers, 1)
	assert.True(t, markers[0].QuantityChange.IsZero())
	assert.Equal(t, "6", markers[0].OldStock.String())
	assert.Equal(t, "6", markers[0].NewStock.String())
}

func TestProcessSale_BundleLine(t *testing.T) {
	svc, _, products, logs := buildSaleSvc()
	tenant := uuid.New()

	comp := seedProduct(products, tenant, "BEER-500", "Craft Beer 500ml", 20, 1500)
	bundle := seedBundle(products, tenant, "BEER-6P", "Beer Six Pack", -1, 8000,
		map[*model.Product]int64{comp: 6})

	_, err := svc.ProcessSale(context.Background(), testActor(tenant), dto.ProcessSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: bundle.ID.String(), Quantity: decimal.NewFromInt(2)},
		},
		TotalAmount: decimal.NewFromInt(16000),
	})
	require.NoError(t, err)

	// 2 packs × 6 bottles routed to the component; the virtual bundle keeps
	// no quantity of its own
	assert.Equal(t, "8", stockOf(comp))
	assert.Equal(t, "untracked", stockOf(bundle))

	require.Len(t, logs.byAction(model.ActionBundleSale), 1)
	assert.Empty(t, logs.byAction(model.ActionSale))
}

func TestProcessSale_InsufficientStockAborts(t *testing.T) {
	svc, _, products, _ := buildSaleSvc()
	tenant := uuid.New()

	p := seedProduct(products, tenant, "WINE-750", "Red Wine 750ml", 2, 5000)

	_, err := svc.ProcessSale(context.Background(), testActor(tenant), dto.ProcessSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(5)},
		},
		TotalAmount: decimal.NewFromInt(25000),
	})

	var insufficient *service.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "2", stockOf(p))
}

func TestProcessSale_InactiveProductRejected(t *testing.T) {
	svc, _, products, _ := buildSaleSvc()
	tenant := uuid.New()

	p := seedProduct(products, tenant, "OLD-SKU", "Discontinued Item", 10, 100)
	p.IsActive = false

	_, err := svc.ProcessSale(context.Background(), testActor(tenant), dto.ProcessSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(1)},
		},
		TotalAmount: decimal.NewFromInt(100),
	})

	var invalid *service.InvalidReferenceError
	require.ErrorAs(t, err, &invalid)
}

func TestUpdateSaleItems_ReverseThenReapply(t *testing.T) {
	svc, _, products, logs := buildSaleSvc()
	tenant := uuid.New()
	actor := testActor(tenant)

	p := seedProduct(products, tenant, "COLA-15", "Cola 1.5L", 10, 1500)

	resp, err := svc.ProcessSale(context.Background(), actor, dto.ProcessSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(4)},
		},
		TotalAmount: decimal.NewFromInt(6000),
	})
	require.NoError(t, err)
	assert.Equal(t, "6", stockOf(p))

	// Shrink the sale to 2 units
	notes := "customer changed their mind"
	edited, err := svc.UpdateSaleItems(context.Background(), actor, uuid.MustParse(resp.ID), dto.UpdateSaleItemsRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(2)},
		},
		Notes: &notes,
	})
	require.NoError(t, err)

	// 6 + 4 returned − 2 re-taken = 8
	assert.Equal(t, "8", stockOf(p))
	assert.True(t, edited.WasEdited)
	require.NotNil(t, edited.EditReason)
	assert.Equal(t, notes, *edited.EditReason)

	returns := logs.byAction(model.ActionSaleEditReturn)
	require.Len(t, returns, 1)
	assert.Equal(t, "4", returns[0].QuantityChange.String())
	outs := logs.byAction(model.ActionSaleEditOut)
	require.Len(t, outs, 1)
	assert.Equal(t, "-2", outs[0].QuantityChange.String())
}

func TestUpdateSaleItems_IdenticalLinesNetToZero(t *testing.T) {
	svc, _, products, logs := buildSaleSvc()
	tenant := uuid.New()
	actor := testActor(tenant)

	p := seedProduct(products, tenant, "COLA-15", "Cola 1.5L", 10, 1500)

	resp, err := svc.ProcessSale(context.Background(), actor, dto.ProcessSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(3)},
		},
		TotalAmount: decimal.NewFromInt(4500),
	})
	require.NoError(t, err)

	_, err = svc.UpdateSaleItems(context.Background(), actor, uuid.MustParse(resp.ID), dto.UpdateSaleItemsRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(3)},
		},
	})
	require.NoError(t, err)

	// Stock net-zero, but both halves of the edit are on the ledger
	assert.Equal(t, "7", stockOf(p))
	assert.Len(t, logs.byAction(model.ActionSaleEditReturn), 1)
	assert.Len(t, logs.byAction(model.ActionSaleEditOut), 1)
}

func TestGetSale_TenantIsolation(t *testing.T) {
	svc, _, products, _ := buildSaleSvc()
	tenant := uuid.New()
	actor := testActor(tenant)

	p := seedProduct(products, tenant, "COLA-15", "Cola 1.5L", 10, 1500)
	resp, err := svc.ProcessSale(context.Background(), actor, dto.ProcessSaleRequest{
		Items:       []dto.SaleItemRequest{{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(1)}},
		TotalAmount: decimal.NewFromInt(1500),
	})
	require.NoError(t, err)

	_, err = svc.GetSale(context.Background(), testActor(uuid.New()), uuid.MustParse(resp.ID))
	var mismatch *service.TenantMismatchError
	require.ErrorAs(t, err, &mismatch)
}
