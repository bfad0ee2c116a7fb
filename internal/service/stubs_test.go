package service_test

import (
	"context"
	"errors"
	"sort"
	"time"

	"nexopos/internal/model"
	"nexopos/internal/repository"
	"nexopos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// In-memory repositories. DB() returns nil so the services run their
// transaction bodies directly (no rollback — each test uses fresh stubs).

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	bundles  map[uuid.UUID][]model.BundleItem
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		bundles:  make(map[uuid.UUID][]model.BundleItem),
	}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	return r.CreateTx(nil, p)
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SaveTx(_ *gorm.DB, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*model.Product, error) {
	for _, p := range r.products {
		if p.TenantID == tenantID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubProductRepo) FindByTenant(_ context.Context, tenantID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindPublicByTenant(_ context.Context, tenantID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.TenantID == tenantID && p.IsActive && p.IsPublic {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) ExistsByTenantAndSKU(_ context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	_, err := r.FindBySKU(context.Background(), tenantID, sku)
	return err == nil, nil
}

func (r *stubProductRepo) Save(_ context.Context, p *model.Product) error {
	return r.SaveTx(nil, p)
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return errors.New("not found")
	}
	p.IsActive = false
	return nil
}

func (r *stubProductRepo) Activate(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return errors.New("not found")
	}
	p.IsActive = true
	return nil
}

func (r *stubProductRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, stock *decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return errors.New("not found")
	}
	p.StockCurrent = stock
	return nil
}

func (r *stubProductRepo) FindBundleItemsTx(_ *gorm.DB, bundleID uuid.UUID) ([]model.BundleItem, error) {
	items := append([]model.BundleItem(nil), r.bundles[bundleID]...)
	sort.Slice(items, func(i, j int) bool {
		return items[i].ComponentProductID.String() < items[j].ComponentProductID.String()
	})
	return items, nil
}

func (r *stubProductRepo) FindBundleItems(_ context.Context, bundleID uuid.UUID) ([]model.BundleItem, error) {
	return r.FindBundleItemsTx(nil, bundleID)
}

func (r *stubProductRepo) ReplaceBundleItemsTx(_ *gorm.DB, bundleID uuid.UUID, items []model.BundleItem) error {
	r.bundles[bundleID] = items
	return nil
}

func (r *stubProductRepo) FindBundlesUsingComponent(_ context.Context, componentID uuid.UUID) ([]model.BundleItem, error) {
	var out []model.BundleItem
	for _, items := range r.bundles {
		for _, item := range items {
			if item.ComponentProductID == componentID {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

func (r *stubProductRepo) DeleteBundleItemsByBundleTx(_ *gorm.DB, bundleID uuid.UUID) error {
	delete(r.bundles, bundleID)
	return nil
}

func (r *stubProductRepo) DeleteBundleItemsByComponentTx(_ *gorm.DB, componentID uuid.UUID) error {
	for id, items := range r.bundles {
		kept := items[:0]
		for _, item := range items {
			if item.ComponentProductID != componentID {
				kept = append(kept, item)
			}
		}
		r.bundles[id] = kept
	}
	return nil
}

func (r *stubProductRepo) HardDeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubLogRepo records every ledger entry for assertion.
type stubLogRepo struct {
	entries []model.InventoryLog
}

func (r *stubLogRepo) Create(_ context.Context, entry *model.InventoryLog) error {
	return r.CreateTx(nil, entry)
}

func (r *stubLogRepo) CreateTx(_ *gorm.DB, entry *model.InventoryLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubLogRepo) List(_ context.Context, tenantID uuid.UUID, _ repository.InventoryLogFilter) ([]model.InventoryLog, int64, error) {
	var out []model.InventoryLog
	for _, e := range r.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

// byAction filters recorded entries.
func (r *stubLogRepo) byAction(action string) []model.InventoryLog {
	var out []model.InventoryLog
	for _, e := range r.entries {
		if e.ActionType == action {
			out = append(out, e)
		}
	}
	return out
}

var _ repository.InventoryLogRepository = (*stubLogRepo)(nil)

type stubSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) SaveTx(_ *gorm.DB, s *model.Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (r *stubSaleRepo) List(_ context.Context, tenantID uuid.UUID, _ repository.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.TenantID == tenantID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) DeleteItemsBySaleTx(_ *gorm.DB, saleID uuid.UUID) error {
	if s, ok := r.sales[saleID]; ok {
		s.Items = nil
	}
	return nil
}

func (r *stubSaleRepo) InsertItemsTx(_ *gorm.DB, items []model.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	if s, ok := r.sales[items[0].SaleID]; ok {
		s.Items = append(s.Items, items...)
	}
	return nil
}

func (r *stubSaleRepo) DeleteItemsByProductTx(_ *gorm.DB, productID uuid.UUID) error {
	for _, s := range r.sales {
		kept := s.Items[:0]
		for _, item := range s.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		s.Items = kept
	}
	return nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

type stubWebOrderRepo struct {
	orders map[uuid.UUID]*model.WebOrder
}

func newStubWebOrderRepo() *stubWebOrderRepo {
	return &stubWebOrderRepo{orders: make(map[uuid.UUID]*model.WebOrder)}
}

func (r *stubWebOrderRepo) CreateTx(_ *gorm.DB, o *model.WebOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubWebOrderRepo) SaveTx(_ *gorm.DB, o *model.WebOrder) error {
	r.orders[o.ID] = o
	return nil
}

func (r *stubWebOrderRepo) FindByOrderNumber(_ context.Context, tenantID uuid.UUID, orderNumber string) (*model.WebOrder, error) {
	for _, o := range r.orders {
		if o.TenantID == tenantID && o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubWebOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.WebOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return o, nil
}

func (r *stubWebOrderRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.WebOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return o, nil
}

func (r *stubWebOrderRepo) ListByTenant(_ context.Context, tenantID uuid.UUID, status string) ([]model.WebOrder, error) {
	var out []model.WebOrder
	for _, o := range r.orders {
		if o.TenantID == tenantID && (status == "" || o.Status == status) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubWebOrderRepo) FindExpiredPending(_ context.Context, now time.Time) ([]model.WebOrder, error) {
	var out []model.WebOrder
	for _, o := range r.orders {
		if o.Status == model.WebOrderStatusPending && o.ExpiresAt != nil && o.ExpiresAt.Before(now) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubWebOrderRepo) DeleteItemsByOrderTx(_ *gorm.DB, orderID uuid.UUID) error {
	if o, ok := r.orders[orderID]; ok {
		o.Items = nil
	}
	return nil
}

func (r *stubWebOrderRepo) InsertItemsTx(_ *gorm.DB, items []model.WebOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	if o, ok := r.orders[items[0].WebOrderID]; ok {
		o.Items = append(o.Items, items...)
	}
	return nil
}

func (r *stubWebOrderRepo) DeleteItemsByProductTx(_ *gorm.DB, productID uuid.UUID) error {
	for _, o := range r.orders {
		kept := o.Items[:0]
		for _, item := range o.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		o.Items = kept
	}
	return nil
}

func (r *stubWebOrderRepo) DB() *gorm.DB { return nil }

var _ repository.WebOrderRepository = (*stubWebOrderRepo)(nil)

type stubShopConfigRepo struct {
	configs map[string]*model.ShopConfig // by slug
}

func newStubShopConfigRepo() *stubShopConfigRepo {
	return &stubShopConfigRepo{configs: make(map[string]*model.ShopConfig)}
}

func (r *stubShopConfigRepo) FindBySlug(_ context.Context, slug string) (*model.ShopConfig, error) {
	cfg, ok := r.configs[slug]
	if !ok {
		return nil, errors.New("not found")
	}
	return cfg, nil
}

func (r *stubShopConfigRepo) FindByTenant(_ context.Context, tenantID uuid.UUID) (*model.ShopConfig, error) {
	for _, cfg := range r.configs {
		if cfg.TenantID == tenantID {
			return cfg, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubShopConfigRepo) Save(_ context.Context, cfg *model.ShopConfig) error {
	r.configs[cfg.URLSlug] = cfg
	return nil
}

var _ repository.ShopConfigRepository = (*stubShopConfigRepo)(nil)

type stubCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (r *stubCategoryRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.categories {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// ── Seed helpers ──────────────────────────────────────────────────────────────

func seedProduct(repo *stubProductRepo, tenantID uuid.UUID, sku, name string, stock int64, priceFinal float64) *model.Product {
	s := decimal.NewFromInt(stock)
	p := &model.Product{
		ID:            uuid.New(),
		TenantID:      tenantID,
		SKU:           sku,
		Name:          name,
		PriceFinal:    decimal.NewFromFloat(priceFinal),
		TaxPercent:    decimal.NewFromInt(19),
		IsTaxIncluded: true,
		StockCurrent:  &s,
		StockMin:      decimal.NewFromInt(5),
		ProductType:   model.ProductTypeStandard,
		IsActive:      true,
		IsPublic:      true,
	}
	p.PriceNeto = service.PriceNeto(p.PriceFinal, p.TaxPercent, p.IsTaxIncluded)
	repo.products[p.ID] = p
	return p
}

// seedBundle creates a bundle product from (component, perBundleQty) pairs.
// ownStock < 0 leaves the bundle untracked (virtual).
func seedBundle(repo *stubProductRepo, tenantID uuid.UUID, sku, name string, ownStock int64, priceFinal float64, components map[*model.Product]int64) *model.Product {
	p := &model.Product{
		ID:            uuid.New(),
		TenantID:      tenantID,
		SKU:           sku,
		Name:          name,
		PriceFinal:    decimal.NewFromFloat(priceFinal),
		TaxPercent:    decimal.NewFromInt(19),
		IsTaxIncluded: true,
		StockMin:      decimal.NewFromInt(5),
		ProductType:   model.ProductTypeBundle,
		IsActive:      true,
		IsPublic:      true,
	}
	if ownStock >= 0 {
		s := decimal.NewFromInt(ownStock)
		p.StockCurrent = &s
	}
	p.PriceNeto = service.PriceNeto(p.PriceFinal, p.TaxPercent, p.IsTaxIncluded)
	repo.products[p.ID] = p

	var items []model.BundleItem
	for comp, qty := range components {
		items = append(items, model.BundleItem{
			ID:                 uuid.New(),
			BundleProductID:    p.ID,
			ComponentProductID: comp.ID,
			Quantity:           decimal.NewFromInt(qty),
		})
	}
	repo.bundles[p.ID] = items
	return p
}

func stockOf(p *model.Product) string {
	if p.StockCurrent == nil {
		return "untracked"
	}
	return p.StockCurrent.String()
}

func testActor(tenantID uuid.UUID) service.Actor {
	uid := uuid.New()
	return service.Actor{UserID: &uid, UserName: "Test Clerk", TenantID: tenantID}
}
