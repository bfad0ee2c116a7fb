package repository

import (
	"context"

	"nexopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository is the data access contract for products and bundle
// relations. Services depend on this interface, not on GORM, so unit tests
// can swap in in-memory stubs.
//
// The *Tx methods run inside an open transaction — callers must pass the tx
// handle. FindForUpdateTx takes a row lock: every stock read-modify-write
// goes through it so two concurrent sales of the last unit cannot both
// succeed.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	CreateTx(tx *gorm.DB, p *model.Product) error
	SaveTx(tx *gorm.DB, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*model.Product, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Product, error)
	FindPublicByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Product, error)
	ExistsByTenantAndSKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error)
	Save(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) error

	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, stock *decimal.Decimal) error
	FindBundleItemsTx(tx *gorm.DB, bundleID uuid.UUID) ([]model.BundleItem, error)

	FindBundleItems(ctx context.Context, bundleID uuid.UUID) ([]model.BundleItem, error)
	ReplaceBundleItemsTx(tx *gorm.DB, bundleID uuid.UUID, items []model.BundleItem) error
	FindBundlesUsingComponent(ctx context.Context, componentID uuid.UUID) ([]model.BundleItem, error)

	// Force-delete cascade, FK-safety order is the caller's responsibility.
	DeleteBundleItemsByBundleTx(tx *gorm.DB, bundleID uuid.UUID) error
	DeleteBundleItemsByComponentTx(tx *gorm.DB, componentID uuid.UUID) error
	HardDeleteTx(tx *gorm.DB, id uuid.UUID) error

	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Omit("Category", "Supplier", "BundleItems").Create(p).Error
}

func (r *productRepo) SaveTx(tx *gorm.DB, p *model.Product) error {
	return tx.Omit("Category", "Supplier", "BundleItems").Save(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Supplier").
		Preload("BundleItems.ComponentProduct").
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("BundleItems.ComponentProduct").
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&p).Error
	return &p, err
}

func (r *productRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("BundleItems.ComponentProduct").
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindPublicByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("BundleItems.ComponentProduct").
		Where("tenant_id = ? AND is_public = true AND is_active = true", tenantID).
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) ExistsByTenantAndSKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		Count(&count).Error
	return count > 0, err
}

func (r *productRepo) Save(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).Update("is_active", false).Error
}

func (r *productRepo) Activate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).Update("is_active", true).Error
}

// FindForUpdateTx loads the product row with a FOR UPDATE lock. No preloads:
// bundle relations are fetched separately so component rows get their own
// locks in a stable order.
func (r *productRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, stock *decimal.Decimal) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("stock_current", stock).Error
}

func (r *productRepo) FindBundleItemsTx(tx *gorm.DB, bundleID uuid.UUID) ([]model.BundleItem, error) {
	var items []model.BundleItem
	err := tx.Where("bundle_product_id = ?", bundleID).
		Order("component_product_id ASC").
		Find(&items).Error
	return items, err
}

func (r *productRepo) FindBundleItems(ctx context.Context, bundleID uuid.UUID) ([]model.BundleItem, error) {
	var items []model.BundleItem
	err := r.db.WithContext(ctx).
		Preload("ComponentProduct").
		Where("bundle_product_id = ?", bundleID).
		Order("component_product_id ASC").
		Find(&items).Error
	return items, err
}

func (r *productRepo) ReplaceBundleItemsTx(tx *gorm.DB, bundleID uuid.UUID, items []model.BundleItem) error {
	if err := tx.Where("bundle_product_id = ?", bundleID).Delete(&model.BundleItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *productRepo) FindBundlesUsingComponent(ctx context.Context, componentID uuid.UUID) ([]model.BundleItem, error) {
	var items []model.BundleItem
	err := r.db.WithContext(ctx).
		Where("component_product_id = ?", componentID).
		Find(&items).Error
	return items, err
}

func (r *productRepo) DeleteBundleItemsByBundleTx(tx *gorm.DB, bundleID uuid.UUID) error {
	return tx.Where("bundle_product_id = ?", bundleID).Delete(&model.BundleItem{}).Error
}

func (r *productRepo) DeleteBundleItemsByComponentTx(tx *gorm.DB, componentID uuid.UUID) error {
	return tx.Where("component_product_id = ?", componentID).Delete(&model.BundleItem{}).Error
}

func (r *productRepo) HardDeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Unscoped().Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
