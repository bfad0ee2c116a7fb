package repository

import (
	"context"
	"time"

	"nexopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebOrderRepository interface {
	CreateTx(tx *gorm.DB, o *model.WebOrder) error
	SaveTx(tx *gorm.DB, o *model.WebOrder) error
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*model.WebOrder, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.WebOrder, error)

	// FindForUpdateTx locks the order row for the duration of tx. Status
	// decisions that move stock must be taken against this read, not an
	// earlier unlocked one.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.WebOrder, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, status string) ([]model.WebOrder, error)

	// FindExpiredPending feeds the expiration sweeper: PENDING orders whose
	// reservation deadline is already past.
	FindExpiredPending(ctx context.Context, now time.Time) ([]model.WebOrder, error)

	DeleteItemsByOrderTx(tx *gorm.DB, orderID uuid.UUID) error
	InsertItemsTx(tx *gorm.DB, items []model.WebOrderItem) error
	DeleteItemsByProductTx(tx *gorm.DB, productID uuid.UUID) error

	DB() *gorm.DB
}

type webOrderRepo struct{ db *gorm.DB }

func NewWebOrderRepository(db *gorm.DB) WebOrderRepository { return &webOrderRepo{db: db} }

func (r *webOrderRepo) CreateTx(tx *gorm.DB, o *model.WebOrder) error {
	return tx.Create(o).Error
}

func (r *webOrderRepo) SaveTx(tx *gorm.DB, o *model.WebOrder) error {
	return tx.Omit("Items").Save(o).Error
}

func (r *webOrderRepo) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*model.WebOrder, error) {
	var o model.WebOrder
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&o).Error
	return &o, err
}

func (r *webOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.WebOrder, error) {
	var o model.WebOrder
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		First(&o, "id = ?", id).Error
	return &o, err
}

func (r *webOrderRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.WebOrder, error) {
	var o model.WebOrder
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&o, "id = ?", id).Error
	return &o, err
}

func (r *webOrderRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID, status string) ([]model.WebOrder, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []model.WebOrder
	err := q.Preload("Items").Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *webOrderRepo) FindExpiredPending(ctx context.Context, now time.Time) ([]model.WebOrder, error) {
	var orders []model.WebOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", model.WebOrderStatusPending, now).
		Find(&orders).Error
	return orders, err
}

func (r *webOrderRepo) DeleteItemsByOrderTx(tx *gorm.DB, orderID uuid.UUID) error {
	return tx.Where("web_order_id = ?", orderID).Delete(&model.WebOrderItem{}).Error
}

func (r *webOrderRepo) InsertItemsTx(tx *gorm.DB, items []model.WebOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *webOrderRepo) DeleteItemsByProductTx(tx *gorm.DB, productID uuid.UUID) error {
	return tx.Where("product_id = ?", productID).Delete(&model.WebOrderItem{}).Error
}

func (r *webOrderRepo) DB() *gorm.DB { return r.db }
