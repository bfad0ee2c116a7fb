package repository

import (
	"context"
	"fmt"
	"time"

	"nexopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryLogFilter narrows the ledger query surface consumed by reports.
type InventoryLogFilter struct {
	Start      time.Time
	End        time.Time
	CategoryID *uuid.UUID
	Page       int
	Limit      int
}

// InventoryLogRepository is append-only by construction: there is no update
// or delete method, corrections are new entries.
type InventoryLogRepository interface {
	Create(ctx context.Context, entry *model.InventoryLog) error
	CreateTx(tx *gorm.DB, entry *model.InventoryLog) error
	List(ctx context.Context, tenantID uuid.UUID, filter InventoryLogFilter) ([]model.InventoryLog, int64, error)
}

type inventoryLogRepo struct{ db *gorm.DB }

func NewInventoryLogRepository(db *gorm.DB) InventoryLogRepository {
	return &inventoryLogRepo{db: db}
}

// validateEntry asserts the ledger conservation invariant before anything is
// persisted. A failure here means a programming error upstream, never user
// input.
func validateEntry(entry *model.InventoryLog) error {
	if expected := entry.OldStock.Add(entry.QuantityChange); !expected.Equal(entry.NewStock) {
		return fmt.Errorf("inventory log for product %s: new stock %s != old stock %s + change %s",
			entry.ProductID, entry.NewStock, entry.OldStock, entry.QuantityChange)
	}
	return nil
}

func (r *inventoryLogRepo) Create(ctx context.Context, entry *model.InventoryLog) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *inventoryLogRepo) CreateTx(tx *gorm.DB, entry *model.InventoryLog) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	return tx.Create(entry).Error
}

func (r *inventoryLogRepo) List(ctx context.Context, tenantID uuid.UUID, filter InventoryLogFilter) ([]model.InventoryLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryLog{}).
		Where("inventory_logs.tenant_id = ?", tenantID)
	if !filter.Start.IsZero() {
		q = q.Where("inventory_logs.created_at >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		q = q.Where("inventory_logs.created_at < ?", filter.End)
	}

	if filter.CategoryID != nil {
		q = q.Joins("JOIN products ON products.id = inventory_logs.product_id").
			Where("products.category_id = ?", *filter.CategoryID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("inventory_logs.created_at DESC")

	// Limit < 0 disables pagination (CSV export path).
	if filter.Limit >= 0 {
		page := filter.Page
		limit := filter.Limit
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 500 {
			limit = 100
		}
		q = q.Offset((page - 1) * limit).Limit(limit)
	}

	var logs []model.InventoryLog
	err := q.Find(&logs).Error
	return logs, total, err
}
