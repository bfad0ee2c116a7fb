package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger action types. Closed set — reports and the admin frontend key off
// these exact strings.
const (
	ActionCreate             = "CREATE"
	ActionManualAdjust       = "MANUAL_ADJUST"
	ActionSale               = "SALE"
	ActionBundleSale         = "BUNDLE_SALE"
	ActionSaleEditReturn     = "SALE_EDIT_RETURN"
	ActionSaleEditOut        = "SALE_EDIT_OUT"
	ActionPriceOverride      = "PRICE_OVERRIDE"
	ActionWebOrderReturn     = "WEB_ORDER_RETURN"
	ActionWebOrderReactivate = "WEB_ORDER_REACTIVATE"
	ActionWebOrderEditReturn = "WEB_ORDER_EDIT_RETURN"
	ActionWebOrderEditOut    = "WEB_ORDER_EDIT_OUT"
)

// InventoryLog is one immutable audit record of a stock change. Rows are
// append-only: there is no update or delete path anywhere in the codebase.
// Product and user names are snapshotted so the history survives renames and
// hard deletes; product/user ids are plain columns, not foreign keys, for the
// same reason. UserID is nil for entries written by the expiration sweeper.
type InventoryLog struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index:idx_logs_tenant_date"`

	ProductID           uuid.UUID `gorm:"type:uuid;index"`
	ProductNameSnapshot string    `gorm:"not null"`

	UserID           *uuid.UUID `gorm:"type:uuid"`
	UserNameSnapshot string     `gorm:"not null"`

	ActionType     string          `gorm:"not null"`
	QuantityChange decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	OldStock       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	NewStock       decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Reason         string

	// Origin document — by convention at most one is set.
	SaleID     *uuid.UUID `gorm:"type:uuid;index"`
	WebOrderID *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"index:idx_logs_tenant_date"`
}

func (InventoryLog) TableName() string { return "inventory_logs" }
