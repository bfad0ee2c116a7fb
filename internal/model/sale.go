package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
)

// Sale is a point-of-sale ticket. Items are owned exclusively by the sale:
// replacing the line list and reversing its stock effect happen inside one
// transaction (see service.SaleService).
type Sale struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	SaleNumber string    `gorm:"uniqueIndex;not null"`

	SubtotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalTax       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Status string `gorm:"not null;default:'COMPLETED'"`

	WasEdited      bool `gorm:"not null;default:false"`
	EditedByUserID *uuid.UUID `gorm:"type:uuid"`
	EditReason     *string

	Items []SaleItem `gorm:"foreignKey:SaleID"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// SaleItem is one ticket line. Price, cost and tax are frozen at write time —
// later catalog changes never rewrite sold lines.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`

	Quantity decimal.Decimal `gorm:"type:decimal(12,3);not null"` // decimal: weighed goods

	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitTax         decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CostPriceAtSale decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	NetPriceAtSale  decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	TaxAmountAtSale decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
