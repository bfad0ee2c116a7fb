package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Web order statuses. The stock-holding classification below drives every
// status transition's stock effect.
const (
	WebOrderStatusPending   = "PENDING"
	WebOrderStatusPaid      = "PAID"
	WebOrderStatusConfirmed = "CONFIRMED"
	WebOrderStatusPreparing = "PREPARING"
	WebOrderStatusShipped   = "SHIPPED"
	WebOrderStatusDelivered = "DELIVERED"
	WebOrderStatusCancelled = "CANCELLED"
	WebOrderStatusExpired   = "EXPIRED"
)

var webOrderStatuses = map[string]bool{
	WebOrderStatusPending:   true,
	WebOrderStatusPaid:      true,
	WebOrderStatusConfirmed: true,
	WebOrderStatusPreparing: true,
	WebOrderStatusShipped:   true,
	WebOrderStatusDelivered: true,
	WebOrderStatusCancelled: true,
	WebOrderStatusExpired:   true,
}

// IsWebOrderStatus reports whether s is a known status.
func IsWebOrderStatus(s string) bool { return webOrderStatuses[s] }

// IsStockHeld reports whether orders in status s hold reserved stock.
// CANCELLED and EXPIRED are the only statuses that do not.
func IsStockHeld(s string) bool {
	return s != WebOrderStatusCancelled && s != WebOrderStatusExpired && webOrderStatuses[s]
}

// WebOrder is a storefront order. Stock is reserved at placement (PENDING),
// not at payment, and released when the order expires or is cancelled.
type WebOrder struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderNumber string    `gorm:"not null;index"`

	CustomerName  string `gorm:"not null"`
	CustomerPhone string `gorm:"not null"`
	CustomerEmail *string
	ShippingAddress *string
	ShippingNotes   *string

	Status    string     `gorm:"not null;index:idx_web_orders_status_expiry"`
	ExpiresAt *time.Time `gorm:"index:idx_web_orders_status_expiry"`

	WasEdited      bool `gorm:"not null;default:false"`
	EditedByUserID *uuid.UUID `gorm:"type:uuid"`
	EditReason     *string

	TotalItems   decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	FinalTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	PaymentMethod  *string
	ShippingMethod *string

	Items []WebOrderItem `gorm:"foreignKey:WebOrderID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WebOrderItem is one order line with the same snapshot discipline as
// SaleItem.
type WebOrderItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WebOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`

	Quantity decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	UnitPriceAtMoment   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPriceAtMoment   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ProductNameSnapshot string          `gorm:"not null"`
	SKUSnapshot         string          `gorm:"not null"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
