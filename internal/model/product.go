package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product type discriminator. A BUNDLE is sold as a unit but its availability
// is derived from component stock (see BundleItem).
const (
	ProductTypeStandard = "STANDARD"
	ProductTypeBundle   = "BUNDLE"
)

// Product represents a sellable item, scoped to a tenant.
// StockCurrent is nullable on purpose: for STANDARD products NULL is read as
// zero; for BUNDLE products NULL means "virtual" — no tracked allocation of
// its own, availability comes from components alone. Use Stock()/SetStock()
// instead of touching the pointer.
type Product struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_tenant_sku"`
	SKU      string    `gorm:"not null;uniqueIndex:idx_tenant_sku"`
	Name     string    `gorm:"index;not null"`

	Description *string

	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceFinal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PriceNeto     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	IsTaxIncluded bool            `gorm:"not null;default:true"`
	TaxPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:19.0"`

	StockCurrent *decimal.Decimal `gorm:"type:decimal(12,3)"`
	StockMin     decimal.Decimal  `gorm:"type:decimal(12,3);not null;default:5"`

	MeasurementUnit string `gorm:"not null;default:'UNIT'"`
	ProductType     string `gorm:"not null;default:'STANDARD'"`

	CategoryID *uuid.UUID `gorm:"type:uuid;index"`
	SupplierID *uuid.UUID `gorm:"type:uuid;index"`

	// Storefront fields
	IsPublic       bool `gorm:"not null;default:false"`
	PublicPrice    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ImageURL       *string
	DescriptionWeb *string

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Category    *Category    `gorm:"foreignKey:CategoryID"`
	Supplier    *Supplier    `gorm:"foreignKey:SupplierID"`
	BundleItems []BundleItem `gorm:"foreignKey:BundleProductID"`
}

// StockLevel is the tagged representation of a product's own tracked
// quantity. Untracked (Tracked=false) is only meaningful for bundles.
type StockLevel struct {
	Tracked bool
	Qty     decimal.Decimal
}

func TrackedStock(q decimal.Decimal) StockLevel { return StockLevel{Tracked: true, Qty: q} }
func UntrackedStock() StockLevel                { return StockLevel{} }

// Stock returns the product's own stock as a StockLevel. STANDARD products
// never report Untracked: a missing value is normalized to zero.
func (p *Product) Stock() StockLevel {
	if p.StockCurrent == nil {
		if p.ProductType == ProductTypeBundle {
			return UntrackedStock()
		}
		return TrackedStock(decimal.Zero)
	}
	return TrackedStock(*p.StockCurrent)
}

// SetStock writes a StockLevel back to the nullable column.
func (p *Product) SetStock(s StockLevel) {
	if !s.Tracked {
		p.StockCurrent = nil
		return
	}
	q := s.Qty
	p.StockCurrent = &q
}

// StockOrZero normalizes NULL to zero, the convention used by ledger entries.
func (p *Product) StockOrZero() decimal.Decimal {
	if p.StockCurrent == nil {
		return decimal.Zero
	}
	return *p.StockCurrent
}

// BundleItem links a BUNDLE product to one of its components.
// Quantity is how many component units one bundle consumes.
type BundleItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BundleProductID    uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_bundle_component;not null"`
	ComponentProductID uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_bundle_component;not null"`
	Quantity           decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	ComponentProduct *Product `gorm:"foreignKey:ComponentProductID"`
}
