package model

import (
	"time"

	"github.com/google/uuid"
)

// ShopConfig is the per-tenant storefront configuration. The URL slug is the
// public identity of the shop; ReservationMinutes bounds how long a PENDING
// web order may hold stock before the sweeper reclaims it.
type ShopConfig struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	URLSlug  string    `gorm:"uniqueIndex;not null"`
	ShopName string    `gorm:"not null"`

	LogoURL      *string
	BannerURL    *string
	PrimaryColor *string
	ContactPhone *string

	ReservationMinutes *int `gorm:"default:60"`

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ShopConfig) TableName() string { return "shop_configs" }
