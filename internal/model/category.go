package model

import (
	"time"

	"github.com/google/uuid"
)

// Category and Supplier are read-only references attached to products.
// Their CRUD lives outside this core; the mutation engine only checks
// tenant ownership before linking.

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time
}

type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	Phone     *string
	Email     *string
	CreatedAt time.Time
}
