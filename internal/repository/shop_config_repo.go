package repository

import (
	"context"

	"nexopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopConfigRepository interface {
	FindBySlug(ctx context.Context, slug string) (*model.ShopConfig, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*model.ShopConfig, error)
	Save(ctx context.Context, cfg *model.ShopConfig) error
}

type shopConfigRepo struct{ db *gorm.DB }

func NewShopConfigRepository(db *gorm.DB) ShopConfigRepository { return &shopConfigRepo{db: db} }

func (r *shopConfigRepo) FindBySlug(ctx context.Context, slug string) (*model.ShopConfig, error) {
	var cfg model.ShopConfig
	err := r.db.WithContext(ctx).Where("url_slug = ?", slug).First(&cfg).Error
	return &cfg, err
}

func (r *shopConfigRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*model.ShopConfig, error) {
	var cfg model.ShopConfig
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&cfg).Error
	return &cfg, err
}

func (r *shopConfigRepo) Save(ctx context.Context, cfg *model.ShopConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}
