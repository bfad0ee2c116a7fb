package service

import (
	"context"
	"encoding/json"
	"time"

	"nexopos/internal/dto"
	"nexopos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const shopCacheTTL = 5 * time.Minute

// StorefrontService serves the public, unauthenticated side of a shop.
// Everything here is read-only except order placement, which lives on
// WebOrderService.
type StorefrontService interface {
	GetShop(ctx context.Context, slug string) (*dto.PublicShopResponse, error)
	ListPublicProducts(ctx context.Context, slug string) ([]dto.PublicProductResponse, error)
}

type storefrontService struct {
	shopConfigs repository.ShopConfigRepository
	products    repository.ProductRepository
	engine      *StockEngine
	rdb         *redis.Client
}

func NewStorefrontService(
	shopConfigs repository.ShopConfigRepository,
	products repository.ProductRepository,
	engine *StockEngine,
	rdb *redis.Client,
) StorefrontService {
	return &storefrontService{shopConfigs: shopConfigs, products: products, engine: engine, rdb: rdb}
}

// GetShop resolves a shop by slug. The response is cached in Redis: the slug
// page is the hottest unauthenticated read and the config rarely changes.
// Cache failures degrade to a database read.
func (s *storefrontService) GetShop(ctx context.Context, slug string) (*dto.PublicShopResponse, error) {
	cacheKey := "shop:" + slug
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.PublicShopResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	cfg, err := s.shopConfigs.FindBySlug(ctx, slug)
	if err != nil || !cfg.IsActive {
		return nil, invalidRef("shop %q not found", slug)
	}

	resp := &dto.PublicShopResponse{
		ShopName:     cfg.ShopName,
		URLSlug:      cfg.URLSlug,
		LogoURL:      cfg.LogoURL,
		BannerURL:    cfg.BannerURL,
		PrimaryColor: cfg.PrimaryColor,
		ContactPhone: cfg.ContactPhone,
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, shopCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("slug", slug).Msg("storefront: shop cache write failed")
			}
		}
	}
	return resp, nil
}

// ListPublicProducts returns everything publishable for the shop page, with
// effective stock (bundles derived) so sold-out products can be greyed out
// before the customer tries to order.
func (s *storefrontService) ListPublicProducts(ctx context.Context, slug string) ([]dto.PublicProductResponse, error) {
	cfg, err := s.shopConfigs.FindBySlug(ctx, slug)
	if err != nil || !cfg.IsActive {
		return nil, invalidRef("shop %q not found", slug)
	}

	products, err := s.products.FindPublicByTenant(ctx, cfg.TenantID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PublicProductResponse, 0, len(products))
	for i := range products {
		p := &products[i]
		effective, err := s.engine.EffectiveStock(ctx, p)
		if err != nil {
			return nil, err
		}
		resp := dto.PublicProductResponse{
			ID:           p.ID.String(),
			SKU:          p.SKU,
			Name:         p.Name,
			Description:  p.DescriptionWeb,
			ImageURL:     p.ImageURL,
			Price:        publicUnitPrice(p),
			StockCurrent: effective,
			LowStock:     effective.LessThanOrEqual(p.StockMin),
		}
		if p.Category != nil {
			resp.CategoryName = &p.Category.Name
		}
		out = append(out, resp)
	}
	return out, nil
}
