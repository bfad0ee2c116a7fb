package service

import (
	"context"

	"nexopos/internal/dto"
	"nexopos/internal/repository"
)

// CatalogService serves the reference lists the product form needs.
// Categories and suppliers are managed elsewhere; here they are read-only.
type CatalogService interface {
	ListCategories(ctx context.Context, actor Actor) ([]dto.CategoryResponse, error)
	ListSuppliers(ctx context.Context, actor Actor) ([]dto.SupplierResponse, error)
}

type catalogService struct {
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
}

func NewCatalogService(categories repository.CategoryRepository, suppliers repository.SupplierRepository) CatalogService {
	return &catalogService{categories: categories, suppliers: suppliers}
}

func (s *catalogService) ListCategories(ctx context.Context, actor Actor) ([]dto.CategoryResponse, error) {
	cats, err := s.categories.ListByTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, dto.CategoryResponse{ID: c.ID.String(), Name: c.Name})
	}
	return out, nil
}

func (s *catalogService) ListSuppliers(ctx context.Context, actor Actor) ([]dto.SupplierResponse, error) {
	sups, err := s.suppliers.ListByTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(sups))
	for _, sup := range sups {
		out = append(out, dto.SupplierResponse{
			ID:    sup.ID.String(),
			Name:  sup.Name,
			Phone: sup.Phone,
			Email: sup.Email,
		})
	}
	return out, nil
}
