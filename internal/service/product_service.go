package service

import (
	"context"

	"nexopos/internal/dto"
	"nexopos/internal/model"
	"nexopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, actor Actor) ([]dto.ProductResponse, error)
	ListLowStock(ctx context.Context, actor Actor) ([]dto.ProductResponse, error)
	AdjustStock(ctx context.Context, actor Actor, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error
	Activate(ctx context.Context, actor Actor, id uuid.UUID) error
	ForceDelete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type productService struct {
	repo       repository.ProductRepository
	sales      repository.SaleRepository
	webOrders  repository.WebOrderRepository
	categories repository.CategoryRepository
	engine     *StockEngine
}

func NewProductService(
	repo repository.ProductRepository,
	sales repository.SaleRepository,
	webOrders repository.WebOrderRepository,
	categories repository.CategoryRepository,
	engine *StockEngine,
) ProductService {
	return &productService{repo: repo, sales: sales, webOrders: webOrders, categories: categories, engine: engine}
}

var defaultTaxPercent = decimal.NewFromFloat(19.0)

// ── Create ────────────────────────────────────────────────────────────────────

func (s *productService) Create(ctx context.Context, actor Actor, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	exists, err := s.repo.ExistsByTenantAndSKU(ctx, actor.TenantID, req.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, invalidRef("SKU %q already exists", req.SKU)
	}

	p := model.Product{
		TenantID:        actor.TenantID,
		SKU:             req.SKU,
		Name:            req.Name,
		Description:     req.Description,
		CostPrice:       decimal.Zero,
		TaxPercent:      defaultTaxPercent,
		IsTaxIncluded:   true,
		StockMin:        decimal.NewFromInt(5),
		MeasurementUnit: "UNIT",
		ProductType:     model.ProductTypeStandard,
		IsActive:        true,
	}
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.PriceFinal != nil {
		p.PriceFinal = *req.PriceFinal
	}
	if req.TaxPercent != nil {
		p.TaxPercent = *req.TaxPercent
	}
	if req.IsTaxIncluded != nil {
		p.IsTaxIncluded = *req.IsTaxIncluded
	}
	if req.StockMin != nil {
		p.StockMin = *req.StockMin
	}
	if req.MeasurementUnit != nil {
		p.MeasurementUnit = *req.MeasurementUnit
	}
	if req.ProductType != nil {
		p.ProductType = *req.ProductType
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}
	p.PublicPrice = req.PublicPrice
	p.ImageURL = req.ImageURL
	p.DescriptionWeb = req.DescriptionWeb
	p.PriceNeto = PriceNeto(p.PriceFinal, p.TaxPercent, p.IsTaxIncluded)

	if req.CategoryID != nil {
		cid, err := s.resolveCategory(ctx, actor, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = cid
	}
	if req.SupplierID != nil {
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, invalidRef("invalid supplier id %q", *req.SupplierID)
		}
		p.SupplierID = &sid
	}

	var bundleItems []model.BundleItem
	if p.ProductType == model.ProductTypeBundle {
		bundleItems, err = s.resolveBundleItems(ctx, actor, uuid.Nil, req.BundleItems)
		if err != nil {
			return nil, err
		}
		// Catalog rule: a zero (or missing) stock input makes the bundle
		// virtual — availability fully derived from components.
		if req.StockCurrent != nil && req.StockCurrent.GreaterThan(decimal.Zero) {
			p.SetStock(model.TrackedStock(*req.StockCurrent))
		} else {
			p.SetStock(model.UntrackedStock())
		}
	} else {
		if len(req.BundleItems) > 0 {
			return nil, invalidRef("product %s is not a bundle and cannot have components", req.SKU)
		}
		initial := decimal.Zero
		if req.StockCurrent != nil {
			initial = *req.StockCurrent
		}
		if initial.IsNegative() {
			return nil, invalidRef("initial stock for %s cannot be negative", req.SKU)
		}
		p.SetStock(model.TrackedStock(initial))
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, &p); err != nil {
			return err
		}
		if len(bundleItems) > 0 {
			for i := range bundleItems {
				bundleItems[i].BundleProductID = p.ID
			}
			if err := s.repo.ReplaceBundleItemsTx(tx, p.ID, bundleItems); err != nil {
				return err
			}
		}
		if own := p.Stock(); own.Tracked {
			return s.engine.appendLog(tx, actor, &p, model.ActionCreate,
				own.Qty, decimal.Zero, own.Qty, "Product created", LedgerRef{})
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.toResponse(ctx, &p), nil
}

// ── Update ────────────────────────────────────────────────────────────────────
// Catalog edit. Stock changes through this path stay on the ledger: a
// standard product whose stock field moved gets a MANUAL_ADJUST entry; a
// bundle only repositions its ceiling (zero → untracked, catalog rule).

func (s *productService) Update(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, invalidRef("product %s not found", id)
	}
	if p.TenantID != actor.TenantID {
		return nil, &TenantMismatchError{Msg: "product belongs to another tenant"}
	}

	p.Name = req.Name
	p.Description = req.Description
	if req.CostPrice != nil {
		p.CostPrice = *req.CostPrice
	}
	if req.PriceFinal != nil {
		p.PriceFinal = *req.PriceFinal
	}
	if req.TaxPercent != nil {
		p.TaxPercent = *req.TaxPercent
	}
	if req.IsTaxIncluded != nil {
		p.IsTaxIncluded = *req.IsTaxIncluded
	}
	if req.StockMin != nil {
		p.StockMin = *req.StockMin
	}
	if req.MeasurementUnit != nil {
		p.MeasurementUnit = *req.MeasurementUnit
	}
	if req.IsPublic != nil {
		p.IsPublic = *req.IsPublic
	}
	if req.PublicPrice != nil {
		p.PublicPrice = req.PublicPrice
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}
	if req.DescriptionWeb != nil {
		p.DescriptionWeb = req.DescriptionWeb
	}
	p.PriceNeto = PriceNeto(p.PriceFinal, p.TaxPercent, p.IsTaxIncluded)

	if req.CategoryID != nil {
		cid, err := s.resolveCategory(ctx, actor, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = cid
	}
	if req.SupplierID != nil {
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, invalidRef("invalid supplier id %q", *req.SupplierID)
		}
		p.SupplierID = &sid
	}

	var bundleItems []model.BundleItem
	replaceBundle := false
	if p.ProductType == model.ProductTypeBundle && req.BundleItems != nil {
		bundleItems, err = s.resolveBundleItems(ctx, actor, p.ID, req.BundleItems)
		if err != nil {
			return nil, err
		}
		replaceBundle = true
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if req.StockCurrent != nil {
			if p.ProductType == model.ProductTypeBundle {
				if req.StockCurrent.GreaterThan(decimal.Zero) {
					p.SetStock(model.TrackedStock(*req.StockCurrent))
				} else {
					p.SetStock(model.UntrackedStock())
				}
			} else if !req.StockCurrent.Equal(p.StockOrZero()) {
				old := p.StockOrZero()
				if req.StockCurrent.IsNegative() {
					return invalidRef("stock for %s cannot be negative", p.SKU)
				}
				p.SetStock(model.TrackedStock(*req.StockCurrent))
				if err := s.engine.appendLog(tx, actor, p, model.ActionManualAdjust,
					req.StockCurrent.Sub(old), old, *req.StockCurrent,
					"Stock updated via catalog edit", LedgerRef{}); err != nil {
					return err
				}
			}
		}

		if replaceBundle {
			for i := range bundleItems {
				bundleItems[i].BundleProductID = p.ID
			}
			if err := s.repo.ReplaceBundleItemsTx(tx, p.ID, bundleItems); err != nil {
				return err
			}
		}

		return s.repo.SaveTx(tx, p)
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.toResponse(ctx, p), nil
}

// resolveCategory parses and checks tenant ownership of a category reference.
func (s *productService) resolveCategory(ctx context.Context, actor Actor, raw string) (*uuid.UUID, error) {
	cid, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalidRef("invalid category id %q", raw)
	}
	cat, err := s.categories.FindByID(ctx, cid)
	if err != nil {
		return nil, invalidRef("category %s not found", cid)
	}
	if cat.TenantID != actor.TenantID {
		return nil, &TenantMismatchError{Msg: "category belongs to another tenant"}
	}
	return &cid, nil
}

// resolveBundleItems validates a bundle composition: at least one component,
// no self-reference, no duplicates, every component an existing standard
// product of the same tenant. Standard-only components keep the derivation
// single-level and make composition cycles impossible.
func (s *productService) resolveBundleItems(ctx context.Context, actor Actor, bundleID uuid.UUID, reqs []dto.BundleItemRequest) ([]model.BundleItem, error) {
	if len(reqs) == 0 {
		return nil, invalidRef("a bundle needs at least one component")
	}
	seen := make(map[uuid.UUID]bool, len(reqs))
	items := make([]model.BundleItem, 0, len(reqs))
	for _, r := range reqs {
		cid, err := uuid.Parse(r.ComponentID)
		if err != nil {
			return nil, invalidRef("invalid component id %q", r.ComponentID)
		}
		if cid == bundleID {
			return nil, invalidRef("a bundle cannot contain itself")
		}
		if seen[cid] {
			return nil, invalidRef("component %s listed twice", r.ComponentID)
		}
		seen[cid] = true
		if r.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, invalidRef("component quantity must be positive")
		}
		comp, err := s.repo.FindByID(ctx, cid)
		if err != nil {
			return nil, invalidRef("component %s not found", r.ComponentID)
		}
		if comp.TenantID != actor.TenantID {
			return nil, &TenantMismatchError{Msg: "component " + comp.SKU + " belongs to another tenant"}
		}
		if comp.ProductType == model.ProductTypeBundle {
			return nil, invalidRef("component %s is a bundle; bundles cannot nest", comp.SKU)
		}
		items = append(items, model.BundleItem{
			ComponentProductID: cid,
			Quantity:           r.Quantity,
		})
	}
	return items, nil
}

// ── AdjustStock ───────────────────────────────────────────────────────────────
// Manual inventory correction: sets an absolute value and logs MANUAL_ADJUST
// with the raw delta. A bundle adjusts only its own ceiling — components are
// never touched here — and a zero input makes it virtual again.

func (s *productService) AdjustStock(ctx context.Context, actor Actor, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	if req.NewStockValue.IsNegative() {
		return nil, invalidRef("stock cannot be negative")
	}

	var adjusted *model.Product
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindForUpdateTx(tx, id)
		if err != nil {
			return invalidRef("product %s not found", id)
		}
		if p.TenantID != actor.TenantID {
			return &TenantMismatchError{Msg: "product belongs to another tenant"}
		}

		old := p.StockOrZero()
		next := model.TrackedStock(req.NewStockValue)
		if p.ProductType == model.ProductTypeBundle && req.NewStockValue.IsZero() {
			next = model.UntrackedStock()
		}
		p.SetStock(next)
		if err := s.repo.UpdateStockTx(tx, p.ID, p.StockCurrent); err != nil {
			return err
		}
		if err := s.engine.appendLog(tx, actor, p, model.ActionManualAdjust,
			req.NewStockValue.Sub(old), old, req.NewStockValue, req.Reason, LedgerRef{}); err != nil {
			return err
		}
		adjusted = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.toResponse(ctx, adjusted), nil
}

func (s *productService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, invalidRef("product %s not found", id)
	}
	if p.TenantID != actor.TenantID {
		return nil, &TenantMismatchError{Msg: "product belongs to another tenant"}
	}
	return s.toResponse(ctx, p), nil
}

func (s *productService) List(ctx context.Context, actor Actor) ([]dto.ProductResponse, error) {
	products, err := s.repo.FindByTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *s.toResponse(ctx, &products[i]))
	}
	return out, nil
}

// ListLowStock compares effective availability against the reorder floor, so
// a bundle shows up once a component can no longer build enough units.
func (s *productService) ListLowStock(ctx context.Context, actor Actor) ([]dto.ProductResponse, error) {
	products, err := s.repo.FindByTenant(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0)
	for i := range products {
		p := &products[i]
		if !p.IsActive {
			continue
		}
		effective, err := s.engine.EffectiveStock(ctx, p)
		if err != nil {
			return nil, err
		}
		if effective.LessThanOrEqual(p.StockMin) {
			out = append(out, *s.toResponse(ctx, p))
		}
	}
	return out, nil
}

func (s *productService) Deactivate(ctx context.Context, actor Actor, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return invalidRef("product %s not found", id)
	}
	if p.TenantID != actor.TenantID {
		return &TenantMismatchError{Msg: "product belongs to another tenant"}
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productService) Activate(ctx context.Context, actor Actor, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return invalidRef("product %s not found", id)
	}
	if p.TenantID != actor.TenantID {
		return &TenantMismatchError{Msg: "product belongs to another tenant"}
	}
	return s.repo.Activate(ctx, id)
}

// ── ForceDelete ───────────────────────────────────────────────────────────────
// Hard removal with cascade, FK-safe order: order lines first, then sale
// lines, then bundle relations in both roles, then the product row. Ledger
// entries reference the product by plain id and survive with their name
// snapshots.

func (s *productService) ForceDelete(ctx context.Context, actor Actor, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return invalidRef("product %s not found", id)
	}
	if p.TenantID != actor.TenantID {
		return &TenantMismatchError{Msg: "product belongs to another tenant"}
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.webOrders.DeleteItemsByProductTx(tx, id); err != nil {
			return err
		}
		if err := s.sales.DeleteItemsByProductTx(tx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteBundleItemsByBundleTx(tx, id); err != nil {
			return err
		}
		if err := s.repo.DeleteBundleItemsByComponentTx(tx, id); err != nil {
			return err
		}
		return s.repo.HardDeleteTx(tx, id)
	})
}

func (s *productService) toResponse(ctx context.Context, p *model.Product) *dto.ProductResponse {
	effective, err := s.engine.EffectiveStock(ctx, p)
	if err != nil {
		effective = decimal.Zero
	}

	resp := &dto.ProductResponse{
		ID:              p.ID.String(),
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		CostPrice:       p.CostPrice,
		PriceFinal:      p.PriceFinal,
		PriceNeto:       p.PriceNeto,
		IsTaxIncluded:   p.IsTaxIncluded,
		TaxPercent:      p.TaxPercent,
		MarginPercent:   MarginPercent(p.CostPrice, p.PriceNeto),
		StockCurrent:    effective,
		StockMin:        p.StockMin,
		MeasurementUnit: p.MeasurementUnit,
		ProductType:     p.ProductType,
		IsPublic:        p.IsPublic,
		ImageURL:        p.ImageURL,
		IsActive:        p.IsActive,
	}
	if p.CategoryID != nil {
		cid := p.CategoryID.String()
		resp.CategoryID = &cid
		if p.Category != nil {
			resp.CategoryName = &p.Category.Name
		}
	}
	if p.SupplierID != nil {
		sid := p.SupplierID.String()
		resp.SupplierID = &sid
		if p.Supplier != nil {
			resp.SupplierName = &p.Supplier.Name
		}
	}
	for _, item := range p.BundleItems {
		bi := dto.BundleItemResponse{
			ComponentID: item.ComponentProductID.String(),
			Quantity:    item.Quantity,
		}
		if item.ComponentProduct != nil {
			bi.ComponentSKU = item.ComponentProduct.SKU
			bi.ComponentName = item.ComponentProduct.Name
		}
		resp.BundleItems = append(resp.BundleItems, bi)
	}
	return resp
}
