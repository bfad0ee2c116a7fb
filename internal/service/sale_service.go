package service

import (
	"context"
	"fmt"
	"time"

	"nexopos/internal/dto"
	"nexopos/internal/infra"
	"nexopos/internal/model"
	"nexopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// headerTaxDivisor reproduces the historical header arithmetic: the ticket
// subtotal is derived from the grand total at the standard rate, regardless
// of per-line tax rates. Reporting depends on it, so it stays.
var headerTaxDivisor = decimal.NewFromFloat(1.19)

type SaleService interface {
	ProcessSale(ctx context.Context, actor Actor, req dto.ProcessSaleRequest) (*dto.SaleResponse, error)
	UpdateSaleItems(ctx context.Context, actor Actor, saleID uuid.UUID, req dto.UpdateSaleItemsRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, actor Actor, saleID uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, actor Actor, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	// GenerateReceipt renders the thermal-format PDF for a sale and returns
	// the path of the written file.
	GenerateReceipt(ctx context.Context, actor Actor, saleID uuid.UUID) (string, error)
}

type saleService struct {
	repo        repository.SaleRepository
	products    repository.ProductRepository
	shopConfigs repository.ShopConfigRepository
	engine      *StockEngine
	pdfPath     string
}

func NewSaleService(repo repository.SaleRepository, products repository.ProductRepository, shopConfigs repository.ShopConfigRepository, engine *StockEngine, pdfPath string) SaleService {
	return &saleService{repo: repo, products: products, shopConfigs: shopConfigs, engine: engine, pdfPath: pdfPath}
}

// ── ProcessSale ───────────────────────────────────────────────────────────────
// One ACID transaction:
//   1. persist the sale header (ledger rows reference the sale id)
//   2. per line: lock product, freeze price/cost/tax snapshots, decrement
//      stock through the engine (bundle-aware), write SALE / BUNDLE_SALE
//      ledger entries, plus a PRICE_OVERRIDE marker when the cashier
//      overrode the catalog price
//   3. insert the lines
// The first deficit aborts everything.

func (s *saleService) ProcessSale(ctx context.Context, actor Actor, req dto.ProcessSaleRequest) (*dto.SaleResponse, error) {
	var sale model.Sale

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		total := req.TotalAmount
		subtotal := total.DivRound(headerTaxDivisor, 0)

		sale = model.Sale{
			TenantID:       actor.TenantID,
			SaleNumber:     fmt.Sprintf("TCK-%d", time.Now().UnixMilli()),
			SubtotalAmount: subtotal,
			TotalAmount:    total,
			TotalTax:       total.Sub(subtotal),
			Status:         model.SaleStatusCompleted,
		}
		if err := s.repo.CreateTx(tx, &sale); err != nil {
			return err
		}

		ref := LedgerRef{SaleID: &sale.ID}
		reason := "Sale " + sale.SaleNumber
		if req.Notes != nil && *req.Notes != "" {
			reason += " — " + *req.Notes
		}

		items := make([]model.SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			pid, err := uuid.Parse(line.ProductID)
			if err != nil {
				return invalidRef("invalid product id %q", line.ProductID)
			}
			p, err := s.products.FindForUpdateTx(tx, pid)
			if err != nil {
				return invalidRef("product %s not found", line.ProductID)
			}
			if p.TenantID != actor.TenantID {
				return &TenantMismatchError{Msg: "product " + p.SKU + " belongs to another tenant"}
			}
			if !p.IsActive {
				return invalidRef("product %s is inactive and cannot be sold", p.Name)
			}
			if line.Quantity.LessThanOrEqual(decimal.Zero) {
				return invalidRef("quantity for %s must be positive", p.Name)
			}

			unitPrice := p.PriceFinal
			if line.CustomPrice != nil {
				unitPrice = *line.CustomPrice
			}
			netPrice := unitPrice.DivRound(one.Add(p.TaxPercent.Div(hundred)), 4)
			unitTax := unitPrice.Sub(netPrice)

			items = append(items, model.SaleItem{
				SaleID:          sale.ID,
				ProductID:       p.ID,
				Quantity:        line.Quantity,
				UnitPrice:       unitPrice,
				UnitTax:         unitTax,
				CostPriceAtSale: p.CostPrice,
				NetPriceAtSale:  netPrice,
				TaxAmountAtSale: unitTax.Mul(line.Quantity),
				Total:           unitPrice.Mul(line.Quantity).Round(2),
			})

			if err := s.engine.Decrement(tx, actor, p.ID, line.Quantity,
				model.ActionSale, model.ActionBundleSale, reason, ref); err != nil {
				return err
			}

			// Any explicit custom price leaves a marker, even one that happens
			// to match the catalog price.
			if line.CustomPrice != nil {
				overrideReason := fmt.Sprintf("Price override on %s: %s → %s (%s)",
					p.Name, p.PriceFinal, *line.CustomPrice, sale.SaleNumber)
				if err := s.engine.AppendMarker(tx, actor, p.ID,
					model.ActionPriceOverride, overrideReason, ref); err != nil {
					return err
				}
			}
		}

		if err := s.repo.InsertItemsTx(tx, items); err != nil {
			return err
		}
		sale.Items = items
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.toResponse(ctx, &sale), nil
}

// ── UpdateSaleItems ───────────────────────────────────────────────────────────
// Reverse-then-reapply, all inside one transaction:
//   1. return every old line's stock (component-aware, SALE_EDIT_RETURN)
//   2. delete the old lines
//   3. validate and decrement the new lines (SALE_EDIT_OUT) with edit-time
//      snapshots taken from the current catalog
//   4. recompute the header and stamp the edit audit fields
// Any failure rolls the whole edit back; re-submitting identical lines nets
// to zero stock movement while still leaving a paired audit trail.

func (s *saleService) UpdateSaleItems(ctx context.Context, actor Actor, saleID uuid.UUID, req dto.UpdateSaleItemsRequest) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, invalidRef("sale %s not found", saleID)
	}
	if sale.TenantID != actor.TenantID {
		return nil, &TenantMismatchError{Msg: "sale belongs to another tenant"}
	}
	if sale.Status != model.SaleStatusCompleted {
		return nil, invalidRef("sale %s is %s and cannot be edited", sale.SaleNumber, sale.Status)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ref := LedgerRef{SaleID: &sale.ID}

		returnReason := "Sale edit " + sale.SaleNumber + ": line returned"
		for _, item := range sale.Items {
			if err := s.engine.Return(tx, actor, item.ProductID, item.Quantity,
				model.ActionSaleEditReturn, model.ActionSaleEditReturn, returnReason, ref); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteItemsBySaleTx(tx, sale.ID); err != nil {
			return err
		}

		outReason := "Sale edit " + sale.SaleNumber + ": new line"
		newTotal := decimal.Zero
		items := make([]model.SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			pid, err := uuid.Parse(line.ProductID)
			if err != nil {
				return invalidRef("invalid product id %q", line.ProductID)
			}
			p, err := s.products.FindForUpdateTx(tx, pid)
			if err != nil {
				return invalidRef("product %s not found", line.ProductID)
			}
			if p.TenantID != actor.TenantID {
				return &TenantMismatchError{Msg: "product " + p.SKU + " belongs to another tenant"}
			}
			if line.Quantity.LessThanOrEqual(decimal.Zero) {
				return invalidRef("quantity for %s must be positive", p.Name)
			}

			unitPrice := p.PriceFinal
			if line.CustomPrice != nil {
				unitPrice = *line.CustomPrice
			}
			lineTotal := unitPrice.Mul(line.Quantity).Round(2)
			newTotal = newTotal.Add(lineTotal)

			items = append(items, model.SaleItem{
				SaleID:          sale.ID,
				ProductID:       p.ID,
				Quantity:        line.Quantity,
				UnitPrice:       unitPrice,
				UnitTax:         p.PriceFinal.Sub(p.PriceNeto),
				CostPriceAtSale: p.CostPrice,
				NetPriceAtSale:  p.PriceNeto,
				TaxAmountAtSale: p.PriceFinal.Sub(p.PriceNeto).Mul(line.Quantity),
				Total:           lineTotal,
			})

			if err := s.engine.Decrement(tx, actor, p.ID, line.Quantity,
				model.ActionSaleEditOut, model.ActionSaleEditOut, outReason, ref); err != nil {
				return err
			}
		}
		if err := s.repo.InsertItemsTx(tx, items); err != nil {
			return err
		}

		subtotal := newTotal.DivRound(headerTaxDivisor, 0)
		sale.SubtotalAmount = subtotal
		sale.TotalAmount = newTotal
		sale.TotalTax = newTotal.Sub(subtotal)
		sale.Status = model.SaleStatusCompleted
		sale.WasEdited = true
		sale.EditedByUserID = actor.UserID
		sale.EditReason = req.Notes
		sale.Items = items
		return s.repo.SaveTx(tx, sale)
	})
	if txErr != nil {
		return nil, txErr
	}

	return s.toResponse(ctx, sale), nil
}

func (s *saleService) GetSale(ctx context.Context, actor Actor, saleID uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, invalidRef("sale %s not found", saleID)
	}
	if sale.TenantID != actor.TenantID {
		return nil, &TenantMismatchError{Msg: "sale belongs to another tenant"}
	}
	return s.toResponse(ctx, sale), nil
}

func (s *saleService) ListSales(ctx context.Context, actor Actor, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	repoFilter := repository.SaleFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.Start != "" {
		if t, err := time.Parse("2006-01-02", filter.Start); err == nil {
			repoFilter.Start = &t
		}
	}
	if filter.End != "" {
		if t, err := time.Parse("2006-01-02", filter.End); err == nil {
			end := t.Add(24 * time.Hour)
			repoFilter.End = &end
		}
	}

	sales, total, err := s.repo.List(ctx, actor.TenantID, repoFilter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		data = append(data, *s.toResponse(ctx, &sales[i]))
	}
	return &dto.SaleListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *saleService) GenerateReceipt(ctx context.Context, actor Actor, saleID uuid.UUID) (string, error) {
	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return "", invalidRef("sale %s not found", saleID)
	}
	if sale.TenantID != actor.TenantID {
		return "", &TenantMismatchError{Msg: "sale belongs to another tenant"}
	}
	shopName := "NexoPOS"
	if cfg, err := s.shopConfigs.FindByTenant(ctx, actor.TenantID); err == nil && cfg.ShopName != "" {
		shopName = cfg.ShopName
	}
	return infra.GenerateReceiptPDF(sale, shopName, s.pdfPath)
}

func (s *saleService) toResponse(ctx context.Context, sale *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		} else if p, err := s.products.FindByID(ctx, item.ProductID); err == nil {
			name = p.Name
		}
		items = append(items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			UnitTax:   item.UnitTax,
			NetPrice:  item.NetPriceAtSale,
			Total:     item.Total,
		})
	}
	return &dto.SaleResponse{
		ID:             sale.ID.String(),
		SaleNumber:     sale.SaleNumber,
		SubtotalAmount: sale.SubtotalAmount,
		TotalAmount:    sale.TotalAmount,
		TotalTax:       sale.TotalTax,
		Status:         sale.Status,
		WasEdited:      sale.WasEdited,
		EditReason:     sale.EditReason,
		Items:          items,
		CreatedAt:      sale.CreatedAt.Format(time.RFC3339),
	}
}
