package service

import (
	"context"

	"nexopos/internal/model"
	"nexopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// LedgerRef links a ledger entry to the document that caused it. At most one
// field is set.
type LedgerRef struct {
	SaleID     *uuid.UUID
	WebOrderID *uuid.UUID
}

// StockEngine is the single place stock quantities change. Every mutation
// source — POS sales, web orders, manual adjustments and their reversals —
// funnels through Decrement/Return so the rules apply uniformly:
//
//   - the product row is locked FOR UPDATE before read-modify-write;
//   - a standard decrement that would go negative fails with
//     InsufficientStockError and aborts the caller's transaction;
//   - a bundle movement is routed to every component (perBundleQty × qty)
//     plus the bundle's own tracked ceiling when it has one;
//   - every write is paired with exactly one ledger entry whose
//     old→new arithmetic is asserted before persisting.
//
// All methods run inside a transaction the caller owns.
type StockEngine struct {
	products repository.ProductRepository
	logs     repository.InventoryLogRepository
}

func NewStockEngine(products repository.ProductRepository, logs repository.InventoryLogRepository) *StockEngine {
	return &StockEngine{products: products, logs: logs}
}

// EffectiveStock is what "how many can I sell right now" means. Standard
// products report their own quantity. Bundles derive availability from
// component stock, recomputed fresh on every call: min over components of
// floor(componentStock / perBundleQty), clipped by the bundle's own tracked
// quantity when one is kept. Nothing is cached.
func (e *StockEngine) EffectiveStock(ctx context.Context, p *model.Product) (decimal.Decimal, error) {
	if p.ProductType != model.ProductTypeBundle {
		return p.StockOrZero(), nil
	}

	items, err := e.products.FindBundleItems(ctx, p.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if len(items) == 0 {
		return decimal.Zero, nil
	}

	available := decimal.Zero
	for i, item := range items {
		comp := item.ComponentProduct
		if comp == nil {
			c, err := e.products.FindByID(ctx, item.ComponentProductID)
			if err != nil {
				return decimal.Zero, err
			}
			comp = c
		}
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, &InvariantViolationError{
				Msg: "bundle " + p.SKU + " has a component with non-positive quantity",
			}
		}
		buildable := comp.StockOrZero().Div(item.Quantity).Floor()
		if i == 0 || buildable.LessThan(available) {
			available = buildable
		}
	}

	if own := p.Stock(); own.Tracked && own.Qty.LessThan(available) {
		available = own.Qty
	}
	if available.IsNegative() {
		return decimal.Zero, nil
	}
	return available, nil
}

// Decrement removes qty units of product id. action labels standard-product
// entries; componentAction labels the per-component (and bundle-ceiling)
// entries when the product is a bundle — SALE vs BUNDLE_SALE for the POS,
// the same web-order action for both on the storefront paths.
func (e *StockEngine) Decrement(tx *gorm.DB, actor Actor, productID uuid.UUID, qty decimal.Decimal,
	action, componentAction, reason string, ref LedgerRef) error {
	return e.apply(tx, actor, productID, qty.Neg(), action, componentAction, reason, ref)
}

// Return puts qty units back. Reversals never fail on availability.
func (e *StockEngine) Return(tx *gorm.DB, actor Actor, productID uuid.UUID, qty decimal.Decimal,
	action, componentAction, reason string, ref LedgerRef) error {
	return e.apply(tx, actor, productID, qty, action, componentAction, reason, ref)
}

func (e *StockEngine) apply(tx *gorm.DB, actor Actor, productID uuid.UUID, delta decimal.Decimal,
	action, componentAction, reason string, ref LedgerRef) error {
	p, err := e.products.FindForUpdateTx(tx, productID)
	if err != nil {
		return invalidRef("product %s not found", productID)
	}

	if p.ProductType == model.ProductTypeBundle {
		return e.applyBundle(tx, actor, p, delta, componentAction, reason, ref)
	}
	return e.applyOwn(tx, actor, p, delta, action, reason, ref)
}

// applyOwn mutates a product's own tracked quantity and writes the paired
// ledger entry. NULL stock is normalized to zero on the way in so the ledger
// arithmetic always closes.
func (e *StockEngine) applyOwn(tx *gorm.DB, actor Actor, p *model.Product, delta decimal.Decimal,
	action, reason string, ref LedgerRef) error {
	old := p.StockOrZero()
	next := old.Add(delta)
	if next.IsNegative() {
		return &InsufficientStockError{Product: p.Name, Requested: delta.Neg(), Available: old}
	}

	if err := e.products.UpdateStockTx(tx, p.ID, &next); err != nil {
		return err
	}
	return e.appendLog(tx, actor, p, action, delta, old, next, reason, ref)
}

// applyBundle routes a bundle movement to each component in stable
// (component id) order, then to the bundle's own tracked ceiling if it keeps
// one. A virtual bundle (untracked) gets no entry of its own — its
// availability is purely derived.
func (e *StockEngine) applyBundle(tx *gorm.DB, actor Actor, bundle *model.Product, delta decimal.Decimal,
	componentAction, reason string, ref LedgerRef) error {
	items, err := e.products.FindBundleItemsTx(tx, bundle.ID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return &InvariantViolationError{Msg: "bundle " + bundle.SKU + " has no components"}
	}

	for _, item := range items {
		comp, err := e.products.FindForUpdateTx(tx, item.ComponentProductID)
		if err != nil {
			return invalidRef("component %s of bundle %s not found", item.ComponentProductID, bundle.SKU)
		}
		compDelta := delta.Mul(item.Quantity)
		old := comp.StockOrZero()
		next := old.Add(compDelta)
		if next.IsNegative() {
			return &InsufficientStockError{Product: comp.Name, Requested: compDelta.Neg(), Available: old}
		}
		if err := e.products.UpdateStockTx(tx, comp.ID, &next); err != nil {
			return err
		}
		if err := e.appendLog(tx, actor, comp, componentAction, compDelta, old, next, reason, ref); err != nil {
			return err
		}
	}

	if own := bundle.Stock(); own.Tracked {
		next := own.Qty.Add(delta)
		if next.IsNegative() {
			return &InsufficientStockError{Product: bundle.Name, Requested: delta.Neg(), Available: own.Qty}
		}
		if err := e.products.UpdateStockTx(tx, bundle.ID, &next); err != nil {
			return err
		}
		if err := e.appendLog(tx, actor, bundle, componentAction, delta, own.Qty, next, reason, ref); err != nil {
			return err
		}
	}
	return nil
}

// AppendMarker writes a zero-quantity ledger entry against the product's
// current stock. Used for PRICE_OVERRIDE, which records a fact without
// moving stock. The row is re-read under the transaction's lock so the
// snapshot reflects any movement already made for the same document.
func (e *StockEngine) AppendMarker(tx *gorm.DB, actor Actor, productID uuid.UUID,
	action, reason string, ref LedgerRef) error {
	p, err := e.products.FindForUpdateTx(tx, productID)
	if err != nil {
		return invalidRef("product %s not found", productID)
	}
	cur := p.StockOrZero()
	return e.appendLog(tx, actor, p, action, decimal.Zero, cur, cur, reason, ref)
}

func (e *StockEngine) appendLog(tx *gorm.DB, actor Actor, p *model.Product,
	action string, change, old, next decimal.Decimal, reason string, ref LedgerRef) error {
	if !old.Add(change).Equal(next) {
		return &InvariantViolationError{
			Msg: "ledger entry for " + p.Name + " does not conserve stock: " +
				old.String() + " + " + change.String() + " != " + next.String(),
		}
	}
	entry := &model.InventoryLog{
		TenantID:            actor.TenantID,
		ProductID:           p.ID,
		ProductNameSnapshot: p.Name,
		UserID:              actor.UserID,
		UserNameSnapshot:    actor.UserName,
		ActionType:          action,
		QuantityChange:      change,
		OldStock:            old,
		NewStock:            next,
		Reason:              reason,
		SaleID:              ref.SaleID,
		WebOrderID:          ref.WebOrderID,
	}
	return e.logs.CreateTx(tx, entry)
}
