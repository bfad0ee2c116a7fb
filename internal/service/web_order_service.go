package service

import (
	"context"
	"fmt"
	"time"

	"nexopos/internal/dto"
	"nexopos/internal/model"
	"nexopos/internal/repository"
	"nexopos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WebOrderService interface {
	CreateWebOrder(ctx context.Context, slug string, req dto.CreateWebOrderRequest) (*dto.WebOrderResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, orderNumber string, newStatus string) (*dto.WebOrderResponse, error)
	UpdateItems(ctx context.Context, actor Actor, orderNumber string, req dto.UpdateWebOrderItemsRequest) (*dto.WebOrderResponse, error)
	GetOrder(ctx context.Context, actor Actor, orderNumber string) (*dto.WebOrderResponse, error)
	ListOrders(ctx context.Context, actor Actor, status string) ([]dto.WebOrderResponse, error)

	// ExpireOverdueOrders releases the stock of PENDING orders whose
	// reservation window has lapsed. Called by the sweeper; returns how many
	// orders were expired.
	ExpireOverdueOrders(ctx context.Context) (int, error)
}

type webOrderService struct {
	repo               repository.WebOrderRepository
	products           repository.ProductRepository
	shopConfigs        repository.ShopConfigRepository
	engine             *StockEngine
	dispatcher         *worker.Dispatcher
	defaultReservation time.Duration
}

func NewWebOrderService(
	repo repository.WebOrderRepository,
	products repository.ProductRepository,
	shopConfigs repository.ShopConfigRepository,
	engine *StockEngine,
	dispatcher *worker.Dispatcher,
	defaultReservationMinutes int,
) WebOrderService {
	if defaultReservationMinutes <= 0 {
		defaultReservationMinutes = 30
	}
	return &webOrderService{
		repo:               repo,
		products:           products,
		shopConfigs:        shopConfigs,
		engine:             engine,
		dispatcher:         dispatcher,
		defaultReservation: time.Duration(defaultReservationMinutes) * time.Minute,
	}
}

// reservationWindow is the shop's configured reservation override for the
// tenant, falling back to the service default.
func (s *webOrderService) reservationWindow(ctx context.Context, tenantID uuid.UUID) time.Duration {
	if cfg, err := s.shopConfigs.FindByTenant(ctx, tenantID); err == nil &&
		cfg.ReservationMinutes != nil && *cfg.ReservationMinutes > 0 {
		return time.Duration(*cfg.ReservationMinutes) * time.Minute
	}
	return s.defaultReservation
}

// ── CreateWebOrder ────────────────────────────────────────────────────────────
// Storefront order placement. Stock is reserved the moment the order is
// placed, not when it is paid: the decrement happens here, inside the same
// transaction that creates the order, so an out-of-stock product can never
// be ordered twice. The reservation carries a deadline; the sweeper reclaims
// it if the order is still PENDING when it lapses.

func (s *webOrderService) CreateWebOrder(ctx context.Context, slug string, req dto.CreateWebOrderRequest) (*dto.WebOrderResponse, error) {
	cfg, err := s.shopConfigs.FindBySlug(ctx, slug)
	if err != nil {
		return nil, invalidRef("shop %q not found", slug)
	}
	if !cfg.IsActive {
		return nil, invalidRef("shop %q is not accepting orders", slug)
	}

	window := s.defaultReservation
	if cfg.ReservationMinutes != nil && *cfg.ReservationMinutes > 0 {
		window = time.Duration(*cfg.ReservationMinutes) * time.Minute
	}

	actor := Actor{UserName: req.CustomerName, TenantID: cfg.TenantID}
	var order model.WebOrder

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		expires := time.Now().Add(window)
		order = model.WebOrder{
			TenantID:        cfg.TenantID,
			OrderNumber:     fmt.Sprintf("WEB-%d", time.Now().UnixMilli()%10000),
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			CustomerEmail:   req.CustomerEmail,
			ShippingAddress: req.CustomerAddress,
			Status:          model.WebOrderStatusPending,
			ExpiresAt:       &expires,
			PaymentMethod:   req.PaymentMethod,
			ShippingMethod:  req.DeliveryMethod,
		}
		if err := s.repo.CreateTx(tx, &order); err != nil {
			return err
		}

		ref := LedgerRef{WebOrderID: &order.ID}
		reason := "Web order " + order.OrderNumber + " placed: stock reserved"

		finalTotal := decimal.Zero
		items := make([]model.WebOrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			pid, err := uuid.Parse(line.ProductID)
			if err != nil {
				return invalidRef("invalid product id %q", line.ProductID)
			}
			p, err := s.products.FindForUpdateTx(tx, pid)
			if err != nil {
				return invalidRef("product %s not found", line.ProductID)
			}
			if p.TenantID != cfg.TenantID {
				return &TenantMismatchError{Msg: "product " + p.SKU + " belongs to another shop"}
			}
			if !p.IsActive || !p.IsPublic {
				return invalidRef("product %s is not available in this shop", p.Name)
			}
			if line.Quantity.LessThanOrEqual(decimal.Zero) {
				return invalidRef("quantity for %s must be positive", p.Name)
			}

			unitPrice := publicUnitPrice(p)
			subtotal := unitPrice.Mul(line.Quantity).Round(2)
			items = append(items, model.WebOrderItem{
				WebOrderID:          order.ID,
				ProductID:           p.ID,
				Quantity:            line.Quantity,
				UnitPriceAtMoment:   unitPrice,
				CostPriceAtMoment:   p.CostPrice,
				ProductNameSnapshot: p.Name,
				SKUSnapshot:         p.SKU,
				Subtotal:            subtotal,
			})
			finalTotal = finalTotal.Add(subtotal)

			if err := s.engine.Decrement(tx, actor, p.ID, line.Quantity,
				model.ActionWebOrderReactivate, model.ActionWebOrderReactivate, reason, ref); err != nil {
				return err
			}
		}

		if err := s.repo.InsertItemsTx(tx, items); err != nil {
			return err
		}
		// TotalItems counts lines, not units.
		order.TotalItems = decimal.NewFromInt(int64(len(items)))
		order.FinalTotal = finalTotal
		order.Items = items
		return s.repo.SaveTx(tx, &order)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Confirmation email is best-effort: the order stands whether or not the
	// job can be enqueued.
	if s.dispatcher != nil && req.CustomerEmail != nil && *req.CustomerEmail != "" {
		payload := worker.OrderEmailPayload{
			ToEmail:       *req.CustomerEmail,
			CustomerName:  req.CustomerName,
			OrderNumber:   order.OrderNumber,
			ShopName:      cfg.ShopName,
			FinalTotal:    order.FinalTotal.StringFixed(2),
			ReservedUntil: order.ExpiresAt.Format(time.RFC3339),
		}
		if err := s.dispatcher.EnqueueOrderEmail(ctx, payload); err != nil {
			log.Warn().Err(err).Str("order", order.OrderNumber).Msg("web_order: could not enqueue confirmation email")
		}
	}

	return toWebOrderResponse(&order), nil
}

// ── UpdateStatus ──────────────────────────────────────────────────────────────
// The stock effect of a status change depends only on whether the order
// crosses the held/not-held boundary:
//
//	held     → not-held  returns stock (WEB_ORDER_RETURN)
//	not-held → held      re-validates and decrements (WEB_ORDER_REACTIVATE)
//	same side            no stock movement
//
// A request for the status the order already has is an idempotent no-op.
// Reactivation fails the whole change if any product no longer has enough
// stock.

func (s *webOrderService) UpdateStatus(ctx context.Context, actor Actor, orderNumber string, newStatus string) (*dto.WebOrderResponse, error) {
	if !model.IsWebOrderStatus(newStatus) {
		return nil, invalidRef("unknown web order status %q", newStatus)
	}
	order, err := s.repo.FindByOrderNumber(ctx, actor.TenantID, orderNumber)
	if err != nil {
		return nil, invalidRef("web order %s not found", orderNumber)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// The held/not-held decision is taken against the locked row: a
		// concurrent cancel or the sweeper may have moved the order since
		// the unlocked read above, and a stale classification would return
		// the same reservation twice.
		cur, err := s.repo.FindForUpdateTx(tx, order.ID)
		if err != nil {
			return invalidRef("web order %s not found", orderNumber)
		}
		order = cur
		if order.Status == newStatus {
			return nil
		}

		heldBefore := model.IsStockHeld(order.Status)
		heldAfter := model.IsStockHeld(newStatus)
		ref := LedgerRef{WebOrderID: &order.ID}

		switch {
		case heldBefore && !heldAfter:
			reason := "Web order " + order.OrderNumber + " " + statusVerb(newStatus) + ": stock returned"
			for _, item := range order.Items {
				if err := s.engine.Return(tx, actor, item.ProductID, item.Quantity,
					model.ActionWebOrderReturn, model.ActionWebOrderReturn, reason, ref); err != nil {
					return err
				}
			}
		case !heldBefore && heldAfter:
			reason := "Web order " + order.OrderNumber + " reactivated: stock reserved"
			for _, item := range order.Items {
				if err := s.engine.Decrement(tx, actor, item.ProductID, item.Quantity,
					model.ActionWebOrderReactivate, model.ActionWebOrderReactivate, reason, ref); err != nil {
					return err
				}
			}
		}

		order.Status = newStatus
		if newStatus == model.WebOrderStatusPending {
			// Back to PENDING restarts the reservation clock from the shop's
			// window, otherwise the sweeper would reap the order on its next
			// tick.
			expires := time.Now().Add(s.reservationWindow(ctx, order.TenantID))
			order.ExpiresAt = &expires
		}
		return s.repo.SaveTx(tx, order)
	})
	if txErr != nil {
		return nil, txErr
	}
	return toWebOrderResponse(order), nil
}

// ── UpdateItems ───────────────────────────────────────────────────────────────
// Same reverse-then-reapply protocol as the sale edit, with the web-order
// action pair. Only stock-holding orders can be edited: a cancelled or
// expired order holds nothing to rework.

func (s *webOrderService) UpdateItems(ctx context.Context, actor Actor, orderNumber string, req dto.UpdateWebOrderItemsRequest) (*dto.WebOrderResponse, error) {
	order, err := s.repo.FindByOrderNumber(ctx, actor.TenantID, orderNumber)
	if err != nil {
		return nil, invalidRef("web order %s not found", orderNumber)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Editability depends on the status the locked row has now, not on
		// the unlocked read above.
		cur, err := s.repo.FindForUpdateTx(tx, order.ID)
		if err != nil {
			return invalidRef("web order %s not found", orderNumber)
		}
		order = cur
		if !model.IsStockHeld(order.Status) {
			return invalidRef("web order %s is %s and cannot be edited", orderNumber, order.Status)
		}
		ref := LedgerRef{WebOrderID: &order.ID}

		returnReason := "Web order edit " + order.OrderNumber + ": line returned"
		for _, item := range order.Items {
			if err := s.engine.Return(tx, actor, item.ProductID, item.Quantity,
				model.ActionWebOrderEditReturn, model.ActionWebOrderEditReturn, returnReason, ref); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteItemsByOrderTx(tx, order.ID); err != nil {
			return err
		}

		finalTotal := decimal.Zero
		items := make([]model.WebOrderItem, 0, len(req.Items))
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

			unitPrice := publicUnitPrice(p)
			outReason := "Web order edit " + order.OrderNumber + ": new line"
			if line.CustomPrice != nil {
				unitPrice = *line.CustomPrice
				outReason += fmt.Sprintf(" (price overridden: %s → %s)", publicUnitPrice(p), unitPrice)
			}
			subtotal := unitPrice.Mul(line.Quantity).Round(2)
			items = append(items, model.WebOrderItem{
				WebOrderID:          order.ID,
				ProductID:           p.ID,
				Quantity:            line.Quantity,
				UnitPriceAtMoment:   unitPrice,
				CostPriceAtMoment:   p.CostPrice,
				ProductNameSnapshot: p.Name,
				SKUSnapshot:         p.SKU,
				Subtotal:            subtotal,
			})
			finalTotal = finalTotal.Add(subtotal)

			if err := s.engine.Decrement(tx, actor, p.ID, line.Quantity,
				model.ActionWebOrderEditOut, model.ActionWebOrderEditOut, outReason, ref); err != nil {
				return err
			}
		}
		if err := s.repo.InsertItemsTx(tx, items); err != nil {
			return err
		}

		order.TotalItems = decimal.NewFromInt(int64(len(items)))
		order.FinalTotal = finalTotal.Add(order.ShippingCost)
		order.WasEdited = true
		order.EditedByUserID = actor.UserID
		order.EditReason = req.Reason
		order.Items = items
		return s.repo.SaveTx(tx, order)
	})
	if txErr != nil {
		return nil, txErr
	}
	return toWebOrderResponse(order), nil
}

func (s *webOrderService) GetOrder(ctx context.Context, actor Actor, orderNumber string) (*dto.WebOrderResponse, error) {
	order, err := s.repo.FindByOrderNumber(ctx, actor.TenantID, orderNumber)
	if err != nil {
		return nil, invalidRef("web order %s not found", orderNumber)
	}
	return toWebOrderResponse(order), nil
}

func (s *webOrderService) ListOrders(ctx context.Context, actor Actor, status string) ([]dto.WebOrderResponse, error) {
	if status != "" && !model.IsWebOrderStatus(status) {
		return nil, invalidRef("unknown web order status %q", status)
	}
	orders, err := s.repo.ListByTenant(ctx, actor.TenantID, status)
	if err != nil {
		return nil, err
	}
	out := make([]dto.WebOrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *toWebOrderResponse(&orders[i]))
	}
	return out, nil
}

// ── ExpireOverdueOrders ───────────────────────────────────────────────────────
// Each overdue order is released in its own transaction: one poisoned order
// must not keep every other reservation alive. The release path is the same
// held→not-held return used by manual cancellation.

func (s *webOrderService) ExpireOverdueOrders(ctx context.Context) (int, error) {
	now := time.Now()
	overdue, err := s.repo.FindExpiredPending(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range overdue {
		candidate := &overdue[i]
		actor := SystemActor(candidate.TenantID)

		released := false
		txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			// The candidate list is a snapshot; a manual cancel may have won
			// the race since. Only a row still PENDING and still overdue
			// under the lock gets its stock returned.
			order, err := s.repo.FindForUpdateTx(tx, candidate.ID)
			if err != nil {
				return err
			}
			if order.Status != model.WebOrderStatusPending ||
				order.ExpiresAt == nil || order.ExpiresAt.After(now) {
				return nil
			}

			ref := LedgerRef{WebOrderID: &order.ID}
			reason := "Expired automatically after reservation window"
			for _, item := range order.Items {
				if err := s.engine.Return(tx, actor, item.ProductID, item.Quantity,
					model.ActionWebOrderReturn, model.ActionWebOrderReturn, reason, ref); err != nil {
					return err
				}
			}
			order.Status = model.WebOrderStatusExpired
			if err := s.repo.SaveTx(tx, order); err != nil {
				return err
			}
			released = true
			return nil
		})
		if txErr != nil {
			log.Error().Err(txErr).Str("order", candidate.OrderNumber).Msg("expiration: failed to release order")
			continue
		}
		if released {
			expired++
			log.Info().Str("order", candidate.OrderNumber).Msg("expiration: order expired, stock released")
		}
	}
	return expired, nil
}

// publicUnitPrice is what a storefront customer pays: the explicit public
// price when set, otherwise the net price grossed back up with tax.
func publicUnitPrice(p *model.Product) decimal.Decimal {
	if p.PublicPrice != nil {
		return *p.PublicPrice
	}
	return PriceWithTax(p.PriceNeto, p.TaxPercent)
}

func statusVerb(status string) string {
	if status == model.WebOrderStatusExpired {
		return "expired"
	}
	return "cancelled"
}

func toWebOrderResponse(o *model.WebOrder) *dto.WebOrderResponse {
	items := make([]dto.WebOrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, dto.WebOrderItemResponse{
			ProductID: item.ProductID.String(),
			Product:   item.ProductNameSnapshot,
			SKU:       item.SKUSnapshot,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPriceAtMoment,
			Subtotal:  item.Subtotal,
		})
	}
	var expires *string
	if o.ExpiresAt != nil {
		f := o.ExpiresAt.Format(time.RFC3339)
		expires = &f
	}
	return &dto.WebOrderResponse{
		ID:            o.ID.String(),
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		CustomerEmail: o.CustomerEmail,
		Status:        o.Status,
		ExpiresAt:     expires,
		WasEdited:     o.WasEdited,
		EditReason:    o.EditReason,
		FinalTotal:    o.FinalTotal,
		Items:         items,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}
