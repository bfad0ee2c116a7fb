package dto

import "github.com/shopspring/decimal"

type InventoryLogFilter struct {
	Start      string `form:"start"`
	End        string `form:"end"`
	CategoryID string `form:"categoryId"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type InventoryLogResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	Product        string          `json:"product"`
	User           string          `json:"user"`
	ActionType     string          `json:"actionType"`
	QuantityChange decimal.Decimal `json:"quantityChange"`
	OldStock       decimal.Decimal `json:"oldStock"`
	NewStock       decimal.Decimal `json:"newStock"`
	Reason         string          `json:"reason"`
	SaleID         *string         `json:"saleId,omitempty"`
	WebOrderID     *string         `json:"webOrderId,omitempty"`
	CreatedAt      string          `json:"createdAt"`
}

type InventoryLogListResponse struct {
	Data  []InventoryLogResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
