package dto

import "github.com/shopspring/decimal"

type SaleItemRequest struct {
	ProductID string           `json:"productId" validate:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"required"`
	// CustomPrice overrides the catalog price for this line; a zero-quantity
	// PRICE_OVERRIDE ledger marker records the change.
	CustomPrice *decimal.Decimal `json:"customPrice"`
}

type ProcessSaleRequest struct {
	Items       []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	TotalAmount decimal.Decimal   `json:"totalAmount" validate:"required"`
	Notes       *string           `json:"notes"`
}

type UpdateSaleItemsRequest struct {
	Items []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes *string           `json:"notes"`
}

type SaleItemResponse struct {
	ProductID string          `json:"productId"`
	Product   string          `json:"product"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	UnitTax   decimal.Decimal `json:"unitTax"`
	NetPrice  decimal.Decimal `json:"netPrice"`
	Total     decimal.Decimal `json:"total"`
}

type SaleResponse struct {
	ID             string             `json:"id"`
	SaleNumber     string             `json:"saleNumber"`
	SubtotalAmount decimal.Decimal    `json:"subtotalAmount"`
	TotalAmount    decimal.Decimal    `json:"totalAmount"`
	TotalTax       decimal.Decimal    `json:"totalTax"`
	Status         string             `json:"status"`
	WasEdited      bool               `json:"wasEdited"`
	EditReason     *string            `json:"editReason,omitempty"`
	Items          []SaleItemResponse `json:"items"`
	CreatedAt      string             `json:"createdAt"`
}

type SaleFilter struct {
	Start  string `form:"start"`
	End    string `form:"end"`
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
