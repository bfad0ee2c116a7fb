package dto

import "github.com/shopspring/decimal"

type WebOrderItemRequest struct {
	ProductID   string           `json:"productId" validate:"required,uuid"`
	Quantity    decimal.Decimal  `json:"quantity" validate:"required"`
	CustomPrice *decimal.Decimal `json:"customPrice"`
}

type CreateWebOrderRequest struct {
	CustomerName    string  `json:"customerName" validate:"required"`
	CustomerPhone   string  `json:"customerPhone" validate:"required"`
	CustomerEmail   *string `json:"customerEmail" validate:"omitempty,email"`
	CustomerAddress *string `json:"customerAddress"`
	PaymentMethod   *string `json:"paymentMethod"`
	DeliveryMethod  *string `json:"deliveryMethod"`

	Items []WebOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type UpdateWebOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdateWebOrderItemsRequest struct {
	Items  []WebOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Reason *string               `json:"reason"`
}

type WebOrderItemResponse struct {
	ProductID string          `json:"productId"`
	Product   string          `json:"product"`
	SKU       string          `json:"sku"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type WebOrderResponse struct {
	ID            string                 `json:"id"`
	OrderNumber   string                 `json:"orderNumber"`
	CustomerName  string                 `json:"customerName"`
	CustomerPhone string                 `json:"customerPhone"`
	CustomerEmail *string                `json:"customerEmail,omitempty"`
	Status        string                 `json:"status"`
	ExpiresAt     *string                `json:"expiresAt,omitempty"`
	WasEdited     bool                   `json:"wasEdited"`
	EditReason    *string                `json:"editReason,omitempty"`
	FinalTotal    decimal.Decimal        `json:"finalTotal"`
	Items         []WebOrderItemResponse `json:"items"`
	CreatedAt     string                 `json:"createdAt"`
}

// Storefront (public) shapes.

type PublicShopResponse struct {
	ShopName     string  `json:"shopName"`
	URLSlug      string  `json:"urlSlug"`
	LogoURL      *string `json:"logoUrl,omitempty"`
	BannerURL    *string `json:"bannerUrl,omitempty"`
	PrimaryColor *string `json:"primaryColor,omitempty"`
	ContactPhone *string `json:"contactPhone,omitempty"`
}

type PublicProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	ImageURL     *string         `json:"imageUrl,omitempty"`
	Price        decimal.Decimal `json:"price"`
	StockCurrent decimal.Decimal `json:"stockCurrent"`
	LowStock     bool            `json:"lowStock"`
	CategoryName *string         `json:"categoryName,omitempty"`
}
