package dto

import "github.com/shopspring/decimal"

type BundleItemRequest struct {
	ComponentID string          `json:"componentId" validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity" validate:"required"`
}

type CreateProductRequest struct {
	SKU         string  `json:"sku" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`

	CostPrice     *decimal.Decimal `json:"costPrice"`
	PriceFinal    *decimal.Decimal `json:"priceFinal"`
	IsTaxIncluded *bool            `json:"isTaxIncluded"`
	TaxPercent    *decimal.Decimal `json:"taxPercent"`

	StockCurrent *decimal.Decimal `json:"stockCurrent"`
	StockMin     *decimal.Decimal `json:"stockMin"`

	MeasurementUnit *string `json:"measurementUnit"`
	ProductType     *string `json:"productType" validate:"omitempty,oneof=STANDARD BUNDLE"`
	BundleItems     []BundleItemRequest `json:"bundleItems" validate:"dive"`

	CategoryID *string `json:"categoryId" validate:"omitempty,uuid"`
	SupplierID *string `json:"supplierId" validate:"omitempty,uuid"`

	IsPublic       *bool            `json:"isPublic"`
	PublicPrice    *decimal.Decimal `json:"publicPrice"`
	ImageURL       *string          `json:"imageUrl"`
	DescriptionWeb *string          `json:"descriptionWeb"`
}

// UpdateProductRequest mirrors CreateProductRequest; SKU is immutable.
type UpdateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`

	CostPrice     *decimal.Decimal `json:"costPrice"`
	PriceFinal    *decimal.Decimal `json:"priceFinal"`
	IsTaxIncluded *bool            `json:"isTaxIncluded"`
	TaxPercent    *decimal.Decimal `json:"taxPercent"`

	StockCurrent *decimal.Decimal `json:"stockCurrent"`
	StockMin     *decimal.Decimal `json:"stockMin"`

	MeasurementUnit *string             `json:"measurementUnit"`
	BundleItems     []BundleItemRequest `json:"bundleItems" validate:"dive"`

	CategoryID *string `json:"categoryId" validate:"omitempty,uuid"`
	SupplierID *string `json:"supplierId" validate:"omitempty,uuid"`

	IsPublic       *bool            `json:"isPublic"`
	PublicPrice    *decimal.Decimal `json:"publicPrice"`
	ImageURL       *string          `json:"imageUrl"`
	DescriptionWeb *string          `json:"descriptionWeb"`
}

type AdjustStockRequest struct {
	NewStockValue decimal.Decimal `json:"newStockValue"`
	Reason        string          `json:"reason" validate:"required"`
}

type BundleItemResponse struct {
	ComponentID   string          `json:"componentId"`
	ComponentSKU  string          `json:"componentSku"`
	ComponentName string          `json:"componentName"`
	Quantity      decimal.Decimal `json:"quantity"`
}

type ProductResponse struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`

	CostPrice     decimal.Decimal `json:"costPrice"`
	PriceFinal    decimal.Decimal `json:"priceFinal"`
	PriceNeto     decimal.Decimal `json:"priceNeto"`
	IsTaxIncluded bool            `json:"isTaxIncluded"`
	TaxPercent    decimal.Decimal `json:"taxPercent"`
	MarginPercent decimal.Decimal `json:"marginPercent"`

	// StockCurrent carries the EFFECTIVE stock — for bundles this is the
	// derived availability, recomputed on every read.
	StockCurrent decimal.Decimal `json:"stockCurrent"`
	StockMin     decimal.Decimal `json:"stockMin"`

	MeasurementUnit string               `json:"measurementUnit"`
	ProductType     string               `json:"productType"`
	BundleItems     []BundleItemResponse `json:"bundleItems,omitempty"`

	CategoryID   *string `json:"categoryId,omitempty"`
	CategoryName *string `json:"categoryName,omitempty"`
	SupplierID   *string `json:"supplierId,omitempty"`
	SupplierName *string `json:"supplierName,omitempty"`

	IsPublic bool    `json:"isPublic"`
	ImageURL *string `json:"imageUrl,omitempty"`
	IsActive bool    `json:"isActive"`
}

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SupplierResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}
