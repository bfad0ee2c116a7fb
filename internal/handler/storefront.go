package handler

import (
	"net/http"

	"nexopos/internal/dto"
	"nexopos/internal/service"

	"github.com/gin-gonic/gin"
)

// StorefrontHandler serves the public shop: no auth, tenant resolved from the
// URL slug.
type StorefrontHandler struct {
	shops  service.StorefrontService
	orders service.WebOrderService
}

func NewStorefrontHandler(shops service.StorefrontService, orders service.WebOrderService) *StorefrontHandler {
	return &StorefrontHandler{shops: shops, orders: orders}
}

// GetShop godoc
// @Summary Public shop profile
// @Tags storefront
// @Produce json
// @Param slug path string true "Shop slug"
// @Success 200 {object} dto.PublicShopResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/shop/{slug} [get]
func (h *StorefrontHandler) GetShop(c *gin.Context) {
	resp, err := h.shops.GetShop(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListProducts godoc
// @Summary Public catalog of a shop
// @Description Active, published products with live effective stock.
// @Tags storefront
// @Produce json
// @Param slug path string true "Shop slug"
// @Success 200 {array} dto.PublicProductResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/shop/{slug}/products [get]
func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	resp, err := h.shops.ListPublicProducts(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PlaceOrder godoc
// @Summary Place a web order
// @Description Reserves stock immediately; the reservation expires after the shop's configured window unless the order is confirmed.
// @Tags storefront
// @Accept json
// @Produce json
// @Param slug path string true "Shop slug"
// @Param body body dto.CreateWebOrderRequest true "Customer and items"
// @Success 201 {object} dto.WebOrderResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "insufficient stock"
// @Router /v1/shop/{slug}/orders [post]
func (h *StorefrontHandler) PlaceOrder(c *gin.Context) {
	var req dto.CreateWebOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.orders.CreateWebOrder(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
