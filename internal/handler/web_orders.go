package handler

import (
	"net/http"

	"nexopos/internal/dto"
	"nexopos/internal/service"

	"github.com/gin-gonic/gin"
)

// WebOrdersHandler is the authenticated, back-office side of web orders.
// Public placement lives in StorefrontHandler.
type WebOrdersHandler struct{ svc service.WebOrderService }

func NewWebOrdersHandler(svc service.WebOrderService) *WebOrdersHandler {
	return &WebOrdersHandler{svc: svc}
}

// List godoc
// @Summary List web orders
// @Tags web-orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter (PENDING, CONFIRMED, DELIVERED, CANCELLED, EXPIRED)"
// @Success 200 {array} dto.WebOrderResponse
// @Router /v1/web-orders [get]
func (h *WebOrdersHandler) List(c *gin.Context) {
	resp, err := h.svc.ListOrders(c.Request.Context(), actorFromClaims(c), c.Query("status"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *WebOrdersHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetOrder(c.Request.Context(), actorFromClaims(c), c.Param("orderNumber"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary Change the status of a web order
// @Description Stock moves only when the order crosses the held/released boundary. Re-sending the current status is a no-op.
// @Tags web-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orderNumber path string true "Order number (WEB-xxxx)"
// @Param body body dto.UpdateWebOrderStatusRequest true "Target status"
// @Success 200 {object} dto.WebOrderResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "insufficient stock on reactivation"
// @Router /v1/web-orders/{orderNumber}/status [patch]
func (h *WebOrdersHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateWebOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), actorFromClaims(c), c.Param("orderNumber"), req.Status)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateItems godoc
// @Summary Edit the lines of a web order
// @Description Only orders that currently hold stock can be edited. The old lines are returned and the new set reapplied atomically.
// @Tags web-orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param orderNumber path string true "Order number (WEB-xxxx)"
// @Param body body dto.UpdateWebOrderItemsRequest true "Replacement lines"
// @Success 200 {object} dto.WebOrderResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError "insufficient stock"
// @Router /v1/web-orders/{orderNumber}/items [put]
func (h *WebOrdersHandler) UpdateItems(c *gin.Context) {
	var req dto.UpdateWebOrderItemsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateItems(c.Request.Context(), actorFromClaims(c), c.Param("orderNumber"), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
