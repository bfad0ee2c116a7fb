package handler

import (
	"fmt"
	"net/http"
	"time"

	"nexopos/internal/apierror"
	"nexopos/internal/dto"
	"nexopos/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListLogs godoc
// @Summary Inventory ledger
// @Description Paginated, newest first, filterable by date range and category.
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param start query string false "YYYY-MM-DD"
// @Param end query string false "YYYY-MM-DD (inclusive)"
// @Param categoryId query string false "Category UUID"
// @Success 200 {object} dto.InventoryLogListResponse
// @Router /v1/inventory/logs [get]
func (h *InventoryHandler) ListLogs(c *gin.Context) {
	var filter dto.InventoryLogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters"))
		return
	}
	resp, err := h.svc.ListLogs(c.Request.Context(), actorFromClaims(c), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportCSV godoc
// @Summary Download the ledger as CSV
// @Description Same filters as the list endpoint, without pagination.
// @Tags inventory
// @Produce text/csv
// @Security BearerAuth
// @Param start query string false "YYYY-MM-DD"
// @Param end query string false "YYYY-MM-DD (inclusive)"
// @Param categoryId query string false "Category UUID"
// @Success 200 {file} binary
// @Router /v1/inventory/logs/export [get]
func (h *InventoryHandler) ExportCSV(c *gin.Context) {
	var filter dto.InventoryLogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters"))
		return
	}
	data, err := h.svc.ExportCSV(c.Request.Context(), actorFromClaims(c), filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	filename := fmt.Sprintf("inventory_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}
