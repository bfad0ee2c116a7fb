package handler

import (
	"net/http"

	"nexopos/internal/apierror"
	"nexopos/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct{ svc service.CatalogService }

func NewCatalogHandler(svc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ListCategories GET /v1/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	resp, err := h.svc.ListCategories(c.Request.Context(), actorFromClaims(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not list categories"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSuppliers GET /v1/suppliers
func (h *CatalogHandler) ListSuppliers(c *gin.Context) {
	resp, err := h.svc.ListSuppliers(c.Request.Context(), actorFromClaims(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("could not list suppliers"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
