package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/catalog"
	"carenow-backend/pkg/utils"
)

type CatalogHandler struct {
	catalog *catalog.Service
}

func NewCatalogHandler(cat *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

func (h *CatalogHandler) ListServices(c *gin.Context) {
	services, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "services", services)
}

func (h *CatalogHandler) GetService(c *gin.Context) {
	service, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "service", service)
}
