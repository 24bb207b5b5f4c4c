package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yardlex/lexingest/internal/pkg/response"
	"github.com/yardlex/lexingest/internal/service"
)

type DocumentHandler struct {
	catalog *service.CatalogService
}

func NewDocumentHandler(catalog *service.CatalogService) *DocumentHandler {
	return &DocumentHandler{catalog: catalog}
}

func (h *DocumentHandler) List(c *gin.Context) {
	limit, offset := parsePage(c)
	page, err := h.catalog.ListDocuments(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, page)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	detail, err := h.catalog.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}
