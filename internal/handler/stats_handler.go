package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yardlex/lexingest/internal/pkg/response"
	"github.com/yardlex/lexingest/internal/service"
)

type StatsHandler struct {
	catalog *service.CatalogService
}

func NewStatsHandler(catalog *service.CatalogService) *StatsHandler {
	return &StatsHandler{catalog: catalog}
}

func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.catalog.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}
