package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yardlex/lexingest/internal/pkg/errcode"
	"github.com/yardlex/lexingest/internal/pkg/response"
	"github.com/yardlex/lexingest/internal/scrape"
	"github.com/yardlex/lexingest/internal/service"
)

// IngestHandler triggers scrape runs and embedding sweeps on demand.
type IngestHandler struct {
	ingest     *service.IngestService
	embeddings *service.EmbeddingService
	deps       *scrape.Deps
}

func NewIngestHandler(ingest *service.IngestService, embeddings *service.EmbeddingService, deps *scrape.Deps) *IngestHandler {
	return &IngestHandler{ingest: ingest, embeddings: embeddings, deps: deps}
}

func (h *IngestHandler) Run(c *gin.Context) {
	source := c.Param("source")
	scraper, err := scrape.New(source, h.deps)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "unknown source")
		return
	}
	result, err := h.ingest.RunJob(c.Request.Context(), source, scraper.Scrape)
	if err != nil {
		response.Error(c, errcode.ErrScrapeFailed, "scrape failed")
		return
	}
	response.Success(c, result)
}

func (h *IngestHandler) Sources(c *gin.Context) {
	response.Success(c, scrape.Names())
}

func (h *IngestHandler) UpdateEmbeddings(c *gin.Context) {
	stats, err := h.embeddings.UpdateAll(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}
