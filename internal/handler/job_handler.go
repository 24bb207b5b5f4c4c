package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yardlex/lexingest/internal/pkg/response"
	"github.com/yardlex/lexingest/internal/service"
)

type JobHandler struct {
	catalog *service.CatalogService
}

func NewJobHandler(catalog *service.CatalogService) *JobHandler {
	return &JobHandler{catalog: catalog}
}

func (h *JobHandler) List(c *gin.Context) {
	limit, offset := parsePage(c)
	jobs, err := h.catalog.ListJobs(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, jobs)
}

func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.catalog.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, job)
}
