package handler

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/yardlex/lexingest/internal/pkg/response"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Get(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}
