package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/yardlex/lexingest/internal/pkg/errcode"
	pkgErr "github.com/yardlex/lexingest/internal/pkg/errors"
	"github.com/yardlex/lexingest/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case pkgErr.IsNotFound(err):
		response.Error(c, appErr.ErrNotFound, "not found")
	case pkgErr.IsConflict(err):
		response.Error(c, appErr.ErrConflict, "conflict")
	case pkgErr.IsUnavailable(err):
		response.Error(c, appErr.ErrUnavailable, "provider unavailable")
	default:
		response.Error(c, appErr.ErrInternal, "internal error")
	}
}

func parsePage(c *gin.Context) (uint, uint) {
	limit, err := strconv.ParseUint(c.DefaultQuery("limit", "20"), 10, 32)
	if err != nil || limit == 0 || limit > 200 {
		limit = 20
	}
	offset, err := strconv.ParseUint(c.DefaultQuery("offset", "0"), 10, 32)
	if err != nil {
		offset = 0
	}
	return uint(limit), uint(offset)
}
