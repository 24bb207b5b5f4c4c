package handler

import (
	"io"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yardlex/lexingest/internal/filestore"
	"github.com/yardlex/lexingest/internal/pkg/errcode"
	"github.com/yardlex/lexingest/internal/pkg/response"
)

// ArchiveHandler replays raw scraped pages from the archive store.
type ArchiveHandler struct {
	store filestore.IStore
}

func NewArchiveHandler(store filestore.IStore) *ArchiveHandler {
	return &ArchiveHandler{store: store}
}

func (h *ArchiveHandler) Get(c *gin.Context) {
	if h.store == nil {
		response.Error(c, errcode.ErrNotFound, "archiving disabled")
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	reader, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		if os.IsNotExist(err) {
			response.Error(c, errcode.ErrNotFound, "not found")
			return
		}
		handleError(c, err)
		return
	}
	defer reader.Close()
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(200)
	_, _ = io.Copy(c.Writer, reader)
}
