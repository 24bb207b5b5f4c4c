package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

// codedError satisfies proxyutil's coded-error contract so the envelope
// carries a stable numeric code alongside the message.
type codedError struct {
	code    uint32
	message string
}

func (e codedError) Error() string {
	return e.message
}

func (e codedError) Code() uint32 {
	return e.code
}

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, http.StatusOK, codedError{code: uint32(code), message: message})
}
