package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// bodyHeadroom covers the text fields and multipart framing sent next to an
// upload.
const bodyHeadroom = 1 << 20

// BodyLimit caps request bodies at maxUpload plus headroom. Requests that
// announce a larger body are refused outright; the rest fail on read once
// they cross the limit.
func BodyLimit(maxUpload int64) gin.HandlerFunc {
	limit := maxUpload + bodyHeadroom
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
