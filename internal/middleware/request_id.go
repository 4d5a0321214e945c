package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the response header carrying the per-request id.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request a uuid, echoed in the response header and
// stored in the context so workflow log lines (orphaned uploads in
// particular) can be correlated during offline reconciliation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}
