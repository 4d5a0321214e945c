package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var multipartOverhead = int64(8 * 1024) // rough padding

// SizeLimit checks if the request body is larger than maxBodyBytes.
// Exceeding the limit surfaces as http.MaxBytesError, usually responded
// with 413 request entity too large.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		w := c.Writer

		c.Request.Body = http.MaxBytesReader(w, c.Request.Body, maxBodyBytes+multipartOverhead)

		c.Next()
	}
}
