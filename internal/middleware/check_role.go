package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mulita-backend/internal/utilities"
)

// CheckRole protects an endpoint from principals outside the given roles.
// It must run after RequireAuth.
func CheckRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		principal, err := utilities.ExtractPrincipal(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: err.Error(),
			})
			return
		}

		if !utilities.Contains(roles, principal.Role) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, utilities.ErrorResponse{
				Error: "User doesn't have permission to access",
			})
		}
	}
}
