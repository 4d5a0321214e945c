// Package middleware contains the request gate and utility middleware.
package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mulita-backend/internal/auth"
	"mulita-backend/internal/utilities"
)

// RequireAuth validates the bearer credential in the Authorization header by
// resolving it against the identity provider, and stores the resulting
// principal in the context. It rejects before any handler side effect runs.
func RequireAuth(identity *auth.IdentityClient) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		principal, err := identity.Authenticate(ctx.Request.Context(), ctx.GetHeader("Authorization"))
		if err != nil {
			if errors.Is(err, auth.ErrMalformedCredential) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
					Error: "Invalid authorization header",
				})
				return
			}
			if errors.Is(err, auth.ErrUnknownPrincipal) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
					Error: "User not found",
				})
				return
			}

			log.Printf("identity resolution failed: %v", err)
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Failed to resolve identity",
			})
			return
		}

		ctx.Set("principal", principal)
		ctx.Next()
	}
}
