// Package utilities contain utility code that is used across packages
package utilities

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mulita-backend/internal/model"
)

// ErrorResponse type for swagger docs
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse type for swagger docs
type MessageResponse struct {
	Message string `json:"message"`
}

// ExtractPrincipal extracts the resolved principal from the gin context.
// It does not abort the request; it returns an error when missing/invalid.
func ExtractPrincipal(c *gin.Context) (model.Principal, error) {
	p, _ := c.Get("principal")
	if p == nil {
		return model.Principal{}, errors.New("principal not provided")
	}

	principal, ok := p.(model.Principal)
	if !ok {
		return model.Principal{}, errors.New("failed to assert principal type")
	}
	return principal, nil
}
