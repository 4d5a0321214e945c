// Package auth resolves bearer credentials against the identity provider.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	"mulita-backend/internal/model"
)

// Rejection reasons surfaced to the HTTP layer as 401. Any other error from
// Authenticate is a provider/transport failure and maps to 500.
var (
	ErrMalformedCredential = errors.New("malformed authorization credential")
	ErrUnknownPrincipal    = errors.New("no user associated with credential")
)

const bearerSchema = "Bearer "

// IdentityClient resolves opaque access tokens with the identity provider's
// user endpoint. Tokens are re-resolved on every call; there is no cache.
type IdentityClient struct {
	BaseURL    string
	ServiceKey string
	HTTPClient *http.Client
}

// NewIdentityClient builds an IdentityClient from SUPABASE_URL and
// SUPABASE_SERVICE_ROLE_KEY.
func NewIdentityClient() *IdentityClient {
	return &IdentityClient{
		BaseURL:    strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		ServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// providerUser is the subset of the provider's user payload we rely on.
type providerUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// Authenticate validates the raw Authorization header value and resolves the
// embedded token with the identity provider. The returned Principal carries
// the role claim from user metadata; a missing claim is an empty role, not
// an error.
func (ic *IdentityClient) Authenticate(ctx context.Context, authorization string) (model.Principal, error) {

	var principal model.Principal

	if !strings.HasPrefix(authorization, bearerSchema) || len(authorization) == len(bearerSchema) {
		return principal, ErrMalformedCredential
	}
	token := authorization[len(bearerSchema):]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ic.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return principal, fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("apikey", ic.ServiceKey)
	req.Header.Set("Authorization", bearerSchema+token)

	resp, err := ic.HTTPClient.Do(req)
	if err != nil {
		return principal, fmt.Errorf("failed to reach identity provider: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close identity response body: %v", err)
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		// fallthrough to decoding
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return principal, ErrUnknownPrincipal
	default:
		body, _ := io.ReadAll(resp.Body)
		return principal, fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var user providerUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return principal, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if user.ID == "" {
		return principal, ErrUnknownPrincipal
	}

	principal.ID = user.ID
	principal.Email = user.Email
	if role, ok := user.UserMetadata["rol"].(string); ok {
		principal.Role = role
	}

	return principal, nil
}
