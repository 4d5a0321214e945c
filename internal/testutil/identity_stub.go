package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
)

// NewFakeIdentityProvider returns an httptest server that mimics the
// identity provider's user endpoint. tokens maps an access token to the
// role claim of its account; an empty role means the account has no "rol"
// metadata. Unknown tokens yield 401.
func NewFakeIdentityProvider(tokens map[string]string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		role, ok := tokens[token]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		metadata := map[string]interface{}{}
		if role != "" {
			metadata["rol"] = role
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "user-" + token,
			"email":         token + "@example.com",
			"user_metadata": metadata,
		})
	}))
}
