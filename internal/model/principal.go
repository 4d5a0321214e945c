package model

// Principal is the identity resolved from a bearer credential. It is
// rebuilt from the identity provider on every request and never persisted.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	// Role is the "rol" claim from the provider's user metadata. An
	// account without the claim has an empty role, which simply fails
	// every role check.
	Role string `json:"role"`
}

// Roles allowed to mutate news items. Fixed for every write endpoint.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superAdmin"
)
