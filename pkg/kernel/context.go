package kernel

// AuthContext is the authentication context injected into each request
// after the access token has been verified.
type AuthContext struct {
	AccountID AccountID `json:"account_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

// IsValid checks whether the AuthContext identifies an account
func (ac *AuthContext) IsValid() bool {
	return !ac.AccountID.IsEmpty()
}

// IsAdmin checks whether the context carries the admin role
func (ac *AuthContext) IsAdmin() bool {
	return ac.Role == "admin"
}

// ContextKey is the type for context.Context keys owned by this module
type ContextKey string

const (
	// AuthContextKey stores the AuthContext in context.Context
	AuthContextKey ContextKey = "auth_context"

	// RequestIDKey stores the request ID
	RequestIDKey ContextKey = "request_id"
)
