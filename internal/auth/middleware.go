package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrUnknownPrincipal is returned by a PrincipalStore when no user exists
// for the given id or email.
var ErrUnknownPrincipal = errors.New("unknown principal")

// PrincipalStore resolves token subjects to principals. Implemented by the
// users service.
type PrincipalStore interface {
	PrincipalByID(ctx context.Context, id uuid.UUID) (Principal, error)
}

const principalKey = "auth.principal"

// Middleware derives the authenticated principal from the Authorization
// header and enforces role requirements.
type Middleware struct {
	tokens     *TokenManager
	principals PrincipalStore
}

// NewMiddleware creates the access-control middleware.
func NewMiddleware(tokens *TokenManager, principals PrincipalStore) *Middleware {
	return &Middleware{tokens: tokens, principals: principals}
}

// Authenticate resolves the current principal and aborts with 401 when the
// token is missing, invalid or expired, and with 403 when an unverified
// expert attempts any authenticated operation.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := m.tokens.DecodeToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		principal, err := m.principals.PrincipalByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		// Unverified experts may hold a valid token but cannot act.
		if principal.Role == RoleExperte && !principal.IsVerified {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account pending verification"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRoles aborts with 403 unless the principal holds one of the given
// roles. Must run after Authenticate.
func (m *Middleware) RequireRoles(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		if !Allowed(principal, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal set by Authenticate.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	principal, ok := v.(Principal)
	return principal, ok
}
