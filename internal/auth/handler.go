package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CredentialStore looks up stored credentials for login. Implemented by the
// users service.
type CredentialStore interface {
	CredentialsByEmail(ctx context.Context, email string) (Principal, string, error)
}

// Handler handles HTTP requests for authentication
type Handler struct {
	tokens      *TokenManager
	credentials CredentialStore
	logger      *zap.Logger
}

// NewHandler creates a new auth handler
func NewHandler(tokens *TokenManager, credentials CredentialStore, logger *zap.Logger) *Handler {
	return &Handler{
		tokens:      tokens,
		credentials: credentials,
		logger:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login handles POST /auth/login. Credentials of unverified experts are
// accepted here; they are blocked at principal resolution instead.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	principal, hash, err := h.credentials.CredentialsByEmail(c.Request.Context(), req.Email)
	if err != nil || !CheckPassword(req.Password, hash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.tokens.CreateAccessToken(principal.ID, principal.Role)
	if err != nil {
		h.logger.Error("Failed to sign access token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
