package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrincipalStore struct {
	principals map[uuid.UUID]Principal
}

func (s *fakePrincipalStore) PrincipalByID(_ context.Context, id uuid.UUID) (Principal, error) {
	principal, ok := s.principals[id]
	if !ok {
		return Principal{}, ErrUnknownPrincipal
	}
	return principal, nil
}

func testRouter(t *testing.T, store *fakePrincipalStore, tokens *TokenManager, roles ...Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mw := NewMiddleware(tokens, store)

	r := gin.New()
	handlers := []gin.HandlerFunc{mw.Authenticate()}
	if len(roles) > 0 {
		handlers = append(handlers, mw.RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		principal, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": principal.ID})
	})
	r.GET("/protected", handlers...)
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMissingToken(t *testing.T) {
	tokens := NewTokenManager("secret", "HS256", time.Hour)
	r := testRouter(t, &fakePrincipalStore{}, tokens)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "garbage").Code)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	tokens := NewTokenManager("secret", "HS256", time.Hour)
	r := testRouter(t, &fakePrincipalStore{principals: map[uuid.UUID]Principal{}}, tokens)

	token, err := tokens.CreateAccessToken(uuid.New(), RoleKunde)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)
}

func TestAuthenticateBlocksUnverifiedExpert(t *testing.T) {
	tokens := NewTokenManager("secret", "HS256", time.Hour)
	expert := Principal{ID: uuid.New(), Role: RoleExperte, IsVerified: false}
	store := &fakePrincipalStore{principals: map[uuid.UUID]Principal{expert.ID: expert}}
	r := testRouter(t, store, tokens)

	token, err := tokens.CreateAccessToken(expert.ID, RoleExperte)
	require.NoError(t, err)

	// Credentials authenticate, but the operation is a permission failure.
	assert.Equal(t, http.StatusForbidden, get(r, token).Code)

	// After verification the same token succeeds.
	store.principals[expert.ID] = Principal{ID: expert.ID, Role: RoleExperte, IsVerified: true}
	assert.Equal(t, http.StatusOK, get(r, token).Code)
}

func TestRequireRoles(t *testing.T) {
	tokens := NewTokenManager("secret", "HS256", time.Hour)
	kunde := Principal{ID: uuid.New(), Role: RoleKunde, IsVerified: true}
	admin := Principal{ID: uuid.New(), Role: RoleAdmin, IsVerified: true}
	store := &fakePrincipalStore{principals: map[uuid.UUID]Principal{
		kunde.ID: kunde,
		admin.ID: admin,
	}}
	r := testRouter(t, store, tokens, RoleAdmin)

	kundeToken, err := tokens.CreateAccessToken(kunde.ID, RoleKunde)
	require.NoError(t, err)
	adminToken, err := tokens.CreateAccessToken(admin.ID, RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, kundeToken).Code)
	assert.Equal(t, http.StatusOK, get(r, adminToken).Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	tokens := NewTokenManager("secret", "HS256", time.Hour)
	kunde := Principal{ID: uuid.New(), Role: RoleKunde, IsVerified: true}
	store := &fakePrincipalStore{principals: map[uuid.UUID]Principal{kunde.ID: kunde}}
	r := testRouter(t, store, tokens)

	issued := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issued }
	token, err := tokens.CreateAccessToken(kunde.ID, RoleKunde)
	require.NoError(t, err)
	tokens.now = time.Now

	assert.Equal(t, http.StatusUnauthorized, get(r, token).Code)
}
