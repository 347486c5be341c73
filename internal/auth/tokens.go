package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired means the token was well formed but past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other token defect.
	ErrTokenInvalid = errors.New("invalid token")
)

// accessClaims is the internal claims type used for JWT parsing.
type accessClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Claims are the decoded contents of an access token.
type Claims struct {
	UserID uuid.UUID
	Role   Role
}

// TokenManager issues and validates signed bearer tokens.
type TokenManager struct {
	secret    []byte
	method    jwt.SigningMethod
	expiry    time.Duration
	validAlgs []string
	now       func() time.Time
}

// NewTokenManager builds a token manager for an HMAC algorithm
// (HS256/HS384/HS512).
func NewTokenManager(secret, algorithm string, expiry time.Duration) *TokenManager {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	return &TokenManager{
		secret:    []byte(secret),
		method:    method,
		expiry:    expiry,
		validAlgs: []string{method.Alg()},
		now:       time.Now,
	}
}

// CreateAccessToken signs a token carrying the subject id and role.
func (m *TokenManager) CreateAccessToken(userID uuid.UUID, role Role) (string, error) {
	now := m.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
		Role: string(role),
	}
	return jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
}

// DecodeToken validates a token and returns its claims. Expired tokens are
// reported as ErrTokenExpired, every other failure as ErrTokenInvalid.
func (m *TokenManager) DecodeToken(token string) (Claims, error) {
	var parsed accessClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods(m.validAlgs),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	userID, err := uuid.Parse(parsed.Subject)
	if err != nil {
		return Claims{}, ErrTokenInvalid
	}
	return Claims{UserID: userID, Role: Role(parsed.Role)}, nil
}
