package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sentimenthq/pulse/internal/errs"
	"github.com/sentimenthq/pulse/internal/models"
	"github.com/sentimenthq/pulse/pkg/config"
)

// Token types embedded in claims so a refresh token cannot authenticate a
// request
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims carried by issued tokens
type Claims struct {
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	TokenType string          `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the API's JWTs
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer creates an issuer from auth configuration
func NewTokenIssuer(cfg *config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// Issue creates an access/refresh token pair for the user
func (t *TokenIssuer) Issue(user *models.User) (access, refresh string, expiresIn int64, err error) {
	access, err = t.sign(user, tokenTypeAccess, t.accessTTL)
	if err != nil {
		return "", "", 0, err
	}
	refresh, err = t.sign(user, tokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return "", "", 0, err
	}
	return access, refresh, int64(t.accessTTL.Seconds()), nil
}

func (t *TokenIssuer) sign(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies a token of the expected type and returns its claims and
// the subject user id
func (t *TokenIssuer) Parse(raw, expectedType string) (*Claims, uuid.UUID, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.Unauthorized("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, uuid.Nil, errs.Unauthorized("invalid or expired token")
	}
	if claims.TokenType != expectedType {
		return nil, uuid.Nil, errs.Unauthorized("wrong token type")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, uuid.Nil, errs.Unauthorized("malformed token subject")
	}
	return &claims, userID, nil
}
