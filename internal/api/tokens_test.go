package api

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sentimenthq/pulse/internal/models"
	"github.com/sentimenthq/pulse/pkg/config"
)

func testIssuer(accessTTL time.Duration) *TokenIssuer {
	return NewTokenIssuer(&config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: 24 * time.Hour,
	})
}

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "analyst@example.com",
		Role:  models.RoleAnalyst,
	}
}

func TestIssueAndParse(t *testing.T) {
	issuer := testIssuer(15 * time.Minute)
	user := testUser()

	access, refresh, expiresIn, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if expiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("expected expiresIn 900, got %d", expiresIn)
	}

	claims, userID, err := issuer.Parse(access, tokenTypeAccess)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if userID != user.ID {
		t.Errorf("expected subject %s, got %s", user.ID, userID)
	}
	if claims.Email != user.Email || claims.Role != models.RoleAnalyst {
		t.Errorf("claims did not round-trip: %+v", claims)
	}

	if _, _, err := issuer.Parse(refresh, tokenTypeRefresh); err != nil {
		t.Errorf("refresh token should parse as refresh: %v", err)
	}
}

func TestParseRejectsWrongTokenType(t *testing.T) {
	issuer := testIssuer(15 * time.Minute)
	_, refresh, _, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, _, err := issuer.Parse(refresh, tokenTypeAccess); err == nil {
		t.Error("refresh token must not authenticate as access token")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer := testIssuer(-time.Minute)
	access, _, _, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, _, err := issuer.Parse(access, tokenTypeAccess); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	access, _, _, err := testIssuer(15 * time.Minute).Issue(testUser())
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	other := NewTokenIssuer(&config.AuthConfig{
		JWTSecret:       "different-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if _, _, err := other.Parse(access, tokenTypeAccess); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}
