package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storefrontlabs/storefront/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID:  userID,
		Email:   "buyer@example.com",
		IsAdmin: true,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("unexpected user id %s", claims.UserID)
	}
	if claims.Email != "buyer@example.com" {
		t.Fatalf("unexpected email %s", claims.Email)
	}
	if !claims.IsAdmin {
		t.Fatal("expected admin claim to be set")
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()

	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "buyer@example.com",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	minted, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	other := testJWTConfig()
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, minted); err == nil {
		t.Fatal("expected issuer mismatch to be rejected")
	}
}

func TestMintAccessTokenValidatesInput(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected error for missing user id")
	}

	cfg.Secret = ""
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New()}); err == nil {
		t.Fatal("expected error for missing secret")
	}
}
