package jwthandling

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret-key-for-signing"

func TestConductorUserToken(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		token, err := GenerateNewConductorUserToken(time.Minute, "user-1", "libretexts", "Ada", "Lovelace", "ada@example.org", true, testSecret)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		claims, valid, err := ValidateConductorUserToken(token, testSecret)
		if err != nil || !valid {
			t.Fatalf("token should be valid: %v", err)
		}
		if claims.Subject != "user-1" || claims.OrgID != "libretexts" || !claims.IsAdmin {
			t.Errorf("unexpected claims: %+v", claims)
		}
		if claims.FirstName != "Ada" || claims.LastName != "Lovelace" || claims.Email != "ada@example.org" {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateNewConductorUserToken(time.Minute, "user-1", "libretexts", "", "", "", false, testSecret)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, valid, err := ValidateConductorUserToken(token, "other-secret")
		if valid || err == nil {
			t.Error("token should be rejected")
		}
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateNewConductorUserToken(-time.Minute, "user-1", "libretexts", "", "", "", false, testSecret)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, valid, err := ValidateConductorUserToken(token, testSecret)
		if valid || err == nil {
			t.Error("expired token should be rejected")
		}
	})

	t.Run("no user id", func(t *testing.T) {
		token, err := GenerateNewConductorUserToken(time.Minute, "", "libretexts", "", "", "", false, testSecret)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, valid, err := ValidateConductorUserToken(token, testSecret)
		if valid || !errors.Is(err, ErrMissingSubject) {
			t.Errorf("token without subject should be rejected, got valid=%v err=%v", valid, err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		_, valid, err := ValidateConductorUserToken("not-a-token", testSecret)
		if valid || err == nil {
			t.Error("malformed token should be rejected")
		}
	})
}
