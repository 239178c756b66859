package auth

import (
	"testing"
	"time"

	appctx "posrail/internal/core/context"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	user := NewUser("cashier@example.com", "Cashier One", "hash", appctx.RoleCashier)

	token, expiresAt, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if time.Until(expiresAt) < 11*time.Hour {
		t.Errorf("expiry too close: %s", expiresAt)
	}

	uc, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if uc.UserID != user.ID.String() {
		t.Errorf("user id = %s, want %s", uc.UserID, user.ID)
	}
	if uc.Email != user.Email || uc.Name != user.Name {
		t.Errorf("claims mismatch: %+v", uc)
	}
	if uc.Role != appctx.RoleCashier {
		t.Errorf("role = %s, want cashier", uc.Role)
	}
}

func TestJWT_RejectsWrongSecret(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret-a"))
	user := NewUser("admin@example.com", "Admin", "hash", appctx.RoleAdmin)

	token, _, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	other := NewJWTService(DefaultJWTConfig("secret-b"))
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestJWT_RejectsExpiredToken(t *testing.T) {
	cfg := DefaultJWTConfig("test-secret")
	cfg.AccessTokenTTL = -time.Minute
	svc := NewJWTService(cfg)
	user := NewUser("admin@example.com", "Admin", "hash", appctx.RoleAdmin)

	token, _, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}

func TestJWT_RejectsGarbage(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("test-secret"))
	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected validation to fail")
	}
}
