package auth

import (
	"testing"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key-at-least-32-chars!!"
	token, err := GenerateToken(1, "admin", secret, 24)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.UserID != 1 {
		t.Errorf("expected UserID 1, got %d", claims.UserID)
	}
	if claims.Username != "admin" {
		t.Errorf("expected Username admin, got %s", claims.Username)
	}
	if claims.ID == "" {
		t.Error("expected a JTI to be assigned")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(1, "admin", "secret-one-that-is-long-enough!!", 24)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	_, err = ValidateToken(token, "wrong-secret-that-is-long-enough")
	if err == nil {
		t.Error("expected error validating token with wrong secret")
	}
}

func TestValidateToken_EmptyToken(t *testing.T) {
	_, err := ValidateToken("", "any-secret")
	if err == nil {
		t.Error("expected error validating empty token")
	}
}

func TestGeneratePendingToken_RoundTrip(t *testing.T) {
	secret := "test-secret-key-at-least-32-chars!!"
	token, err := GeneratePendingToken(7, secret)
	if err != nil {
		t.Fatalf("GeneratePendingToken failed: %v", err)
	}

	userID, err := ValidatePendingToken(token, secret)
	if err != nil {
		t.Fatalf("ValidatePendingToken failed: %v", err)
	}
	if userID != 7 {
		t.Errorf("expected user id 7, got %d", userID)
	}
}

func TestValidatePendingToken_RejectsSessionToken(t *testing.T) {
	secret := "test-secret-key-at-least-32-chars!!"
	token, err := GenerateToken(1, "admin", secret, 24)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ValidatePendingToken(token, secret); err == nil {
		t.Error("a full session token must not pass as a TOTP pending token")
	}
}

func TestValidateToken_RejectsPendingToken(t *testing.T) {
	secret := "test-secret-key-at-least-32-chars!!"
	token, err := GeneratePendingToken(7, secret)
	if err != nil {
		t.Fatalf("GeneratePendingToken failed: %v", err)
	}
	if _, err := ValidateToken(token, secret); err == nil {
		t.Error("a TOTP pending token must not pass as a full session token")
	}
}
