package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_ProducesValidHash(t *testing.T) {
	hash, err := HashPassword("mysecretpassword")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "" {
		t.Error("expected non-empty hash")
	}
	if hash == "mysecretpassword" {
		t.Error("hash must not equal the plaintext password")
	}
}

func TestCheckPassword_CorrectPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPassword(hash, "correct-password") {
		t.Error("CheckPassword returned false for the correct password")
	}
}

func TestCheckPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if CheckPassword(hash, "wrong-password") {
		t.Error("CheckPassword returned true for the wrong password")
	}
}

func TestValidatePasswordStrength_AcceptsStrong(t *testing.T) {
	cases := []string{"Passw0rd", "Str0ngEnough", "Abcdefg1"}
	for _, p := range cases {
		if err := ValidatePasswordStrength(p); err != nil {
			t.Errorf("expected %q to be accepted, got %v", p, err)
		}
	}
}

func TestValidatePasswordStrength_RejectsWeak(t *testing.T) {
	cases := []string{
		"short1A",
		"alllowercase1",
		"ALLUPPERCASE1",
		"NoDigitsHere",
		strings.Repeat("Aa1", 25),
	}
	for _, p := range cases {
		if err := ValidatePasswordStrength(p); err == nil {
			t.Errorf("expected %q to be rejected", p)
		}
	}
}
