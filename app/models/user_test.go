package models

import (
	"testing"
	"time"
)

func TestCreateUserHashesPassword(t *testing.T) {
	user, err := CreateUser("Test User", "user@example.com", "supersecret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Password == "supersecret" {
		t.Fatalf("expected password to be hashed")
	}
	if !user.CheckPassword("supersecret") {
		t.Fatalf("expected password check to succeed")
	}
	if user.CheckPassword("wrong") {
		t.Fatalf("expected wrong password to fail")
	}
	if !user.IsActive() {
		t.Fatalf("expected new user to be active")
	}
}

func TestCreateUserValidation(t *testing.T) {
	if _, err := CreateUser("Test User", "not-an-email", "supersecret"); err == nil {
		t.Fatalf("expected invalid email to be rejected")
	}
	if _, err := CreateUser("T", "user@example.com", "supersecret"); err == nil {
		t.Fatalf("expected too-short name to be rejected")
	}
}

func TestResetTokenValid(t *testing.T) {
	user, err := CreateUser("Test User", "user@example.com", "supersecret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if user.ResetTokenValid("anything", time.Now()) {
		t.Fatalf("expected no token to be invalid")
	}

	if err := user.GenerateResetToken(); err != nil {
		t.Fatalf("generate token: %v", err)
	}
	now := time.Now()

	if !user.ResetTokenValid(user.ResetToken, now) {
		t.Fatalf("expected fresh token to be valid")
	}
	if user.ResetTokenValid("other-token", now) {
		t.Fatalf("expected mismatched token to be invalid")
	}
	if user.ResetTokenValid(user.ResetToken, now.Add(2*time.Hour)) {
		t.Fatalf("expected token to expire after one hour")
	}
}
