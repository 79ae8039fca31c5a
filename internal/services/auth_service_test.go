package services

import (
	"errors"
	"testing"

	"spark/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	user, err := svc.Register(&RegisterRequest{
		Email:    "  Founder@Example.com ",
		Name:     "Founder",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "founder@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "correct-horse" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}
	if user.Role != models.UserRoleUser || user.Status != models.UserStatusActive {
		t.Errorf("unexpected defaults: role=%s status=%s", user.Role, user.Status)
	}

	// Login is case-insensitive on the email
	loggedIn, err := svc.Login("FOUNDER@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("logged in as wrong user: %d", loggedIn.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	var ve *ValidationError
	_, err := svc.Register(&RegisterRequest{Email: "a@example.com", Name: "A", Password: "short"})
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for short password, got %v", err)
	}

	if _, err := svc.Register(&RegisterRequest{Email: "a@example.com", Name: "A", Password: "long-enough"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err = svc.Register(&RegisterRequest{Email: "A@EXAMPLE.COM", Name: "Again", Password: "long-enough"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken for duplicate email, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	if _, err := svc.Register(&RegisterRequest{Email: "b@example.com", Name: "B", Password: "long-enough"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Login("b@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login("nobody@example.com", "long-enough"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	db.Model(&models.User{}).Where("email = ?", "b@example.com").
		Update("status", models.UserStatusBanned)
	if _, err := svc.Login("b@example.com", "long-enough"); !errors.Is(err, ErrUserRestricted) {
		t.Errorf("expected ErrUserRestricted for banned user, got %v", err)
	}
}
