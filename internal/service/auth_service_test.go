package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"nutrivida/clinic-app/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture() (AuthService, *fakeUserRepo, *fakeNotificationRepo) {
	users := newFakeUserRepo()
	notifications := &fakeNotificationRepo{}
	svc := NewAuthService(users, notifications, "test-secret", time.Hour)
	return svc, users, notifications
}

func TestRegisterCreatesActivePatient(t *testing.T) {
	svc, users, notifications := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		FirstName: "Ana",
		LastName:  "García",
		Email:     "ana@example.com",
		Password:  "supersecret",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != domain.RolePatient {
		t.Errorf("expected role %q, got %q", domain.RolePatient, user.Role)
	}
	if user.Status != domain.StatusActive {
		t.Errorf("expected status %q, got %q", domain.StatusActive, user.Status)
	}
	if user.PasswordHash != "" {
		t.Error("password hash should be cleared from the returned user")
	}

	stored, err := users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("stored user not found: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "supersecret" {
		t.Error("stored password should be a bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersecret")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}

	welcome, err := notifications.GetByUserID(ctx, user.ID, false)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if len(welcome) != 1 {
		t.Fatalf("expected 1 welcome notification, got %d", len(welcome))
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	input := RegisterInput{FirstName: "Ana", Email: "ana@example.com", Password: "supersecret"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, input); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), RegisterInput{Email: "ana@example.com", Password: "x"}); err == nil {
		t.Fatal("expected error for missing first name")
	}
}

func TestLoginSuccess(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{FirstName: "Ana", Email: "ana@example.com", Password: "supersecret"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	token, user, err := svc.Login(ctx, "ana@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Error("expected a non-empty token")
	}
	if user == nil || user.Email != "ana@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash != "" {
		t.Error("password hash should be cleared from the returned user")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{FirstName: "Ana", Email: "ana@example.com", Password: "supersecret"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "ana@example.com", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	// Unknown email maps to the same error so the caller cannot tell
	// which of the two credentials was wrong.
	if _, _, err := svc.Login(ctx, "nobody@example.com", "supersecret"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed for unknown email, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{FirstName: "Ana", Email: "ana@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	stored, _ := users.GetByID(ctx, registered.ID)
	stored.Status = domain.StatusInactive
	if err := users.Update(ctx, stored); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "ana@example.com", "supersecret"); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	svc, _, notifications := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{FirstName: "Ana", Email: "ana@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.ForgotPassword(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("unknown email should not error, got %v", err)
	}
	if err := svc.ForgotPassword(ctx, "ana@example.com"); err != nil {
		t.Fatalf("ForgotPassword failed: %v", err)
	}

	all, err := notifications.GetByUserID(ctx, registered.ID, false)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	// Welcome notification plus the reset notification.
	if len(all) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(all))
	}
}
