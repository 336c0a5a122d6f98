package service

import (
	"context"
	"errors"
	"testing"

	"nutrivida/clinic-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSuperadminFixture(t *testing.T) (SuperadminService, *fakeUserRepo, primitive.ObjectID) {
	t.Helper()
	users := newFakeUserRepo()
	callerID, err := users.Create(context.Background(), &domain.User{
		FirstName: "Root",
		Email:     "root@example.com",
		Role:      domain.RoleSuperadmin,
		Status:    domain.StatusActive,
	})
	if err != nil {
		t.Fatalf("seed superadmin failed: %v", err)
	}
	return NewSuperadminService(users), users, callerID
}

func TestCreateStaffUser(t *testing.T) {
	svc, users, _ := newSuperadminFixture(t)
	ctx := context.Background()

	created, err := svc.CreateStaffUser(ctx, "Nora", "Ruiz", "nora@example.com", "longenough", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateStaffUser failed: %v", err)
	}
	if created.Role != domain.RoleAdmin || created.Status != domain.StatusActive {
		t.Errorf("unexpected role/status: %s/%s", created.Role, created.Status)
	}
	if created.PasswordHash != "" {
		t.Error("password hash should be cleared from the returned user")
	}
	stored, _ := users.GetByID(ctx, created.ID)
	if stored.PasswordHash == "" || stored.PasswordHash == "longenough" {
		t.Error("stored password should be a bcrypt hash")
	}

	if _, err := svc.CreateStaffUser(ctx, "Nora", "", "nora@example.com", "longenough", domain.RoleAdmin); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
	if _, err := svc.CreateStaffUser(ctx, "Pepe", "", "pepe@example.com", "longenough", domain.RolePatient); err == nil {
		t.Fatal("patient accounts must not be provisioned here")
	}
}

func TestSuperadminCannotModifySelf(t *testing.T) {
	svc, _, callerID := newSuperadminFixture(t)
	ctx := context.Background()

	if err := svc.SetUserStatus(ctx, callerID, callerID, domain.StatusInactive); !errors.Is(err, ErrCannotDemoteSelf) {
		t.Fatalf("expected ErrCannotDemoteSelf, got %v", err)
	}
	if err := svc.SetUserRole(ctx, callerID, callerID, domain.RolePatient); !errors.Is(err, ErrCannotDemoteSelf) {
		t.Fatalf("expected ErrCannotDemoteSelf, got %v", err)
	}
	if err := svc.DeleteUser(ctx, callerID, callerID); !errors.Is(err, ErrCannotDemoteSelf) {
		t.Fatalf("expected ErrCannotDemoteSelf, got %v", err)
	}
}

func TestSetUserStatusAndRole(t *testing.T) {
	svc, users, callerID := newSuperadminFixture(t)
	ctx := context.Background()

	target, err := svc.CreateStaffUser(ctx, "Nora", "Ruiz", "nora@example.com", "longenough", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateStaffUser failed: %v", err)
	}

	if err := svc.SetUserStatus(ctx, callerID, target.ID, domain.StatusInactive); err != nil {
		t.Fatalf("SetUserStatus failed: %v", err)
	}
	if err := svc.SetUserRole(ctx, callerID, target.ID, domain.RoleSuperadmin); err != nil {
		t.Fatalf("SetUserRole failed: %v", err)
	}

	stored, _ := users.GetByID(ctx, target.ID)
	if stored.Status != domain.StatusInactive {
		t.Errorf("expected status %q, got %q", domain.StatusInactive, stored.Status)
	}
	if stored.Role != domain.RoleSuperadmin {
		t.Errorf("expected role %q, got %q", domain.RoleSuperadmin, stored.Role)
	}

	unknown := primitive.NewObjectID()
	if err := svc.SetUserStatus(ctx, callerID, unknown, domain.StatusActive); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.DeleteUser(ctx, callerID, unknown); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetSystemStats(t *testing.T) {
	svc, users, _ := newSuperadminFixture(t)
	ctx := context.Background()

	if _, err := svc.CreateStaffUser(ctx, "Nora", "Ruiz", "nora@example.com", "longenough", domain.RoleAdmin); err != nil {
		t.Fatalf("CreateStaffUser failed: %v", err)
	}
	for _, email := range []string{"p1@example.com", "p2@example.com"} {
		if _, err := users.Create(ctx, &domain.User{FirstName: "P", Email: email, Role: domain.RolePatient, Status: domain.StatusActive}); err != nil {
			t.Fatalf("seed patient failed: %v", err)
		}
	}

	stats, err := svc.GetSystemStats(ctx)
	if err != nil {
		t.Fatalf("GetSystemStats failed: %v", err)
	}
	if stats.Patients != 2 || stats.Nutritionists != 1 || stats.Superadmins != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.TotalUsers != 4 {
		t.Errorf("expected 4 total users, got %d", stats.TotalUsers)
	}
}
