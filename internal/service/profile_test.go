package service

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/repository"
)

func newProfileService(t *testing.T) (ProfileService, repository.ProfileRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	if err := db.AutoMigrate(&model.Profile{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	repo := repository.NewProfileRepository(db)
	return NewProfileService(repo), repo
}

func seedProfile(t *testing.T, repo repository.ProfileRepository) *model.Profile {
	t.Helper()
	p := &model.Profile{
		ID:          uuid.NewString(),
		Email:       "officer@example.com",
		FullName:    "Officer One",
		Role:        model.RoleEmployee,
		BadgeNumber: "1234",
	}
	if err := repo.Create(p); err != nil {
		t.Fatalf("seed profile error: %v", err)
	}
	return p
}

func TestProfileUpdate(t *testing.T) {
	svc, repo := newProfileService(t)
	p := seedProfile(t, repo)

	updated, err := svc.Update(context.Background(), p.ID, UpdateProfileRequest{
		FullName:    "Officer Two",
		Role:        model.RoleAdmin,
		BadgeNumber: "5678",
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.FullName != "Officer Two" || updated.Role != model.RoleAdmin || updated.BadgeNumber != "5678" {
		t.Fatalf("unexpected updated profile: %+v", updated)
	}
	// 邮箱不随更新接口变化
	if updated.Email != p.Email {
		t.Fatalf("email must be immutable, got %q", updated.Email)
	}

	got, err := svc.GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.FullName != "Officer Two" {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestProfileDelete(t *testing.T) {
	svc, repo := newProfileService(t)
	p := seedProfile(t, repo)

	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), p.ID); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound after delete, got %v", err)
	}
}

func TestProfileNotFound(t *testing.T) {
	svc, _ := newProfileService(t)
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing", UpdateProfileRequest{FullName: "X", Role: model.RoleEmployee}); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
