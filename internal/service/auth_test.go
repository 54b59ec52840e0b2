package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/rbyers87/offduty7/internal/constants"
	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/repository"
)

const testJwtSecret = "test-secret"

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	if err := db.AutoMigrate(&model.Profile{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return NewAuthService(repository.NewProfileRepository(db), testJwtSecret, time.Hour)
}

func TestAuthSignUpAndLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	profile, err := svc.SignUp(ctx, SignUpRequest{
		Email:       "officer@example.com",
		Password:    "secret123",
		FullName:    "Officer One",
		BadgeNumber: "1234",
	})
	if err != nil {
		t.Fatalf("SignUp error: %v", err)
	}
	if profile.ID == "" {
		t.Fatalf("expected generated profile id")
	}
	if profile.Role != model.RoleEmployee {
		t.Fatalf("expected default role employee, got %q", profile.Role)
	}
	if profile.PasswordHash == "secret123" {
		t.Fatalf("password must not be stored in plaintext")
	}

	session, err := svc.Login(ctx, LoginRequest{Email: "officer@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if session.Token == "" || session.User.ID != profile.ID {
		t.Fatalf("unexpected session: %+v", session)
	}

	token, err := jwt.Parse(session.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJwtSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token should verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims[constants.JwtUserID] != profile.ID || claims[constants.JwtUserRole] != model.RoleEmployee {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestAuthSignUpDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	req := SignUpRequest{Email: "dup@example.com", Password: "secret123", FullName: "Dup"}
	if _, err := svc.SignUp(ctx, req); err != nil {
		t.Fatalf("first SignUp error: %v", err)
	}
	if _, err := svc.SignUp(ctx, req); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, SignUpRequest{Email: "a@example.com", Password: "secret123", FullName: "A"}); err != nil {
		t.Fatalf("SignUp error: %v", err)
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthSignUpAdminRole(t *testing.T) {
	svc := newAuthService(t)

	profile, err := svc.SignUp(context.Background(), SignUpRequest{
		Email:    "admin@example.com",
		Password: "secret123",
		FullName: "Admin",
		Role:     model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("SignUp error: %v", err)
	}
	if profile.Role != model.RoleAdmin || !profile.IsAdmin() {
		t.Fatalf("expected admin profile, got %+v", profile)
	}
}
