package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"k8s.io/klog/v2"

	"github.com/rbyers87/offduty7/internal/constants"
	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/repository"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// SignUpRequest 注册请求
type SignUpRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	FullName    string `json:"full_name" binding:"required,min=1,max=100"`
	Role        string `json:"role" binding:"omitempty,oneof=admin employee"`
	BadgeNumber string `json:"badge_number"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Session 登录会话信息
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *model.Profile `json:"user"`
}

// AuthService 认证服务接口
type AuthService interface {
	SignUp(ctx context.Context, req SignUpRequest) (*model.Profile, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	GenerateToken(profile *model.Profile, duration time.Duration) (string, error)
}

// authService 实现
type authService struct {
	profileRepo   repository.ProfileRepository
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewAuthService 创建服务实例
func NewAuthService(profileRepo repository.ProfileRepository, jwtSecret string, tokenDuration time.Duration) AuthService {
	return &authService{
		profileRepo:   profileRepo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
	}
}

// SignUp 注册新用户并创建档案
func (s *authService) SignUp(ctx context.Context, req SignUpRequest) (*model.Profile, error) {
	if _, err := s.profileRepo.GetByEmail(req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleEmployee
	}

	profile := &model.Profile{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		BadgeNumber:  req.BadgeNumber,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	klog.V(6).Infof("注册用户 %s 角色 %s", profile.Email, profile.Role)
	return profile, nil
}

// Login 校验密码并签发 Token
func (s *authService) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	profile, err := s.profileRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(profile, s.tokenDuration)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenDuration),
		User:      profile,
	}, nil
}

// GenerateToken 生成包含用户标识与角色的 Token
func (s *authService) GenerateToken(profile *model.Profile, duration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		constants.JwtUserID:   profile.ID,
		constants.JwtUserName: profile.Email,
		constants.JwtUserRole: profile.Role,
		"exp":                 time.Now().Add(duration).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
