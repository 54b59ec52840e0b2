package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
)

// UpdateProfileRequest 更新用户请求
// 邮箱创建后不可修改，与密码一样不走本接口
type UpdateProfileRequest struct {
	FullName    string `json:"full_name" binding:"required,min=1,max=100"`
	Role        string `json:"role" binding:"required,oneof=admin employee"`
	BadgeNumber string `json:"badge_number"`
}

// ProfileService 用户档案服务接口
type ProfileService interface {
	List(ctx context.Context) ([]model.Profile, error)
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	Update(ctx context.Context, id string, req UpdateProfileRequest) (*model.Profile, error)
	Delete(ctx context.Context, id string) error
}

// profileService 实现
type profileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService 创建服务实例
func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

// List 获取用户列表
func (s *profileService) List(ctx context.Context) ([]model.Profile, error) {
	profiles, err := s.profileRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// GetByID 获取单个用户
func (s *profileService) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// Update 更新用户资料
func (s *profileService) Update(ctx context.Context, id string, req UpdateProfileRequest) (*model.Profile, error) {
	profile, err := s.profileRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.FullName = req.FullName
	profile.Role = req.Role
	profile.BadgeNumber = req.BadgeNumber

	if err := s.profileRepo.Save(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// Delete 删除用户
func (s *profileService) Delete(ctx context.Context, id string) error {
	if _, err := s.profileRepo.GetByID(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if err := s.profileRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
