package repository

import (
	"errors"

	"github.com/rbyers87/offduty7/internal/model"
	"gorm.io/gorm"
)

// ProfileRepository 用户档案 Repository 接口
type ProfileRepository interface {
	Create(profile *model.Profile) error
	List() ([]model.Profile, error)
	GetByID(id string) (*model.Profile, error)
	GetByEmail(email string) (*model.Profile, error)
	Save(profile *model.Profile) error
	Delete(id string) error
}

// profileRepository 实现
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建 Repository 实例
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create 创建档案
func (r *profileRepository) Create(profile *model.Profile) error {
	return r.db.Create(profile).Error
}

// List 获取全部档案
func (r *profileRepository) List() ([]model.Profile, error) {
	var profiles []model.Profile
	result := r.db.Order("created_at ASC").Find(&profiles)
	return profiles, result.Error
}

// GetByID 根据ID获取档案
func (r *profileRepository) GetByID(id string) (*model.Profile, error) {
	var profile model.Profile
	result := r.db.Where("id = ?", id).First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

// GetByEmail 根据邮箱获取档案
func (r *profileRepository) GetByEmail(email string) (*model.Profile, error) {
	var profile model.Profile
	result := r.db.Where("email = ?", email).First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

// Save 更新档案
func (r *profileRepository) Save(profile *model.Profile) error {
	return r.db.Save(profile).Error
}

// Delete 删除档案
func (r *profileRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.Profile{}).Error
}
