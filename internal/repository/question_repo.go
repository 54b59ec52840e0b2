package repository

import (
	"errors"

	"github.com/rbyers87/offduty7/internal/model"
	"gorm.io/gorm"
)

// QuestionRepository 表单问题 Repository 接口
type QuestionRepository interface {
	Create(q *model.FormQuestion) error
	List() ([]model.FormQuestion, error)
	GetByID(id uint) (*model.FormQuestion, error)
	Save(q *model.FormQuestion) error
	Delete(id uint) error
	Count() (int64, error)
}

// questionRepository 实现
type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建 Repository 实例
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// Create 创建问题
func (r *questionRepository) Create(q *model.FormQuestion) error {
	return r.db.Create(q).Error
}

// List 获取全部问题，按排序号与ID排序
func (r *questionRepository) List() ([]model.FormQuestion, error) {
	var questions []model.FormQuestion
	result := r.db.Order("sort_order ASC, id ASC").Find(&questions)
	return questions, result.Error
}

// GetByID 根据ID获取问题
func (r *questionRepository) GetByID(id uint) (*model.FormQuestion, error) {
	var q model.FormQuestion
	result := r.db.First(&q, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &q, nil
}

// Save 更新问题
func (r *questionRepository) Save(q *model.FormQuestion) error {
	return r.db.Save(q).Error
}

// Delete 删除问题
func (r *questionRepository) Delete(id uint) error {
	return r.db.Delete(&model.FormQuestion{}, id).Error
}

// Count 问题总数
func (r *questionRepository) Count() (int64, error) {
	var count int64
	result := r.db.Model(&model.FormQuestion{}).Count(&count)
	return count, result.Error
}
