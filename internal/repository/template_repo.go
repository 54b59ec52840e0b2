package repository

import (
	"errors"

	"github.com/rbyers87/offduty7/internal/model"
	"gorm.io/gorm"
)

// TemplateRepository PDF 模板 Repository 接口
type TemplateRepository interface {
	Create(tpl *model.PDFTemplate) error
	List() ([]model.PDFTemplate, error)
	GetByID(id string) (*model.PDFTemplate, error)
	Save(tpl *model.PDFTemplate) error
	Delete(id string) error
}

// templateRepository 实现
type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository 创建 Repository 实例
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// Create 创建模板
func (r *templateRepository) Create(tpl *model.PDFTemplate) error {
	return r.db.Create(tpl).Error
}

// List 获取模板列表，按创建时间倒序
func (r *templateRepository) List() ([]model.PDFTemplate, error) {
	var templates []model.PDFTemplate
	result := r.db.Order("created_at DESC").Find(&templates)
	return templates, result.Error
}

// GetByID 根据ID获取模板
func (r *templateRepository) GetByID(id string) (*model.PDFTemplate, error) {
	var tpl model.PDFTemplate
	result := r.db.Where("id = ?", id).First(&tpl)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &tpl, nil
}

// Save 更新模板
func (r *templateRepository) Save(tpl *model.PDFTemplate) error {
	return r.db.Save(tpl).Error
}

// Delete 删除模板及其字段
func (r *templateRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&model.PDFField{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.PDFTemplate{}).Error
	})
}
