package repository

import (
	"github.com/rbyers87/offduty7/internal/model"
	"gorm.io/gorm"
)

// FieldRepository 模板字段 Repository 接口
type FieldRepository interface {
	GetByTemplateID(templateID string) ([]model.PDFField, error)
	// ReplaceForTemplate 以事务整体替换模板的字段集合。
	// 删除和插入要么同时生效要么同时回滚，不会出现只删不插的中间态。
	ReplaceForTemplate(templateID string, fields []model.PDFField) error
	DeleteByTemplateID(templateID string) error
}

// fieldRepository 实现
type fieldRepository struct {
	db *gorm.DB
}

// NewFieldRepository 创建 Repository 实例
func NewFieldRepository(db *gorm.DB) FieldRepository {
	return &fieldRepository{db: db}
}

// GetByTemplateID 获取模板下的全部字段，无字段时返回空切片
func (r *fieldRepository) GetByTemplateID(templateID string) ([]model.PDFField, error) {
	fields := make([]model.PDFField, 0)
	result := r.db.Where("template_id = ?", templateID).
		Order("created_at ASC, id ASC").
		Find(&fields)
	return fields, result.Error
}

// ReplaceForTemplate 整体替换模板字段集合
func (r *fieldRepository) ReplaceForTemplate(templateID string, fields []model.PDFField) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&model.PDFField{}).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		for i := range fields {
			fields[i].TemplateID = templateID
		}
		return tx.Create(&fields).Error
	})
}

// DeleteByTemplateID 删除模板下的全部字段
func (r *fieldRepository) DeleteByTemplateID(templateID string) error {
	return r.db.Where("template_id = ?", templateID).Delete(&model.PDFField{}).Error
}
