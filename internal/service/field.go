package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/repository"
)

// FieldService 字段存取适配层：整体加载、整体替换
type FieldService interface {
	Load(ctx context.Context, templateID string) ([]model.PDFField, error)
	Replace(ctx context.Context, templateID string, fields []model.PDFField) error
}

// fieldService 实现
type fieldService struct {
	templateRepo repository.TemplateRepository
	fieldRepo    repository.FieldRepository
}

// NewFieldService 创建服务实例
func NewFieldService(templateRepo repository.TemplateRepository, fieldRepo repository.FieldRepository) FieldService {
	return &fieldService{
		templateRepo: templateRepo,
		fieldRepo:    fieldRepo,
	}
}

// Load 加载模板的全部字段，无字段时返回空切片而非错误
func (s *fieldService) Load(ctx context.Context, templateID string) ([]model.PDFField, error) {
	if _, err := s.templateRepo.GetByID(templateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	fields, err := s.fieldRepo.GetByTemplateID(templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fields: %w", err)
	}
	return fields, nil
}

// Replace 以事务整体替换模板字段集合，保存即全量覆盖
func (s *fieldService) Replace(ctx context.Context, templateID string, fields []model.PDFField) error {
	if _, err := s.templateRepo.GetByID(templateID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to get template: %w", err)
	}

	if err := s.fieldRepo.ReplaceForTemplate(templateID, fields); err != nil {
		return fmt.Errorf("failed to replace fields: %w", err)
	}
	return nil
}
