package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/pkg/pdfdoc"
	"github.com/rbyers87/offduty7/internal/pkg/storage"
	"github.com/rbyers87/offduty7/internal/repository"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrNotPDF           = errors.New("uploaded file is not a PDF")
	ErrUploadTooLarge   = errors.New("uploaded file exceeds size limit")
)

// TemplateDetail 模板详情，带新鲜的签名地址供渲染端拉取
type TemplateDetail struct {
	model.PDFTemplate
	SignedURL string `json:"signed_url"`
}

// TemplateService 模板服务接口
type TemplateService interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (*model.PDFTemplate, error)
	// UploadBytes 供报表生成等内部调用方登记已生成的 PDF
	UploadBytes(ctx context.Context, name, objectName string, data []byte) (*model.PDFTemplate, error)
	List(ctx context.Context) ([]model.PDFTemplate, error)
	Get(ctx context.Context, id string) (*TemplateDetail, error)
	Delete(ctx context.Context, id string) error
}

// templateService 实现
type templateService struct {
	templateRepo repository.TemplateRepository
	fieldRepo    repository.FieldRepository
	store        *storage.Store
	maxSize      int64
}

// NewTemplateService 创建服务实例
func NewTemplateService(templateRepo repository.TemplateRepository, fieldRepo repository.FieldRepository, store *storage.Store, maxSize int64) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		fieldRepo:    fieldRepo,
		store:        store,
		maxSize:      maxSize,
	}
}

// Upload 上传 PDF 并创建模板记录
// 上传时即探测页数，后续字段页码校验依赖该值
func (s *templateService) Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (*model.PDFTemplate, error) {
	if contentType != "application/pdf" {
		return nil, ErrNotPDF
	}
	if s.maxSize > 0 && size > s.maxSize {
		return nil, ErrUploadTooLarge
	}

	// maxSize 为 0 表示不限制大小
	var src io.Reader = r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return nil, ErrUploadTooLarge
	}

	pageCount, err := pdfdoc.PageCount(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	objectName := uuid.NewString() + ".pdf"
	return s.createRecord(name, objectName, pageCount, data)
}

// UploadBytes 登记内部生成的 PDF
func (s *templateService) UploadBytes(ctx context.Context, name, objectName string, data []byte) (*model.PDFTemplate, error) {
	pageCount, err := pdfdoc.PageCount(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to probe generated pdf: %w", err)
	}
	return s.createRecord(name, objectName, pageCount, data)
}

func (s *templateService) createRecord(name, objectName string, pageCount int, data []byte) (*model.PDFTemplate, error) {
	if _, err := s.store.Upload(objectName, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store object: %w", err)
	}

	tpl := &model.PDFTemplate{
		ID:         uuid.NewString(),
		Name:       name,
		ObjectName: objectName,
		FileURL:    s.store.PublicURL(objectName),
		PageCount:  pageCount,
	}
	if err := s.templateRepo.Create(tpl); err != nil {
		// 记录失败时回收已写入的对象
		if delErr := s.store.Delete(objectName); delErr != nil {
			klog.V(6).Infof("清理对象 %s 失败: %v", objectName, delErr)
		}
		return nil, fmt.Errorf("failed to create template record: %w", err)
	}

	klog.V(6).Infof("模板 %s 已创建，对象 %s，共 %d 页", tpl.ID, objectName, pageCount)
	return tpl, nil
}

// List 获取模板列表，按创建时间倒序
func (s *templateService) List(ctx context.Context) ([]model.PDFTemplate, error) {
	templates, err := s.templateRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// Get 获取模板详情并签发新的限时下载地址
func (s *templateService) Get(ctx context.Context, id string) (*TemplateDetail, error) {
	tpl, err := s.templateRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	signedURL, err := s.store.SignedURL(tpl.ObjectName, s.store.DefaultExpiry())
	if err != nil {
		return nil, fmt.Errorf("failed to generate signed url: %w", err)
	}

	return &TemplateDetail{PDFTemplate: *tpl, SignedURL: signedURL}, nil
}

// Delete 删除模板、字段与存储对象
func (s *templateService) Delete(ctx context.Context, id string) error {
	tpl, err := s.templateRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("failed to get template: %w", err)
	}

	if err := s.templateRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if err := s.store.Delete(tpl.ObjectName); err != nil {
		klog.V(6).Infof("删除对象 %s 失败: %v", tpl.ObjectName, err)
	}
	return nil
}
