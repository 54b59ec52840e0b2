package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/pkg/pdfdoc"
	"github.com/rbyers87/offduty7/internal/repository"
)

var (
	ErrQuestionNotFound = errors.New("form question not found")
)

// 生成报告的版面常量
const (
	formPageWidth  = 600.0
	formPageHeight = 400.0
	formTextX      = 50.0
	formTextTopY   = 350.0
	formLineStep   = 20.0
	formFontSize   = 12
)

// QuestionRequest 问题配置请求
type QuestionRequest struct {
	Text      string `json:"text" binding:"required,min=1,max=500"`
	SortOrder int    `json:"sort_order"`
}

// GenerateFormRequest 生成报告请求，answers 以问题ID为键
type GenerateFormRequest struct {
	Answers map[uint]string `json:"answers"`
}

// FormGenService 表单生成器：问题配置 + 报告生成
type FormGenService interface {
	ListQuestions(ctx context.Context) ([]model.FormQuestion, error)
	AddQuestion(ctx context.Context, req QuestionRequest) (*model.FormQuestion, error)
	UpdateQuestion(ctx context.Context, id uint, req QuestionRequest) (*model.FormQuestion, error)
	DeleteQuestion(ctx context.Context, id uint) error
	Generate(ctx context.Context, req GenerateFormRequest) (*model.PDFTemplate, error)
	EnsureDefaults(ctx context.Context) error
}

// formGenService 实现
type formGenService struct {
	questionRepo repository.QuestionRepository
	templateSvc  TemplateService
}

// NewFormGenService 创建服务实例
func NewFormGenService(questionRepo repository.QuestionRepository, templateSvc TemplateService) FormGenService {
	return &formGenService{
		questionRepo: questionRepo,
		templateSvc:  templateSvc,
	}
}

// EnsureDefaults 首次启动时预置两个示例问题
func (s *formGenService) EnsureDefaults(ctx context.Context) error {
	count, err := s.questionRepo.Count()
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i, text := range []string{"Question 1", "Question 2"} {
		q := &model.FormQuestion{Text: text, SortOrder: i + 1}
		if err := s.questionRepo.Create(q); err != nil {
			return fmt.Errorf("failed to seed question: %w", err)
		}
	}
	klog.V(6).Info("预置表单生成器默认问题")
	return nil
}

// ListQuestions 获取问题列表
func (s *formGenService) ListQuestions(ctx context.Context) ([]model.FormQuestion, error) {
	questions, err := s.questionRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// AddQuestion 新增问题
func (s *formGenService) AddQuestion(ctx context.Context, req QuestionRequest) (*model.FormQuestion, error) {
	q := &model.FormQuestion{
		Text:      req.Text,
		SortOrder: req.SortOrder,
	}
	if err := s.questionRepo.Create(q); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return q, nil
}

// UpdateQuestion 修改问题
func (s *formGenService) UpdateQuestion(ctx context.Context, id uint, req QuestionRequest) (*model.FormQuestion, error) {
	q, err := s.questionRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	q.Text = req.Text
	q.SortOrder = req.SortOrder
	if err := s.questionRepo.Save(q); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return q, nil
}

// DeleteQuestion 删除问题
func (s *formGenService) DeleteQuestion(ctx context.Context, id uint) error {
	if _, err := s.questionRepo.GetByID(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}
	if err := s.questionRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	return nil
}

// Generate 按问题顺序渲染问答单页报告并上传归档
func (s *formGenService) Generate(ctx context.Context, req GenerateFormRequest) (*model.PDFTemplate, error) {
	questions, err := s.questionRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	lines := make([]pdfdoc.TextLine, 0, len(questions))
	y := formTextTopY
	for _, q := range questions {
		answer := req.Answers[q.ID]
		if answer == "" {
			answer = "N/A"
		}
		lines = append(lines, pdfdoc.TextLine{
			X:        formTextX,
			Y:        y,
			Text:     fmt.Sprintf("%s: %s", q.Text, answer),
			FontName: "Helvetica",
			FontSize: formFontSize,
		})
		y -= formLineStep
	}

	data, err := pdfdoc.CreateTextPage(formPageWidth, formPageHeight, lines)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("generated-form-%d.pdf", time.Now().UnixMilli())
	tpl, err := s.templateSvc.UploadBytes(ctx, fileName, fileName, data)
	if err != nil {
		return nil, err
	}

	klog.V(6).Infof("生成问卷报告 %s，共 %d 个问题", fileName, len(questions))
	return tpl, nil
}
