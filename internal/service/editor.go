package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/repository"
)

var (
	ErrSessionNotFound = errors.New("editor session not found")
	ErrSaveInProgress  = errors.New("save already in progress")
	ErrPageOutOfRange  = errors.New("field page exceeds document page count")
)

// 新字段默认值
const (
	DefaultFieldName   = "New Field"
	DefaultFieldWidth  = 100.0
	DefaultFieldHeight = 20.0
)

// EditorState 编辑器会话快照
type EditorState struct {
	TemplateID    string           `json:"template_id"`
	ViewOnly      bool             `json:"view_only"`
	Page          int              `json:"page"`
	PageCount     int              `json:"page_count"`
	Fields        []model.PDFField `json:"fields"`
	ActiveFieldID string           `json:"active_field_id"`
	PanelOpen     bool             `json:"panel_open"`
	Saving        bool             `json:"saving"`
}

// EditorService 字段叠加编辑器。
// 每个模板同一时刻只有一个编辑会话，字段集合在保存前只存在于会话内存中。
type EditorService interface {
	Open(ctx context.Context, templateID string, viewOnly bool) (*EditorState, error)
	Reload(ctx context.Context, templateID string) (*EditorState, error)
	Close(templateID string)
	State(templateID string) (*EditorState, error)
	PlaceField(templateID string, x, y float64) (*EditorState, error)
	SelectField(templateID, fieldID string) (*EditorState, error)
	RenameField(templateID, fieldID, name string) (*EditorState, error)
	RetypeField(templateID, fieldID, kind string) (*EditorState, error)
	DeleteField(templateID, fieldID string) (*EditorState, error)
	ChangePage(templateID string, delta int) (*EditorState, error)
	Save(ctx context.Context, templateID string) (*EditorState, error)
}

// editorSession 单个模板的会话状态
type editorSession struct {
	mu         sync.Mutex
	templateID string
	viewOnly   bool
	pageCount  int
	page       int
	fields     []model.PDFField
	activeID   string
	panelOpen  bool
	saving     bool
	loadGen    uint64 // 加载代次，用于丢弃过期的加载结果
}

// editorService 实现
type editorService struct {
	fieldSvc     FieldService
	templateRepo repository.TemplateRepository

	mu       sync.Mutex
	sessions map[string]*editorSession
}

// NewEditorService 创建服务实例
func NewEditorService(fieldSvc FieldService, templateRepo repository.TemplateRepository) EditorService {
	return &editorService{
		fieldSvc:     fieldSvc,
		templateRepo: templateRepo,
		sessions:     make(map[string]*editorSession),
	}
}

// Open 打开（或复用）模板的编辑会话并加载字段
func (s *editorService) Open(ctx context.Context, templateID string, viewOnly bool) (*EditorState, error) {
	tpl, err := s.templateRepo.GetByID(templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	s.mu.Lock()
	sess, ok := s.sessions[templateID]
	if !ok {
		sess = &editorSession{
			templateID: templateID,
			page:       1,
		}
		s.sessions[templateID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	sess.viewOnly = viewOnly
	sess.pageCount = tpl.PageCount
	if sess.page < 1 {
		sess.page = 1
	}
	sess.mu.Unlock()

	return s.load(ctx, sess)
}

// Reload 重新加载字段集合，丢弃未保存的修改
func (s *editorService) Reload(ctx context.Context, templateID string) (*EditorState, error) {
	sess, err := s.session(templateID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, sess)
}

// load 拉取字段并写入会话。并发重载时按代次取舍：后发起的加载胜出，
// 过期响应直接丢弃，会话状态不回退。
func (s *editorService) load(ctx context.Context, sess *editorSession) (*EditorState, error) {
	sess.mu.Lock()
	sess.loadGen++
	gen := sess.loadGen
	templateID := sess.templateID
	sess.mu.Unlock()

	fields, err := s.fieldSvc.Load(ctx, templateID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if gen != sess.loadGen {
		// 已有更新的加载请求，丢弃本次结果
		klog.V(6).Infof("模板 %s 放弃过期的字段加载结果", templateID)
		return snapshot(sess), nil
	}
	sess.fields = fields
	sess.activeID = ""
	sess.panelOpen = false
	return snapshot(sess), nil
}

// Close 关闭会话，未保存的修改丢失
func (s *editorService) Close(templateID string) {
	s.mu.Lock()
	delete(s.sessions, templateID)
	s.mu.Unlock()
}

// State 返回会话快照
func (s *editorService) State(templateID string) (*EditorState, error) {
	sess, err := s.session(templateID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return snapshot(sess), nil
}

// PlaceField 在当前页的点击位置放置新字段并选中。
// 只读会话中放置是无操作，原样返回状态。
func (s *editorService) PlaceField(templateID string, x, y float64) (*EditorState, error) {
	sess, err := s.session(templateID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.viewOnly {
		return snapshot(sess), nil
	}

	field := model.PDFField{
		ID:         uuid.NewString(),
		TemplateID: templateID,
		Name:       DefaultFieldName,
		Kind:       model.FieldKindEditable,
		X:          x,
		Y:          y,
		Width:      DefaultFieldWidth,
		Height:     DefaultFieldHeight,
		Page:       sess.page,
	}
	sess.fields = append(sess.fields, field)
	sess.activeID = field.ID
	sess.panelOpen = true
	return snapshot(sess), nil
}

// SelectField 选中已有字段并打开编辑面板，不存在的ID是无操作
func (s *editorService) SelectField(templateID, fieldID string) (*EditorState, error) {
	sess, err := s.session(templateID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.viewOnly {
		return snapshot(sess), nil
	}
	for i := range sess.fields {
		if sess.fields[i].ID == fieldID {
			sess.activeID = fieldID
			sess.panelOpen = true
			break
		}
	}
	return snapshot(sess), nil
}

// RenameField 修改字段名称，不存在的ID是无操作
func (s *editorService) RenameField(templateID, fieldID, name string) (*EditorState, error) {
	return s.mutateField(templateID, fieldID, func(f *model.PDFField) {
		f.Name = name
	})
}

// RetypeField 修改字段类型，不存在的ID是无操作
func (s *editorService) RetypeField(templateID, fieldID, kind string) (*EditorState, error) {
	if kind != model.FieldKindEditable && kind != model.FieldKindPrefilled {
		return nil, fmt.Errorf("invalid field kind %q", kind)
	}
	return s.mutateField(templateID, fieldID, func(f *model.PDFField) {
		f.Kind = kind
	})
}

func (s *editorService) mutateField(templateID, fieldID string, mutate func(*model.PDFField)) (*EditorState, error) {
	sess, err := s.session(templateID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	for i := range sess.fields {
		if sess.fields[i].ID == fieldID {
			mutate(&sess.fields[i])
			break
		}
	}
	return snapshot(sess), nil
}

// DeleteField 删除字段；若删除的是当前选中字段则同时收起编辑面板
func (s *editorService) DeleteField(templateID, fieldID string) (*EditorState, error) {
	sess, err := s.session(templateID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	for i := range sess.fields {
		if sess.fields[i].ID == fieldID {
			sess.fields = append(sess.fields[:i], sess.fields[i+1:]...)
			if sess.activeID == fieldID {
				sess.activeID = ""
				sess.panelOpen = false
			}
			break
		}
	}
	return snapshot(sess), nil
}

// ChangePage 翻页，越界请求静默收敛到边界页
func (s *editorService) ChangePage(templateID string, delta int) (*EditorState, error) {
	sess, err := s.session(templateID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	page := sess.page + delta
	if page < 1 {
		page = 1
	}
	if sess.pageCount > 0 && page > sess.pageCount {
		page = sess.pageCount
	}
	sess.page = page
	return snapshot(sess), nil
}

// Save 全量保存当前字段集合。
// 同一会话的并发保存直接拒绝，不排队；保存前校验每个字段的页码。
func (s *editorService) Save(ctx context.Context, templateID string) (*EditorState, error) {
	sess, err := s.session(templateID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.saving {
		sess.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	for _, f := range sess.fields {
		if f.Page < 1 || (sess.pageCount > 0 && f.Page > sess.pageCount) {
			sess.mu.Unlock()
			return nil, fmt.Errorf("%w: field %s on page %d of %d", ErrPageOutOfRange, f.ID, f.Page, sess.pageCount)
		}
	}
	sess.saving = true
	fields := make([]model.PDFField, len(sess.fields))
	copy(fields, sess.fields)
	sess.mu.Unlock()

	saveErr := s.fieldSvc.Replace(ctx, templateID, fields)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.saving = false
	if saveErr != nil {
		return nil, saveErr
	}
	klog.V(6).Infof("模板 %s 保存 %d 个字段", templateID, len(fields))
	return snapshot(sess), nil
}

func (s *editorService) session(templateID string) (*editorSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[templateID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// snapshot 复制会话状态，调用方需持有 sess.mu
func snapshot(sess *editorSession) *EditorState {
	fields := make([]model.PDFField, len(sess.fields))
	copy(fields, sess.fields)
	return &EditorState{
		TemplateID:    sess.templateID,
		ViewOnly:      sess.viewOnly,
		Page:          sess.page,
		PageCount:     sess.pageCount,
		Fields:        fields,
		ActiveFieldID: sess.activeID,
		PanelOpen:     sess.panelOpen,
		Saving:        sess.saving,
	}
}
