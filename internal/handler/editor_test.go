package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/repository"
	"github.com/rbyers87/offduty7/internal/service"
)

// stubFieldService 内存字段存取，模拟持久层
type stubFieldService struct {
	stored map[string][]model.PDFField
}

func (s *stubFieldService) Load(ctx context.Context, templateID string) ([]model.PDFField, error) {
	out := make([]model.PDFField, len(s.stored[templateID]))
	copy(out, s.stored[templateID])
	return out, nil
}

func (s *stubFieldService) Replace(ctx context.Context, templateID string, fields []model.PDFField) error {
	s.stored[templateID] = fields
	return nil
}

// stubTemplateRepo 固定返回一个三页模板
type stubTemplateRepo struct{}

func (s *stubTemplateRepo) Create(tpl *model.PDFTemplate) error { return nil }
func (s *stubTemplateRepo) List() ([]model.PDFTemplate, error)  { return nil, nil }
func (s *stubTemplateRepo) Save(tpl *model.PDFTemplate) error   { return nil }
func (s *stubTemplateRepo) Delete(id string) error              { return nil }

func (s *stubTemplateRepo) GetByID(id string) (*model.PDFTemplate, error) {
	if id != "tpl-1" {
		return nil, repository.ErrNotFound
	}
	return &model.PDFTemplate{ID: "tpl-1", Name: "Report", PageCount: 3}, nil
}

func newEditorRouter() (*gin.Engine, *stubFieldService) {
	gin.SetMode(gin.TestMode)
	fieldSvc := &stubFieldService{stored: map[string][]model.PDFField{}}
	editorSvc := service.NewEditorService(fieldSvc, &stubTemplateRepo{})
	h := NewEditorHandler(editorSvc)

	r := gin.New()
	editor := r.Group("/api/templates/:id/editor")
	{
		editor.POST("/open", h.Open)
		editor.POST("/reload", h.Reload)
		editor.POST("/close", h.Close)
		editor.GET("", h.State)
		editor.POST("/fields", h.PlaceField)
		editor.PUT("/fields/:fieldId/name", h.RenameField)
		editor.DELETE("/fields/:fieldId", h.DeleteField)
		editor.POST("/page", h.ChangePage)
		editor.POST("/save", h.Save)
	}
	return r, fieldSvc
}

type stateResponse struct {
	Data service.EditorState `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, stateResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	r.ServeHTTP(w, req)

	var resp stateResponse
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response error: %v, body=%s", err, w.Body.String())
		}
	}
	return w, resp
}

func TestEditorEndpointsPlaceAndSave(t *testing.T) {
	r, fieldSvc := newEditorRouter()

	w, state := doJSON(t, r, http.MethodPost, "/api/templates/tpl-1/editor/open", "")
	if w.Code != http.StatusOK {
		t.Fatalf("open status %d: %s", w.Code, w.Body.String())
	}
	if state.Data.PageCount != 3 || state.Data.Page != 1 {
		t.Fatalf("unexpected opened state: %+v", state.Data)
	}

	w, state = doJSON(t, r, http.MethodPost, "/api/templates/tpl-1/editor/page", `{"delta":1}`)
	if w.Code != http.StatusOK || state.Data.Page != 2 {
		t.Fatalf("page change failed: status %d state %+v", w.Code, state.Data)
	}

	w, state = doJSON(t, r, http.MethodPost, "/api/templates/tpl-1/editor/fields", `{"x":120,"y":80}`)
	if w.Code != http.StatusOK {
		t.Fatalf("place status %d: %s", w.Code, w.Body.String())
	}
	if len(state.Data.Fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(state.Data.Fields))
	}
	f := state.Data.Fields[0]
	if f.X != 120 || f.Y != 80 || f.Page != 2 || f.Name != service.DefaultFieldName {
		t.Fatalf("unexpected placed field: %+v", f)
	}

	w, state = doJSON(t, r, http.MethodPut, "/api/templates/tpl-1/editor/fields/"+f.ID+"/name", `{"name":"Badge"}`)
	if w.Code != http.StatusOK || state.Data.Fields[0].Name != "Badge" {
		t.Fatalf("rename failed: status %d state %+v", w.Code, state.Data)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/templates/tpl-1/editor/save", "")
	if w.Code != http.StatusOK {
		t.Fatalf("save status %d: %s", w.Code, w.Body.String())
	}
	saved := fieldSvc.stored["tpl-1"]
	if len(saved) != 1 || saved[0].Name != "Badge" {
		t.Fatalf("unexpected persisted fields: %+v", saved)
	}
}

func TestEditorEndpointsErrors(t *testing.T) {
	r, _ := newEditorRouter()

	w, _ := doJSON(t, r, http.MethodPost, "/api/templates/missing/editor/open", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing template, got %d", w.Code)
	}

	// 未打开会话时的状态查询
	w, _ = doJSON(t, r, http.MethodGet, "/api/templates/tpl-1/editor", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing session, got %d", w.Code)
	}

	// 翻页请求缺少请求体
	w, _ = doJSON(t, r, http.MethodPost, "/api/templates/tpl-1/editor/page", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing body, got %d", w.Code)
	}
}

func TestEditorEndpointsDeleteField(t *testing.T) {
	r, fieldSvc := newEditorRouter()
	fieldSvc.stored["tpl-1"] = []model.PDFField{
		{ID: "f1", TemplateID: "tpl-1", Name: "Badge", Kind: model.FieldKindEditable, Page: 1},
	}

	if w, _ := doJSON(t, r, http.MethodPost, "/api/templates/tpl-1/editor/open", ""); w.Code != http.StatusOK {
		t.Fatalf("open status %d", w.Code)
	}

	w, state := doJSON(t, r, http.MethodDelete, "/api/templates/tpl-1/editor/fields/f1", "")
	if w.Code != http.StatusOK || len(state.Data.Fields) != 0 {
		t.Fatalf("delete failed: status %d state %+v", w.Code, state.Data)
	}

	if w, _ := doJSON(t, r, http.MethodPost, "/api/templates/tpl-1/editor/save", ""); w.Code != http.StatusOK {
		t.Fatalf("save status %d", w.Code)
	}
	if len(fieldSvc.stored["tpl-1"]) != 0 {
		t.Fatalf("deleted field must not persist: %+v", fieldSvc.stored["tpl-1"])
	}
}
