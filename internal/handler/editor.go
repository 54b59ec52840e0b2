package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rbyers87/offduty7/internal/service"
)

// EditorHandler 字段叠加编辑器 Handler
type EditorHandler struct {
	editorService service.EditorService
}

// NewEditorHandler 创建 Handler
func NewEditorHandler(editorService service.EditorService) *EditorHandler {
	return &EditorHandler{editorService: editorService}
}

// Open 打开编辑会话，?view_only=true 时为只读
func (h *EditorHandler) Open(c *gin.Context) {
	viewOnly := c.Query("view_only") == "true"
	state, err := h.editorService.Open(c.Request.Context(), c.Param("id"), viewOnly)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// Reload 重新加载字段，放弃未保存修改
func (h *EditorHandler) Reload(c *gin.Context) {
	state, err := h.editorService.Reload(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// Close 关闭编辑会话
func (h *EditorHandler) Close(c *gin.Context) {
	h.editorService.Close(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "closed"})
}

// State 获取会话快照
func (h *EditorHandler) State(c *gin.Context) {
	state, err := h.editorService.State(c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// PlaceField 在点击位置放置字段
func (h *EditorHandler) PlaceField(c *gin.Context) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.editorService.PlaceField(c.Param("id"), req.X, req.Y)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// SelectField 选中字段
func (h *EditorHandler) SelectField(c *gin.Context) {
	state, err := h.editorService.SelectField(c.Param("id"), c.Param("fieldId"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// RenameField 修改字段名称
func (h *EditorHandler) RenameField(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,min=1,max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.editorService.RenameField(c.Param("id"), c.Param("fieldId"), req.Name)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// RetypeField 修改字段类型
func (h *EditorHandler) RetypeField(c *gin.Context) {
	var req struct {
		Kind string `json:"kind" binding:"required,oneof=editable prefilled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.editorService.RetypeField(c.Param("id"), c.Param("fieldId"), req.Kind)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// DeleteField 删除字段
func (h *EditorHandler) DeleteField(c *gin.Context) {
	state, err := h.editorService.DeleteField(c.Param("id"), c.Param("fieldId"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// ChangePage 翻页
func (h *EditorHandler) ChangePage(c *gin.Context) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.editorService.ChangePage(c.Param("id"), req.Delta)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// Save 全量保存字段集合
func (h *EditorHandler) Save(c *gin.Context) {
	state, err := h.editorService.Save(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state, "message": "fields saved successfully"})
}

func (h *EditorHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "editor session not found"})
	case errors.Is(err, service.ErrSaveInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "save already in progress"})
	case errors.Is(err, service.ErrPageOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
