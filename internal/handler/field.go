package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/service"
)

// FieldHandler 模板字段直读直写 Handler
type FieldHandler struct {
	fieldService service.FieldService
}

// NewFieldHandler 创建 Handler
func NewFieldHandler(fieldService service.FieldService) *FieldHandler {
	return &FieldHandler{fieldService: fieldService}
}

// List 获取模板的全部字段
func (h *FieldHandler) List(c *gin.Context) {
	fields, err := h.fieldService.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": fields})
}

// Replace 全量替换模板字段集合
func (h *FieldHandler) Replace(c *gin.Context) {
	var req struct {
		Fields []model.PDFField `json:"fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.fieldService.Replace(c.Request.Context(), c.Param("id"), req.Fields); err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "fields saved successfully"})
}
