package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rbyers87/offduty7/internal/pkg/storage"
)

// StorageHandler 对象下载 Handler，提供公开与签名两种入口
type StorageHandler struct {
	store *storage.Store
}

// NewStorageHandler 创建 Handler
func NewStorageHandler(store *storage.Store) *StorageHandler {
	return &StorageHandler{store: store}
}

// ServePublic 公开对象下载
func (h *StorageHandler) ServePublic(c *gin.Context) {
	h.serve(c, c.Param("object"))
}

// ServeSigned 签名对象下载，校验 token
func (h *StorageHandler) ServeSigned(c *gin.Context) {
	object := c.Param("object")
	if err := h.store.VerifyToken(object, c.Query("token")); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
		return
	}
	h.serve(c, object)
}

func (h *StorageHandler) serve(c *gin.Context, object string) {
	path, err := h.store.Path(object)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidObjectName) {
			c.JSON(http.StatusNotFound, gin.H{"error": "object not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "application/pdf")
	c.File(path)
}
