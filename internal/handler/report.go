package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rbyers87/offduty7/internal/service"
)

// ReportHandler 下班用车报告 Handler
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler 创建 Handler
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Generate 填充报告并归档
func (h *ReportHandler) Generate(c *gin.Context) {
	var req service.OffDutyReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tpl, err := h.reportService.GenerateOffDutyReport(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFillablePDFMissing):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "fillable report PDF is not installed"})
		case errors.Is(err, service.ErrBadSignature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature image"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": tpl, "message": "report generated and uploaded successfully"})
}
