package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"time"

	"golang.org/x/image/draw"
	"k8s.io/klog/v2"

	"github.com/rbyers87/offduty7/internal/model"
	"github.com/rbyers87/offduty7/internal/pkg/pdfdoc"
)

var (
	ErrFillablePDFMissing = errors.New("fillable report PDF not found")
	ErrBadSignature       = errors.New("invalid signature image data")
)

// 班次选项，决定勾选哪个复选框
const (
	ShiftShort = "1-4 Hours"
	ShiftLong  = "More than 4 hours"
)

// 签名盖印尺寸（点），与报告上的签名框一致
const (
	sigBoxWidth  = 160
	sigBoxHeight = 50
)

// OffDutyReportRequest 下班用车报告表单
type OffDutyReportRequest struct {
	Badge            string `json:"badge"`
	Date             string `json:"date"`
	BeginTime        string `json:"begin_time"`
	EndTime          string `json:"end_time"`
	Date2            string `json:"date2"`
	Name             string `json:"name"`
	BusinessName     string `json:"business_name"`
	BusinessLocation string `json:"business_location"`
	BillTo           string `json:"bill_to"`
	Unit             string `json:"unit"`
	TotalHours       string `json:"total_hours"`
	HourlyRate       string `json:"hourly_rate"`
	Rate             string `json:"rate"`
	Shift            string `json:"shift" binding:"omitempty,oneof='1-4 Hours' 'More than 4 hours'"`
	// Signature 为前端签名画布导出的 PNG data URL，可为空
	Signature string `json:"signature"`
}

// ReportService 填充并归档下班用车报告
type ReportService interface {
	GenerateOffDutyReport(ctx context.Context, req OffDutyReportRequest) (*model.PDFTemplate, error)
}

// reportService 实现
type reportService struct {
	templateSvc TemplateService
	fillablePDF string
}

// NewReportService 创建服务实例
func NewReportService(templateSvc TemplateService, fillablePDF string) ReportService {
	return &reportService{
		templateSvc: templateSvc,
		fillablePDF: fillablePDF,
	}
}

// GenerateOffDutyReport 填充随应用分发的报告模板，盖上签名后上传归档
func (s *reportService) GenerateOffDutyReport(ctx context.Context, req OffDutyReportRequest) (*model.PDFTemplate, error) {
	src, err := os.ReadFile(s.fillablePDF)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFillablePDFMissing
		}
		return nil, fmt.Errorf("failed to read fillable pdf: %w", err)
	}

	// 表单域名称由随附的可填写 PDF 固定
	textFields := []pdfdoc.TextField{
		{Name: "Badge", Value: req.Badge},
		{Name: "Date", Value: req.Date},
		{Name: "Begin Time", Value: req.BeginTime},
		{Name: "End Time", Value: req.EndTime},
		{Name: "Date_2", Value: req.Date2},
		{Name: "Name", Value: req.Name},
		{Name: "Business Name", Value: req.BusinessName},
		{Name: "Business Location", Value: req.BusinessLocation},
		{Name: "Bill To Name & Address", Value: req.BillTo},
		{Name: "Unit", Value: req.Unit},
		{Name: "Total Number of Hours", Value: req.TotalHours},
		{Name: "Officers Hourly Rate", Value: req.HourlyRate},
		{Name: "Rate", Value: req.Rate},
	}

	var checkBoxes []pdfdoc.CheckBox
	switch req.Shift {
	case ShiftShort:
		checkBoxes = append(checkBoxes, pdfdoc.CheckBox{Name: "Check Box7", Checked: true})
	case ShiftLong:
		checkBoxes = append(checkBoxes, pdfdoc.CheckBox{Name: "Check Box8", Checked: true})
	}

	filled, err := pdfdoc.FillForm(bytes.NewReader(src), textFields, checkBoxes)
	if err != nil {
		return nil, err
	}

	if req.Signature != "" {
		sig, err := decodeSignature(req.Signature)
		if err != nil {
			return nil, err
		}
		// 画布尺寸由客户端决定，先归一到签名框尺寸再盖印
		sig, err = resizeSignature(sig, sigBoxWidth, sigBoxHeight)
		if err != nil {
			return nil, err
		}
		// 签名框位于首页右下
		filled, err = pdfdoc.StampImage(bytes.NewReader(filled), bytes.NewReader(sig), pdfdoc.ImageStamp{
			Page:  1,
			X:     370,
			Y:     60,
			Scale: 1,
		})
		if err != nil {
			return nil, err
		}
	}

	fileName := fmt.Sprintf("filled-vehicle-report-%d.pdf", time.Now().UnixMilli())
	tpl, err := s.templateSvc.UploadBytes(ctx, fileName, fileName, filled)
	if err != nil {
		return nil, err
	}

	klog.V(6).Infof("生成下班用车报告 %s", fileName)
	return tpl, nil
}

// resizeSignature 将签名图片缩放到指定尺寸
func resizeSignature(data []byte, width, height int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode signature: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeSignature 解析签名画布导出的 PNG data URL
func decodeSignature(dataURL string) ([]byte, error) {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(dataURL, prefix) {
		return nil, ErrBadSignature
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return data, nil
}
