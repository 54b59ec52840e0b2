package pdfdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageCount 返回文档页数
func PageCount(rs io.ReadSeeker) (int, error) {
	ctx, err := api.ReadContext(rs, relaxedConf())
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx.PageCount, nil
}

// TextField 表单文本域填充项
type TextField struct {
	Name  string
	Value string
}

// CheckBox 表单复选框填充项
type CheckBox struct {
	Name    string
	Checked bool
}

// FillForm 按名称填充文档内置表单域并返回新文档字节
func FillForm(rs io.ReadSeeker, textFields []TextField, checkBoxes []CheckBox) ([]byte, error) {
	data, err := formJSON(textFields, checkBoxes)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.FillForm(rs, bytes.NewReader(data), &buf, relaxedConf()); err != nil {
		return nil, fmt.Errorf("failed to fill form: %w", err)
	}
	return buf.Bytes(), nil
}

// ImageStamp 图片盖印参数，坐标为页面左下角起算的点坐标
type ImageStamp struct {
	Page  int
	X     float64
	Y     float64
	Scale float64 // 相对原图的绝对缩放系数
}

// StampImage 将图片印到指定页并返回新文档字节
func StampImage(rs io.ReadSeeker, img io.Reader, stamp ImageStamp) ([]byte, error) {
	if stamp.Page < 1 {
		return nil, fmt.Errorf("invalid stamp page %d", stamp.Page)
	}
	scale := stamp.Scale
	if scale <= 0 {
		scale = 1
	}

	desc := fmt.Sprintf("pos:bl, off:%.0f %.0f, scale:%.2f abs, rot:0", stamp.X, stamp.Y, scale)
	wm, err := api.ImageWatermarkForReader(img, desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to build image stamp: %w", err)
	}

	var buf bytes.Buffer
	pages := []string{strconv.Itoa(stamp.Page)}
	if err := api.AddWatermarks(rs, &buf, pages, wm, relaxedConf()); err != nil {
		return nil, fmt.Errorf("failed to stamp image: %w", err)
	}
	return buf.Bytes(), nil
}

// TextLine 生成页面上的一行文本
type TextLine struct {
	X        float64
	Y        float64
	Text     string
	FontName string
	FontSize int
}

// CreateTextPage 生成一个指定尺寸的单页文档并绘制文本行
func CreateTextPage(width, height float64, lines []TextLine) ([]byte, error) {
	data, err := createJSON(width, height, lines)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(data), &buf, relaxedConf()); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return buf.Bytes(), nil
}

func relaxedConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// formJSON 生成 pdfcpu 表单填充 JSON（与 form export 的结构一致）
func formJSON(textFields []TextField, checkBoxes []CheckBox) ([]byte, error) {
	type textFieldEntry struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	}
	type checkBoxEntry struct {
		Name  string `json:"name"`
		Value bool   `json:"value"`
	}
	type formEntry struct {
		TextFields []textFieldEntry `json:"textfield,omitempty"`
		CheckBoxes []checkBoxEntry  `json:"checkbox,omitempty"`
	}

	form := formEntry{}
	for _, tf := range textFields {
		form.TextFields = append(form.TextFields, textFieldEntry{Name: tf.Name, Value: tf.Value})
	}
	for _, cb := range checkBoxes {
		form.CheckBoxes = append(form.CheckBoxes, checkBoxEntry{Name: cb.Name, Value: cb.Checked})
	}

	return json.Marshal(map[string]interface{}{
		"forms": []formEntry{form},
	})
}

// createJSON 生成 pdfcpu create JSON 页面描述
func createJSON(width, height float64, lines []TextLine) ([]byte, error) {
	texts := make([]map[string]interface{}, 0, len(lines))
	for _, line := range lines {
		fontName := line.FontName
		if fontName == "" {
			fontName = "Helvetica"
		}
		fontSize := line.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		texts = append(texts, map[string]interface{}{
			"value":    line.Text,
			"position": []float64{line.X, line.Y},
			"font": map[string]interface{}{
				"name": fontName,
				"size": fontSize,
			},
		})
	}

	return json.Marshal(map[string]interface{}{
		"origin": "lowerLeft",
		"pages": map[string]interface{}{
			"1": map[string]interface{}{
				"mediaBox": []float64{0, 0, width, height},
				"content": map[string]interface{}{
					"text": texts,
				},
			},
		},
	})
}
