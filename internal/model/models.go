package model

import (
	"time"
)

// 角色常量
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// 字段类型常量
const (
	FieldKindEditable  = "editable"
	FieldKindPrefilled = "prefilled"
)

// Profile 用户档案表
type Profile struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	FullName     string    `json:"full_name" gorm:"size:255;not null"`
	Role         string    `json:"role" gorm:"size:50;not null;default:employee"` // admin, employee
	BadgeNumber  string    `json:"badge_number" gorm:"size:50"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}

// IsAdmin 是否管理员
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// PDFTemplate PDF 模板表
type PDFTemplate struct {
	ID         string     `json:"id" gorm:"primaryKey;size:64"`
	Name       string     `json:"name" gorm:"size:255;not null"`
	ObjectName string     `json:"object_name" gorm:"size:255;not null"` // 存储桶内对象名
	FileURL    string     `json:"file_url" gorm:"size:500;not null"`
	PageCount  int        `json:"page_count" gorm:"default:0"` // 上传时探测
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Fields     []PDFField `json:"fields,omitempty" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE;"`
}

// TableName 指定表名
func (PDFTemplate) TableName() string {
	return "pdf_templates"
}

// PDFField 模板页面上的定位字段
// 坐标为页面渲染时的像素坐标，左上角为原点
type PDFField struct {
	ID         string    `json:"id" gorm:"primaryKey;size:64"` // 客户端生成，创建后不变
	TemplateID string    `json:"template_id" gorm:"size:64;index;not null"`
	Name       string    `json:"name" gorm:"size:255;not null"`
	Kind       string    `json:"kind" gorm:"size:20;not null;default:editable"` // editable, prefilled
	Value      string    `json:"value" gorm:"size:1000"`                        // 仅 prefilled 使用
	X          float64   `json:"x" gorm:"not null"`
	Y          float64   `json:"y" gorm:"not null"`
	Width      float64   `json:"width" gorm:"not null;default:100"`
	Height     float64   `json:"height" gorm:"not null;default:20"`
	Page       int       `json:"page" gorm:"not null;default:1"` // 1 起始页码
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (PDFField) TableName() string {
	return "pdf_fields"
}
