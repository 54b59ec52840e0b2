package model

import "time"

// FormQuestion 表单生成器的问题配置，管理员维护
type FormQuestion struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"size:500;not null"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (FormQuestion) TableName() string {
	return "form_questions"
}
