package model

import (
	"time"
)

// Evaluation 一次测验的评分记录，创建后不再修改；同一用户可多次重考，
// 每条记录彼此独立
// swagger:model Evaluation
type Evaluation struct {
	UUIDBase
	UserID      uint      `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	ModuleID    string    `gorm:"index;type:varchar(36);not null" json:"moduleId"`
	OrgID       string    `gorm:"index;type:varchar(36);not null" json:"orgId"`
	Score       float64   `gorm:"not null" json:"score"` // 0-100
	Passed      bool      `gorm:"not null" json:"passed"`
	Difficulty  string    `gorm:"size:20;default:'basic'" json:"difficulty"`
	Status      string    `gorm:"size:20;not null" json:"status"` // passed, failed
	CompletedAt time.Time `json:"completedAt"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
