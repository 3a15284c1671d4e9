package model

import (
	"time"
)

// TrainingModule 一个培训单元：课程内容 + 结业测验
// swagger:model TrainingModule
type TrainingModule struct {
	UUIDBase
	Slug          string     `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Summary       string     `gorm:"size:500" json:"summary"`
	Body          string     `gorm:"type:longtext" json:"body"` // markdown 正文
	Difficulty    string     `gorm:"size:20;default:'basic'" json:"difficulty"`
	PosterURL     string     `gorm:"size:500" json:"posterUrl"`
	VideoURL      string     `gorm:"size:500" json:"videoUrl"`
	VideoDuration float64    `gorm:"default:0" json:"videoDuration"` // 秒
	Published     bool       `gorm:"default:false" json:"published"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
}

func (TrainingModule) TableName() string {
	return "modules"
}
