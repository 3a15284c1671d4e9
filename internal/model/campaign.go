package model

import (
	"time"
)

// Campaign 面向组织内员工的培训活动，把模块分配给一批员工并限定周期
// swagger:model Campaign
type Campaign struct {
	UUIDBase
	OrgID       string     `gorm:"index;type:varchar(36);not null" json:"orgId"`
	ModuleID    string     `gorm:"index;type:varchar(36);not null" json:"moduleId"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"size:20;default:'draft'" json:"status"` // draft, active, closed
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// swagger:model CampaignAssignment
type CampaignAssignment struct {
	BaseModel
	CampaignID  string     `gorm:"index;type:varchar(36);not null" json:"campaignId"`
	UserID      uint       `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Status      string     `gorm:"size:20;default:'assigned'" json:"status"` // assigned, completed
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (CampaignAssignment) TableName() string {
	return "campaign_assignments"
}
