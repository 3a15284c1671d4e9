package model

import (
	"time"
)

// PhishingSimulation 钓鱼演练：向组织员工发送模拟钓鱼邮件并记录行为
// swagger:model PhishingSimulation
type PhishingSimulation struct {
	UUIDBase
	OrgID           string     `gorm:"index;type:varchar(36);not null" json:"orgId"`
	Name            string     `gorm:"size:255;not null" json:"name"`
	TemplateSubject string     `gorm:"size:255" json:"templateSubject"`
	TemplateSender  string     `gorm:"size:255" json:"templateSender"`
	Status          string     `gorm:"size:20;default:'draft'" json:"status"` // draft, launched, closed
	LaunchedAt      *time.Time `json:"launchedAt,omitempty"`
}

func (PhishingSimulation) TableName() string {
	return "phishing_simulations"
}

type PhishingEventType string

const (
	PhishingSent     PhishingEventType = "sent"
	PhishingOpened   PhishingEventType = "opened"
	PhishingClicked  PhishingEventType = "clicked"
	PhishingReported PhishingEventType = "reported"
)

// swagger:model PhishingEvent
type PhishingEvent struct {
	BaseModel
	SimulationID string            `gorm:"index;type:varchar(36);not null" json:"simulationId"`
	UserID       uint              `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	EventType    PhishingEventType `gorm:"type:enum('sent','opened','clicked','reported');not null" json:"eventType"`
	OccurredAt   time.Time         `json:"occurredAt"`
}

func (PhishingEvent) TableName() string {
	return "phishing_events"
}
