package model

import (
	"encoding/json"
	"time"
)

type EmailJobStatus string

const (
	EmailJobQueued     EmailJobStatus = "queued"
	EmailJobProcessing EmailJobStatus = "processing"
	EmailJobSent       EmailJobStatus = "sent"
	EmailJobFailed     EmailJobStatus = "failed"
)

const JobTypeSendCertificate = "send_certificate"

// EmailJob 异步通知任务。由服务端凭据写入（普通用户凭据不可写），
// 邮件代理按批次领取并更新终态
// swagger:model EmailJob
type EmailJob struct {
	UUIDBase
	OrgID       string          `gorm:"index;type:varchar(36);not null" json:"orgId"`
	UserID      uint            `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	JobType     string          `gorm:"size:50;not null" json:"jobType"`
	Status      EmailJobStatus  `gorm:"type:enum('queued','processing','sent','failed');default:'queued';index" json:"status"`
	Payload     json.RawMessage `gorm:"type:json" json:"payload"`
	Attempts    int             `gorm:"default:0" json:"attempts"`
	LastError   string          `gorm:"size:500" json:"lastError,omitempty"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
}

func (EmailJob) TableName() string {
	return "email_jobs"
}

// CertificatePayload send_certificate 任务的负载
type CertificatePayload struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	CertificateID string `json:"certificate_id"`
	ModuleTitle   string `json:"module_title"`
}
