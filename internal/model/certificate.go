package model

import (
	"time"
)

// Certificate 通过测验后签发的结业证书。ChainText 是对
// org/user/module/签发时间/证书编号的规范化拼接，HashSHA256 为其摘要；
// 任何校验方都可以用存储字段重新计算摘要来验证记录未被篡改
// swagger:model Certificate
type Certificate struct {
	UUIDBase
	OrgID           string    `gorm:"index;type:varchar(36);not null" json:"orgId"`
	UserID          uint      `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	ModuleID        string    `gorm:"index;type:varchar(36);not null" json:"moduleId"`
	EvaluationID    string    `gorm:"uniqueIndex;type:varchar(36);not null" json:"evaluationId"`
	CertificateUUID string    `gorm:"uniqueIndex;type:varchar(36);not null" json:"certificateUuid"`
	IssuedAt        time.Time `gorm:"not null" json:"issuedAt"`
	ChainText       string    `gorm:"size:500;not null" json:"chainText"`
	HashSHA256      string    `gorm:"size:64;not null" json:"hashSha256"`
}

func (Certificate) TableName() string {
	return "certificates"
}
