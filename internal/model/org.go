package model

// swagger:model Org
type Org struct {
	UUIDBase
	DisplayName     string `gorm:"size:255;not null" json:"displayName"`
	LegalType       string `gorm:"size:50" json:"legalType"`
	RFC             string `gorm:"size:20" json:"rfc"`
	CompanyName     string `gorm:"size:255" json:"companyName"`
	DifficultyLevel string `gorm:"size:20;default:'basic'" json:"difficultyLevel"` // basic, intermediate, advanced
}

func (Org) TableName() string {
	return "orgs"
}

type MemberRole string

const (
	MemberEmployee MemberRole = "employee"
	MemberAdmin    MemberRole = "admin"
	MemberOwner    MemberRole = "owner"
)

// OrgMember 用户与组织的成员关系，IsActive 标记当前生效的组织
// swagger:model OrgMember
type OrgMember struct {
	BaseModel
	OrgID    string     `gorm:"index;type:varchar(36);not null" json:"orgId"`
	UserID   uint       `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Role     MemberRole `gorm:"type:enum('employee','admin','owner');default:'employee'" json:"role"`
	IsActive bool       `gorm:"default:true" json:"isActive"`
	Org      *Org       `gorm:"foreignKey:OrgID" json:"org,omitempty"`
	User     *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (OrgMember) TableName() string {
	return "org_members"
}
