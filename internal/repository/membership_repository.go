package repository

import (
	"errors"
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/util"

	"gorm.io/gorm"
)

type MembershipRepository struct {
	DB *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{DB: db}
}

// FindActiveOrg 解析用户当前生效的组织。没有活跃成员关系视为硬错误，
// 评分流水线在此之前不会写入任何数据
func (r *MembershipRepository) FindActiveOrg(userID uint) (string, error) {
	var member model.OrgMember
	err := r.DB.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at asc").
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", util.ErrNoActiveOrganization
	}
	if err != nil {
		return "", err
	}
	return member.OrgID, nil
}

func (r *MembershipRepository) ListByUser(userID uint) ([]model.OrgMember, error) {
	var members []model.OrgMember
	err := r.DB.Where("user_id = ?", userID).Preload("Org").Find(&members).Error
	return members, err
}
