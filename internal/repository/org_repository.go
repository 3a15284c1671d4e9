package repository

import (
	"fordrax_backend/internal/model"

	"gorm.io/gorm"
)

type OrgRepository struct {
	DB *gorm.DB
}

func NewOrgRepository(db *gorm.DB) *OrgRepository {
	return &OrgRepository{DB: db}
}

func (r *OrgRepository) Create(org *model.Org) error {
	return r.DB.Create(org).Error
}

func (r *OrgRepository) FindByID(id string) (*model.Org, error) {
	var org model.Org
	err := r.DB.Where("id = ?", id).First(&org).Error
	return &org, err
}

func (r *OrgRepository) Update(org *model.Org) error {
	return r.DB.Save(org).Error
}

func (r *OrgRepository) List(page, limit int) ([]model.Org, int64, error) {
	var orgs []model.Org
	var total int64
	query := r.DB.Model(&model.Org{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&orgs).Error
	return orgs, total, err
}

func (r *OrgRepository) AddMember(member *model.OrgMember) error {
	return r.DB.Create(member).Error
}

func (r *OrgRepository) ListMembers(orgID string, page, limit int) ([]model.OrgMember, int64, error) {
	var members []model.OrgMember
	var total int64
	query := r.DB.Model(&model.OrgMember{}).Where("org_id = ?", orgID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("User").Order("created_at asc").Offset(offset).Limit(limit).Find(&members).Error
	return members, total, err
}

func (r *OrgRepository) FindMember(orgID string, userID uint) (*model.OrgMember, error) {
	var member model.OrgMember
	err := r.DB.Where("org_id = ? AND user_id = ?", orgID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *OrgRepository) SetMemberActive(orgID string, userID uint, active bool) error {
	return r.DB.Model(&model.OrgMember{}).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Update("is_active", active).
		Error
}

// IsOrgAdmin 判断用户是否以 admin/owner 身份属于该组织
func (r *OrgRepository) IsOrgAdmin(orgID string, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.OrgMember{}).
		Where("org_id = ? AND user_id = ? AND role IN ?", orgID, userID, []model.MemberRole{model.MemberAdmin, model.MemberOwner}).
		Count(&count).Error
	return count > 0, err
}
