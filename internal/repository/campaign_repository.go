package repository

import (
	"fordrax_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	DB *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{DB: db}
}

func (r *CampaignRepository) Create(c *model.Campaign) error {
	return r.DB.Create(c).Error
}

func (r *CampaignRepository) FindByID(id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.DB.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
	return r.DB.Save(c).Error
}

func (r *CampaignRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", id).Delete(&model.CampaignAssignment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Campaign{}).Error
	})
}

func (r *CampaignRepository) ListByOrg(orgID string, page, limit int) ([]model.Campaign, int64, error) {
	var cs []model.Campaign
	var total int64
	query := r.DB.Model(&model.Campaign{}).Where("org_id = ?", orgID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&cs).Error
	return cs, total, err
}

func (r *CampaignRepository) Assign(assignments []model.CampaignAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.DB.Create(&assignments).Error
}

func (r *CampaignRepository) ListAssignments(campaignID string) ([]model.CampaignAssignment, error) {
	var as []model.CampaignAssignment
	err := r.DB.Where("campaign_id = ?", campaignID).Find(&as).Error
	return as, err
}

func (r *CampaignRepository) ListAssignmentsByUser(userID uint) ([]model.CampaignAssignment, error) {
	var as []model.CampaignAssignment
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&as).Error
	return as, err
}

// MarkCompleted 员工通过活动关联模块的测验后标记完成
func (r *CampaignRepository) MarkCompleted(campaignID string, userID uint) error {
	now := time.Now()
	return r.DB.Model(&model.CampaignAssignment{}).
		Where("campaign_id = ? AND user_id = ? AND status = ?", campaignID, userID, "assigned").
		Updates(map[string]interface{}{
			"status":       "completed",
			"completed_at": &now,
		}).Error
}

// MarkCompletedByModule 按模块找到该用户所有进行中的活动分配并标记完成
func (r *CampaignRepository) MarkCompletedByModule(moduleID string, userID uint) error {
	now := time.Now()
	return r.DB.Exec(
		`UPDATE campaign_assignments ca
		 JOIN campaigns c ON c.id = ca.campaign_id AND c.deleted_at IS NULL
		 SET ca.status = 'completed', ca.completed_at = ?
		 WHERE c.module_id = ? AND ca.user_id = ? AND ca.status = 'assigned' AND ca.deleted_at IS NULL`,
		now, moduleID, userID,
	).Error
}
