package service

import (
	"errors"
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/repository"
	"fordrax_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type CampaignService struct {
	CampaignRepo *repository.CampaignRepository
	ModuleRepo   *repository.ModuleRepository
	OrgRepo      *repository.OrgRepository
}

func NewCampaignService(campaignRepo *repository.CampaignRepository, moduleRepo *repository.ModuleRepository, orgRepo *repository.OrgRepository) *CampaignService {
	return &CampaignService{
		CampaignRepo: campaignRepo,
		ModuleRepo:   moduleRepo,
		OrgRepo:      orgRepo,
	}
}

type CreateCampaignRequest struct {
	ModuleID    string     `json:"moduleId" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
}

func (s *CampaignService) Create(orgID string, actorID uint, req *CreateCampaignRequest) (*model.Campaign, error) {
	if err := s.requireAdmin(orgID, actorID); err != nil {
		return nil, err
	}

	mod, err := s.ModuleRepo.FindByID(req.ModuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	if !mod.Published {
		return nil, util.ErrModuleNotPublished
	}

	c := &model.Campaign{
		OrgID:       orgID,
		ModuleID:    req.ModuleID,
		Name:        req.Name,
		Description: req.Description,
		Status:      "draft",
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if err := s.CampaignRepo.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) Get(orgID string, actorID uint, campaignID string) (*model.Campaign, error) {
	if err := s.requireAdmin(orgID, actorID); err != nil {
		return nil, err
	}
	c, err := s.CampaignRepo.FindByID(campaignID)
	if err != nil {
		return nil, err
	}
	if c.OrgID != orgID {
		return nil, util.ErrPermissionDenied
	}
	return c, nil
}

func (s *CampaignService) ListByOrg(orgID string, actorID uint, page, limit int) ([]model.Campaign, int64, error) {
	if err := s.requireAdmin(orgID, actorID); err != nil {
		return nil, 0, err
	}
	return s.CampaignRepo.ListByOrg(orgID, page, limit)
}

// SetStatus 活动状态流转：draft → active → closed
func (s *CampaignService) SetStatus(orgID string, actorID uint, campaignID, status string) (*model.Campaign, error) {
	if status != "draft" && status != "active" && status != "closed" {
		return nil, errors.New("invalid campaign status")
	}
	c, err := s.Get(orgID, actorID, campaignID)
	if err != nil {
		return nil, err
	}
	c.Status = status
	if err := s.CampaignRepo.Update(c); err != nil {
		return nil, err
	}
	return c, nil
}

type AssignCampaignRequest struct {
	UserIDs []uint `json:"userIds" binding:"required"`
}

// Assign 把活动分配给一批员工，仅接受本组织的活跃成员
func (s *CampaignService) Assign(orgID string, actorID uint, campaignID string, req *AssignCampaignRequest) (int, error) {
	c, err := s.Get(orgID, actorID, campaignID)
	if err != nil {
		return 0, err
	}

	existing, err := s.CampaignRepo.ListAssignments(campaignID)
	if err != nil {
		return 0, err
	}
	assigned := make(map[uint]bool, len(existing))
	for _, a := range existing {
		assigned[a.UserID] = true
	}

	var assignments []model.CampaignAssignment
	for _, userID := range req.UserIDs {
		if assigned[userID] {
			continue
		}
		member, err := s.OrgRepo.FindMember(orgID, userID)
		if err != nil || !member.IsActive {
			continue
		}
		assignments = append(assignments, model.CampaignAssignment{
			CampaignID: c.ID,
			UserID:     userID,
			Status:     "assigned",
		})
	}

	if err := s.CampaignRepo.Assign(assignments); err != nil {
		return 0, err
	}
	return len(assignments), nil
}

func (s *CampaignService) ListAssignments(orgID string, actorID uint, campaignID string) ([]model.CampaignAssignment, error) {
	if _, err := s.Get(orgID, actorID, campaignID); err != nil {
		return nil, err
	}
	return s.CampaignRepo.ListAssignments(campaignID)
}

// ListMyAssignments 员工端：分给自己的活动
func (s *CampaignService) ListMyAssignments(userID uint) ([]model.CampaignAssignment, error) {
	return s.CampaignRepo.ListAssignmentsByUser(userID)
}

func (s *CampaignService) requireAdmin(orgID string, userID uint) error {
	isAdmin, err := s.OrgRepo.IsOrgAdmin(orgID, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return util.ErrPermissionDenied
	}
	return nil
}
