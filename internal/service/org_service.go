package service

import (
	"errors"
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/repository"
	"fordrax_backend/internal/util"

	"gorm.io/gorm"
)

type OrgService struct {
	OrgRepo  *repository.OrgRepository
	UserRepo *repository.UserRepository
}

func NewOrgService(orgRepo *repository.OrgRepository, userRepo *repository.UserRepository) *OrgService {
	return &OrgService{
		OrgRepo:  orgRepo,
		UserRepo: userRepo,
	}
}

type CreateOrgRequest struct {
	DisplayName     string `json:"displayName" binding:"required"`
	LegalType       string `json:"legalType"`
	RFC             string `json:"rfc"`
	CompanyName     string `json:"companyName"`
	DifficultyLevel string `json:"difficultyLevel"`
}

// Create 建组织并把创建者登记为 owner
func (s *OrgService) Create(ownerID uint, req *CreateOrgRequest) (*model.Org, error) {
	difficulty := req.DifficultyLevel
	if difficulty == "" {
		difficulty = "basic"
	}
	org := &model.Org{
		DisplayName:     req.DisplayName,
		LegalType:       req.LegalType,
		RFC:             req.RFC,
		CompanyName:     req.CompanyName,
		DifficultyLevel: difficulty,
	}
	if err := s.OrgRepo.Create(org); err != nil {
		return nil, err
	}

	member := &model.OrgMember{
		OrgID:    org.ID,
		UserID:   ownerID,
		Role:     model.MemberOwner,
		IsActive: true,
	}
	if err := s.OrgRepo.AddMember(member); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *OrgService) Get(orgID string) (*model.Org, error) {
	org, err := s.OrgRepo.FindByID(orgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("organization not found")
	}
	return org, err
}

func (s *OrgService) List(page, limit int) ([]model.Org, int64, error) {
	return s.OrgRepo.List(page, limit)
}

type UpdateOrgSettingsRequest struct {
	DisplayName     string `json:"displayName"`
	LegalType       string `json:"legalType"`
	RFC             string `json:"rfc"`
	CompanyName     string `json:"companyName"`
	DifficultyLevel string `json:"difficultyLevel"`
}

// UpdateSettings 仅组织 admin/owner 可改组织资料
func (s *OrgService) UpdateSettings(orgID string, actorID uint, req *UpdateOrgSettingsRequest) (*model.Org, error) {
	isAdmin, err := s.OrgRepo.IsOrgAdmin(orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, util.ErrPermissionDenied
	}

	org, err := s.OrgRepo.FindByID(orgID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != "" {
		org.DisplayName = req.DisplayName
	}
	if req.LegalType != "" {
		org.LegalType = req.LegalType
	}
	if req.RFC != "" {
		org.RFC = req.RFC
	}
	if req.CompanyName != "" {
		org.CompanyName = req.CompanyName
	}
	if req.DifficultyLevel != "" {
		org.DifficultyLevel = req.DifficultyLevel
	}

	if err := s.OrgRepo.Update(org); err != nil {
		return nil, err
	}
	return org, nil
}

type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

// AddMember 按邮箱把已注册用户拉入组织
func (s *OrgService) AddMember(orgID string, actorID uint, req *AddMemberRequest) (*model.OrgMember, error) {
	isAdmin, err := s.OrgRepo.IsOrgAdmin(orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, util.ErrPermissionDenied
	}

	user, err := s.UserRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.OrgRepo.FindMember(orgID, user.ID); err == nil {
		return nil, errors.New("user is already a member of this organization")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := model.MemberRole(req.Role)
	if role == "" {
		role = model.MemberEmployee
	}
	member := &model.OrgMember{
		OrgID:    orgID,
		UserID:   user.ID,
		Role:     role,
		IsActive: true,
	}
	if err := s.OrgRepo.AddMember(member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *OrgService) ListMembers(orgID string, actorID uint, page, limit int) ([]model.OrgMember, int64, error) {
	isAdmin, err := s.OrgRepo.IsOrgAdmin(orgID, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !isAdmin {
		return nil, 0, util.ErrPermissionDenied
	}
	return s.OrgRepo.ListMembers(orgID, page, limit)
}

// SetMemberActive 停用/恢复成员资格。停用后用户无法提交该组织的测验
func (s *OrgService) SetMemberActive(orgID string, actorID uint, userID uint, active bool) error {
	isAdmin, err := s.OrgRepo.IsOrgAdmin(orgID, actorID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return util.ErrPermissionDenied
	}
	return s.OrgRepo.SetMemberActive(orgID, userID, active)
}

// RequireAdmin 供其他服务复用的权限检查
func (s *OrgService) RequireAdmin(orgID string, userID uint) error {
	isAdmin, err := s.OrgRepo.IsOrgAdmin(orgID, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return util.ErrPermissionDenied
	}
	return nil
}
