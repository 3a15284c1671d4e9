package service

import (
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/repository"
	"fordrax_backend/internal/util"
	"time"
)

type PhishingService struct {
	PhishingRepo *repository.PhishingRepository
	OrgRepo      *repository.OrgRepository
}

func NewPhishingService(phishingRepo *repository.PhishingRepository, orgRepo *repository.OrgRepository) *PhishingService {
	return &PhishingService{
		PhishingRepo: phishingRepo,
		OrgRepo:      orgRepo,
	}
}

type CreateSimulationRequest struct {
	Name            string `json:"name" binding:"required"`
	TemplateSubject string `json:"templateSubject"`
	TemplateSender  string `json:"templateSender"`
}

func (s *PhishingService) Create(orgID string, actorID uint, req *CreateSimulationRequest) (*model.PhishingSimulation, error) {
	if err := s.requireAdmin(orgID, actorID); err != nil {
		return nil, err
	}
	sim := &model.PhishingSimulation{
		OrgID:           orgID,
		Name:            req.Name,
		TemplateSubject: req.TemplateSubject,
		TemplateSender:  req.TemplateSender,
		Status:          "draft",
	}
	if err := s.PhishingRepo.CreateSimulation(sim); err != nil {
		return nil, err
	}
	return sim, nil
}

// Launch 把演练置为 launched 并记录时间，此后开始接收行为事件
func (s *PhishingService) Launch(orgID string, actorID uint, simulationID string) (*model.PhishingSimulation, error) {
	sim, err := s.get(orgID, actorID, simulationID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sim.Status = "launched"
	sim.LaunchedAt = &now
	if err := s.PhishingRepo.UpdateSimulation(sim); err != nil {
		return nil, err
	}
	return sim, nil
}

func (s *PhishingService) Close(orgID string, actorID uint, simulationID string) (*model.PhishingSimulation, error) {
	sim, err := s.get(orgID, actorID, simulationID)
	if err != nil {
		return nil, err
	}
	sim.Status = "closed"
	if err := s.PhishingRepo.UpdateSimulation(sim); err != nil {
		return nil, err
	}
	return sim, nil
}

func (s *PhishingService) ListByOrg(orgID string, actorID uint, page, limit int) ([]model.PhishingSimulation, int64, error) {
	if err := s.requireAdmin(orgID, actorID); err != nil {
		return nil, 0, err
	}
	return s.PhishingRepo.ListSimulationsByOrg(orgID, page, limit)
}

// RecordEvent 记录一次员工行为（打开、点击、上报）。
// 事件端点由邮件里的追踪链接触发，不要求登录态
func (s *PhishingService) RecordEvent(simulationID string, userID uint, eventType model.PhishingEventType) error {
	sim, err := s.PhishingRepo.FindSimulationByID(simulationID)
	if err != nil {
		return err
	}
	if sim.Status != "launched" {
		return util.ErrPermissionDenied
	}
	return s.PhishingRepo.RecordEvent(&model.PhishingEvent{
		SimulationID: simulationID,
		UserID:       userID,
		EventType:    eventType,
	})
}

func (s *PhishingService) GetStats(orgID string, actorID uint, simulationID string) (*repository.SimulationStats, error) {
	if _, err := s.get(orgID, actorID, simulationID); err != nil {
		return nil, err
	}
	return s.PhishingRepo.GetSimulationStats(simulationID)
}

func (s *PhishingService) get(orgID string, actorID uint, simulationID string) (*model.PhishingSimulation, error) {
	if err := s.requireAdmin(orgID, actorID); err != nil {
		return nil, err
	}
	sim, err := s.PhishingRepo.FindSimulationByID(simulationID)
	if err != nil {
		return nil, err
	}
	if sim.OrgID != orgID {
		return nil, util.ErrPermissionDenied
	}
	return sim, nil
}

func (s *PhishingService) requireAdmin(orgID string, userID uint) error {
	isAdmin, err := s.OrgRepo.IsOrgAdmin(orgID, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return util.ErrPermissionDenied
	}
	return nil
}
