package repository

import (
	"fordrax_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type PhishingRepository struct {
	DB *gorm.DB
}

func NewPhishingRepository(db *gorm.DB) *PhishingRepository {
	return &PhishingRepository{DB: db}
}

func (r *PhishingRepository) CreateSimulation(s *model.PhishingSimulation) error {
	return r.DB.Create(s).Error
}

func (r *PhishingRepository) FindSimulationByID(id string) (*model.PhishingSimulation, error) {
	var s model.PhishingSimulation
	err := r.DB.Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *PhishingRepository) UpdateSimulation(s *model.PhishingSimulation) error {
	return r.DB.Save(s).Error
}

func (r *PhishingRepository) ListSimulationsByOrg(orgID string, page, limit int) ([]model.PhishingSimulation, int64, error) {
	var ss []model.PhishingSimulation
	var total int64
	query := r.DB.Model(&model.PhishingSimulation{}).Where("org_id = ?", orgID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ss).Error
	return ss, total, err
}

func (r *PhishingRepository) RecordEvent(e *model.PhishingEvent) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	return r.DB.Create(e).Error
}

// SimulationStats 单次演练的行为统计
type SimulationStats struct {
	Sent     int64 `json:"sent"`
	Opened   int64 `json:"opened"`
	Clicked  int64 `json:"clicked"`
	Reported int64 `json:"reported"`
}

func (r *PhishingRepository) GetSimulationStats(simulationID string) (*SimulationStats, error) {
	type row struct {
		EventType model.PhishingEventType
		Count     int64
	}
	var rows []row
	err := r.DB.Model(&model.PhishingEvent{}).
		Select("event_type, COUNT(*) as count").
		Where("simulation_id = ?", simulationID).
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &SimulationStats{}
	for _, rw := range rows {
		switch rw.EventType {
		case model.PhishingSent:
			stats.Sent = rw.Count
		case model.PhishingOpened:
			stats.Opened = rw.Count
		case model.PhishingClicked:
			stats.Clicked = rw.Count
		case model.PhishingReported:
			stats.Reported = rw.Count
		}
	}
	return stats, nil
}

func (r *PhishingRepository) CountOrgEvents(orgID string, eventType model.PhishingEventType) (int64, error) {
	var count int64
	err := r.DB.Model(&model.PhishingEvent{}).
		Joins("JOIN phishing_simulations ps ON ps.id = phishing_events.simulation_id AND ps.deleted_at IS NULL").
		Where("ps.org_id = ? AND phishing_events.event_type = ?", orgID, eventType).
		Count(&count).Error
	return count, err
}
