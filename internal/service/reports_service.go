package service

import (
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/repository"
	"fordrax_backend/internal/util"
)

// ReportsService 组织维度的聚合报表，只读
type ReportsService struct {
	EvaluationRepo  *repository.EvaluationRepository
	CertificateRepo *repository.CertificateRepository
	PhishingRepo    *repository.PhishingRepository
	OrgRepo         *repository.OrgRepository
}

func NewReportsService(
	evaluationRepo *repository.EvaluationRepository,
	certificateRepo *repository.CertificateRepository,
	phishingRepo *repository.PhishingRepository,
	orgRepo *repository.OrgRepository,
) *ReportsService {
	return &ReportsService{
		EvaluationRepo:  evaluationRepo,
		CertificateRepo: certificateRepo,
		PhishingRepo:    phishingRepo,
		OrgRepo:         orgRepo,
	}
}

type OrgReport struct {
	TotalEvaluations  int64   `json:"totalEvaluations"`
	PassedEvaluations int64   `json:"passedEvaluations"`
	PassRate          float64 `json:"passRate"` // 0-100
	CertificatesCount int64   `json:"certificatesCount"`
	PhishingClicked   int64   `json:"phishingClicked"`
	PhishingReported  int64   `json:"phishingReported"`
}

// OrgOverview 组织培训概况：评分通过率、证书数量、钓鱼演练行为
func (s *ReportsService) OrgOverview(orgID string, actorID uint) (*OrgReport, error) {
	isAdmin, err := s.OrgRepo.IsOrgAdmin(orgID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, util.ErrPermissionDenied
	}

	total, passed, err := s.EvaluationRepo.CountByOrg(orgID)
	if err != nil {
		return nil, err
	}
	certs, err := s.CertificateRepo.CountByOrg(orgID)
	if err != nil {
		return nil, err
	}
	clicked, err := s.PhishingRepo.CountOrgEvents(orgID, model.PhishingClicked)
	if err != nil {
		return nil, err
	}
	reported, err := s.PhishingRepo.CountOrgEvents(orgID, model.PhishingReported)
	if err != nil {
		return nil, err
	}

	report := &OrgReport{
		TotalEvaluations:  total,
		PassedEvaluations: passed,
		CertificatesCount: certs,
		PhishingClicked:   clicked,
		PhishingReported:  reported,
	}
	if total > 0 {
		report.PassRate = float64(passed) / float64(total) * 100
	}
	return report, nil
}
