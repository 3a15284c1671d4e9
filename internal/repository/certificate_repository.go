package repository

import (
	"fordrax_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(c *model.Certificate) error {
	return r.DB.Create(c).Error
}

func (r *CertificateRepository) FindByID(id string) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *CertificateRepository) FindByUUID(certificateUUID string) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("certificate_uuid = ?", certificateUUID).First(&c).Error
	return &c, err
}

func (r *CertificateRepository) FindByEvaluation(evaluationID string) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("evaluation_id = ?", evaluationID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepository) ListByUser(userID uint) ([]model.Certificate, error) {
	var cs []model.Certificate
	err := r.DB.Where("user_id = ?", userID).Order("issued_at desc").Find(&cs).Error
	return cs, err
}

func (r *CertificateRepository) CountByOrg(orgID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Certificate{}).Where("org_id = ?", orgID).Count(&count).Error
	return count, err
}
