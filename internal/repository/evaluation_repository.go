package repository

import (
	"fordrax_backend/internal/model"

	"gorm.io/gorm"
)

type EvaluationRepository struct {
	DB *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{DB: db}
}

// Create 追加一条评分记录。记录创建后不再修改；重复提交产生新的独立记录
func (r *EvaluationRepository) Create(e *model.Evaluation) error {
	return r.DB.Create(e).Error
}

func (r *EvaluationRepository) FindByID(id string) (*model.Evaluation, error) {
	var e model.Evaluation
	err := r.DB.Where("id = ?", id).First(&e).Error
	return &e, err
}

func (r *EvaluationRepository) ListByUser(userID uint) ([]model.Evaluation, error) {
	var es []model.Evaluation
	err := r.DB.Where("user_id = ?", userID).Order("completed_at desc").Find(&es).Error
	return es, err
}

func (r *EvaluationRepository) ListByUserAndModule(userID uint, moduleID string) ([]model.Evaluation, error) {
	var es []model.Evaluation
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).
		Order("completed_at desc").Find(&es).Error
	return es, err
}

// ListPassedWithoutCertificate 找出已通过但尚未签发证书的评分记录，
// 供后台对账任务补发
func (r *EvaluationRepository) ListPassedWithoutCertificate(limit int) ([]model.Evaluation, error) {
	var es []model.Evaluation
	err := r.DB.
		Joins("LEFT JOIN certificates ON certificates.evaluation_id = evaluations.id AND certificates.deleted_at IS NULL").
		Where("evaluations.passed = ? AND certificates.id IS NULL", true).
		Limit(limit).
		Find(&es).Error
	return es, err
}

func (r *EvaluationRepository) CountByOrg(orgID string) (total int64, passed int64, err error) {
	if err = r.DB.Model(&model.Evaluation{}).Where("org_id = ?", orgID).Count(&total).Error; err != nil {
		return
	}
	err = r.DB.Model(&model.Evaluation{}).Where("org_id = ? AND passed = ?", orgID, true).Count(&passed).Error
	return
}
