package repository

import (
	"fordrax_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(m *model.TrainingModule) error {
	return r.DB.Create(m).Error
}

func (r *ModuleRepository) FindByID(id string) (*model.TrainingModule, error) {
	var m model.TrainingModule
	err := r.DB.Where("id = ?", id).First(&m).Error
	return &m, err
}

func (r *ModuleRepository) FindBySlug(slug string) (*model.TrainingModule, error) {
	var m model.TrainingModule
	err := r.DB.Where("slug = ?", slug).First(&m).Error
	return &m, err
}

func (r *ModuleRepository) Update(m *model.TrainingModule) error {
	return r.DB.Save(m).Error
}

func (r *ModuleRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.TrainingModule{}).Error
}

func (r *ModuleRepository) List(page, limit int) ([]model.TrainingModule, int64, error) {
	var ms []model.TrainingModule
	var total int64
	query := r.DB.Model(&model.TrainingModule{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ms).Error
	return ms, total, err
}

func (r *ModuleRepository) ListPublished() ([]model.TrainingModule, error) {
	var ms []model.TrainingModule
	err := r.DB.Where("published = ?", true).Order("published_at desc").Find(&ms).Error
	return ms, err
}

func (r *ModuleRepository) SetPublished(id string, published bool) error {
	updates := map[string]interface{}{"published": published}
	if published {
		now := time.Now()
		updates["published_at"] = &now
	} else {
		updates["published_at"] = nil
	}
	return r.DB.Model(&model.TrainingModule{}).Where("id = ?", id).Updates(updates).Error
}
