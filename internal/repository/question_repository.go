package repository

import (
	"fordrax_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Choices", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_choices.order asc")
	}).Where("id = ?", id).First(&q).Error
	return &q, err
}

// ListByModule 返回模块全部题目及选项（含 is_correct 答案键）。
// 只能在服务端评分路径使用，学生端接口使用 service 层的投影
func (r *QuestionRepository) ListByModule(moduleID string) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Preload("Choices", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_choices.order asc")
	}).Where("module_id = ?", moduleID).
		Order("`order` asc, created_at asc").
		Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.QuestionChoice{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Question{}).Error
	})
}

func (r *QuestionRepository) ReplaceChoices(questionID string, choices []model.QuestionChoice) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.QuestionChoice{}).Error; err != nil {
			return err
		}
		for i := range choices {
			choices[i].QuestionID = questionID
		}
		if len(choices) > 0 {
			if err := tx.Create(&choices).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
