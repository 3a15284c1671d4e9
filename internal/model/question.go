package model

// Question 归属于单个模块，选项中有且仅有一个正确答案
// swagger:model Question
type Question struct {
	UUIDBase
	ModuleID string           `gorm:"index;type:varchar(36);not null" json:"moduleId"`
	Prompt   string           `gorm:"type:text;not null" json:"prompt"`
	Order    int              `gorm:"default:0" json:"order"`
	Choices  []QuestionChoice `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model QuestionChoice
type QuestionChoice struct {
	UUIDBase
	QuestionID string `gorm:"index;type:varchar(36);not null" json:"questionId"`
	Label      string `gorm:"size:500;not null" json:"label"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Order      int    `gorm:"default:0" json:"order"`
}

func (QuestionChoice) TableName() string {
	return "question_choices"
}
