package service

import (
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/util"
)

// PassThreshold 及格线。score >= 80 判为通过，无部分得分、无题目加权
const PassThreshold = 80.0

// GradeResult 一次评分的结果
type GradeResult struct {
	CorrectCount   int     `json:"correctCount"`
	TotalQuestions int     `json:"totalQuestions"`
	Score          float64 `json:"score"`
	Passed         bool    `json:"passed"`
}

// Grade 按答案键对提交评分。纯函数，不触达存储。
// 未作答或选项不匹配一律计为答错，不报错；题目数为零返回 ErrEmptyQuestionSet
func Grade(questions []model.Question, answers map[string]string) (*GradeResult, error) {
	total := len(questions)
	if total == 0 {
		return nil, util.ErrEmptyQuestionSet
	}

	correct := 0
	for _, q := range questions {
		choiceID, ok := answers[q.ID]
		if !ok {
			continue
		}
		for _, c := range q.Choices {
			if c.IsCorrect {
				if c.ID == choiceID {
					correct++
				}
				break
			}
		}
	}

	score := float64(correct) / float64(total) * 100

	return &GradeResult{
		CorrectCount:   correct,
		TotalQuestions: total,
		Score:          score,
		Passed:         score >= PassThreshold,
	}, nil
}
