package service

import (
	"fordrax_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChoices(t *testing.T) {
	assert.Error(t, validateChoices(nil))
	assert.Error(t, validateChoices([]ChoiceInput{{Label: "a", IsCorrect: true}}))
	assert.Error(t, validateChoices([]ChoiceInput{
		{Label: "a"}, {Label: "b"},
	}))
	assert.Error(t, validateChoices([]ChoiceInput{
		{Label: "a", IsCorrect: true}, {Label: "b", IsCorrect: true},
	}))
	assert.NoError(t, validateChoices([]ChoiceInput{
		{Label: "a", IsCorrect: true}, {Label: "b"},
	}))
}

// 非法的选项集在任何字段被修改之前就被拒绝
func TestApplyQuestionUpdateRejectsInvalidChoicesBeforeMutation(t *testing.T) {
	q := &model.Question{Prompt: "original prompt", Order: 1}
	order := 5

	choices, err := applyQuestionUpdate(q, &UpdateQuestionRequest{
		Prompt: "new prompt",
		Order:  &order,
		Choices: []ChoiceInput{
			{Label: "a", IsCorrect: true},
			{Label: "b", IsCorrect: true},
		},
	})
	assert.Error(t, err)
	assert.Nil(t, choices)

	assert.Equal(t, "original prompt", q.Prompt)
	assert.Equal(t, 1, q.Order)
}

func TestApplyQuestionUpdateValid(t *testing.T) {
	q := &model.Question{Prompt: "original prompt", Order: 1}
	order := 5

	choices, err := applyQuestionUpdate(q, &UpdateQuestionRequest{
		Prompt: "new prompt",
		Order:  &order,
		Choices: []ChoiceInput{
			{Label: "a", IsCorrect: true, Order: 1},
			{Label: "b", Order: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, choices, 2)
	assert.True(t, choices[0].IsCorrect)
	assert.False(t, choices[1].IsCorrect)

	assert.Equal(t, "new prompt", q.Prompt)
	assert.Equal(t, 5, q.Order)
}

// 不带选项的局部更新只动提示与顺序
func TestApplyQuestionUpdatePartial(t *testing.T) {
	q := &model.Question{Prompt: "original prompt", Order: 1}

	choices, err := applyQuestionUpdate(q, &UpdateQuestionRequest{Prompt: "renamed"})
	require.NoError(t, err)
	assert.Nil(t, choices)
	assert.Equal(t, "renamed", q.Prompt)
	assert.Equal(t, 1, q.Order)
}
