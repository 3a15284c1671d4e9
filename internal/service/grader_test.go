package service

import (
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeQuestion(id, correctChoiceID string, wrongChoiceIDs ...string) model.Question {
	q := model.Question{Prompt: "q"}
	q.ID = id
	correct := model.QuestionChoice{IsCorrect: true}
	correct.ID = correctChoiceID
	q.Choices = append(q.Choices, correct)
	for _, wid := range wrongChoiceIDs {
		c := model.QuestionChoice{}
		c.ID = wid
		q.Choices = append(q.Choices, c)
	}
	return q
}

func TestGradeEmptyQuestionSet(t *testing.T) {
	result, err := Grade(nil, map[string]string{})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, util.ErrEmptyQuestionSet)
}

func TestGradeAllCorrect(t *testing.T) {
	questions := []model.Question{
		makeQuestion("q1", "c1", "c1x"),
		makeQuestion("q2", "c2", "c2x"),
		makeQuestion("q3", "c3", "c3x"),
		makeQuestion("q4", "c4", "c4x"),
		makeQuestion("q5", "c5", "c5x"),
	}
	answers := map[string]string{
		"q1": "c1", "q2": "c2", "q3": "c3", "q4": "c4", "q5": "c5",
	}

	result, err := Grade(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 5, result.CorrectCount)
	assert.Equal(t, 5, result.TotalQuestions)
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.Passed)
}

func TestGradePartiallyCorrectFails(t *testing.T) {
	questions := []model.Question{
		makeQuestion("q1", "c1", "c1x"),
		makeQuestion("q2", "c2", "c2x"),
		makeQuestion("q3", "c3", "c3x"),
		makeQuestion("q4", "c4", "c4x"),
		makeQuestion("q5", "c5", "c5x"),
	}
	answers := map[string]string{
		"q1": "c1", "q2": "c2", "q3": "c3", "q4": "c4x", "q5": "c5x",
	}

	result, err := Grade(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 3, result.CorrectCount)
	assert.Equal(t, 60.0, result.Score)
	assert.False(t, result.Passed)
}

// 及格线是闭区间下界：正好 80 分算通过
func TestGradePassThresholdBoundary(t *testing.T) {
	questions := []model.Question{
		makeQuestion("q1", "c1", "c1x"),
		makeQuestion("q2", "c2", "c2x"),
		makeQuestion("q3", "c3", "c3x"),
		makeQuestion("q4", "c4", "c4x"),
		makeQuestion("q5", "c5", "c5x"),
	}
	answers := map[string]string{
		"q1": "c1", "q2": "c2", "q3": "c3", "q4": "c4", "q5": "c5x",
	}

	result, err := Grade(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 80.0, result.Score)
	assert.True(t, result.Passed)
}

// 未作答与无效选项都计为答错，不报错
func TestGradeMissingAndUnknownAnswers(t *testing.T) {
	questions := []model.Question{
		makeQuestion("q1", "c1", "c1x"),
		makeQuestion("q2", "c2", "c2x"),
	}
	answers := map[string]string{
		"q1": "no-such-choice",
		// q2 未作答
	}

	result, err := Grade(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CorrectCount)
	assert.Equal(t, 0.0, result.Score)
	assert.False(t, result.Passed)
}

// 多余的答案键不影响评分
func TestGradeIgnoresExtraAnswers(t *testing.T) {
	questions := []model.Question{
		makeQuestion("q1", "c1", "c1x"),
	}
	answers := map[string]string{
		"q1":      "c1",
		"unknown": "whatever",
	}

	result, err := Grade(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.Passed)
}
