package service

import (
	"errors"
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/util"
	"fordrax_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type membershipResolver interface {
	FindActiveOrg(userID uint) (string, error)
}

type questionBank interface {
	ListByModule(moduleID string) ([]model.Question, error)
}

type moduleCatalog interface {
	FindByID(id string) (*model.TrainingModule, error)
}

type evaluationStore interface {
	Create(e *model.Evaluation) error
	FindByID(id string) (*model.Evaluation, error)
	ListByUser(userID uint) ([]model.Evaluation, error)
	ListByUserAndModule(userID uint, moduleID string) ([]model.Evaluation, error)
}

type certificateIssuer interface {
	Issue(orgID string, userID uint, moduleID, evaluationID string) (*model.Certificate, error)
}

type notifier interface {
	DispatchCertificateEmail(orgID string, userID uint, payload model.CertificatePayload) error
}

type userDirectory interface {
	FindByID(id uint) (*model.User, error)
}

type campaignTracker interface {
	MarkCompletedByModule(moduleID string, userID uint) error
}

// EvaluationService 测验提交流水线：解析组织 → 取题库 → 评分 → 落评分记录，
// 通过后签发证书并派发通知。评分记录落库是唯一的硬失败点
type EvaluationService struct {
	memberships   membershipResolver
	modules       moduleCatalog
	questions     questionBank
	evaluations   evaluationStore
	certificates  certificateIssuer
	notifications notifier
	users         userDirectory
	campaigns     campaignTracker
}

func NewEvaluationService(
	memberships membershipResolver,
	modules moduleCatalog,
	questions questionBank,
	evaluations evaluationStore,
	certificates certificateIssuer,
	notifications notifier,
	users userDirectory,
	campaigns campaignTracker,
) *EvaluationService {
	return &EvaluationService{
		memberships:   memberships,
		modules:       modules,
		questions:     questions,
		evaluations:   evaluations,
		certificates:  certificates,
		notifications: notifications,
		users:         users,
		campaigns:     campaigns,
	}
}

// SubmitQuizRequest 学生端提交：题目 ID → 所选选项 ID
type SubmitQuizRequest struct {
	ModuleID string            `json:"moduleId" binding:"required"`
	Answers  map[string]string `json:"answers" binding:"required"`
}

type SubmitResult struct {
	Score          float64 `json:"score"`
	Passed         bool    `json:"passed"`
	CorrectCount   int     `json:"correctCount"`
	TotalQuestions int     `json:"totalQuestions"`
	EvaluationID   string  `json:"evaluationId"`
	CertificateID  string  `json:"certificateId,omitempty"`
}

// Submit 处理一次测验提交。证书签发与邮件入队失败只记日志，
// 已写入的评分记录不回滚，缺失的证书由后台对账补发
func (s *EvaluationService) Submit(userID uint, req *SubmitQuizRequest) (*SubmitResult, error) {
	orgID, err := s.memberships.FindActiveOrg(userID)
	if err != nil {
		return nil, err
	}

	mod, err := s.modules.FindByID(req.ModuleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	if !mod.Published {
		return nil, util.ErrModuleNotPublished
	}

	questions, err := s.questions.ListByModule(req.ModuleID)
	if err != nil {
		return nil, err
	}

	grade, err := Grade(questions, req.Answers)
	if err != nil {
		return nil, err
	}

	status := "failed"
	if grade.Passed {
		status = "passed"
	}
	eval := &model.Evaluation{
		UserID:      userID,
		ModuleID:    req.ModuleID,
		OrgID:       orgID,
		Score:       grade.Score,
		Passed:      grade.Passed,
		Difficulty:  mod.Difficulty,
		Status:      status,
		CompletedAt: time.Now(),
	}
	if err := s.evaluations.Create(eval); err != nil {
		return nil, err
	}

	result := &SubmitResult{
		Score:          grade.Score,
		Passed:         grade.Passed,
		CorrectCount:   grade.CorrectCount,
		TotalQuestions: grade.TotalQuestions,
		EvaluationID:   eval.ID,
	}

	if !grade.Passed {
		return result, nil
	}

	cert, err := s.certificates.Issue(orgID, userID, req.ModuleID, eval.ID)
	if err != nil {
		logger.Log.Error("certificate issuance failed",
			zap.String("evaluation_id", eval.ID),
			zap.Uint("user_id", userID),
			zap.Error(err))
	} else {
		result.CertificateID = cert.CertificateUUID
		s.notifyCertificate(orgID, userID, cert, mod)
	}

	if err := s.campaigns.MarkCompletedByModule(req.ModuleID, userID); err != nil {
		logger.Log.Error("campaign assignment update failed",
			zap.String("module_id", req.ModuleID),
			zap.Uint("user_id", userID),
			zap.Error(err))
	}

	return result, nil
}

func (s *EvaluationService) notifyCertificate(orgID string, userID uint, cert *model.Certificate, mod *model.TrainingModule) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		logger.Log.Error("notification skipped, user lookup failed",
			zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	payload := model.CertificatePayload{
		Email:         user.Email,
		Name:          user.Name,
		CertificateID: cert.CertificateUUID,
		ModuleTitle:   mod.Title,
	}
	if err := s.notifications.DispatchCertificateEmail(orgID, userID, payload); err != nil {
		logger.Log.Error("notification enqueue failed",
			zap.String("certificate_id", cert.CertificateUUID),
			zap.Error(err))
	}
}

// QuizQuestion 学生端题目投影，选项不携带答案键
type QuizQuestion struct {
	ID      string       `json:"id"`
	Prompt  string       `json:"prompt"`
	Order   int          `json:"order"`
	Choices []QuizChoice `json:"choices"`
}

type QuizChoice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

// GetQuiz 返回模块测验的学生视图。is_correct 永不出服务层
func (s *EvaluationService) GetQuiz(moduleID string) ([]QuizQuestion, error) {
	mod, err := s.modules.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	if !mod.Published {
		return nil, util.ErrModuleNotPublished
	}

	questions, err := s.questions.ListByModule(moduleID)
	if err != nil {
		return nil, err
	}

	view := make([]QuizQuestion, 0, len(questions))
	for _, q := range questions {
		qq := QuizQuestion{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Order:   q.Order,
			Choices: make([]QuizChoice, 0, len(q.Choices)),
		}
		for _, c := range q.Choices {
			qq.Choices = append(qq.Choices, QuizChoice{ID: c.ID, Label: c.Label, Order: c.Order})
		}
		view = append(view, qq)
	}
	return view, nil
}

func (s *EvaluationService) GetEvaluation(id string) (*model.Evaluation, error) {
	eval, err := s.evaluations.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrEvaluationNotFound
	}
	return eval, err
}

func (s *EvaluationService) ListUserEvaluations(userID uint) ([]model.Evaluation, error) {
	return s.evaluations.ListByUser(userID)
}

func (s *EvaluationService) ListUserModuleEvaluations(userID uint, moduleID string) ([]model.Evaluation, error) {
	return s.evaluations.ListByUserAndModule(userID, moduleID)
}
