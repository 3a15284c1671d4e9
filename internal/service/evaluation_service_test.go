package service

import (
	"errors"
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeMembership struct {
	orgID string
	err   error
}

func (f *fakeMembership) FindActiveOrg(userID uint) (string, error) {
	return f.orgID, f.err
}

type fakeModuleCatalog struct {
	modules map[string]*model.TrainingModule
}

func (f *fakeModuleCatalog) FindByID(id string) (*model.TrainingModule, error) {
	m, ok := f.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

type fakeQuestionBank struct {
	questions []model.Question
	err       error
}

func (f *fakeQuestionBank) ListByModule(moduleID string) ([]model.Question, error) {
	return f.questions, f.err
}

type fakeEvaluationStore struct {
	created   []*model.Evaluation
	createErr error
}

func (f *fakeEvaluationStore) Create(e *model.Evaluation) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = "eval-1"
	f.created = append(f.created, e)
	return nil
}

func (f *fakeEvaluationStore) FindByID(id string) (*model.Evaluation, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEvaluationStore) ListByUser(userID uint) ([]model.Evaluation, error) {
	return nil, nil
}

func (f *fakeEvaluationStore) ListByUserAndModule(userID uint, moduleID string) ([]model.Evaluation, error) {
	return nil, nil
}

type fakeIssuer struct {
	issued   int
	issueErr error
}

func (f *fakeIssuer) Issue(orgID string, userID uint, moduleID, evaluationID string) (*model.Certificate, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	f.issued++
	cert := &model.Certificate{
		OrgID:           orgID,
		UserID:          userID,
		ModuleID:        moduleID,
		EvaluationID:    evaluationID,
		CertificateUUID: "cert-uuid-1",
	}
	return cert, nil
}

type fakeNotifier struct {
	dispatched []model.CertificatePayload
	err        error
}

func (f *fakeNotifier) DispatchCertificateEmail(orgID string, userID uint, payload model.CertificatePayload) error {
	if f.err != nil {
		return f.err
	}
	f.dispatched = append(f.dispatched, payload)
	return nil
}

type fakeUserDirectory struct {
	user *model.User
	err  error
}

func (f *fakeUserDirectory) FindByID(id uint) (*model.User, error) {
	return f.user, f.err
}

type fakeCampaignTracker struct {
	completed []string
	err       error
}

func (f *fakeCampaignTracker) MarkCompletedByModule(moduleID string, userID uint) error {
	if f.err != nil {
		return f.err
	}
	f.completed = append(f.completed, moduleID)
	return nil
}

type pipelineFixture struct {
	membership  *fakeMembership
	modules     *fakeModuleCatalog
	questions   *fakeQuestionBank
	evaluations *fakeEvaluationStore
	issuer      *fakeIssuer
	notifier    *fakeNotifier
	users       *fakeUserDirectory
	campaigns   *fakeCampaignTracker
	svc         *EvaluationService
}

func newPipelineFixture() *pipelineFixture {
	mod := &model.TrainingModule{
		Title:      "Phishing Basics",
		Difficulty: "basic",
		Published:  true,
	}
	mod.ID = "module-1"

	f := &pipelineFixture{
		membership: &fakeMembership{orgID: "org-1"},
		modules:    &fakeModuleCatalog{modules: map[string]*model.TrainingModule{"module-1": mod}},
		questions: &fakeQuestionBank{questions: []model.Question{
			makeQuestion("q1", "c1", "c1x"),
			makeQuestion("q2", "c2", "c2x"),
			makeQuestion("q3", "c3", "c3x"),
			makeQuestion("q4", "c4", "c4x"),
			makeQuestion("q5", "c5", "c5x"),
		}},
		evaluations: &fakeEvaluationStore{},
		issuer:      &fakeIssuer{},
		notifier:    &fakeNotifier{},
		users:       &fakeUserDirectory{user: &model.User{Name: "Ana", Email: "ana@example.com"}},
		campaigns:   &fakeCampaignTracker{},
	}
	f.svc = NewEvaluationService(
		f.membership, f.modules, f.questions, f.evaluations,
		f.issuer, f.notifier, f.users, f.campaigns,
	)
	return f
}

func TestSubmitPassedIssuesCertificateAndNotifies(t *testing.T) {
	f := newPipelineFixture()

	result, err := f.svc.Submit(7, &SubmitQuizRequest{
		ModuleID: "module-1",
		Answers:  map[string]string{"q1": "c1", "q2": "c2", "q3": "c3", "q4": "c4", "q5": "c5"},
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.Score)
	assert.True(t, result.Passed)
	assert.Equal(t, "eval-1", result.EvaluationID)
	assert.Equal(t, "cert-uuid-1", result.CertificateID)

	require.Len(t, f.evaluations.created, 1)
	eval := f.evaluations.created[0]
	assert.Equal(t, "org-1", eval.OrgID)
	assert.Equal(t, uint(7), eval.UserID)
	assert.Equal(t, "passed", eval.Status)
	assert.True(t, eval.Passed)

	assert.Equal(t, 1, f.issuer.issued)
	require.Len(t, f.notifier.dispatched, 1)
	payload := f.notifier.dispatched[0]
	assert.Equal(t, "ana@example.com", payload.Email)
	assert.Equal(t, "Ana", payload.Name)
	assert.Equal(t, "cert-uuid-1", payload.CertificateID)
	assert.Equal(t, "Phishing Basics", payload.ModuleTitle)

	assert.Equal(t, []string{"module-1"}, f.campaigns.completed)
}

func TestSubmitFailedRecordsEvaluationOnly(t *testing.T) {
	f := newPipelineFixture()

	result, err := f.svc.Submit(7, &SubmitQuizRequest{
		ModuleID: "module-1",
		Answers:  map[string]string{"q1": "c1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 20.0, result.Score)
	assert.False(t, result.Passed)
	assert.Empty(t, result.CertificateID)

	require.Len(t, f.evaluations.created, 1)
	assert.Equal(t, "failed", f.evaluations.created[0].Status)

	assert.Equal(t, 0, f.issuer.issued)
	assert.Empty(t, f.notifier.dispatched)
	assert.Empty(t, f.campaigns.completed)
}

// 没有活跃组织时流水线在写库前终止
func TestSubmitNoActiveOrganization(t *testing.T) {
	f := newPipelineFixture()
	f.membership.orgID = ""
	f.membership.err = util.ErrNoActiveOrganization

	result, err := f.svc.Submit(7, &SubmitQuizRequest{
		ModuleID: "module-1",
		Answers:  map[string]string{},
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, util.ErrNoActiveOrganization)
	assert.Empty(t, f.evaluations.created)
}

func TestSubmitUnknownModule(t *testing.T) {
	f := newPipelineFixture()

	result, err := f.svc.Submit(7, &SubmitQuizRequest{
		ModuleID: "no-such-module",
		Answers:  map[string]string{},
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}

func TestSubmitUnpublishedModule(t *testing.T) {
	f := newPipelineFixture()
	f.modules.modules["module-1"].Published = false

	result, err := f.svc.Submit(7, &SubmitQuizRequest{
		ModuleID: "module-1",
		Answers:  map[string]string{},
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, util.ErrModuleNotPublished)
}

func TestSubmitEmptyQuestionSet(t *testing.T) {
	f := newPipelineFixture()
	f.questions.questions = nil

	result, err := f.svc.Submit(7, &SubmitQuizRequest{
		ModuleID: "module-1",
		Answers:  map[string]string{},
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, util.ErrEmptyQuestionSet)
	assert.Empty(t, f.evaluations.created)
}

func TestSubmitEvaluationWriteFailureAborts(t *testing.T) {
	f := newPipelineFixture()
	f.evaluations.createErr = errors.New("db down")

	result, err := f.svc.Submit(7, &SubmitQuizRequest{
		ModuleID: "module-1",
		Answers:  map[string]string{"q1": "c1", "q2": "c2", "q3": "c3", "q4": "c4", "q5": "c5"},
	})
	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Equal(t, 0, f.issuer.issued)
	assert.Empty(t, f.notifier.dispatched)
}

// 证书签发失败不影响已写入的评分记录，提交仍然成功
func TestSubmitCertificateFailureDoesNotFailSubmission(t *testing.T) {
	f := newPipelineFixture()
	f.issuer.issueErr = errors.New("db down")

	result, err := f.svc.Submit(7, &SubmitQuizRequest{
		ModuleID: "module-1",
		Answers:  map[string]string{"q1": "c1", "q2": "c2", "q3": "c3", "q4": "c4", "q5": "c5"},
	})
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Empty(t, result.CertificateID)
	assert.Len(t, f.evaluations.created, 1)
	assert.Empty(t, f.notifier.dispatched)
}

// 通知入队失败同样只记日志
func TestSubmitNotificationFailureDoesNotFailSubmission(t *testing.T) {
	f := newPipelineFixture()
	f.notifier.err = errors.New("queue unavailable")

	result, err := f.svc.Submit(7, &SubmitQuizRequest{
		ModuleID: "module-1",
		Answers:  map[string]string{"q1": "c1", "q2": "c2", "q3": "c3", "q4": "c4", "q5": "c5"},
	})
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, "cert-uuid-1", result.CertificateID)
}

func TestGetQuizHidesAnswerKey(t *testing.T) {
	f := newPipelineFixture()

	questions, err := f.svc.GetQuiz("module-1")
	require.NoError(t, err)
	require.Len(t, questions, 5)

	for _, q := range questions {
		assert.NotEmpty(t, q.ID)
		assert.Len(t, q.Choices, 2)
	}
}
