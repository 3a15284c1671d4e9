package service

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fordrax_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCertificateStore struct {
	createFn     func(c *model.Certificate) error
	findByUUIDFn func(certificateUUID string) (*model.Certificate, error)
}

func (f *fakeCertificateStore) Create(c *model.Certificate) error {
	if f.createFn != nil {
		return f.createFn(c)
	}
	return nil
}

func (f *fakeCertificateStore) FindByID(id string) (*model.Certificate, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCertificateStore) FindByUUID(certificateUUID string) (*model.Certificate, error) {
	return f.findByUUIDFn(certificateUUID)
}

func (f *fakeCertificateStore) ListByUser(userID uint) ([]model.Certificate, error) {
	return nil, nil
}

type fakeReconcileSource struct {
	pending []model.Evaluation
}

func (f *fakeReconcileSource) ListPassedWithoutCertificate(limit int) ([]model.Evaluation, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func TestBuildChainTextFormat(t *testing.T) {
	chain := BuildChainText("org-1", 42, "module-9", "2026-08-28T10:30:00Z", "cert-uuid-abc")

	assert.Equal(t,
		"FORDRAX|org=org-1|user=42|module=module-9|issued_at=2026-08-28T10:30:00Z|cert_uuid=cert-uuid-abc",
		chain)
}

func TestHashChainTextDeterministic(t *testing.T) {
	chain := "FORDRAX|org=o|user=1|module=m|issued_at=2026-01-01T00:00:00Z|cert_uuid=u"

	sum := sha256.Sum256([]byte(chain))
	expected := hex.EncodeToString(sum[:])

	assert.Equal(t, expected, HashChainText(chain))
	assert.Equal(t, HashChainText(chain), HashChainText(chain))
	assert.Len(t, HashChainText(chain), 64)
}

// 链文本任一字段变化都必须改变摘要
func TestHashChainTextSensitivity(t *testing.T) {
	base := BuildChainText("org-1", 42, "module-9", "2026-08-28T10:30:00Z", "cert-1")
	variants := []string{
		BuildChainText("org-2", 42, "module-9", "2026-08-28T10:30:00Z", "cert-1"),
		BuildChainText("org-1", 43, "module-9", "2026-08-28T10:30:00Z", "cert-1"),
		BuildChainText("org-1", 42, "module-x", "2026-08-28T10:30:00Z", "cert-1"),
		BuildChainText("org-1", 42, "module-9", "2026-08-28T10:30:01Z", "cert-1"),
		BuildChainText("org-1", 42, "module-9", "2026-08-28T10:30:00Z", "cert-2"),
	}

	baseHash := HashChainText(base)
	for _, v := range variants {
		assert.NotEqual(t, baseHash, HashChainText(v))
	}
}

func TestIssueCertificate(t *testing.T) {
	var stored *model.Certificate
	store := &fakeCertificateStore{
		createFn: func(c *model.Certificate) error {
			stored = c
			return nil
		},
	}

	svc := NewCertificateService(store)
	issuedAt := time.Date(2026, 8, 28, 10, 30, 0, 500, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	cert, err := svc.Issue("org-1", 42, "module-9", "eval-1")
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "org-1", cert.OrgID)
	assert.Equal(t, uint(42), cert.UserID)
	assert.Equal(t, "module-9", cert.ModuleID)
	assert.Equal(t, "eval-1", cert.EvaluationID)
	assert.NotEmpty(t, cert.CertificateUUID)

	// 签发时间截断到整秒
	assert.Equal(t, time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC), cert.IssuedAt)

	expectedChain := BuildChainText("org-1", 42, "module-9", "2026-08-28T10:30:00Z", cert.CertificateUUID)
	assert.Equal(t, expectedChain, cert.ChainText)
	assert.Equal(t, HashChainText(expectedChain), cert.HashSHA256)
}

func TestIssueCertificateStoreFailure(t *testing.T) {
	store := &fakeCertificateStore{
		createFn: func(c *model.Certificate) error {
			return errors.New("db down")
		},
	}

	svc := NewCertificateService(store)
	cert, err := svc.Issue("org-1", 1, "m", "e")
	assert.Nil(t, cert)
	assert.Error(t, err)
}

func reconcileCollaborators() (*fakeUserDirectory, *fakeModuleCatalog, *fakeNotifier) {
	modA := &model.TrainingModule{Title: "Phishing Basics", Published: true}
	modA.ID = "m1"
	modB := &model.TrainingModule{Title: "Passwords 101", Published: true}
	modB.ID = "m2"

	users := &fakeUserDirectory{user: &model.User{Name: "Ana", Email: "ana@example.com"}}
	modules := &fakeModuleCatalog{modules: map[string]*model.TrainingModule{"m1": modA, "m2": modB}}
	return users, modules, &fakeNotifier{}
}

// 对账为每条缺证书的已通过评分补发，单条失败继续处理其余
func TestReconcileIssuesMissingCertificates(t *testing.T) {
	evalA := model.Evaluation{UserID: 1, ModuleID: "m1", OrgID: "org-1", Passed: true}
	evalA.ID = "eval-a"
	evalB := model.Evaluation{UserID: 2, ModuleID: "m2", OrgID: "org-1", Passed: true}
	evalB.ID = "eval-b"

	var created []*model.Certificate
	store := &fakeCertificateStore{
		createFn: func(c *model.Certificate) error {
			if c.EvaluationID == "eval-a" {
				return errors.New("db down")
			}
			created = append(created, c)
			return nil
		},
	}
	users, modules, notify := reconcileCollaborators()

	svc := NewCertificateService(store)
	repaired, err := svc.Reconcile(&fakeReconcileSource{pending: []model.Evaluation{evalA, evalB}}, users, modules, notify, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	require.Len(t, created, 1)
	assert.Equal(t, "eval-b", created[0].EvaluationID)

	// 未补发成功的评分不产生通知
	require.Len(t, notify.dispatched, 1)
	assert.Equal(t, "Passwords 101", notify.dispatched[0].ModuleTitle)
}

// 补发的证书与正常提交一样入队通知邮件
func TestReconcileEnqueuesNotificationPerRepair(t *testing.T) {
	eval := model.Evaluation{UserID: 7, ModuleID: "m1", OrgID: "org-1", Passed: true}
	eval.ID = "eval-1"

	var created *model.Certificate
	store := &fakeCertificateStore{
		createFn: func(c *model.Certificate) error {
			created = c
			return nil
		},
	}
	users, modules, notify := reconcileCollaborators()

	svc := NewCertificateService(store)
	repaired, err := svc.Reconcile(&fakeReconcileSource{pending: []model.Evaluation{eval}}, users, modules, notify, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	require.NotEmpty(t, notify.dispatched)
	payload := notify.dispatched[0]
	assert.Equal(t, "ana@example.com", payload.Email)
	assert.Equal(t, "Ana", payload.Name)
	assert.Equal(t, created.CertificateUUID, payload.CertificateID)
	assert.Equal(t, "Phishing Basics", payload.ModuleTitle)
}

// 通知入队失败不回滚已补发的证书
func TestReconcileNotificationFailureKeepsRepair(t *testing.T) {
	eval := model.Evaluation{UserID: 7, ModuleID: "m1", OrgID: "org-1", Passed: true}
	eval.ID = "eval-1"

	store := &fakeCertificateStore{}
	users, modules, notify := reconcileCollaborators()
	notify.err = errors.New("queue unavailable")

	svc := NewCertificateService(store)
	repaired, err := svc.Reconcile(&fakeReconcileSource{pending: []model.Evaluation{eval}}, users, modules, notify, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
}

func TestVerifyValidCertificate(t *testing.T) {
	issuedAt := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	chain := BuildChainText("org-1", 42, "module-9", "2026-08-28T10:30:00Z", "cert-1")

	cert := &model.Certificate{
		OrgID:           "org-1",
		UserID:          42,
		ModuleID:        "module-9",
		CertificateUUID: "cert-1",
		IssuedAt:        issuedAt,
		ChainText:       chain,
		HashSHA256:      HashChainText(chain),
	}
	store := &fakeCertificateStore{
		findByUUIDFn: func(uuid string) (*model.Certificate, error) {
			assert.Equal(t, "cert-1", uuid)
			return cert, nil
		},
	}

	svc := NewCertificateService(store)
	got, verification, err := svc.Verify("cert-1")
	require.NoError(t, err)
	assert.Equal(t, cert, got)
	assert.True(t, verification.Valid)
	assert.Equal(t, verification.StoredHash, verification.ComputedHash)
}

// 任一存储字段被篡改后重算摘要必然不匹配
func TestVerifyTamperedCertificate(t *testing.T) {
	issuedAt := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	chain := BuildChainText("org-1", 42, "module-9", "2026-08-28T10:30:00Z", "cert-1")

	cert := &model.Certificate{
		OrgID:           "org-1",
		UserID:          42,
		ModuleID:        "module-tampered",
		CertificateUUID: "cert-1",
		IssuedAt:        issuedAt,
		ChainText:       chain,
		HashSHA256:      HashChainText(chain),
	}
	store := &fakeCertificateStore{
		findByUUIDFn: func(uuid string) (*model.Certificate, error) {
			return cert, nil
		},
	}

	svc := NewCertificateService(store)
	_, verification, err := svc.Verify("cert-1")
	require.NoError(t, err)
	assert.False(t, verification.Valid)
	assert.NotEqual(t, verification.StoredHash, verification.ComputedHash)
}
