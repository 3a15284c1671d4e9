package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"fordrax_backend/internal/model"
	"fordrax_backend/internal/util"
	"fordrax_backend/pkg/logger"
	"fordrax_backend/pkg/monitoring"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// chainTag 链文本的固定前缀。字段顺序与分隔符是校验契约的一部分，
// 任何改动都会使历史证书无法验证
const chainTag = "FORDRAX"

type certificateStore interface {
	Create(c *model.Certificate) error
	FindByID(id string) (*model.Certificate, error)
	FindByUUID(certificateUUID string) (*model.Certificate, error)
	ListByUser(userID uint) ([]model.Certificate, error)
}

type reconcileSource interface {
	ListPassedWithoutCertificate(limit int) ([]model.Evaluation, error)
}

type CertificateService struct {
	certs certificateStore
	now   func() time.Time
}

func NewCertificateService(certs certificateStore) *CertificateService {
	return &CertificateService{
		certs: certs,
		now:   time.Now,
	}
}

// BuildChainText 规范化拼接证书字段：
// FORDRAX|org=..|user=..|module=..|issued_at=..|cert_uuid=..
func BuildChainText(orgID string, userID uint, moduleID, issuedAt, certUUID string) string {
	return fmt.Sprintf("%s|org=%s|user=%s|module=%s|issued_at=%s|cert_uuid=%s",
		chainTag, orgID, strconv.FormatUint(uint64(userID), 10), moduleID, issuedAt, certUUID)
}

// HashChainText 链文本的 SHA-256 摘要，十六进制小写
func HashChainText(chainText string) string {
	sum := sha256.Sum256([]byte(chainText))
	return hex.EncodeToString(sum[:])
}

// Issue 为一条已通过的评分记录签发证书。签发时间取 UTC 整秒，
// 证书编号为随机 UUID；写库失败由调用方记日志，评分记录本身不受影响
func (s *CertificateService) Issue(orgID string, userID uint, moduleID, evaluationID string) (*model.Certificate, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	certUUID := model.GenerateUUID()

	dateStr := issuedAt.Format(util.ChainTimeFormat)
	chainText := BuildChainText(orgID, userID, moduleID, dateStr, certUUID)

	cert := &model.Certificate{
		OrgID:           orgID,
		UserID:          userID,
		ModuleID:        moduleID,
		EvaluationID:    evaluationID,
		CertificateUUID: certUUID,
		IssuedAt:        issuedAt,
		ChainText:       chainText,
		HashSHA256:      HashChainText(chainText),
	}

	if err := s.certs.Create(cert); err != nil {
		return nil, err
	}

	monitoring.CertificatesIssued.Inc()
	return cert, nil
}

type CertificateVerification struct {
	Valid        bool   `json:"valid"`
	StoredHash   string `json:"storedHash"`
	ComputedHash string `json:"computedHash"`
}

// Verify 用存储字段重算链文本与摘要，并与存储摘要比对。
// 摘要可被任何第三方独立重算，这就是证书的防篡改契约
func (s *CertificateService) Verify(certificateUUID string) (*model.Certificate, *CertificateVerification, error) {
	cert, err := s.certs.FindByUUID(certificateUUID)
	if err != nil {
		return nil, nil, err
	}

	dateStr := cert.IssuedAt.UTC().Format(util.ChainTimeFormat)
	chainText := BuildChainText(cert.OrgID, cert.UserID, cert.ModuleID, dateStr, cert.CertificateUUID)
	computed := HashChainText(chainText)

	return cert, &CertificateVerification{
		Valid:        computed == cert.HashSHA256,
		StoredHash:   cert.HashSHA256,
		ComputedHash: computed,
	}, nil
}

func (s *CertificateService) Get(certificateUUID string) (*model.Certificate, error) {
	return s.certs.FindByUUID(certificateUUID)
}

func (s *CertificateService) ListByUser(userID uint) ([]model.Certificate, error) {
	return s.certs.ListByUser(userID)
}

// Reconcile 补发：评分已通过但证书缺失（签发时写库失败或进程中断）。
// 补发的证书同样入队通知邮件，使用户收到与正常提交一致的通知。
// 由后台定时任务驱动
func (s *CertificateService) Reconcile(evals reconcileSource, users userDirectory, modules moduleCatalog, notify notifier, batchSize int) (int, error) {
	pending, err := evals.ListPassedWithoutCertificate(batchSize)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, e := range pending {
		cert, err := s.Issue(e.OrgID, e.UserID, e.ModuleID, e.ID)
		if err != nil {
			logger.Log.Error("certificate reconcile failed",
				zap.String("evaluation_id", e.ID),
				zap.Error(err))
			continue
		}
		repaired++
		s.notifyRepaired(users, modules, notify, e, cert)
	}
	return repaired, nil
}

// notifyRepaired 为补发的证书入队通知。失败只记日志，补发本身已落库
func (s *CertificateService) notifyRepaired(users userDirectory, modules moduleCatalog, notify notifier, e model.Evaluation, cert *model.Certificate) {
	user, err := users.FindByID(e.UserID)
	if err != nil {
		logger.Log.Error("reconcile notification skipped, user lookup failed",
			zap.String("evaluation_id", e.ID), zap.Error(err))
		return
	}
	mod, err := modules.FindByID(e.ModuleID)
	if err != nil {
		logger.Log.Error("reconcile notification skipped, module lookup failed",
			zap.String("evaluation_id", e.ID), zap.Error(err))
		return
	}

	payload := model.CertificatePayload{
		Email:         user.Email,
		Name:          user.Name,
		CertificateID: cert.CertificateUUID,
		ModuleTitle:   mod.Title,
	}
	if err := notify.DispatchCertificateEmail(e.OrgID, e.UserID, payload); err != nil {
		logger.Log.Error("reconcile notification enqueue failed",
			zap.String("certificate_id", cert.CertificateUUID),
			zap.Error(err))
	}
}
