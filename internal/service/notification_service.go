package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fordrax_backend/internal/model"
	"fordrax_backend/pkg/logger"
	"fordrax_backend/pkg/monitoring"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrAgentRunning 另一个邮件代理实例正持有运行锁
var ErrAgentRunning = errors.New("email agent already running")

const agentLockKey = "fordrax:email_agent:lock"

// staleClaimAge 领取后超过这个时长仍停在 processing 的任务视为
// 工人崩溃遗留，重新放回 queued
const staleClaimAge = 10 * time.Minute

type jobQueue interface {
	Enqueue(job *model.EmailJob) error
	ClaimBatch(batchSize int) ([]model.EmailJob, error)
	RequeueStale(olderThan time.Duration) (int64, error)
	MarkSent(jobID string) error
	MarkFailed(jobID string, deliveryErr string) error
}

// NotificationService 通知任务的生产端与消费端。
// 入队走仓储层的服务端特权句柄；消费端由外部调度器按批触发
type NotificationService struct {
	jobs      jobQueue
	sender    EmailSender
	rdb       *redis.Client
	batchSize int
}

func NewNotificationService(jobs jobQueue, sender EmailSender, rdb *redis.Client, batchSize int) *NotificationService {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &NotificationService{
		jobs:      jobs,
		sender:    sender,
		rdb:       rdb,
		batchSize: batchSize,
	}
}

// DispatchCertificateEmail 入队一条证书通知任务。对调用方是尽力而为：
// 失败只记日志，不回滚已落库的评分与证书
func (s *NotificationService) DispatchCertificateEmail(orgID string, userID uint, payload model.CertificatePayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	job := &model.EmailJob{
		OrgID:   orgID,
		UserID:  userID,
		JobType: model.JobTypeSendCertificate,
		Payload: raw,
	}
	return s.jobs.Enqueue(job)
}

// JobOutcome 单条任务的处理结果
type JobOutcome struct {
	JobID  string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ProcessBatch 领取一批 queued 任务并逐条投递。领取前先把崩溃遗留的
// processing 任务放回队列。单条失败不影响批内其余任务；
// 失败任务记 attempts 与 last_error 后进入 failed 终态，不自动重排
func (s *NotificationService) ProcessBatch(ctx context.Context) ([]JobOutcome, error) {
	if s.rdb != nil {
		ok, err := s.rdb.SetNX(ctx, agentLockKey, 1, 2*time.Minute).Result()
		if err != nil {
			logger.Log.Warn("email agent lock unavailable, continuing without it", zap.Error(err))
		} else if !ok {
			return nil, ErrAgentRunning
		} else {
			defer s.rdb.Del(ctx, agentLockKey)
		}
	}

	if n, err := s.jobs.RequeueStale(staleClaimAge); err != nil {
		logger.Log.Warn("stale email job requeue failed", zap.Error(err))
	} else if n > 0 {
		logger.Log.Info("stale email jobs requeued", zap.Int64("count", n))
	}

	jobs, err := s.jobs.ClaimBatch(s.batchSize)
	if err != nil {
		return nil, err
	}

	outcomes := make([]JobOutcome, 0, len(jobs))
	for _, job := range jobs {
		if err := s.deliver(job); err != nil {
			logger.Log.Error("email job delivery failed",
				zap.String("job_id", job.ID),
				zap.String("job_type", job.JobType),
				zap.Error(err))
			if mErr := s.jobs.MarkFailed(job.ID, err.Error()); mErr != nil {
				logger.Log.Error("email job status update failed", zap.String("job_id", job.ID), zap.Error(mErr))
			}
			monitoring.EmailJobsProcessed.WithLabelValues(string(model.EmailJobFailed)).Inc()
			outcomes = append(outcomes, JobOutcome{JobID: job.ID, Status: "failed", Error: err.Error()})
			continue
		}

		if err := s.jobs.MarkSent(job.ID); err != nil {
			logger.Log.Error("email job status update failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		monitoring.EmailJobsProcessed.WithLabelValues(string(model.EmailJobSent)).Inc()
		outcomes = append(outcomes, JobOutcome{JobID: job.ID, Status: "sent"})
	}

	return outcomes, nil
}

func (s *NotificationService) deliver(job model.EmailJob) error {
	switch job.JobType {
	case model.JobTypeSendCertificate:
		var payload model.CertificatePayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("invalid payload: %w", err)
		}
		subject := fmt.Sprintf("Your certificate for %s", payload.ModuleTitle)
		text := fmt.Sprintf("Hi %s,\n\nCongratulations! You passed %s.\nYour certificate id is %s.\n",
			payload.Name, payload.ModuleTitle, payload.CertificateID)
		html := fmt.Sprintf("<p>Hi %s,</p><p>Congratulations! You passed <strong>%s</strong>.</p><p>Your certificate id is <code>%s</code>.</p>",
			payload.Name, payload.ModuleTitle, payload.CertificateID)
		return s.sender.Send(payload.Name, payload.Email, subject, text, html)
	default:
		return fmt.Errorf("unknown job type: %s", job.JobType)
	}
}
