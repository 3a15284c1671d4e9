package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"fordrax_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobQueue struct {
	enqueued []*model.EmailJob
	jobs     []model.EmailJob
	sent     []string
	failed   map[string]string

	enqueueErr error
	claimErr   error

	requeued     int64
	requeueErr   error
	requeueCalls int
}

func newFakeJobQueue(jobs []model.EmailJob) *fakeJobQueue {
	return &fakeJobQueue{jobs: jobs, failed: map[string]string{}}
}

func (f *fakeJobQueue) Enqueue(job *model.EmailJob) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	job.Status = model.EmailJobQueued
	f.enqueued = append(f.enqueued, job)
	return nil
}

func (f *fakeJobQueue) ClaimBatch(batchSize int) ([]model.EmailJob, error) {
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if len(f.jobs) > batchSize {
		return f.jobs[:batchSize], nil
	}
	return f.jobs, nil
}

func (f *fakeJobQueue) RequeueStale(olderThan time.Duration) (int64, error) {
	f.requeueCalls++
	if f.requeueErr != nil {
		return 0, f.requeueErr
	}
	return f.requeued, nil
}

func (f *fakeJobQueue) MarkSent(jobID string) error {
	f.sent = append(f.sent, jobID)
	return nil
}

func (f *fakeJobQueue) MarkFailed(jobID string, deliveryErr string) error {
	f.failed[jobID] = deliveryErr
	return nil
}

type fakeSender struct {
	sendFn func(toName, toEmail, subject, textBody, htmlBody string) error
	calls  int
}

func (f *fakeSender) Send(toName, toEmail, subject, textBody, htmlBody string) error {
	f.calls++
	if f.sendFn != nil {
		return f.sendFn(toName, toEmail, subject, textBody, htmlBody)
	}
	return nil
}

func certJob(id string, payload model.CertificatePayload) model.EmailJob {
	raw, _ := json.Marshal(payload)
	job := model.EmailJob{
		JobType: model.JobTypeSendCertificate,
		Status:  model.EmailJobProcessing,
		Payload: raw,
	}
	job.ID = id
	return job
}

func TestDispatchCertificateEmail(t *testing.T) {
	queue := newFakeJobQueue(nil)
	svc := NewNotificationService(queue, &fakeSender{}, nil, 10)

	payload := model.CertificatePayload{
		Email:         "ana@example.com",
		Name:          "Ana",
		CertificateID: "cert-1",
		ModuleTitle:   "Phishing Basics",
	}
	err := svc.DispatchCertificateEmail("org-1", 7, payload)
	require.NoError(t, err)

	require.Len(t, queue.enqueued, 1)
	job := queue.enqueued[0]
	assert.Equal(t, "org-1", job.OrgID)
	assert.Equal(t, uint(7), job.UserID)
	assert.Equal(t, model.JobTypeSendCertificate, job.JobType)
	assert.Equal(t, model.EmailJobQueued, job.Status)

	var decoded model.CertificatePayload
	require.NoError(t, json.Unmarshal(job.Payload, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestProcessBatchAllSent(t *testing.T) {
	var jobs []model.EmailJob
	for i := 1; i <= 10; i++ {
		jobs = append(jobs, certJob(fmt.Sprintf("job-%d", i), model.CertificatePayload{
			Email:         fmt.Sprintf("user%d@example.com", i),
			Name:          fmt.Sprintf("User %d", i),
			CertificateID: fmt.Sprintf("cert-%d", i),
			ModuleTitle:   "Passwords 101",
		}))
	}
	queue := newFakeJobQueue(jobs)
	sender := &fakeSender{}
	svc := NewNotificationService(queue, sender, nil, 10)

	outcomes, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Len(t, outcomes, 10)
	assert.Equal(t, 10, sender.calls)
	assert.Len(t, queue.sent, 10)
	assert.Empty(t, queue.failed)
}

// 单条投递失败不影响批内其余任务
func TestProcessBatchPerJobIsolation(t *testing.T) {
	var jobs []model.EmailJob
	for i := 1; i <= 5; i++ {
		jobs = append(jobs, certJob(fmt.Sprintf("job-%d", i), model.CertificatePayload{
			Email:         fmt.Sprintf("user%d@example.com", i),
			CertificateID: fmt.Sprintf("cert-%d", i),
		}))
	}
	queue := newFakeJobQueue(jobs)
	sender := &fakeSender{
		sendFn: func(toName, toEmail, subject, textBody, htmlBody string) error {
			if toEmail == "user3@example.com" {
				return errors.New("mailbox unavailable")
			}
			return nil
		},
	}
	svc := NewNotificationService(queue, sender, nil, 10)

	outcomes, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 5)

	assert.Len(t, queue.sent, 4)
	assert.NotContains(t, queue.sent, "job-3")
	require.Contains(t, queue.failed, "job-3")
	assert.Contains(t, queue.failed["job-3"], "mailbox unavailable")

	for _, o := range outcomes {
		if o.JobID == "job-3" {
			assert.Equal(t, "failed", o.Status)
			assert.NotEmpty(t, o.Error)
		} else {
			assert.Equal(t, "sent", o.Status)
		}
	}
}

func TestProcessBatchRespectsBatchSize(t *testing.T) {
	var jobs []model.EmailJob
	for i := 1; i <= 25; i++ {
		jobs = append(jobs, certJob(fmt.Sprintf("job-%d", i), model.CertificatePayload{
			Email: fmt.Sprintf("user%d@example.com", i),
		}))
	}
	queue := newFakeJobQueue(jobs)
	svc := NewNotificationService(queue, &fakeSender{}, nil, 10)

	outcomes, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Len(t, outcomes, 10)
}

// 坏载荷进入 failed 终态而不是让整批报错
func TestProcessBatchMalformedPayload(t *testing.T) {
	bad := model.EmailJob{
		JobType: model.JobTypeSendCertificate,
		Payload: json.RawMessage(`{not-json`),
	}
	bad.ID = "job-bad"
	queue := newFakeJobQueue([]model.EmailJob{bad})
	sender := &fakeSender{}
	svc := NewNotificationService(queue, sender, nil, 10)

	outcomes, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "failed", outcomes[0].Status)
	assert.Equal(t, 0, sender.calls)
	assert.Contains(t, queue.failed, "job-bad")
}

func TestProcessBatchUnknownJobType(t *testing.T) {
	job := model.EmailJob{JobType: "send_newsletter", Payload: json.RawMessage(`{}`)}
	job.ID = "job-1"
	queue := newFakeJobQueue([]model.EmailJob{job})
	svc := NewNotificationService(queue, &fakeSender{}, nil, 10)

	outcomes, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "failed", outcomes[0].Status)
	assert.Contains(t, queue.failed["job-1"], "unknown job type")
}

// 每次排空批次前都把崩溃遗留的 processing 任务放回队列
func TestProcessBatchRequeuesStaleClaims(t *testing.T) {
	queue := newFakeJobQueue([]model.EmailJob{certJob("job-1", model.CertificatePayload{
		Email: "ana@example.com",
	})})
	queue.requeued = 2
	svc := NewNotificationService(queue, &fakeSender{}, nil, 10)

	outcomes, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, queue.requeueCalls)
	assert.Len(t, outcomes, 1)
}

// 回收失败只记日志，当前批次照常投递
func TestProcessBatchRequeueFailureNonFatal(t *testing.T) {
	queue := newFakeJobQueue([]model.EmailJob{certJob("job-1", model.CertificatePayload{
		Email: "ana@example.com",
	})})
	queue.requeueErr = errors.New("db down")
	svc := NewNotificationService(queue, &fakeSender{}, nil, 10)

	outcomes, err := svc.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "sent", outcomes[0].Status)
}

func TestProcessBatchClaimError(t *testing.T) {
	queue := newFakeJobQueue(nil)
	queue.claimErr = errors.New("db down")
	svc := NewNotificationService(queue, &fakeSender{}, nil, 10)

	outcomes, err := svc.ProcessBatch(context.Background())
	assert.Nil(t, outcomes)
	assert.Error(t, err)
}
