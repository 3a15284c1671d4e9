package repository

import (
	"fordrax_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// EmailJobRepository 队列表访问。Enqueue 走独立的服务端连接句柄，
// 与请求路径使用的句柄分离：队列写入是服务端特权，普通用户凭据不可伪造任务
type EmailJobRepository struct {
	// DB 普通句柄，仅用于工人侧的读取与状态更新
	DB *gorm.DB
	// serviceDB 服务端特权句柄，唯一允许插入任务的通道
	serviceDB *gorm.DB
}

func NewEmailJobRepository(db *gorm.DB, serviceDB *gorm.DB) *EmailJobRepository {
	return &EmailJobRepository{DB: db, serviceDB: serviceDB}
}

func (r *EmailJobRepository) Enqueue(job *model.EmailJob) error {
	job.Status = model.EmailJobQueued
	return r.serviceDB.Create(job).Error
}

// ClaimBatch 把一批 queued 任务置为 processing 后取回。
// 条件更新充当领取步骤，两个并发的工人不会拿到同一条任务
func (r *EmailJobRepository) ClaimBatch(batchSize int) ([]model.EmailJob, error) {
	var jobs []model.EmailJob

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ?", model.EmailJobQueued).
			Order("created_at asc").
			Limit(batchSize).
			Find(&jobs).Error; err != nil {
			return err
		}

		claimed := jobs[:0]
		for _, job := range jobs {
			res := tx.Model(&model.EmailJob{}).
				Where("id = ? AND status = ?", job.ID, model.EmailJobQueued).
				Update("status", model.EmailJobProcessing)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				job.Status = model.EmailJobProcessing
				claimed = append(claimed, job)
			}
		}
		jobs = claimed
		return nil
	})

	return jobs, err
}

// RequeueStale 把滞留在 processing 的任务放回 queued。
// 工人在领取后崩溃会把行留在 processing，没有其他路径会再碰它们
func (r *EmailJobRepository) RequeueStale(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := r.DB.Model(&model.EmailJob{}).
		Where("status = ? AND updated_at < ?", model.EmailJobProcessing, cutoff).
		Update("status", model.EmailJobQueued)
	return res.RowsAffected, res.Error
}

func (r *EmailJobRepository) MarkSent(jobID string) error {
	now := time.Now()
	return r.DB.Model(&model.EmailJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       model.EmailJobSent,
			"processed_at": &now,
		}).Error
}

func (r *EmailJobRepository) MarkFailed(jobID string, deliveryErr string) error {
	if len(deliveryErr) > 500 {
		deliveryErr = deliveryErr[:500]
	}
	return r.DB.Model(&model.EmailJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     model.EmailJobFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": deliveryErr,
		}).Error
}

func (r *EmailJobRepository) ListByStatus(status model.EmailJobStatus, page, limit int) ([]model.EmailJob, int64, error) {
	var jobs []model.EmailJob
	var total int64
	query := r.DB.Model(&model.EmailJob{}).Where("status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at asc").Offset(offset).Limit(limit).Find(&jobs).Error
	return jobs, total, err
}
