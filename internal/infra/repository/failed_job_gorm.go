package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type FailedJobGormRepository struct {
	db *gorm.DB
}

func NewFailedJobGormRepository(db *gorm.DB) *FailedJobGormRepository {
	return &FailedJobGormRepository{db: db}
}

func (r *FailedJobGormRepository) Create(ctx context.Context, job model.FailedJob) error {
	return r.db.WithContext(ctx).Create(&job).Error
}

func (r *FailedJobGormRepository) ListPending(ctx context.Context, jobType string) ([]model.FailedJob, error) {
	q := r.db.WithContext(ctx).
		Where("status = ?", model.FailedJobStatusPending).
		Where("retry_count <= ?", model.MaxJobRetries)

	if jobType != "" {
		q = q.Where("job_type = ?", jobType)
	}

	var jobs []model.FailedJob
	if err := q.Order("id asc").Find(&jobs).Error; err != nil {
		return []model.FailedJob{}, err
	}
	return jobs, nil
}

func (r *FailedJobGormRepository) UpdateOutcome(ctx context.Context, jobID int64, status model.FailedJobStatus, retryCount *int) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if retryCount != nil {
		updates["retry_count"] = *retryCount
	}

	res := r.db.WithContext(ctx).Model(&model.FailedJob{}).
		Where("id = ?", jobID).
		Updates(updates)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
