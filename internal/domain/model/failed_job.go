package model

import "time"

type FailedJobStatus string

const (
	FailedJobStatusPending   FailedJobStatus = "pending"
	FailedJobStatusCompleted FailedJobStatus = "completed"
	FailedJobStatusFailed    FailedJobStatus = "failed"
)

// 自動再試行の上限。超えたジョブは手動対応になる。
const MaxJobRetries = 3

const JobTypeFulfillmentSubmission = "fulfillment_submission"

type FailedJob struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	JobType      string          `gorm:"type:varchar(64);not null;index" json:"job_type"`
	OrderID      string          `gorm:"type:varchar(64);not null;index" json:"order_id"`
	Payload      string          `gorm:"type:text" json:"payload"`
	ErrorMessage string          `gorm:"type:text" json:"error_message"`
	Status       FailedJobStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RetryCount   int             `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
