package repository

import (
	"context"

	"app/internal/domain/model"
)

type FailedJobRepository interface {
	Create(ctx context.Context, job model.FailedJob) error
	// pendingかつretry_countが上限以下のものだけ返す。
	// 使い果たしたジョブはここで除外されるので、呼ぶ側は上限を再チェックしない。
	ListPending(ctx context.Context, jobType string) ([]model.FailedJob, error)
	// 帳簿の更新だけ。再実行そのものはスイープ側の仕事。
	UpdateOutcome(ctx context.Context, jobID int64, status model.FailedJobStatus, retryCount *int) error
}
