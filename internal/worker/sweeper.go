package worker

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/qikink"
	repo "app/internal/repository"
	"app/internal/usecase"
)

// 失敗ジョブの再提出口
type OrderSubmitter interface {
	Resubmit(ctx context.Context, orderID string) (usecase.SubmitResult, error)
}

// 配送追跡の取得口
type TrackingFetcher interface {
	FetchTracking(ctx context.Context, fulfillmentOrderID string) *qikink.Tracking
}

// Sweeper は2本の定期スイープ（失敗ジョブ再試行／配送追跡）を回す。
type Sweeper struct {
	jobs      repo.FailedJobRepository
	orders    repo.OrderRepository
	submitter OrderSubmitter
	tracker   TrackingFetcher
	log       *slog.Logger

	retryInterval    time.Duration
	trackingInterval time.Duration

	//同じスイープの重ね実行はしない（TryLockで弾く）
	retryMu    sync.Mutex
	trackingMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewSweeper(
	jobs repo.FailedJobRepository,
	orders repo.OrderRepository,
	submitter OrderSubmitter,
	tracker TrackingFetcher,
	retryInterval time.Duration,
	trackingInterval time.Duration,
	log *slog.Logger,
) *Sweeper {
	return &Sweeper{
		jobs:             jobs,
		orders:           orders,
		submitter:        submitter,
		tracker:          tracker,
		retryInterval:    retryInterval,
		trackingInterval: trackingInterval,
		log:              log,
	}
}

func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.stopCh = make(chan struct{})
	s.running = true

	s.wg.Add(1)
	go s.loop(s.retryInterval, s.RunRetrySweep)

	s.wg.Add(1)
	go s.loop(s.trackingInterval, s.RunTrackingSweep)

	s.log.Info("sweeper started",
		"retry_interval", s.retryInterval.String(),
		"tracking_interval", s.trackingInterval.String(),
	)
}

func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
	s.running = false

	s.log.Info("sweeper stopped")
}

func (s *Sweeper) loop(interval time.Duration, run func(ctx context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			run(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunRetrySweep はpendingの失敗ジョブを再実行する。
// 成功でcompleted、失敗でretry_countを進め、上限超過でfailed（以後は手動対応）。
func (s *Sweeper) RunRetrySweep(ctx context.Context) {
	if !s.retryMu.TryLock() {
		s.log.Warn("retry sweep already running, skipping")
		return
	}
	defer s.retryMu.Unlock()

	jobs, err := s.jobs.ListPending(ctx, model.JobTypeFulfillmentSubmission)
	if err != nil {
		s.log.Error("retry sweep: list pending failed", "err", err)
		return
	}

	succeeded := 0
	for _, job := range jobs {
		if job.OrderID == "" {
			continue
		}

		res, err := s.submitter.Resubmit(ctx, job.OrderID)
		if err == nil && res.Submitted {
			if uerr := s.jobs.UpdateOutcome(ctx, job.ID, model.FailedJobStatusCompleted, nil); uerr != nil {
				s.log.Error("retry sweep: job bookkeeping failed", "job_id", job.ID, "err", uerr)
			}
			succeeded++
			continue
		}

		//失敗。回数を進める。
		newCount := job.RetryCount + 1
		status := model.FailedJobStatusPending
		if newCount > model.MaxJobRetries {
			status = model.FailedJobStatusFailed
			s.log.Warn("retry sweep: max retries reached", "order_id", job.OrderID, "job_id", job.ID)
		}
		if uerr := s.jobs.UpdateOutcome(ctx, job.ID, status, &newCount); uerr != nil {
			s.log.Error("retry sweep: job bookkeeping failed", "job_id", job.ID, "err", uerr)
		}
	}

	s.log.Info("retry sweep finished", "total", len(jobs), "succeeded", succeeded)
}

// RunTrackingSweep は出荷中の注文の追跡を取り、ステータスが変わっていれば更新する。
// 1件の失敗が他の注文を止めることはない。
func (s *Sweeper) RunTrackingSweep(ctx context.Context) {
	if !s.trackingMu.TryLock() {
		s.log.Warn("tracking sweep already running, skipping")
		return
	}
	defer s.trackingMu.Unlock()

	orders, err := s.orders.ListByStatuses(ctx, model.ActiveFulfillmentStatuses())
	if err != nil {
		s.log.Error("tracking sweep: list orders failed", "err", err)
		return
	}

	updated := 0
	for _, order := range orders {
		if order.FulfillmentOrderID == "" {
			continue
		}

		tracking := s.tracker.FetchTracking(ctx, order.FulfillmentOrderID)
		if tracking == nil {
			continue
		}
		latest := tracking.Latest()
		if latest == nil || latest.Status == "" {
			continue
		}

		newStatus := normalizeStatus(latest.Status)
		if newStatus == string(order.Status) {
			continue
		}

		opts := repo.StatusUpdateOptions{}
		if tracking.TrackingNumber != "" {
			tn := tracking.TrackingNumber
			opts.TrackingNumber = &tn
		}
		if err := s.orders.UpdateStatus(ctx, order.OrderID, model.OrderStatus(newStatus), opts); err != nil {
			s.log.Error("tracking sweep: status update failed", "order_id", order.OrderID, "err", err)
			continue
		}
		updated++
	}

	s.log.Info("tracking sweep finished", "total", len(orders), "updated", updated)
}

// 先方のステータス表記を小文字＋アンダースコアに正規化する
func normalizeStatus(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
