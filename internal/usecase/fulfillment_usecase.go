package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"app/internal/domain/model"
	"app/internal/infra/qikink"
	repo "app/internal/repository"
)

// フルフィルメントAPIへの窓口
type FulfillmentClient interface {
	Configured() bool
	SubmitOrder(ctx context.Context, shipment qikink.ShipmentRequest) (string, error)
	FetchTracking(ctx context.Context, fulfillmentOrderID string) *qikink.Tracking
	ListProducts(ctx context.Context) ([]qikink.ProductPayload, error)
	TestConnection(ctx context.Context) error
}

type SubmitResult struct {
	Submitted          bool   `json:"submitted"`
	FulfillmentOrderID string `json:"fulfillment_order_id,omitempty"`
	Message            string `json:"message,omitempty"`
}

type FulfillmentUsecase struct {
	orders   repo.OrderRepository
	jobs     repo.FailedJobRepository
	products repo.ProductRepository
	client   FulfillmentClient
	log      *slog.Logger

	// 同一注文の同時提出を弾く（管理者の手動リトライとスイープの競合対策）。
	// プロセス内のガードなので複数レプリカ構成では効かない。
	inflight sync.Map
}

func NewFulfillmentUsecase(
	orders repo.OrderRepository,
	jobs repo.FailedJobRepository,
	products repo.ProductRepository,
	client FulfillmentClient,
	log *slog.Logger,
) *FulfillmentUsecase {
	return &FulfillmentUsecase{
		orders:   orders,
		jobs:     jobs,
		products: products,
		client:   client,
		log:      log,
	}
}

// SubmitOrder は注文をフルフィルメントに提出する。
// 失敗したら必ず失敗ジョブを記録する。黙って落とすことはない。
func (u *FulfillmentUsecase) SubmitOrder(ctx context.Context, orderID string) (SubmitResult, error) {
	return u.submit(ctx, orderID, true)
}

// Resubmit はスイープからの再実行用。失敗しても新しいジョブは積まない
// （既存ジョブのretry_countがスイープ側で進むため、二重帳簿になる）。
func (u *FulfillmentUsecase) Resubmit(ctx context.Context, orderID string) (SubmitResult, error) {
	return u.submit(ctx, orderID, false)
}

func (u *FulfillmentUsecase) submit(ctx context.Context, orderID string, enqueueOnFailure bool) (SubmitResult, error) {
	if orderID == "" {
		return SubmitResult{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	if _, loaded := u.inflight.LoadOrStore(orderID, struct{}{}); loaded {
		return SubmitResult{}, NewHTTPError(http.StatusConflict, "submission already in progress")
	}
	defer u.inflight.Delete(orderID)

	order, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return SubmitResult{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return SubmitResult{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}

	//すでに提出済みなら何もしない（後退させない）
	if order.Status.AtLeastSubmitted() {
		return SubmitResult{
			Submitted:          true,
			FulfillmentOrderID: order.FulfillmentOrderID,
			Message:            "already submitted",
		}, nil
	}

	if !u.client.Configured() {
		return SubmitResult{}, NewHTTPError(http.StatusServiceUnavailable, "fulfillment service not configured")
	}

	shipment := qikink.ShipmentRequest{
		OrderID:         order.OrderID,
		CustomerEmail:   order.CustomerEmail,
		ShippingAddress: order.ShippingAddress,
		ShippingCity:    order.ShippingCity,
		ShippingState:   order.ShippingState,
		ShippingPincode: order.ShippingPincode,
		TotalAmount:     order.TotalAmount,
	}
	for _, it := range order.Items {
		shipment.Items = append(shipment.Items, qikink.ShipmentItem{
			SKU:      it.SKU,
			Quantity: it.Quantity,
			Price:    it.UnitPrice,
		})
	}

	fulfillmentOrderID, err := u.client.SubmitOrder(ctx, shipment)
	if err != nil {
		u.log.Error("fulfillment submission failed", "order_id", order.OrderID, "err", err)

		if enqueueOnFailure {
			payload, merr := json.Marshal(shipment)
			if merr != nil {
				payload = []byte("{}")
			}
			job := model.FailedJob{
				JobType:      model.JobTypeFulfillmentSubmission,
				OrderID:      order.OrderID,
				Payload:      string(payload),
				ErrorMessage: err.Error(),
				Status:       model.FailedJobStatusPending,
				RetryCount:   0,
			}
			if jerr := u.jobs.Create(ctx, job); jerr != nil {
				u.log.Error("failed job enqueue failed", "order_id", order.OrderID, "err", jerr)
			}
		}

		//注文ステータスは支払い状態のまま動かさない
		return SubmitResult{Submitted: false, Message: err.Error()}, nil
	}

	fid := fulfillmentOrderID
	if err := u.orders.UpdateStatus(ctx, order.OrderID, model.OrderStatusSubmitted, repo.StatusUpdateOptions{
		FulfillmentOrderID: &fid,
	}); err != nil {
		u.log.Error("order status update failed after submission", "order_id", order.OrderID, "err", err)
		return SubmitResult{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}

	u.log.Info("order submitted to fulfillment", "order_id", order.OrderID, "fulfillment_order_id", fulfillmentOrderID)

	return SubmitResult{
		Submitted:          true,
		FulfillmentOrderID: fulfillmentOrderID,
	}, nil
}

type SyncResult struct {
	Fetched int `json:"fetched"`
	Synced  int `json:"synced"`
}

// SyncProducts はカタログをフルフィルメント側から取得してupsertする
func (u *FulfillmentUsecase) SyncProducts(ctx context.Context) (SyncResult, error) {
	if !u.client.Configured() {
		return SyncResult{}, NewHTTPError(http.StatusServiceUnavailable, "fulfillment service not configured")
	}

	payloads, err := u.client.ListProducts(ctx)
	if err != nil {
		u.log.Error("product sync fetch failed", "err", err)
		return SyncResult{}, NewHTTPError(http.StatusServiceUnavailable, "fulfillment service unavailable")
	}

	synced := 0
	for _, p := range payloads {
		if p.SKU == "" {
			continue
		}
		err := u.products.Upsert(ctx, model.Product{
			SKU:                  p.SKU,
			Name:                 p.Name,
			Description:          p.Description,
			Price:                p.Price,
			Category:             p.Category,
			Collection:           p.Collection,
			Manufacturer:         p.Manufacturer,
			MadeIn:               p.MadeIn,
			ImageURL:             p.ImageURL,
			FulfillmentProductID: p.FulfillmentProductID,
		})
		if err != nil {
			u.log.Error("product upsert failed", "sku", p.SKU, "err", err)
			continue
		}
		synced++
	}

	return SyncResult{Fetched: len(payloads), Synced: synced}, nil
}
