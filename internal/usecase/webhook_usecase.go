package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type WebhookOutcome string

const (
	WebhookOutcomeSuccess   WebhookOutcome = "success"
	WebhookOutcomeDuplicate WebhookOutcome = "duplicate"
	WebhookOutcomeIgnored   WebhookOutcome = "ignored"
	WebhookOutcomeError     WebhookOutcome = "error"
)

type WebhookResult struct {
	Outcome WebhookOutcome
	OrderID string
	Message string
}

// ゲートウェイのwebhookイベント
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"` // 最小通貨単位
				Method  string `json:"method"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type WebhookUsecase struct {
	orders   repo.OrderRepository
	payments repo.PaymentRepository
	gateway  PaymentGateway
	log      *slog.Logger
}

func NewWebhookUsecase(
	orders repo.OrderRepository,
	payments repo.PaymentRepository,
	gateway PaymentGateway,
	log *slog.Logger,
) *WebhookUsecase {
	return &WebhookUsecase{
		orders:   orders,
		payments: payments,
		gateway:  gateway,
		log:      log,
	}
}

// Process はwebhookを冪等に処理する。
// 署名NGならストアには一切触らない。payment.captured以外は無視。
// 同じ支払いの再配信はduplicateで返し、何も書かない。
func (u *WebhookUsecase) Process(ctx context.Context, rawBody []byte, signature string) WebhookResult {
	if !u.gateway.VerifyWebhookSignature(rawBody, signature) {
		u.log.Error("webhook signature verification failed")
		return WebhookResult{Outcome: WebhookOutcomeError, Message: "signature verification failed"}
	}

	var ev webhookEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return WebhookResult{Outcome: WebhookOutcomeError, Message: "malformed payload"}
	}

	if ev.Event != "payment.captured" {
		return WebhookResult{Outcome: WebhookOutcomeIgnored, Message: "event " + ev.Event + " ignored"}
	}

	entity := ev.Payload.Payment.Entity
	if entity.ID == "" {
		return WebhookResult{Outcome: WebhookOutcomeError, Message: "missing payment id"}
	}

	idemKey := entity.ID + "_captured"
	exists, err := u.payments.ExistsByIdempotencyKey(ctx, idemKey)
	if err != nil {
		return WebhookResult{Outcome: WebhookOutcomeError, Message: "store unavailable"}
	}
	if exists {
		return WebhookResult{Outcome: WebhookOutcomeDuplicate, Message: "already processed"}
	}

	p := model.Payment{
		GatewayPaymentID: entity.ID,
		GatewayOrderID:   entity.OrderID,
		Amount:           entity.Amount / 100,
		Currency:         "INR",
		Status:           model.PaymentStatusCaptured,
		PaymentMethod:    entity.Method,
		IdempotencyKey:   idemKey,
		WebhookProcessed: true,
	}
	if err := u.payments.Create(ctx, p); err != nil {
		//同時配信でuniqueに弾かれたら、それはduplicate
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return WebhookResult{Outcome: WebhookOutcomeDuplicate, Message: "already processed"}
		}
		return WebhookResult{Outcome: WebhookOutcomeError, Message: "store unavailable"}
	}

	if entity.OrderID == "" {
		return WebhookResult{Outcome: WebhookOutcomeSuccess, Message: "payment recorded"}
	}

	order, err := u.orders.FindByGatewayOrderID(ctx, entity.OrderID)
	if errors.Is(err, repo.ErrNotFound) {
		//支払いだけ記録できていれば成功扱い
		return WebhookResult{Outcome: WebhookOutcomeSuccess, Message: "payment recorded"}
	}
	if err != nil {
		return WebhookResult{Outcome: WebhookOutcomeError, Message: "store unavailable"}
	}

	//pending/payment_verifiedからのみ進める。提出済みは触らない。
	if order.Status == model.OrderStatusPending || order.Status == model.OrderStatusPaymentVerified {
		if err := u.orders.UpdateStatus(ctx, order.OrderID, model.OrderStatusPaymentCaptured, repo.StatusUpdateOptions{}); err != nil {
			return WebhookResult{Outcome: WebhookOutcomeError, Message: "store unavailable"}
		}
	}

	u.log.Info("webhook payment captured", "order_id", order.OrderID, "gateway_payment_id", entity.ID)

	return WebhookResult{Outcome: WebhookOutcomeSuccess, OrderID: order.OrderID}
}
