package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/razorpay"
	repo "app/internal/repository"
)

// 決済ゲートウェイへの窓口
type PaymentGateway interface {
	Configured() bool
	KeyID() string
	CreateIntent(ctx context.Context, amount int64, currency string, receipt string) (razorpay.Intent, error)
	VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
}

type OrderUsecase struct {
	orders   repo.OrderRepository
	payments repo.PaymentRepository
	gateway  PaymentGateway
	fulfill  *FulfillmentUsecase
	log      *slog.Logger

	now       func() time.Time
	newSuffix func() string
}

func NewOrderUsecase(
	orders repo.OrderRepository,
	payments repo.PaymentRepository,
	gateway PaymentGateway,
	fulfill *FulfillmentUsecase,
	log *slog.Logger,
	now func() time.Time,
	newSuffix func() string,
) *OrderUsecase {
	return &OrderUsecase{
		orders:    orders,
		payments:  payments,
		gateway:   gateway,
		fulfill:   fulfill,
		log:       log,
		now:       now,
		newSuffix: newSuffix,
	}
}

type OrderItemInput struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type CreateOrderInput struct {
	CustomerEmail   string           `json:"customer_email"`
	CustomerName    string           `json:"customer_name"`
	CustomerPhone   string           `json:"customer_phone"`
	ShippingAddress string           `json:"shipping_address"`
	ShippingCity    string           `json:"shipping_city"`
	ShippingState   string           `json:"shipping_state"`
	ShippingPincode string           `json:"shipping_pincode"`
	Items           []OrderItemInput `json:"items"`
	Notes           string           `json:"notes"`
}

type CreateOrderOutput struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

// CreateOrder は合計を計算し、決済インテントを開いてから注文をpendingで保存する。
// インテント作成に失敗したら注文は一切保存しない（宙に浮いたpendingを作らない）。
func (u *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (CreateOrderOutput, error) {
	if strings.TrimSpace(in.CustomerEmail) == "" {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "customer_email is required")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "shipping_address is required")
	}
	if len(in.Items) == 0 {
		return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "items must not be empty")
	}

	//合計は作成時に一度だけ計算する。以後は再計算しない。
	var total int64 = 0
	items := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		if strings.TrimSpace(it.SKU) == "" {
			return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "item sku is required")
		}
		if it.Quantity <= 0 {
			return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "item quantity must be positive")
		}
		if it.Price < 0 {
			return CreateOrderOutput{}, NewHTTPError(http.StatusBadRequest, "item price must not be negative")
		}
		total += it.Price * it.Quantity
		items = append(items, model.OrderItem{
			SKU:       it.SKU,
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
		})
	}

	//タイムスタンプ＋ランダムで衝突しないID
	orderID := fmt.Sprintf("ORD-%d-%s", u.now().Unix(), u.newSuffix())

	//ゲートウェイには最小通貨単位で渡す
	intent, err := u.gateway.CreateIntent(ctx, total*100, "INR", orderID)
	if errors.Is(err, razorpay.ErrNotConfigured) {
		return CreateOrderOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payment system not configured")
	}
	if err != nil {
		u.log.Error("payment intent creation failed", "order_id", orderID, "err", err)
		return CreateOrderOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payment system unavailable")
	}

	order := model.Order{
		OrderID:         orderID,
		CustomerEmail:   in.CustomerEmail,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		ShippingAddress: in.ShippingAddress,
		ShippingCity:    in.ShippingCity,
		ShippingState:   in.ShippingState,
		ShippingPincode: in.ShippingPincode,
		Items:           items,
		TotalAmount:     total,
		Status:          model.OrderStatusPending,
		GatewayOrderID:  intent.ID,
		Notes:           in.Notes,
	}
	if err := u.orders.Create(ctx, order); err != nil {
		u.log.Error("order persist failed", "order_id", orderID, "err", err)
		return CreateOrderOutput{}, NewHTTPError(http.StatusInternalServerError, "failed to record order")
	}

	return CreateOrderOutput{
		OrderID:        orderID,
		GatewayOrderID: intent.ID,
		Amount:         total,
		Currency:       intent.Currency,
		KeyID:          u.gateway.KeyID(),
	}, nil
}

type VerifyPaymentInput struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}

type VerifyPaymentOutput struct {
	PaymentVerified      bool   `json:"payment_verified"`
	OrderID              string `json:"order_id"`
	FulfillmentSubmitted bool   `json:"fulfillment_submitted"`
	FulfillmentOrderID   string `json:"fulfillment_order_id,omitempty"`
}

// VerifyPayment は支払い署名を検証し、支払いを記録してから
// 同じリクエストの中でフルフィルメントへの提出まで行う。
func (u *OrderUsecase) VerifyPayment(ctx context.Context, in VerifyPaymentInput) (VerifyPaymentOutput, error) {
	if in.OrderID == "" || in.GatewayOrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusBadRequest, "missing required verification fields")
	}

	order, err := u.orders.FindByID(ctx, in.OrderID)
	if errors.Is(err, repo.ErrNotFound) {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	if order.GatewayOrderID != in.GatewayOrderID {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusNotFound, "order id mismatch")
	}

	//署名不一致はここで打ち切り。状態は一切変えない。
	if !u.gateway.VerifyPaymentSignature(in.GatewayOrderID, in.PaymentID, in.Signature) {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusUnauthorized, "payment signature verification failed")
	}

	//同じ支払いの再検証で二重レコードを作らない
	idemKey := in.PaymentID + "_verified"
	exists, err := u.payments.ExistsByIdempotencyKey(ctx, idemKey)
	if err != nil {
		return VerifyPaymentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	if !exists {
		p := model.Payment{
			GatewayPaymentID: in.PaymentID,
			GatewayOrderID:   in.GatewayOrderID,
			Amount:           order.TotalAmount,
			Currency:         "INR",
			Status:           model.PaymentStatusVerified,
			PaymentMethod:    "online",
			IdempotencyKey:   idemKey,
		}
		if err := u.payments.Create(ctx, p); err != nil {
			return VerifyPaymentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
		}
	}

	//submitted以降まで進んだ注文は戻さない
	if !order.Status.AtLeastSubmitted() {
		if err := u.orders.UpdateStatus(ctx, order.OrderID, model.OrderStatusPaymentVerified, repo.StatusUpdateOptions{}); err != nil {
			return VerifyPaymentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
		}
	}

	//提出失敗でもverify自体は成功として返す（失敗ジョブ側で追う）
	res, err := u.fulfill.SubmitOrder(ctx, order.OrderID)
	if err != nil {
		u.log.Error("fulfillment submission errored after verify", "order_id", order.OrderID, "err", err)
		res = SubmitResult{}
	}

	u.log.Info("payment verified",
		"order_id", order.OrderID,
		"fulfillment_submitted", res.Submitted,
	)

	return VerifyPaymentOutput{
		PaymentVerified:      true,
		OrderID:              order.OrderID,
		FulfillmentSubmitted: res.Submitted,
		FulfillmentOrderID:   res.FulfillmentOrderID,
	}, nil
}

// GetOrder は注文の現在の状態を返す
func (u *OrderUsecase) GetOrder(ctx context.Context, orderID string) (model.Order, error) {
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	order, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	return order, nil
}
