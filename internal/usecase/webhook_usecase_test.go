package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newWebhookUC(orders *MockOrderRepository, payments *MockPaymentRepository, gw *MockGateway) *usecase.WebhookUsecase {
	return usecase.NewWebhookUsecase(orders, payments, gw, testLogger())
}

func capturedBody() []byte {
	return []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_1",
					"order_id": "rzp_order_1",
					"amount": 100000,
					"method": "upi"
				}
			}
		}
	}`)
}

func TestWebhookUsecase_Process_CapturedSuccess(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	gw := new(MockGateway)

	gw.On("VerifyWebhookSignature", mock.Anything, "good-sig").Return(true)
	payments.On("ExistsByIdempotencyKey", mock.Anything, "pay_1_captured").Return(false, nil)

	// webhookの金額は最小通貨単位で来るので÷100で記録する
	payments.On("Create", mock.Anything, mock.MatchedBy(func(p model.Payment) bool {
		return p.GatewayPaymentID == "pay_1" &&
			p.Amount == 1000 &&
			p.Status == model.PaymentStatusCaptured &&
			p.PaymentMethod == "upi" &&
			p.WebhookProcessed
	})).Return(nil)

	orders.On("FindByGatewayOrderID", mock.Anything, "rzp_order_1").Return(pendingOrder(), nil)
	orders.On("UpdateStatus", mock.Anything, "ORD-1", model.OrderStatusPaymentCaptured, repo.StatusUpdateOptions{}).Return(nil)

	u := newWebhookUC(orders, payments, gw)

	res := u.Process(ctx, capturedBody(), "good-sig")
	assert.Equal(t, usecase.WebhookOutcomeSuccess, res.Outcome)
	assert.Equal(t, "ORD-1", res.OrderID)

	payments.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestWebhookUsecase_Process_Replay_IsDuplicate(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	gw := new(MockGateway)

	gw.On("VerifyWebhookSignature", mock.Anything, "good-sig").Return(true)
	payments.On("ExistsByIdempotencyKey", mock.Anything, "pay_1_captured").Return(true, nil)

	u := newWebhookUC(orders, payments, gw)

	res := u.Process(ctx, capturedBody(), "good-sig")
	assert.Equal(t, usecase.WebhookOutcomeDuplicate, res.Outcome)

	// 再配信では支払いレコードも注文も触らない
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookUsecase_Process_ConcurrentDelivery_UniqueViolationIsDuplicate(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	gw := new(MockGateway)

	gw.On("VerifyWebhookSignature", mock.Anything, "good-sig").Return(true)
	payments.On("ExistsByIdempotencyKey", mock.Anything, "pay_1_captured").Return(false, nil)
	payments.On("Create", mock.Anything, mock.AnythingOfType("model.Payment")).Return(gorm.ErrDuplicatedKey)

	u := newWebhookUC(orders, payments, gw)

	res := u.Process(ctx, capturedBody(), "good-sig")
	assert.Equal(t, usecase.WebhookOutcomeDuplicate, res.Outcome)

	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookUsecase_Process_BadSignature(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	gw := new(MockGateway)

	gw.On("VerifyWebhookSignature", mock.Anything, "bad-sig").Return(false)

	u := newWebhookUC(orders, payments, gw)

	res := u.Process(ctx, capturedBody(), "bad-sig")
	assert.Equal(t, usecase.WebhookOutcomeError, res.Outcome)

	// 署名NGならストアに一切触らない
	payments.AssertNotCalled(t, "ExistsByIdempotencyKey", mock.Anything, mock.Anything)
	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "FindByGatewayOrderID", mock.Anything, mock.Anything)
}

func TestWebhookUsecase_Process_OtherEventIgnored(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	gw := new(MockGateway)

	gw.On("VerifyWebhookSignature", mock.Anything, "good-sig").Return(true)

	u := newWebhookUC(orders, payments, gw)

	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"id":"pay_2"}}}}`)
	res := u.Process(ctx, body, "good-sig")
	assert.Equal(t, usecase.WebhookOutcomeIgnored, res.Outcome)

	payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWebhookUsecase_Process_SubmittedOrderNotRegressed(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	gw := new(MockGateway)

	gw.On("VerifyWebhookSignature", mock.Anything, "good-sig").Return(true)
	payments.On("ExistsByIdempotencyKey", mock.Anything, "pay_1_captured").Return(false, nil)
	payments.On("Create", mock.Anything, mock.AnythingOfType("model.Payment")).Return(nil)

	order := pendingOrder()
	order.Status = model.OrderStatusSubmitted
	orders.On("FindByGatewayOrderID", mock.Anything, "rzp_order_1").Return(order, nil)

	u := newWebhookUC(orders, payments, gw)

	res := u.Process(ctx, capturedBody(), "good-sig")
	assert.Equal(t, usecase.WebhookOutcomeSuccess, res.Outcome)

	// 提出済みの注文はpayment_capturedに戻さない
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhookUsecase_Process_UnknownOrder_PaymentStillRecorded(t *testing.T) {
	ctx := context.Background()
	orders := new(MockOrderRepository)
	payments := new(MockPaymentRepository)
	gw := new(MockGateway)

	gw.On("VerifyWebhookSignature", mock.Anything, "good-sig").Return(true)
	payments.On("ExistsByIdempotencyKey", mock.Anything, "pay_1_captured").Return(false, nil)
	payments.On("Create", mock.Anything, mock.AnythingOfType("model.Payment")).Return(nil)
	orders.On("FindByGatewayOrderID", mock.Anything, "rzp_order_1").Return(model.Order{}, repo.ErrNotFound)

	u := newWebhookUC(orders, payments, gw)

	res := u.Process(ctx, capturedBody(), "good-sig")
	assert.Equal(t, usecase.WebhookOutcomeSuccess, res.Outcome)

	payments.AssertExpectations(t)
}
