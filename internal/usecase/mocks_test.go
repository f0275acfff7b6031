package usecase_test

import (
	"context"
	"io"
	"log/slog"

	"app/internal/domain/model"
	"app/internal/infra/qikink"
	"app/internal/infra/razorpay"
	repo "app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: OrderRepository
// =====================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (model.Order, error) {
	args := m.Called(ctx, gatewayOrderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, opts repo.StatusUpdateOptions) error {
	args := m.Called(ctx, orderID, status, opts)
	return args.Error(0)
}

func (m *MockOrderRepository) ListByStatuses(ctx context.Context, statuses []model.OrderStatus) ([]model.Order, error) {
	args := m.Called(ctx, statuses)
	o, _ := args.Get(0).([]model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListAdmin(ctx context.Context, status string) ([]model.Order, error) {
	args := m.Called(ctx, status)
	o, _ := args.Get(0).([]model.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) DashboardStats(ctx context.Context) (repo.DashboardStats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(repo.DashboardStats)
	return s, args.Error(1)
}

// =====================
// Mock: PaymentRepository
// =====================

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// =====================
// Mock: FailedJobRepository
// =====================

type MockFailedJobRepository struct {
	mock.Mock
}

func (m *MockFailedJobRepository) Create(ctx context.Context, job model.FailedJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockFailedJobRepository) ListPending(ctx context.Context, jobType string) ([]model.FailedJob, error) {
	args := m.Called(ctx, jobType)
	jobs, _ := args.Get(0).([]model.FailedJob)
	return jobs, args.Error(1)
}

func (m *MockFailedJobRepository) UpdateOutcome(ctx context.Context, jobID int64, status model.FailedJobStatus, retryCount *int) error {
	args := m.Called(ctx, jobID, status, retryCount)
	return args.Error(0)
}

// =====================
// Mock: ProductRepository
// =====================

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Upsert(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

// =====================
// Mock: PaymentGateway
// =====================

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockGateway) KeyID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockGateway) CreateIntent(ctx context.Context, amount int64, currency string, receipt string) (razorpay.Intent, error) {
	args := m.Called(ctx, amount, currency, receipt)
	in, _ := args.Get(0).(razorpay.Intent)
	return in, args.Error(1)
}

func (m *MockGateway) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	args := m.Called(gatewayOrderID, paymentID, signature)
	return args.Bool(0)
}

func (m *MockGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

// =====================
// Mock: FulfillmentClient
// =====================

type MockFulfillmentClient struct {
	mock.Mock
}

func (m *MockFulfillmentClient) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockFulfillmentClient) SubmitOrder(ctx context.Context, shipment qikink.ShipmentRequest) (string, error) {
	args := m.Called(ctx, shipment)
	return args.String(0), args.Error(1)
}

func (m *MockFulfillmentClient) FetchTracking(ctx context.Context, fulfillmentOrderID string) *qikink.Tracking {
	args := m.Called(ctx, fulfillmentOrderID)
	t, _ := args.Get(0).(*qikink.Tracking)
	return t
}

func (m *MockFulfillmentClient) ListProducts(ctx context.Context) ([]qikink.ProductPayload, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]qikink.ProductPayload)
	return items, args.Error(1)
}

func (m *MockFulfillmentClient) TestConnection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// =====================
// Helper
// =====================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
