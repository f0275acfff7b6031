package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// ステータス更新と同時に付けたい項目（nilなら触らない）
type StatusUpdateOptions struct {
	FulfillmentOrderID *string
	TrackingNumber     *string
}

// ダッシュボード集計
type DashboardStats struct {
	TotalOrders       int64                       `json:"total_orders"`
	CountsByStatus    map[model.OrderStatus]int64 `json:"counts_by_status"`
	TotalRevenue      int64                       `json:"total_revenue"`
	AverageOrderValue float64                     `json:"average_order_value"`
}

type OrderRepository interface {
	// 注文＋明細をまとめて作成する
	Create(ctx context.Context, order model.Order) error
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	// 署名検証時にゲートウェイ側IDから引く
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, opts StatusUpdateOptions) error
	ListByStatuses(ctx context.Context, statuses []model.OrderStatus) ([]model.Order, error)
	// 管理者用の一覧（statusが空なら全件）
	ListAdmin(ctx context.Context, status string) ([]model.Order, error)
	DashboardStats(ctx context.Context) (DashboardStats, error)
}
