package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminUsecase struct {
	orders repo.OrderRepository
}

func NewAdminUsecase(orders repo.OrderRepository) *AdminUsecase {
	return &AdminUsecase{orders: orders}
}

func (u *AdminUsecase) Dashboard(ctx context.Context) (repo.DashboardStats, error) {
	stats, err := u.orders.DashboardStats(ctx)
	if err != nil {
		return repo.DashboardStats{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	return stats, nil
}

// 注文一覧（statusが空なら全件）
func (u *AdminUsecase) ListOrders(ctx context.Context, status string) ([]model.Order, error) {
	if status != "" && !validOrderStatus(status) {
		return []model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	orders, err := u.orders.ListAdmin(ctx, status)
	if err != nil {
		return []model.Order{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	return orders, nil
}

func validOrderStatus(s string) bool {
	switch model.OrderStatus(s) {
	case model.OrderStatusPending, model.OrderStatusPaymentVerified, model.OrderStatusPaymentCaptured,
		model.OrderStatusSubmitted, model.OrderStatusShipped, model.OrderStatusInTransit, model.OrderStatusDelivered:
		return true
	}
	return false
}
