package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) error {
	// Itemsも関連として同時にINSERTされる（1トランザクション）
	return r.db.WithContext(ctx).Create(&order).Error
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("order_id = ?", orderID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus, opts repo.StatusUpdateOptions) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if opts.FulfillmentOrderID != nil {
		updates["fulfillment_order_id"] = *opts.FulfillmentOrderID
	}
	if opts.TrackingNumber != nil {
		updates["tracking_number"] = *opts.TrackingNumber
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Updates(updates)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) ListByStatuses(ctx context.Context, statuses []model.OrderStatus) ([]model.Order, error) {
	var items []model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("status IN ?", statuses).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, status string) ([]model.Order, error) {
	q := r.db.WithContext(ctx).Preload("Items").Model(&model.Order{})

	//status 絞り込み
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var items []model.Order
	if err := q.Order("created_at desc").Find(&items).Error; err != nil {
		return []model.Order{}, err
	}
	return items, nil
}

func (r *OrderGormRepository) DashboardStats(ctx context.Context) (repo.DashboardStats, error) {
	stats := repo.DashboardStats{
		CountsByStatus: map[model.OrderStatus]int64{},
	}

	type statusCount struct {
		Status model.OrderStatus
		Count  int64
	}
	var rows []statusCount
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return repo.DashboardStats{}, err
	}
	for _, row := range rows {
		stats.CountsByStatus[row.Status] = row.Count
		stats.TotalOrders += row.Count
	}

	type revenue struct {
		Total int64
	}
	var rev revenue
	err = r.db.WithContext(ctx).Model(&model.Order{}).
		Select("coalesce(sum(total_amount), 0) as total").
		Scan(&rev).Error
	if err != nil {
		return repo.DashboardStats{}, err
	}
	stats.TotalRevenue = rev.Total
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = float64(rev.Total) / float64(stats.TotalOrders)
	}

	return stats, nil
}
