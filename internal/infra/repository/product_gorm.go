package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) Upsert(ctx context.Context, p model.Product) error {
	// SKU衝突なら上書き
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "price", "category", "collection",
			"manufacturer", "made_in", "image_url", "fulfillment_product_id", "updated_at",
		}),
	}).Create(&p).Error
}

func (r *ProductGormRepository) List(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})

	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Collection != "" {
		q = q.Where("collection = ?", f.Collection)
	}

	var items []model.Product
	if err := q.Order("sku asc").Find(&items).Error; err != nil {
		return []model.Product{}, err
	}
	return items, nil
}
