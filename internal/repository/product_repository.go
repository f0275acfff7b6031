package repository

import (
	"context"

	"app/internal/domain/model"
)

type ProductFilter struct {
	Category   string
	Collection string
}

type ProductRepository interface {
	// SKUをキーにupsert（同期は何度流しても同じ結果）
	Upsert(ctx context.Context, p model.Product) error
	List(ctx context.Context, f ProductFilter) ([]model.Product, error)
}
