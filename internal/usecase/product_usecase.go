package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type ProductUsecase struct {
	products repo.ProductRepository
}

func NewProductUsecase(products repo.ProductRepository) *ProductUsecase {
	return &ProductUsecase{products: products}
}

func (u *ProductUsecase) List(ctx context.Context, f repo.ProductFilter) ([]model.Product, error) {
	items, err := u.products.List(ctx, f)
	if err != nil {
		return []model.Product{}, NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	}
	return items, nil
}
