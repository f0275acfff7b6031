package repository

import (
	"context"

	"app/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment model.Payment) error
	// 同じキーの支払いレコードがすでにあるか（webhook二重配信の防壁）
	ExistsByIdempotencyKey(ctx context.Context, key string) (bool, error)
}
