package repository

import (
	"context"
	"iter"

	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"gorm.io/gorm"
)

const defaultBatchSize = 100

// eachByID pages through a table in primary key order, batchSize rows per
// query. The sequence stops after yielding the first error.
func eachByID[T any](ctx context.Context, query func() *gorm.DB, batchSize int, op string, idOf func(T) uint) iter.Seq2[T, error] {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return func(yield func(T, error) bool) {
		var lastID uint
		for {
			var batch []T
			err := query().WithContext(ctx).
				Where("id > ?", lastID).
				Order("id").
				Limit(batchSize).
				Find(&batch).Error
			if err != nil {
				var zero T
				yield(zero, apperrors.Storage(op, err))
				return
			}

			for _, row := range batch {
				if !yield(row, nil) {
					return
				}
			}
			if len(batch) < batchSize {
				return
			}
			lastID = idOf(batch[len(batch)-1])
		}
	}
}
