package repository

import (
	"context"

	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"gorm.io/gorm"
)

// Store groups the repositories over one database handle.
type Store struct {
	db      *gorm.DB
	cascade *CascadeExecutor

	Products ProductRepository
	Reviews  ReviewRepository
	Orders   OrderRepository
}

func NewStore(db *gorm.DB) *Store {
	return NewStoreWithCascade(db, DefaultCascadeExecutor())
}

func NewStoreWithCascade(db *gorm.DB, cascade *CascadeExecutor) *Store {
	return &Store{
		db:       db,
		cascade:  cascade,
		Products: NewProductRepository(db, cascade),
		Reviews:  NewReviewRepository(db, cascade),
		Orders:   NewOrderRepository(db, cascade),
	}
}

// WithTx runs fn against repositories bound to a single transaction. A
// non-nil return from fn, a panic or a cancelled ctx rolls everything back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStoreWithCascade(tx, s.cascade))
	})
	return apperrors.Storage("transaction", err)
}
