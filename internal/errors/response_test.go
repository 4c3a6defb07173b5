package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", Validation("price", RulePriceNegative), http.StatusBadRequest, ValidationInvalidInput},
		{"not found", NotFound("product", 7), http.StatusNotFound, ResourceNotFound},
		{"conflict", &ConflictError{Field: "sku", Rule: RuleSkuDuplicate}, http.StatusConflict, ResourceConflict},
		{"stock", &InsufficientStockError{ProductID: 3, Requested: 6, Available: 5}, http.StatusConflict, OrderInsufficientStock},
		{"storage", &StorageFailure{Op: "create order", Err: errors.New("connection reset")}, http.StatusInternalServerError, InternalDatabaseError},
		{"wrapped not found", fmt.Errorf("load: %w", NotFound("order", 1)), http.StatusNotFound, ResourceNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := StatusOf(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.Error)
		})
	}
}

func TestStatusOf_CarriesDetail(t *testing.T) {
	_, body := StatusOf(&InsufficientStockError{ProductID: 42, Requested: 2, Available: 1})
	assert.Equal(t, uint(42), body.ProductID)

	_, body = StatusOf(Validation("rating", RuleRatingOutOfRange))
	assert.Equal(t, "rating", body.Field)
	assert.Equal(t, RuleRatingOutOfRange, body.Rule)
}

func TestStorage_PassesTypedFailuresThrough(t *testing.T) {
	notFound := NotFound("product", 1)
	assert.Same(t, notFound, Storage("find product", notFound))

	raw := errors.New("disk full")
	wrapped := Storage("create product", raw)
	var sf *StorageFailure
	assert.True(t, errors.As(wrapped, &sf))
	assert.ErrorIs(t, wrapped, raw)
	assert.Nil(t, Storage("noop", nil))
}

func TestConstraintDetection(t *testing.T) {
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_products_sku" (SQLSTATE 23505)`)))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: products.sku")))
	assert.False(t, IsDuplicateKey(errors.New("syntax error")))

	assert.True(t, IsForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.True(t, IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")))
	assert.False(t, IsForeignKeyViolation(nil))

	assert.True(t, IsRecordNotFound(fmt.Errorf("wrap: %w", gorm.ErrRecordNotFound)))
}
