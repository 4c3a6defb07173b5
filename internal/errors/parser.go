package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsTyped reports whether err already carries one of the typed failure kinds.
func IsTyped(err error) bool {
	var (
		validation *ValidationError
		conflict   *ConflictError
		notFound   *NotFoundError
		stock      *InsufficientStockError
		storage    *StorageFailure
	)
	return errors.As(err, &validation) ||
		errors.As(err, &conflict) ||
		errors.As(err, &notFound) ||
		errors.As(err, &stock) ||
		errors.As(err, &storage)
}

// Storage wraps an untyped store error as a StorageFailure. Typed failures
// pass through unchanged so they survive transaction callbacks.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTyped(err) {
		return err
	}
	return &StorageFailure{Op: op, Err: err}
}

// IsRecordNotFound reports a GORM lookup miss.
func IsRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports a unique constraint violation (23505 in PostgreSQL,
// SQLITE_CONSTRAINT_UNIQUE in SQLite).
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint")
}

// IsForeignKeyViolation reports a foreign key constraint violation.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}
