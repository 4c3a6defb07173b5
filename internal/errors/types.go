package errors

import (
	"fmt"
)

// Rule identifies the constraint a rejected input violated.
type Rule string

const (
	RuleNameRequired        Rule = "NameRequired"
	RulePriceNegative       Rule = "PriceNegative"
	RulePriceScale          Rule = "PriceScale"
	RulePriceTooLarge       Rule = "PriceTooLarge"
	RuleStockNegative       Rule = "StockNegative"
	RuleSkuBlank            Rule = "SkuBlank"
	RuleSkuDuplicate        Rule = "SkuDuplicate"
	RuleRatingOutOfRange    Rule = "RatingOutOfRange"
	RuleProductRequired     Rule = "ProductRequired"
	RuleLineItemsEmpty      Rule = "LineItemsEmpty"
	RuleQuantityNonPositive Rule = "QuantityNonPositive"
	RuleTotalTooLarge       Rule = "TotalTooLarge"
	RuleProductDuplicate    Rule = "ProductDuplicate"
	RuleKeyInFlight         Rule = "KeyInFlight"
)

// ValidationError reports malformed or out-of-range input. It is always
// detected before any write.
type ValidationError struct {
	Field string
	Rule  Rule
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Rule)
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Field string
	Rule  Rule
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Rule)
}

// NotFoundError reports a referenced id that does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InsufficientStockError reports the order line that could not be served.
type InsufficientStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// StorageFailure wraps an unexpected store error. The engine never retries it.
type StorageFailure struct {
	Op  string
	Err error
}

func (e *StorageFailure) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageFailure) Unwrap() error {
	return e.Err
}

// Validation is a shorthand constructor used by the schema predicates.
func Validation(field string, rule Rule) error {
	return &ValidationError{Field: field, Rule: rule}
}

// NotFound is a shorthand constructor.
func NotFound(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}
