package errors

// Error codes returned in the "error" field of every failure response.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // rejected by a schema rule
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // malformed path id
	ValidationInvalidBody  = "VALIDATION_INVALID_BODY"  // body could not be decoded

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound = "RESOURCE_NOT_FOUND"
	ResourceConflict = "RESOURCE_CONFLICT"

	// ==================== Order (ORDER_) ====================
	OrderInsufficientStock = "ORDER_INSUFFICIENT_STOCK"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
