package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failure response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	Rule      Rule   `json:"rule,omitempty"`
	ProductID uint   `json:"product_id,omitempty"`
}

// StatusOf maps a failure to its HTTP status and response body.
func StatusOf(err error) (int, ErrorResponse) {
	var (
		validation *ValidationError
		conflict   *ConflictError
		notFound   *NotFoundError
		stock      *InsufficientStockError
		storage    *StorageFailure
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, ErrorResponse{
			Error:   ValidationInvalidInput,
			Message: validation.Error(),
			Field:   validation.Field,
			Rule:    validation.Rule,
		}
	case errors.As(err, &notFound):
		return http.StatusNotFound, ErrorResponse{
			Error:   ResourceNotFound,
			Message: notFound.Error(),
		}
	case errors.As(err, &conflict):
		return http.StatusConflict, ErrorResponse{
			Error:   ResourceConflict,
			Message: conflict.Error(),
			Field:   conflict.Field,
			Rule:    conflict.Rule,
		}
	case errors.As(err, &stock):
		return http.StatusConflict, ErrorResponse{
			Error:     OrderInsufficientStock,
			Message:   stock.Error(),
			ProductID: stock.ProductID,
		}
	case errors.As(err, &storage):
		return http.StatusInternalServerError, ErrorResponse{
			Error:   InternalDatabaseError,
			Message: "storage is unavailable, try again later",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   InternalServerError,
			Message: "internal server error",
		}
	}
}

// Respond writes the response for a failure returned by the engine.
func Respond(c *gin.Context, err error) {
	status, body := StatusOf(err)
	c.JSON(status, body)
}

// RespondWithError writes a failure detected at the HTTP boundary itself.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}
