// internal/utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openkb/product-kb/internal/apperr"
)

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type errorBody struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, errorBody{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func NotFoundResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, "CONFLICT", message, nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

// HandleError maps a service error onto the HTTP surface through the sentinel
// taxonomy. Unknown errors become a 500 without leaking internals.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrConflict):
		ConflictResponse(c, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		NotFoundResponse(c, err.Error())
	case errors.Is(err, apperr.ErrTooLarge):
		ErrorResponse(c, http.StatusBadRequest, "PAYLOAD_TOO_LARGE", err.Error(), nil)
	case errors.Is(err, apperr.ErrInvalidInput):
		BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, apperr.ErrTransient):
		ErrorResponse(c, http.StatusServiceUnavailable, "STORAGE_BUSY", "storage busy, retry later", nil)
	default:
		InternalErrorResponse(c, "")
	}
}
