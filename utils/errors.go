package utils

import (
	"errors"
	"log"
	"net/http"
)

// APIError carries the HTTP status a business-rule violation maps to.
// Anything else that reaches RespondError is treated as internal and the
// real message is not leaked to the client.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func ValidationError(msg string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: msg}
}

func BadRequestError(msg string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: msg}
}

func NotFoundError(msg string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: msg}
}

func RateLimitError(msg string) *APIError {
	return &APIError{Status: http.StatusTooManyRequests, Message: msg}
}

func ForbiddenError(msg string) *APIError {
	return &APIError{Status: http.StatusForbidden, Message: msg}
}

// RespondError writes the envelope for err, logging and masking anything that
// is not an APIError.
func RespondError(w http.ResponseWriter, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		RespondWithError(w, apiErr.Status, apiErr.Message)
		return
	}
	log.Printf("internal error: %v", err)
	RespondWithError(w, http.StatusInternalServerError, "Internal server error")
}
