package domain

import (
	"fmt"
	"net/http"
)

// ErrorCategory classifies errors for logging and HTTP mapping.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation"
	ErrCatAuth       ErrorCategory = "auth"
	ErrCatRateLimit  ErrorCategory = "rate_limit"
	ErrCatNotFound   ErrorCategory = "not_found"
	ErrCatModel      ErrorCategory = "model_error"
	ErrCatUnknown    ErrorCategory = "unknown"
)

// AppError carries an error category and the HTTP status it maps to.
type AppError struct {
	Category   ErrorCategory
	Message    string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) *AppError {
	return &AppError{Category: ErrCatValidation, Message: msg, StatusCode: http.StatusBadRequest}
}

func NewAuthError(msg string) *AppError {
	return &AppError{Category: ErrCatAuth, Message: msg, StatusCode: http.StatusUnauthorized}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Category: ErrCatNotFound, Message: msg, StatusCode: http.StatusNotFound}
}

func NewModelError(msg string, err error) *AppError {
	return &AppError{Category: ErrCatModel, Message: msg, StatusCode: http.StatusBadGateway, Err: err}
}

func NewInternalError(msg string, err error) *AppError {
	return &AppError{Category: ErrCatUnknown, Message: msg, StatusCode: http.StatusInternalServerError, Err: err}
}

// ErrorResponse is the JSON body for non-200 responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
