package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode - машиночитаемый код ошибки, который уходит клиенту.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	CodeForbidden     ErrorCode = "FORBIDDEN"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeConflict      ErrorCode = "CONFLICT"
	CodeTimeConflict  ErrorCode = "TIME_CONFLICT"
	CodeInvalidStatus ErrorCode = "INVALID_STATUS_TRANSITION"
	CodeRateLimited   ErrorCode = "RATE_LIMITED"
	CodePaymentError  ErrorCode = "PAYMENT_ERROR"
	CodeUpstreamError ErrorCode = "UPSTREAM_ERROR"
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// AppError - типизированная ошибка приложения: HTTP-статус + код + сообщение.
// REST-слой находит ее через errors.As и превращает в JSON-конверт.
type AppError struct {
	Status  int
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы errors.Is(err, ErrNotFound) работал
// для любых NotFound-ошибок, а не только для одного экземпляра.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails возвращает копию ошибки с дополнительными деталями.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Сентинелы для сравнения через errors.Is.
var (
	ErrNotFound      = &AppError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "resource not found"}
	ErrForbidden     = &AppError{Status: http.StatusForbidden, Code: CodeForbidden, Message: "access denied"}
	ErrUnauthorized  = &AppError{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "authentication required"}
	ErrConflict      = &AppError{Status: http.StatusConflict, Code: CodeConflict, Message: "resource conflict"}
	ErrTimeConflict  = &AppError{Status: http.StatusConflict, Code: CodeTimeConflict, Message: "time slot is already booked"}
	ErrInvalidStatus = &AppError{Status: http.StatusConflict, Code: CodeInvalidStatus, Message: "status transition is not allowed"}
	ErrValidation    = &AppError{Status: http.StatusBadRequest, Code: CodeValidation, Message: "validation failed"}
	ErrRateLimited   = &AppError{Status: http.StatusTooManyRequests, Code: CodeRateLimited, Message: "too many requests"}
)

func NewNotFound(resource string) *AppError {
	return &AppError{Status: http.StatusNotFound, Code: CodeNotFound, Message: resource + " not found"}
}

func NewForbidden(message string) *AppError {
	return &AppError{Status: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

func NewConflict(message string) *AppError {
	return &AppError{Status: http.StatusConflict, Code: CodeConflict, Message: message}
}

func NewTimeConflict(message string) *AppError {
	return &AppError{Status: http.StatusConflict, Code: CodeTimeConflict, Message: message}
}

func NewInvalidStatus(from, to string) *AppError {
	return &AppError{
		Status:  http.StatusConflict,
		Code:    CodeInvalidStatus,
		Message: fmt.Sprintf("cannot change status from '%s' to '%s'", from, to),
		Details: map[string]interface{}{"from": from, "to": to},
	}
}

func NewValidation(message string, fields map[string]string) *AppError {
	e := &AppError{Status: http.StatusBadRequest, Code: CodeValidation, Message: message}
	if len(fields) > 0 {
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		e.Details = details
	}
	return e
}

func NewPaymentError(message string, err error) *AppError {
	return &AppError{Status: http.StatusPaymentRequired, Code: CodePaymentError, Message: message, Err: err}
}

func NewUpstreamError(service string, err error) *AppError {
	return &AppError{Status: http.StatusBadGateway, Code: CodeUpstreamError, Message: service + " is unavailable", Err: err}
}

// AsAppError достает AppError из цепочки. Все остальное - INTERNAL_ERROR.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error", Err: err}
}

// ValidationErrors копит ошибки по полям, чтобы вернуть их клиенту одним ответом.
type ValidationErrors map[string]string

func (v ValidationErrors) Add(field, message string) {
	if _, exists := v[field]; !exists {
		v[field] = message
	}
}

// Err возвращает nil, если ошибок нет.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return NewValidation("validation failed", v)
}
