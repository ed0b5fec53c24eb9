package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound         ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized     ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden        ErrorType = "FORBIDDEN"
	ErrorTypeConflict         ErrorType = "CONFLICT"
	ErrorTypeInvalidOperation ErrorType = "INVALID_OPERATION"
	ErrorTypeInternal         ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate        ErrorCode = "INVALID_DATE"
	ErrCodeInvalidDateRange   ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeInvalidDescription ErrorCode = "INVALID_DESCRIPTION"
	ErrCodeInvalidRole        ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidManager     ErrorCode = "INVALID_MANAGER"

	ErrCodeRequestNotFound   ErrorCode = "VACATION_REQUEST_NOT_FOUND"
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeNotRequestOwner   ErrorCode = "NOT_REQUEST_OWNER"
	ErrCodeNotDirectManager  ErrorCode = "NOT_DIRECT_MANAGER"
	ErrCodeApprovalForbidden ErrorCode = "APPROVAL_FORBIDDEN"
	ErrCodeOverlappingDates  ErrorCode = "OVERLAPPING_DATES"
	ErrCodeRequestFinalized  ErrorCode = "REQUEST_FINALIZED"

	ErrCodeAdminUndeletable ErrorCode = "ADMIN_UNDELETABLE"
	ErrCodeUserHasReports   ErrorCode = "USER_HAS_REPORTS"
	ErrCodeAdminRoleLocked  ErrorCode = "ADMIN_ROLE_LOCKED"

	ErrCodeInvalidPrincipal ErrorCode = "INVALID_PRINCIPAL"
	ErrCodeAdminRequired    ErrorCode = "ADMIN_REQUIRED"
	ErrCodeRoleRequired     ErrorCode = "ROLE_REQUIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so that sentinel errors keep matching after
// WithCause/WithDetails copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy of the error carrying cause. Sentinels are shared,
// so they are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInvalidOperationError marks an action that is structurally disallowed,
// e.g. deleting an Admin account. It is never a routine "not found".
func NewInvalidOperationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidOperation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrRequestNotFound   = NewNotFoundError("Vacation request not found", ErrCodeRequestNotFound)
	ErrUserNotFound      = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrNotRequestOwner   = NewForbiddenError("collaborators may only manage their own vacation requests", ErrCodeNotRequestOwner)
	ErrNotDirectManager  = NewForbiddenError("managers may only act on requests of their direct reports", ErrCodeNotDirectManager)
	ErrApprovalForbidden = NewForbiddenError("collaborators cannot approve or reject vacation requests", ErrCodeApprovalForbidden)
	ErrOverlappingDates  = NewConflictError("vacation request overlaps an existing request", ErrCodeOverlappingDates)
	ErrRequestFinalized  = NewConflictError("vacation request is no longer pending", ErrCodeRequestFinalized)
	ErrInvalidDateRange  = NewValidationError("end date must be after start date", ErrCodeInvalidDateRange)

	ErrAdminUndeletable = NewInvalidOperationError("admin users cannot be deleted", ErrCodeAdminUndeletable)
	ErrUserHasReports   = NewInvalidOperationError("user still manages other users", ErrCodeUserHasReports)
	ErrAdminRoleLocked  = NewInvalidOperationError("the role of an admin user cannot be changed", ErrCodeAdminRoleLocked)

	ErrInvalidPrincipal = NewUnauthorizedError("missing or invalid X-User-Id / X-User-Role headers", ErrCodeInvalidPrincipal)
	ErrAdminRequired    = NewForbiddenError("only administrators can perform this action", ErrCodeAdminRequired)
	ErrRoleRequired     = NewForbiddenError("your role cannot perform this action", ErrCodeRoleRequired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsDenied reports whether err is an authorization or business-rule denial.
func IsDenied(err error) bool {
	appErr, ok := IsAppError(err)
	if !ok {
		return false
	}
	switch appErr.Type {
	case ErrorTypeForbidden, ErrorTypeConflict, ErrorTypeValidation:
		return true
	}
	return false
}

func IsNotFound(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeNotFound
}

func IsInvalidOperation(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Type == ErrorTypeInvalidOperation
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
