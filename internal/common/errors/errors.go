// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidLimit    ErrorCode = "INVALID_LIMIT"
	ErrCodeInvalidActivity ErrorCode = "INVALID_ACTIVITY"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"

	ErrCodeProfileFetchFailed ErrorCode = "PROFILE_FETCH_FAILED"
	ErrCodeCatalogQueryFailed ErrorCode = "CATALOG_QUERY_FAILED"
	ErrCodeCatalogTimeout     ErrorCode = "CATALOG_TIMEOUT"

	ErrCodeProviderTimeout     ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeProviderFailed      ErrorCode = "PROVIDER_FAILED"
	ErrCodeProviderMalformed   ErrorCode = "PROVIDER_MALFORMED_RESPONSE"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"

	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "EXTERNAL_SERVICE_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidLimitError creates a non-retryable input validation error for a
// result limit below 1.
func NewInvalidLimitError(limit int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLimit,
		Message:   "Result limit must be at least 1",
		Details:   fmt.Sprintf("limit: %d", limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidActivityError creates a non-retryable error for a structurally
// invalid candidate activity. Sparse profiles are valid input; activities
// missing required fields are not.
func NewInvalidActivityError(activityID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidActivity,
		Message:   "Candidate activity is structurally invalid",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"activityId": activityID},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable error for malformed job input.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Job input failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileFetchFailedError creates a retryable error for a failed profile
// store lookup.
func NewProfileFetchFailedError(userID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileFetchFailed,
		Message:   "Failed to fetch user profile",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"userId": userID},
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogQueryFailedError creates a retryable error for a failed activity
// catalog query.
func NewCatalogQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogQueryFailed,
		Message:   "Activity catalog query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogTimeoutError creates a retryable catalog timeout error.
func NewCatalogTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogTimeout,
		Message:   "Activity catalog query timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderTimeoutError creates a retryable suggestion provider timeout error.
// The fallback orchestrator absorbs it; it never reaches the ultimate caller.
func NewProviderTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   "Suggestion provider exceeded its timeout",
		Details:   fmt.Sprintf("timeout: %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderFailedError creates a retryable provider transport/HTTP error.
func NewProviderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderFailed,
		Message:   "Suggestion provider call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderMalformedError creates a non-retryable error for a provider
// response that failed schema or semantic validation. The entire response is
// rejected; it is never partially trusted.
func NewProviderMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderMalformed,
		Message:   "Suggestion provider returned a malformed response",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderUnavailableError creates an error for an unconfigured or disabled
// provider.
func NewProviderUnavailableError() *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   "Suggestion provider is not configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalServiceError creates a retryable error for a failing external
// collaborator (zeebe broker, catalog store, provider transport).
func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service %s failed", service),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeoutError creates a retryable timeout error for an external service.
func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("External service %s timed out", service),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Conversion Helpers
// ==========================

// ConvertToBPMNError converts a StandardError to a BPMNError.
func ConvertToBPMNError(err *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(err.Code),
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		Retries:   GetRetryCount(err.Code),
		ErrorVariables: map[string]interface{}{
			"timestamp": err.Timestamp.Format(time.RFC3339),
		},
	}
}

// GetRetryCount returns the retry budget for an error code. Provider failures
// are never retried at the job level: the orchestrator already fell back.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProfileFetchFailed, ErrCodeCatalogQueryFailed:
		return 2
	case ErrCodeCatalogTimeout:
		return 1
	default:
		return 0
	}
}

// GetErrorCategory groups error codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidLimit, ErrCodeInvalidActivity, ErrCodeInvalidInput:
		return "input"
	case ErrCodeProviderTimeout, ErrCodeProviderFailed, ErrCodeProviderMalformed, ErrCodeProviderUnavailable:
		return "provider"
	case ErrCodeProfileFetchFailed, ErrCodeCatalogQueryFailed, ErrCodeCatalogTimeout:
		return "store"
	default:
		return "internal"
	}
}

// AsStandardError extracts a *StandardError if err is one.
func AsStandardError(err error) (*StandardError, bool) {
	se, ok := err.(*StandardError)
	return se, ok
}
