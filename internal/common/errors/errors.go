// Package errors provides standardized error handling for the intake workflow.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Option resolution errors
	ErrCodeLookupNotFound    ErrorCode = "LOOKUP_NOT_FOUND"
	ErrCodeFetchFailed       ErrorCode = "FETCH_FAILED"
	ErrCodeNoResultsAdvisory ErrorCode = "NO_RESULTS_ADVISORY"
	ErrCodeDetailFetchFailed ErrorCode = "DETAIL_FETCH_FAILED"
	ErrCodeOptionsNotLoaded  ErrorCode = "OPTIONS_NOT_LOADED"
	ErrCodeUnknownCategory   ErrorCode = "UNKNOWN_CATEGORY"

	// Submission errors
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeMissingSections    ErrorCode = "MISSING_SECTIONS"
	ErrCodeMissingFields      ErrorCode = "MISSING_FIELDS"
	ErrCodeMissingIdentifiers ErrorCode = "MISSING_IDENTIFIERS"
	ErrCodeSubmissionFailed   ErrorCode = "SUBMISSION_FAILED"
	ErrCodeSubmissionInFlight ErrorCode = "SUBMISSION_IN_FLIGHT"

	// Infrastructure errors
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeIndexingFailed           ErrorCode = "INDEXING_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
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
// 2. Error Constructors
// ==========================

// NewLookupNotFoundError records a label that could not be resolved to an
// identifier. Non-fatal: callers surface it as a missing-field condition.
func NewLookupNotFoundError(category, label, normalized string, available []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLookupNotFound,
		Message:   fmt.Sprintf("No identifier found for label in category '%s'", category),
		Details:   fmt.Sprintf("label: %q, normalized: %q", label, normalized),
		Retryable: false,
		Metadata: map[string]interface{}{
			"category":        category,
			"label":           label,
			"normalized":      normalized,
			"availableLabels": available,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchFailedError creates a retryable catalog fetch error.
func NewFetchFailedError(category string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchFailed,
		Message:   fmt.Sprintf("Failed to load %s. Please try again.", category),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoResultsAdvisory creates an advisory for a fetch that returned zero
// usable options. Advisory only, not an error condition.
func NewNoResultsAdvisory(downstream, upstream string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoResultsAdvisory,
		Message:   fmt.Sprintf("No %s found for the selected %s; choose another %s.", downstream, upstream, upstream),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDetailFetchFailedError creates a retryable application detail fetch error.
func NewDetailFetchFailedError(applicationNo string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDetailFetchFailed,
		Message:   "Failed to fetch application details",
		Details:   fmt.Sprintf("applicationNo: %s, error: %s", applicationNo, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingSectionsError creates a non-retryable validation error listing
// every required section still absent.
func NewMissingSectionsError(sections []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingSections,
		Message:   fmt.Sprintf("Missing required form sections: %s", strings.Join(sections, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"missingSections": sections},
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingFieldsError creates a non-retryable validation error listing
// every required field absent or empty in the collected record.
func NewMissingFieldsError(fields []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingFields,
		Message:   fmt.Sprintf("Missing required fields: %s", strings.Join(fields, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"missingFields": fields},
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingIdentifiersError blocks a Damaged-flow submission whose labels
// could not all be resolved back to backend identifiers.
func NewMissingIdentifiersError(missingIDs []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingIdentifiers,
		Message:   fmt.Sprintf("Could not resolve identifiers: %s", strings.Join(missingIDs, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"missingIds": missingIDs},
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionFailedError wraps a rejected or failed remote submission. The
// remote message is used when present, otherwise a generic fallback.
func NewSubmissionFailedError(remoteMessage string, err error) *StandardError {
	msg := remoteMessage
	if msg == "" {
		msg = "Submission failed. Please try again."
	}
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeSubmissionFailed,
		Message:   msg,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionInFlightError reports a duplicate submit while one is outstanding.
func NewSubmissionInFlightError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionInFlight,
		Message:   "A submission is already in progress",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a search indexing error. Indexing is
// best-effort; callers log and continue.
func NewIndexingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexingFailed,
		Message:   "Search indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeFetchFailed,
		ErrCodeDetailFetchFailed,
		ErrCodeSubmissionFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeCacheUnavailable,
		ErrCodeIndexingFailed:
		return 1

	default:
		return 0 // Validation and lookup conditions: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsBlocking reports whether the condition blocks forward progress. Only
// validation and submission failures do; everything else is component-local.
func IsBlocking(code ErrorCode) bool {
	switch code {
	case ErrCodeValidationFailed, ErrCodeMissingSections, ErrCodeMissingFields,
		ErrCodeMissingIdentifiers, ErrCodeSubmissionFailed:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "LOOKUP") || strings.Contains(codeStr, "FETCH") || strings.Contains(codeStr, "RESULTS") || strings.Contains(codeStr, "CATEGORY") || strings.Contains(codeStr, "OPTIONS"):
		return "CATALOG"
	case strings.Contains(codeStr, "MISSING") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SUBMISSION"):
		return "SUBMISSION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "CACHE") || strings.Contains(codeStr, "INDEXING"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
