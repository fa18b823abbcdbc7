package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors across domains.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeBusiness   ErrorType = "business"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeExternal   ErrorType = "external"
)

// AppError is a structured application error carrying a stable code that
// callers branch on and an HTTP status for the API layer.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches two AppErrors by code, so the predefined errors below work with
// errors.Is even after WithCause/WithDetails copies.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// WithCause returns a copy of the error with an underlying cause attached.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithDetails returns a copy of the error with structured details attached.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// Constructors

func NewValidationError(code, message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Code: code, Message: message, StatusCode: 400}
}

func NewBusinessError(code, message string) *AppError {
	return &AppError{Type: ErrorTypeBusiness, Code: code, Message: message, StatusCode: 422}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: 404,
	}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Code: code, Message: message, StatusCode: 409}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

func NewExternalError(service, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       "EXTERNAL_SERVICE_ERROR",
		Message:    fmt.Sprintf("%s: %s", service, message),
		Retryable:  true,
		StatusCode: 502,
		Details:    map[string]interface{}{"service": service},
	}
}

// Auction error catalog. Every rejection in the bidding and settlement flow
// maps to exactly one of these; nothing is silently clamped or ignored.
var (
	ErrMissingItemID   = NewValidationError("INVALID_ARGUMENT", "item ID is required")
	ErrMissingBidderID = NewValidationError("INVALID_ARGUMENT", "bidder ID is required")

	ErrItemNotFound    = &AppError{Type: ErrorTypeNotFound, Code: "ITEM_NOT_FOUND", Message: "item not found in catalog", StatusCode: 404}
	ErrListingNotFound = &AppError{Type: ErrorTypeNotFound, Code: "LISTING_NOT_FOUND", Message: "no listing exists for item", StatusCode: 404}
	ErrBidderNotFound  = &AppError{Type: ErrorTypeNotFound, Code: "BIDDER_NOT_FOUND", Message: "bidder is not a known customer", StatusCode: 404}

	ErrListingCancelled = NewBusinessError("LISTING_CANCELLED", "listing has been withdrawn from auction")
	ErrBidTooLow        = NewBusinessError("BID_TOO_LOW", "bid must exceed the current floor by the minimum increment")
	ErrOutOfSeason      = NewBusinessError("OUT_OF_SEASON", "current time is outside the auction season window")
	ErrListingExpired   = NewBusinessError("LISTING_EXPIRED", "listing no longer accepts bids")
	ErrBidAboveCeiling  = NewBusinessError("BID_AT_OR_ABOVE_CEILING", "bid must stay below the catalog list price")
	ErrAlreadyTerminal  = NewBusinessError("ALREADY_TERMINAL", "listing is no longer active")

	ErrListingExists = NewConflictError("LISTING_EXISTS", "item already has a listing")

	ErrItemNotCommercial = NewBusinessError("ITEM_NOT_COMMERCIAL", "item is not commercially active")
	ErrInvalidExpiry     = NewValidationError("INVALID_EXPIRY", "expiry falls outside the auction season window")
	ErrInvalidPrice      = NewValidationError("INVALID_INITIAL_PRICE", "initial price violates the floor or ceiling rule")
)

// Wrap wraps err with a message, preserving the chain for errors.Is/As.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks whether err carries the given ErrorType.
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// Code extracts the stable error code, or "" for non-application errors.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetStatusCode extracts the HTTP status, defaulting to 500.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
