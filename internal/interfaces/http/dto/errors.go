package dto

import "net/http"

// Error codes returned in the error envelope.
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for request validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when the body cannot be decoded
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
)

// Pricing error codes
const (
	// ErrCodeMasterBookMissing means no active master book exists
	ErrCodeMasterBookMissing = "ERR_MASTER_BOOK_MISSING"
	// ErrCodeMasterBookExists means a second master book was requested
	ErrCodeMasterBookExists = "ERR_MASTER_BOOK_EXISTS"
	// ErrCodeContextTaken means another active book already owns the context
	ErrCodeContextTaken = "ERR_CONTEXT_TAKEN"
	// ErrCodeUndefinedRatio means a relative adjustment had no base price
	ErrCodeUndefinedRatio = "ERR_UNDEFINED_RATIO"
	// ErrCodeNoPriceConfigured means no book in the lineage prices the product
	ErrCodeNoPriceConfigured = "ERR_NO_PRICE_CONFIGURED"
	ErrCodeInvalidContext    = "ERR_INVALID_CONTEXT"
	ErrCodeNegativePrice     = "ERR_NEGATIVE_PRICE"
	ErrCodeInvalidStrategy   = "ERR_INVALID_STRATEGY"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	// Pricing errors
	ErrCodeMasterBookMissing: http.StatusUnprocessableEntity,
	ErrCodeMasterBookExists:  http.StatusConflict,
	ErrCodeContextTaken:      http.StatusConflict,
	ErrCodeUndefinedRatio:    http.StatusUnprocessableEntity,
	ErrCodeNoPriceConfigured: http.StatusNotFound,
	ErrCodeInvalidContext:    http.StatusBadRequest,
	ErrCodeNegativePrice:     http.StatusBadRequest,
	ErrCodeInvalidStrategy:   http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"MASTER_BOOK_MISSING":  ErrCodeMasterBookMissing,
	"MASTER_BOOK_EXISTS":   ErrCodeMasterBookExists,
	"CONTEXT_TAKEN":        ErrCodeContextTaken,
	"UNDEFINED_RATIO":      ErrCodeUndefinedRatio,
	"NO_PRICE_CONFIGURED":  ErrCodeNoPriceConfigured,
	"INVALID_CONTEXT":      ErrCodeInvalidContext,
	"NEGATIVE_PRICE":       ErrCodeNegativePrice,
	"INVALID_STRATEGY":     ErrCodeInvalidStrategy,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
