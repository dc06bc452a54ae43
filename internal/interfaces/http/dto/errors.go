package dto

import "net/http"

// Error code constants organized by category
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
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeUnknownField is used when a field path does not address any document field
	ErrCodeUnknownField = "ERR_UNKNOWN_FIELD"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when the owner of a request cannot be identified
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the bearer token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the bearer token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Asset error codes
const (
	// ErrCodeAssetTooLarge is used when an uploaded logo exceeds the size limit
	ErrCodeAssetTooLarge = "ERR_ASSET_TOO_LARGE"
	// ErrCodeUnsupportedAsset is used when an upload is not a supported image
	ErrCodeUnsupportedAsset = "ERR_UNSUPPORTED_ASSET"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeUnsupportedFormat is used when an export format is not offered
	ErrCodeUnsupportedFormat = "ERR_UNSUPPORTED_FORMAT"
)

// Downstream error codes
const (
	// ErrCodeExportFailed is used when the export backend fails
	ErrCodeExportFailed = "ERR_EXPORT_FAILED"
	// ErrCodePersistenceFailed is used when the snapshot store fails
	ErrCodePersistenceFailed = "ERR_PERSISTENCE_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnknownField: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound: http.StatusNotFound,

	// Asset errors
	ErrCodeAssetTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeUnsupportedAsset: http.StatusUnsupportedMediaType,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeInvalidJSON:       http.StatusBadRequest,
	ErrCodeUnsupportedFormat: http.StatusBadRequest,

	// Downstream errors
	ErrCodeExportFailed:      http.StatusBadGateway,
	ErrCodePersistenceFailed: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":          ErrCodeNotFound,
	"INVALID_INPUT":      ErrCodeInvalidInput,
	"UNAUTHORIZED":       ErrCodeUnauthorized,
	"UNKNOWN_FIELD":      ErrCodeUnknownField,
	"ASSET_TOO_LARGE":    ErrCodeAssetTooLarge,
	"UNSUPPORTED_ASSET":  ErrCodeUnsupportedAsset,
	"EXPORT_FAILED":      ErrCodeExportFailed,
	"PERSISTENCE_FAILED": ErrCodePersistenceFailed,
	"UNSUPPORTED_FORMAT": ErrCodeUnsupportedFormat,
	"INTERNAL_ERROR":     ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
