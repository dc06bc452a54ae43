package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so wrapped
// copies with a more specific message still match the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound          = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrUnauthorized      = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrAssetTooLarge     = NewDomainError("ASSET_TOO_LARGE", "Asset exceeds the allowed size")
	ErrUnsupportedAsset  = NewDomainError("UNSUPPORTED_ASSET", "Asset type is not supported")
	ErrExportFailed      = NewDomainError("EXPORT_FAILED", "Export failed")
	ErrPersistenceFailed = NewDomainError("PERSISTENCE_FAILED", "Saving the document failed")
)
