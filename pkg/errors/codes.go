package errors

import "net/http"

// ErrorCode identifies a failure category. Codes are stable strings grouped by
// subsystem prefix so that logs and metrics can be aggregated per category
// without parsing messages.
type ErrorCode string

// Common codes shared by every layer.
const (
	CodeOK                 ErrorCode = "OK"
	ErrCodeUnknown         ErrorCode = "COMMON_000"
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_005"
	ErrCodeConflict        ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests ErrorCode = "COMMON_007"
	ErrCodeUnavailable     ErrorCode = "COMMON_008"
	ErrCodeTimeout         ErrorCode = "COMMON_009"
	ErrCodeValidation      ErrorCode = "COMMON_010"
	ErrCodeSerialization   ErrorCode = "COMMON_011"
	ErrCodeStoreRead       ErrorCode = "COMMON_012"
	ErrCodeStoreWrite      ErrorCode = "COMMON_013"
	ErrCodeCacheError      ErrorCode = "COMMON_014"
)

// Lease-analysis codes.
const (
	ErrCodeLeaseNotFound    ErrorCode = "LEASE_001"
	ErrCodeCatalogInvalid   ErrorCode = "LEASE_002"
	ErrCodeClauseProcessing ErrorCode = "LEASE_003"
)

// Search codes.
const (
	ErrCodeSearchFailed   ErrorCode = "SEARCH_001"
	ErrCodeIndexingFailed ErrorCode = "SEARCH_002"
	ErrCodeVectorSearch   ErrorCode = "SEARCH_003"
)

// AI provider codes.
const (
	ErrCodeEmbeddingFailed ErrorCode = "AI_001"
	ErrCodeLLMUnavailable  ErrorCode = "AI_002"
	ErrCodeLLMBadResponse  ErrorCode = "AI_003"
)

// String returns the code as a plain string.
func (c ErrorCode) String() string { return string(c) }

// HTTPStatus maps an ErrorCode to the HTTP status the interfaces layer should
// respond with. Unmapped codes default to 500.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeLeaseNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrCodeUnavailable, ErrCodeLLMUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
