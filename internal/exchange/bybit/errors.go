package bybit

import (
	"fmt"
	"net/http"

	boterrors "github.com/ducminhle1904/rsi-tier-bot/internal/errors"
)

// BybitError is a non-zero retCode returned by the API
type BybitError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *BybitError) Error() string {
	return fmt.Sprintf("Bybit API error %d: %s", e.Code, e.Message)
}

// Common Bybit error codes
const (
	ErrCodeInvalidAPIKey       = 10003
	ErrCodeInvalidSignature    = 10004
	ErrCodeInvalidTimestamp    = 10005
	ErrCodeRateLimitExceeded   = 10006
	ErrCodeOrderNotFound       = 110001
	ErrCodeInvalidOrderType    = 110004
	ErrCodeInsufficientBalance = 110007
	ErrCodeSymbolNotFound      = 110009
	ErrCodeInvalidQuantity     = 110020
	ErrCodeInvalidPrice        = 110021
	ErrCodeMarketClosed        = 110043
)

// categorize maps a Bybit code onto the bot's error categories.
func categorize(code int) boterrors.ErrorCategory {
	switch code {
	case ErrCodeInvalidAPIKey, ErrCodeInvalidSignature:
		return boterrors.ErrorCategoryCredentials
	case ErrCodeRateLimitExceeded:
		return boterrors.ErrorCategoryRateLimit
	case ErrCodeInvalidTimestamp:
		return boterrors.ErrorCategoryTemporary
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return boterrors.ErrorCategoryExchange
	case ErrCodeInsufficientBalance, ErrCodeInvalidQuantity, ErrCodeInvalidPrice,
		ErrCodeInvalidOrderType, ErrCodeMarketClosed, ErrCodeOrderNotFound:
		return boterrors.ErrorCategoryOrder
	case ErrCodeSymbolNotFound:
		return boterrors.ErrorCategoryConfiguration
	default:
		return boterrors.ErrorCategoryExchange
	}
}

// apiError wraps a retCode into a categorized BotError
func apiError(operation string, code int, message string) error {
	category := categorize(code)
	return boterrors.WrapError(&BybitError{Code: code, Message: message}, category, "bybit", operation).
		WithContext("ret_code", code)
}
