package domain

import (
	"fmt"
	"net/http"
)

// ProviderErrorCategory classifies a provider-side fault for diagnostics.
type ProviderErrorCategory string

// Known provider error categories.
const (
	ProviderErrorAuth           ProviderErrorCategory = "auth"
	ProviderErrorQuota          ProviderErrorCategory = "quota"
	ProviderErrorInvalidRequest ProviderErrorCategory = "invalid_request"
	ProviderErrorServer         ProviderErrorCategory = "server"
	ProviderErrorNetwork        ProviderErrorCategory = "network"
	ProviderErrorUnknown        ProviderErrorCategory = "unknown"
)

// ProviderError carries the detail of a failed embedding or generation call.
// Providers are never retried, so this is everything the caller gets to render.
type ProviderError struct {
	// Provider is the provider name, e.g. "openai".
	Provider string

	// StatusCode is the HTTP status returned, or 0 for transport failures.
	StatusCode int

	// Category classifies the fault.
	Category ProviderErrorCategory

	// Message is the provider's own error text.
	Message string
}

// NewProviderError builds a ProviderError, deriving the category from the status code.
func NewProviderError(provider string, statusCode int, message string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Category:   CategoryForStatus(statusCode),
		Message:    message,
	}
}

// NewNetworkError wraps a transport failure that never reached the provider.
func NewNetworkError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Category: ProviderErrorNetwork,
		Message:  err.Error(),
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s error: %s", e.Provider, e.Category, e.Message)
	}
	return fmt.Sprintf("%s %s error (status %d): %s", e.Provider, e.Category, e.StatusCode, e.Message)
}

// CategoryForStatus maps an HTTP status code onto a category.
func CategoryForStatus(status int) ProviderErrorCategory {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ProviderErrorAuth
	case status == http.StatusTooManyRequests || status == http.StatusPaymentRequired:
		return ProviderErrorQuota
	case status >= 500:
		return ProviderErrorServer
	case status >= 400:
		return ProviderErrorInvalidRequest
	case status == 0:
		return ProviderErrorNetwork
	default:
		return ProviderErrorUnknown
	}
}
