package model

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeCartNotFound       = "CART_NOT_FOUND"
	ErrCodeItemNotFound       = "ITEM_NOT_FOUND"
	ErrCodeUserExists         = "USER_EXISTS"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeDuplicateRequest   = "DUPLICATE_REQUEST"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	// Fields carries per-field detail for validation failures.
	Fields map[string]string
}

func (e *DomainError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Is reports whether target is a DomainError with the same code, so that
// errors carrying a specific message still match the package sentinels.
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

// NewValidationError creates a validation error with field-level detail.
func NewValidationError(fields map[string]string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: "Validation error",
		Fields:  fields,
	}
}

// InsufficientStockFor names the product that could not be served.
func InsufficientStockFor(productName string) *DomainError {
	if productName == "" {
		productName = "a product"
	}
	return NewDomainError(ErrCodeInsufficientStock, fmt.Sprintf("Insufficient stock for %s", productName))
}

// Common domain errors
var (
	ErrValidation         = NewDomainError(ErrCodeValidation, "Validation error")
	ErrUnauthenticated    = NewDomainError(ErrCodeUnauthorised, "Not authorized, token failed")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "Not authorized to access this route")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInsufficientStock  = NewDomainError(ErrCodeInsufficientStock, "Product not available or insufficient stock")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrCartNotFound       = NewDomainError(ErrCodeCartNotFound, "Cart not found")
	ErrItemNotFound       = NewDomainError(ErrCodeItemNotFound, "Item not found in cart")
	ErrUserExists         = NewDomainError(ErrCodeUserExists, "User already exists")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid credentials")
	ErrDuplicateRequest   = NewDomainError(ErrCodeDuplicateRequest, "A request with this idempotency key is already in progress")
)
