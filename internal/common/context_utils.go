package common

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	CustomerIDKey contextKey = "customer_id"
	SessionKey    contextKey = "session_token"
)

// ValidateUUID parses a required UUID field
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, NewValidationError(fmt.Sprintf("%s is required", fieldName))
	}

	if len(idStr) != 36 {
		return uuid.Nil, NewValidationError(fmt.Sprintf("%s must be a valid UUID", fieldName))
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, NewValidationError(fmt.Sprintf("%s must be a valid UUID", fieldName))
	}

	return id, nil
}

// ValidateUUIDList parses a list of UUID strings, rejecting the whole list on the first bad entry
func ValidateUUIDList(ids []string, fieldName string) ([]uuid.UUID, error) {
	if ids == nil {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := ValidateUUID(raw, fieldName)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// NormalizeEmail lowercases and trims an address and checks its shape
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", NewValidationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", NewValidationError("email is invalid")
	}
	return email, nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetCustomerIDFromContext extracts the authenticated customer from the request context
func GetCustomerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	customerID, ok := ctx.Value(CustomerIDKey).(uuid.UUID)
	return customerID, ok
}

// GetSessionTokenFromContext extracts the raw session token from the request context
func GetSessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(SessionKey).(string)
	return token, ok
}

// WithCustomer stores the authenticated customer and session token on ctx
func WithCustomer(ctx context.Context, customerID uuid.UUID, sessionToken string) context.Context {
	ctx = context.WithValue(ctx, CustomerIDKey, customerID)
	return context.WithValue(ctx, SessionKey, sessionToken)
}
