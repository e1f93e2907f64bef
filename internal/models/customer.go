package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	Phone       *string    `json:"phone,omitempty" db:"phone"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// FirstName returns the greeting name used in emails
func (c *Customer) FirstName() string {
	if fields := strings.Fields(c.Name); len(fields) > 0 {
		return fields[0]
	}
	return "there"
}

// CustomerSummary is the public projection of a customer
type CustomerSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (c *Customer) Summary() CustomerSummary {
	return CustomerSummary{ID: c.ID, Name: c.Name, Email: c.Email}
}

// ActivityLog records customer-visible actions taken in the portal
type ActivityLog struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	CustomerID   uuid.UUID  `json:"customer_id" db:"customer_id"`
	QuoteID      *uuid.UUID `json:"quote_id,omitempty" db:"quote_id"`
	ActivityType string     `json:"activity_type" db:"activity_type"`
	Description  string     `json:"description" db:"description"`
	IPAddress    string     `json:"ip_address" db:"ip_address"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

const (
	ActivityLogin       = "login"
	ActivityQuoteViewed = "quote_viewed"
	ActivityUpload      = "photo_upload"
)
