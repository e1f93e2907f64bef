package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType represents the event a queued notification announces
type NotificationType string

const (
	NotificationQuoteAccepted   NotificationType = "quote_accepted"
	NotificationPaymentReceived NotificationType = "payment_received"
	NotificationPhotoUploaded   NotificationType = "photo_uploaded"
)

// Notification is a row in the notification queue read by staff tooling
type Notification struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	CustomerID       uuid.UUID        `json:"customer_id" db:"customer_id"`
	NotificationType NotificationType `json:"notification_type" db:"notification_type"`
	ReferenceType    string           `json:"reference_type" db:"reference_type"`
	ReferenceID      uuid.UUID        `json:"reference_id" db:"reference_id"`
	IsAdmin          bool             `json:"is_admin" db:"is_admin"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// Email is a rendered outbound message
type Email struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// CustomerUpload is a reference photo supplied by a customer
type CustomerUpload struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	CustomerID uuid.UUID  `json:"customer_id" db:"customer_id"`
	QuoteID    *uuid.UUID `json:"quote_id,omitempty" db:"quote_id"`
	ObjectKey  string     `json:"-" db:"object_key"`
	FileName   string     `json:"file_name" db:"file_name"`
	FileType   string     `json:"file_type" db:"file_type"`
	FileSize   int64      `json:"file_size" db:"file_size"`
	Caption    *string    `json:"caption,omitempty" db:"caption"`
	UploadedAt time.Time  `json:"uploaded_at" db:"uploaded_at"`
	FileURL    string     `json:"file_url,omitempty" db:"-"`
}

// Dashboard is the aggregate shown on the portal landing page
type Dashboard struct {
	Customer CustomerSummary       `json:"customer"`
	Quotes   []Quote               `json:"quotes"`
	Invoices []Invoice             `json:"invoices"`
	Payments []PaymentHistoryEntry `json:"payments"`
}
