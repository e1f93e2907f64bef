package models

import (
	"time"

	"github.com/google/uuid"
)

// DepositType selects how the minimum upfront payment is derived
type DepositType string

const (
	DepositPercentage DepositType = "percentage"
	DepositFixed      DepositType = "fixed"
)

type Quote struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	QuoteNumber   string      `json:"quote_number" db:"quote_number"`
	CustomerID    uuid.UUID   `json:"customer_id" db:"customer_id"`
	Title         string      `json:"title" db:"title"`
	Description   *string     `json:"description,omitempty" db:"description"`
	Status        QuoteStatus `json:"status" db:"status"`
	Subtotal      float64     `json:"subtotal" db:"subtotal"`
	TaxRate       float64     `json:"tax_rate" db:"tax_rate"`
	TaxAmount     float64     `json:"tax_amount" db:"tax_amount"`
	Total         float64     `json:"total" db:"total"`
	DepositType   DepositType `json:"deposit_type" db:"deposit_type"`
	DepositValue  float64     `json:"deposit_value" db:"deposit_value"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty" db:"expires_at"`
	AccessToken   *string     `json:"-" db:"access_token"`
	InternalNotes *string     `json:"-" db:"internal_notes"`
	SentAt        *time.Time  `json:"sent_at,omitempty" db:"sent_at"`
	ViewedAt      *time.Time  `json:"viewed_at,omitempty" db:"viewed_at"`
	AcceptedAt    *time.Time  `json:"accepted_at,omitempty" db:"accepted_at"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether the quote's expiry has passed at now
func (q *Quote) IsExpired(now time.Time) bool {
	return q.ExpiresAt != nil && !now.Before(*q.ExpiresAt)
}

// CheckAcceptable returns a state error unless the quote can still be paid
func (q *Quote) CheckAcceptable(now time.Time) error {
	if !q.Status.AcceptsPayment() {
		return ErrQuoteNotPayable
	}
	if q.IsExpired(now) {
		return ErrQuoteExpired
	}
	return nil
}

type QuoteLineItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	QuoteID     uuid.UUID `json:"quote_id" db:"quote_id"`
	Description string    `json:"description" db:"description"`
	Details     *string   `json:"details,omitempty" db:"details"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	Unit        *string   `json:"unit,omitempty" db:"unit"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	LineTotal   float64   `json:"line_total" db:"line_total"`
	IsOptional  bool      `json:"is_optional" db:"is_optional"`
	IsSelected  bool      `json:"is_selected" db:"is_selected"`
	IsTaxable   bool      `json:"is_taxable" db:"is_taxable"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
}

// IsIncluded reports whether the item counts toward the quote total
func (li *QuoteLineItem) IsIncluded() bool {
	return !li.IsOptional || li.IsSelected
}

type QuoteAttachment struct {
	ID           uuid.UUID `json:"id" db:"id"`
	QuoteID      uuid.UUID `json:"quote_id" db:"quote_id"`
	FileURL      string    `json:"file_url" db:"file_url"`
	FileName     string    `json:"file_name" db:"file_name"`
	FileType     *string   `json:"file_type,omitempty" db:"file_type"`
	Caption      *string   `json:"caption,omitempty" db:"caption"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	UploadedAt   time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// CustomerFile is a quote attachment listed with the quote it belongs to
type CustomerFile struct {
	QuoteAttachment
	QuoteNumber string `json:"quote_number"`
	QuoteTitle  string `json:"quote_title"`
}

// QuoteDetail is a quote with its children, as returned to customers
type QuoteDetail struct {
	*Quote
	LineItems   []QuoteLineItem   `json:"line_items"`
	Attachments []QuoteAttachment `json:"attachments"`
}
