package models

import (
	"time"

	"github.com/google/uuid"
)

type Invoice struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	InvoiceNumber     string        `json:"invoice_number" db:"invoice_number"`
	QuoteID           *uuid.UUID    `json:"quote_id,omitempty" db:"quote_id"`
	CustomerID        uuid.UUID     `json:"customer_id" db:"customer_id"`
	Title             string        `json:"title" db:"title"`
	Status            InvoiceStatus `json:"status" db:"status"`
	Subtotal          float64       `json:"subtotal" db:"subtotal"`
	TaxRate           float64       `json:"tax_rate" db:"tax_rate"`
	TaxAmount         float64       `json:"tax_amount" db:"tax_amount"`
	Total             float64       `json:"total" db:"total"`
	AmountPaid        float64       `json:"amount_paid" db:"amount_paid"`
	AmountDue         float64       `json:"amount_due" db:"amount_due"`
	DueDate           *time.Time    `json:"due_date,omitempty" db:"due_date"`
	SentAt            *time.Time    `json:"sent_at,omitempty" db:"sent_at"`
	CheckoutSessionID *string       `json:"-" db:"checkout_session_id"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

type InvoiceLineItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id" db:"invoice_id"`
	Description string    `json:"description" db:"description"`
	Details     *string   `json:"details,omitempty" db:"details"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	Unit        *string   `json:"unit,omitempty" db:"unit"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	LineTotal   float64   `json:"line_total" db:"line_total"`
	IsTaxable   bool      `json:"is_taxable" db:"is_taxable"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
}

// PaymentType labels why money was collected
type PaymentType string

const (
	PaymentTypeDeposit  PaymentType = "deposit"
	PaymentTypeProgress PaymentType = "progress"
	PaymentTypeFull     PaymentType = "full"
)

type Payment struct {
	ID                    uuid.UUID     `json:"id" db:"id"`
	InvoiceID             uuid.UUID     `json:"invoice_id" db:"invoice_id"`
	CustomerID            uuid.UUID     `json:"customer_id" db:"customer_id"`
	Amount                float64       `json:"amount" db:"amount"`
	PaymentType           PaymentType   `json:"payment_type" db:"payment_type"`
	Status                PaymentStatus `json:"status" db:"status"`
	StripePaymentIntentID *string       `json:"stripe_payment_intent_id,omitempty" db:"stripe_payment_intent_id"`
	PaymentDate           time.Time     `json:"payment_date" db:"payment_date"`
	CreatedAt             time.Time     `json:"created_at" db:"created_at"`
}

// PaymentHistoryEntry is a succeeded payment listed with its invoice
type PaymentHistoryEntry struct {
	Payment
	InvoiceNumber string `json:"invoice_number"`
	InvoiceTitle  string `json:"invoice_title"`
}

// InvoiceDetail is an invoice with its line items
type InvoiceDetail struct {
	*Invoice
	LineItems []InvoiceLineItem `json:"line_items"`
}
