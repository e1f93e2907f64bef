package models

import (
	"fmt"
	"math"

	"billingportal/internal/common"
)

// BalanceTolerance absorbs floating-point residue when comparing money amounts
const BalanceTolerance = 0.01

type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteViewed   QuoteStatus = "viewed"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteExpired  QuoteStatus = "expired"
)

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteDraft:    {QuoteSent},
	QuoteSent:     {QuoteViewed, QuoteAccepted, QuoteExpired},
	QuoteViewed:   {QuoteAccepted, QuoteExpired},
	QuoteAccepted: {},
	QuoteExpired:  {},
}

var (
	ErrQuoteNotPayable = common.NewStateError("quote is no longer available for payment")
	ErrQuoteExpired    = common.NewStateError("quote has expired")
)

// Valid reports whether s is a known quote status
func (s QuoteStatus) Valid() bool {
	_, ok := quoteTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo validates a move and returns the new status
func (s QuoteStatus) TransitionTo(next QuoteStatus) (QuoteStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, common.NewStateError(fmt.Sprintf("quote cannot move from %s to %s", s, next))
	}
	return next, nil
}

// AcceptsPayment reports whether checkout and option selection are open
func (s QuoteStatus) AcceptsPayment() bool {
	return s == QuoteSent || s == QuoteViewed
}

// IsCustomerVisible reports whether the customer may see a quote in this status
func (s QuoteStatus) IsCustomerVisible() bool {
	return s != QuoteDraft
}

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:   {InvoiceSent},
	InvoiceSent:    {InvoicePartial, InvoicePaid},
	InvoicePartial: {InvoicePartial, InvoicePaid},
	InvoicePaid:    {InvoicePaid},
}

func (s InvoiceStatus) Valid() bool {
	_, ok := invoiceTransitions[s]
	return ok
}

func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s InvoiceStatus) TransitionTo(next InvoiceStatus) (InvoiceStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, common.NewStateError(fmt.Sprintf("invoice cannot move from %s to %s", s, next))
	}
	return next, nil
}

// SettleBalance derives the outstanding amount and status for an invoice
// after amountPaid has been collected against total. The amount due never
// goes negative; the status is paid once the remainder is within tolerance.
func SettleBalance(total, amountPaid float64) (float64, InvoiceStatus) {
	remaining := roundCents(total - amountPaid)
	due := math.Max(0, remaining)
	if remaining <= BalanceTolerance {
		return due, InvoicePaid
	}
	return due, InvoicePartial
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentSucceeded, PaymentFailed},
	PaymentSucceeded: {},
	PaymentFailed:    {},
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
