package models

import (
	"testing"
	"time"

	"billingportal/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    QuoteStatus
		to      QuoteStatus
		allowed bool
	}{
		{QuoteDraft, QuoteSent, true},
		{QuoteSent, QuoteViewed, true},
		{QuoteSent, QuoteAccepted, true},
		{QuoteViewed, QuoteAccepted, true},
		{QuoteViewed, QuoteExpired, true},
		{QuoteViewed, QuoteSent, false},
		{QuoteAccepted, QuoteViewed, false},
		{QuoteAccepted, QuoteExpired, false},
		{QuoteExpired, QuoteAccepted, false},
		{QuoteDraft, QuoteAccepted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			next, err := tt.from.TransitionTo(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, next)
				return
			}
			assert.True(t, common.IsKind(err, common.KindState))
			assert.Equal(t, tt.from, next)
		})
	}
}

func TestInvoiceStatus_Transitions(t *testing.T) {
	assert.True(t, InvoicePartial.CanTransitionTo(InvoicePartial))
	assert.True(t, InvoicePartial.CanTransitionTo(InvoicePaid))
	assert.True(t, InvoiceSent.CanTransitionTo(InvoicePaid))
	assert.False(t, InvoicePaid.CanTransitionTo(InvoicePartial))
	assert.True(t, InvoicePaid.CanTransitionTo(InvoicePaid))
	assert.False(t, InvoiceDraft.CanTransitionTo(InvoicePaid))

	_, err := InvoicePaid.TransitionTo(InvoicePartial)
	assert.True(t, common.IsKind(err, common.KindState))
}

func TestPaymentStatus_Transitions(t *testing.T) {
	assert.True(t, PaymentPending.CanTransitionTo(PaymentSucceeded))
	assert.True(t, PaymentPending.CanTransitionTo(PaymentFailed))
	assert.False(t, PaymentSucceeded.CanTransitionTo(PaymentFailed))
	assert.False(t, PaymentFailed.CanTransitionTo(PaymentSucceeded))
}

func TestSettleBalance(t *testing.T) {
	due, status := SettleBalance(200, 50)
	assert.Equal(t, 150.0, due)
	assert.Equal(t, InvoicePartial, status)

	due, status = SettleBalance(200, 200)
	assert.Equal(t, 0.0, due)
	assert.Equal(t, InvoicePaid, status)

	due, status = SettleBalance(200, 199.99)
	assert.Equal(t, 0.01, due)
	assert.Equal(t, InvoicePaid, status)

	due, status = SettleBalance(200, 199.98)
	assert.Equal(t, 0.02, due)
	assert.Equal(t, InvoicePartial, status)

	due, status = SettleBalance(200, 250)
	assert.Equal(t, 0.0, due)
	assert.Equal(t, InvoicePaid, status)
}

func TestQuote_CheckAcceptable(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	q := &Quote{Status: QuoteSent, ExpiresAt: &future}
	assert.NoError(t, q.CheckAcceptable(now))

	q = &Quote{Status: QuoteViewed}
	assert.NoError(t, q.CheckAcceptable(now))

	q = &Quote{Status: QuoteViewed, ExpiresAt: &past}
	assert.ErrorIs(t, q.CheckAcceptable(now), ErrQuoteExpired)

	q = &Quote{Status: QuoteAccepted, ExpiresAt: &future}
	assert.ErrorIs(t, q.CheckAcceptable(now), ErrQuoteNotPayable)

	q = &Quote{Status: QuoteDraft}
	assert.ErrorIs(t, q.CheckAcceptable(now), ErrQuoteNotPayable)
}

func TestQuoteLineItem_IsIncluded(t *testing.T) {
	assert.True(t, (&QuoteLineItem{IsOptional: false}).IsIncluded())
	assert.True(t, (&QuoteLineItem{IsOptional: true, IsSelected: true}).IsIncluded())
	assert.False(t, (&QuoteLineItem{IsOptional: true, IsSelected: false}).IsIncluded())
}
