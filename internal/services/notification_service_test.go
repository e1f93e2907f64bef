package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"billingportal/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestNotifications(dispatcher EmailDispatcher, admin string) NotificationService {
	return NewNotificationService(dispatcher, admin, time.Hour)
}

func TestSendMagicLink_EscapesAndLinks(t *testing.T) {
	ctx := context.Background()
	dispatcher := &MockEmailDispatcher{}
	customer := &models.Customer{ID: uuid.New(), Name: "<b>Jane</b> Doe", Email: "jane@example.com"}

	var sent models.Email
	dispatcher.On("Dispatch", ctx, mock.AnythingOfType("models.Email")).Return("id_1", nil).
		Run(func(args mock.Arguments) { sent = args.Get(1).(models.Email) })

	err := newTestNotifications(dispatcher, "").SendMagicLink(ctx, customer, "https://portal.example.com/portal/verify.html?token=abc")
	require.NoError(t, err)

	assert.Equal(t, []string{"jane@example.com"}, sent.To)
	assert.Equal(t, "Your sign-in link", sent.Subject)
	assert.Contains(t, sent.HTML, `href="https://portal.example.com/portal/verify.html?token=abc"`)
	assert.Contains(t, sent.HTML, "&lt;b&gt;Jane&lt;/b&gt;")
	assert.Contains(t, sent.HTML, "1h0m0s")
}

func TestSendQuoteAccepted_CustomerAndAdmin(t *testing.T) {
	ctx := context.Background()
	dispatcher := &MockEmailDispatcher{}
	customer := &models.Customer{Name: "Jane Doe", Email: "jane@example.com"}
	quote := &models.Quote{QuoteNumber: "Q-1001"}
	invoice := &models.Invoice{InvoiceNumber: "INV-2026-0001", Title: "Deck", Total: 162, AmountPaid: 32.4, AmountDue: 129.6}
	payment := &models.Payment{Amount: 32.4}

	dispatcher.On("Dispatch", ctx, mock.MatchedBy(func(e models.Email) bool {
		return e.To[0] == "jane@example.com"
	})).Return("id_c", nil).Once()
	dispatcher.On("Dispatch", ctx, mock.MatchedBy(func(e models.Email) bool {
		return e.To[0] == "owner@example.com"
	})).Return("", errors.New("admin mailbox down")).Once()

	newTestNotifications(dispatcher, "owner@example.com").SendQuoteAccepted(ctx, customer, quote, invoice, payment)
	dispatcher.AssertExpectations(t)
}

func TestSendPaymentReceived_NoAdminConfigured(t *testing.T) {
	ctx := context.Background()
	dispatcher := &MockEmailDispatcher{}
	customer := &models.Customer{Name: "Jane Doe", Email: "jane@example.com"}
	invoice := &models.Invoice{InvoiceNumber: "INV-2026-0001", Total: 200, AmountPaid: 200}

	var sent models.Email
	dispatcher.On("Dispatch", ctx, mock.Anything).Return("id", nil).Once().
		Run(func(args mock.Arguments) { sent = args.Get(1).(models.Email) })

	newTestNotifications(dispatcher, "").SendPaymentReceived(ctx, customer, invoice, &models.Payment{Amount: 150})
	dispatcher.AssertExpectations(t)
	assert.Contains(t, sent.HTML, "$150.00")
	assert.Contains(t, sent.HTML, "Balance due: $0.00")
}

func TestLogMailerReturnsID(t *testing.T) {
	mailer := NewMailer("", "portal@example.com")
	id, err := mailer.Send(context.Background(), models.Email{To: []string{"a@example.com"}, Subject: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
