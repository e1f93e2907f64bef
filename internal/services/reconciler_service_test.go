package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"billingportal/internal/models"
	"billingportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReconcilerServiceTestSuite struct {
	suite.Suite
	quotes        *MockQuoteRepository
	customers     *MockCustomerRepository
	billing       *MockBillingRepository
	notifications *MockNotificationService
	service       *reconcilerService

	now      time.Time
	customer *models.Customer
	quote    *models.Quote
	items    []models.QuoteLineItem
}

func (suite *ReconcilerServiceTestSuite) SetupTest() {
	suite.quotes = &MockQuoteRepository{}
	suite.customers = &MockCustomerRepository{}
	suite.billing = &MockBillingRepository{}
	suite.notifications = &MockNotificationService{}
	suite.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	suite.service = NewReconcilerService(suite.quotes, suite.customers, suite.billing, suite.notifications).(*reconcilerService)
	suite.service.now = func() time.Time { return suite.now }

	suite.customer = &models.Customer{ID: uuid.New(), Name: "Jane Doe", Email: "jane@example.com"}
	suite.quote = &models.Quote{
		ID:           uuid.New(),
		QuoteNumber:  "Q-1001",
		CustomerID:   suite.customer.ID,
		Title:        "Deck repair",
		Status:       models.QuoteViewed,
		TaxRate:      0.08,
		DepositType:  models.DepositPercentage,
		DepositValue: 20,
	}
	suite.items = []models.QuoteLineItem{
		{ID: uuid.New(), LineTotal: 100, IsTaxable: true},
		{ID: uuid.New(), LineTotal: 50, IsOptional: true, IsSelected: true, IsTaxable: true},
		{ID: uuid.New(), LineTotal: 25, IsOptional: true},
	}
}

func (suite *ReconcilerServiceTestSuite) TearDownTest() {
	suite.quotes.AssertExpectations(suite.T())
	suite.customers.AssertExpectations(suite.T())
	suite.billing.AssertExpectations(suite.T())
	suite.notifications.AssertExpectations(suite.T())
}

func TestReconcilerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerServiceTestSuite))
}

func (suite *ReconcilerServiceTestSuite) checkoutEvent(paymentType string) *WebhookEvent {
	return &WebhookEvent{
		ID:   "evt_1",
		Type: "checkout.session.completed",
		Kind: EventCheckoutCompleted,
		Checkout: &CheckoutCompletion{
			SessionID:       "cs_1",
			PaymentIntentID: "pi_1",
			AmountTotal:     3240,
			Metadata: map[string]string{
				MetaQuoteID:     suite.quote.ID.String(),
				MetaCustomerID:  suite.customer.ID.String(),
				MetaPaymentType: paymentType,
			},
		},
	}
}

func (suite *ReconcilerServiceTestSuite) TestCheckoutCompleted_AcceptsQuoteWithRecomputedTotals() {
	ctx := context.Background()
	suite.quotes.On("GetByID", ctx, suite.quote.ID).Return(suite.quote, nil)
	suite.quotes.On("ListLineItems", ctx, suite.quote.ID).Return(suite.items, nil)

	invoice := &models.Invoice{ID: uuid.New(), InvoiceNumber: "INV-2026-0001", CustomerID: suite.customer.ID, Total: 162, AmountPaid: 32.4, AmountDue: 129.6}
	payment := &models.Payment{ID: uuid.New(), Amount: 32.4}
	suite.billing.On("AcceptQuote", ctx, mock.MatchedBy(func(p repositories.AcceptQuoteParams) bool {
		return p.Quote == suite.quote &&
			p.CheckoutSessionID == "cs_1" &&
			*p.PaymentIntentID == "pi_1" &&
			p.AmountPaid == 32.4 &&
			p.PaymentType == models.PaymentTypeDeposit &&
			p.Subtotal == 150 &&
			p.TaxAmount == 12 &&
			p.Total == 162 &&
			p.AcceptedAt.Equal(suite.now) &&
			p.DueDate.Equal(suite.now.Add(InvoiceDueAfter))
	})).Return(&repositories.AcceptQuoteResult{Invoice: invoice, Payment: payment}, nil)
	suite.customers.On("GetByID", ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.notifications.On("SendQuoteAccepted", ctx, suite.customer, suite.quote, invoice, payment).Return()

	suite.NoError(suite.service.HandleEvent(ctx, suite.checkoutEvent(PaymentKindPartial)))
}

func (suite *ReconcilerServiceTestSuite) TestCheckoutCompleted_FullPaymentType() {
	ctx := context.Background()
	suite.quotes.On("GetByID", ctx, suite.quote.ID).Return(suite.quote, nil)
	suite.quotes.On("ListLineItems", ctx, suite.quote.ID).Return(suite.items, nil)
	suite.billing.On("AcceptQuote", ctx, mock.MatchedBy(func(p repositories.AcceptQuoteParams) bool {
		return p.PaymentType == models.PaymentTypeFull
	})).Return(nil, repositories.ErrAlreadyApplied)

	suite.NoError(suite.service.HandleEvent(ctx, suite.checkoutEvent(PaymentKindFull)))
}

func (suite *ReconcilerServiceTestSuite) TestCheckoutCompleted_DuplicateDeliveryIsNoop() {
	ctx := context.Background()
	suite.quotes.On("GetByID", ctx, suite.quote.ID).Return(suite.quote, nil)
	suite.quotes.On("ListLineItems", ctx, suite.quote.ID).Return(suite.items, nil)
	suite.billing.On("AcceptQuote", ctx, mock.Anything).Return(nil, repositories.ErrAlreadyApplied)

	suite.NoError(suite.service.HandleEvent(ctx, suite.checkoutEvent(PaymentKindPartial)))
	suite.notifications.AssertNotCalled(suite.T(), "SendQuoteAccepted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconcilerServiceTestSuite) TestCheckoutCompleted_AlreadyAcceptedQuoteIsNoop() {
	ctx := context.Background()
	suite.quote.Status = models.QuoteAccepted
	suite.quotes.On("GetByID", ctx, suite.quote.ID).Return(suite.quote, nil)

	suite.NoError(suite.service.HandleEvent(ctx, suite.checkoutEvent(PaymentKindPartial)))
	suite.billing.AssertNotCalled(suite.T(), "AcceptQuote", mock.Anything, mock.Anything)
}

func (suite *ReconcilerServiceTestSuite) TestCheckoutCompleted_QuoteRaceIsNoop() {
	ctx := context.Background()
	suite.quotes.On("GetByID", ctx, suite.quote.ID).Return(suite.quote, nil)
	suite.quotes.On("ListLineItems", ctx, suite.quote.ID).Return(suite.items, nil)
	suite.billing.On("AcceptQuote", ctx, mock.Anything).Return(nil, repositories.ErrQuoteNotAcceptable)

	suite.NoError(suite.service.HandleEvent(ctx, suite.checkoutEvent(PaymentKindPartial)))
}

func (suite *ReconcilerServiceTestSuite) TestCheckoutCompleted_MissingMetadataOrQuote() {
	ctx := context.Background()
	event := suite.checkoutEvent(PaymentKindPartial)
	delete(event.Checkout.Metadata, MetaQuoteID)
	suite.NoError(suite.service.HandleEvent(ctx, event))

	suite.quotes.On("GetByID", ctx, suite.quote.ID).Return(nil, nil)
	suite.NoError(suite.service.HandleEvent(ctx, suite.checkoutEvent(PaymentKindPartial)))
}

func (suite *ReconcilerServiceTestSuite) TestCheckoutCompleted_StoreFailureIsRetried() {
	ctx := context.Background()
	suite.quotes.On("GetByID", ctx, suite.quote.ID).Return(suite.quote, nil)
	suite.quotes.On("ListLineItems", ctx, suite.quote.ID).Return(suite.items, nil)
	suite.billing.On("AcceptQuote", ctx, mock.Anything).Return(nil, errors.New("connection reset"))

	suite.Error(suite.service.HandleEvent(ctx, suite.checkoutEvent(PaymentKindPartial)))
}

func intentEvent(kind WebhookEventKind, invoiceID string, amount int64) *WebhookEvent {
	meta := map[string]string{}
	if invoiceID != "" {
		meta[MetaInvoiceID] = invoiceID
	}
	return &WebhookEvent{
		ID:     "evt_2",
		Kind:   kind,
		Intent: &IntentOutcome{PaymentIntentID: "pi_9", Amount: amount, Metadata: meta, FailureMessage: "card declined"},
	}
}

func (suite *ReconcilerServiceTestSuite) TestPaymentSucceeded_SettlesInvoice() {
	ctx := context.Background()
	invoice := &models.Invoice{ID: uuid.New(), CustomerID: suite.customer.ID, Total: 200, AmountPaid: 50, AmountDue: 150, Status: models.InvoicePartial}
	payment := &models.Payment{ID: uuid.New(), Amount: 50}
	suite.billing.On("SettlePayment", ctx, "pi_9", 50.0, suite.now).
		Return(&repositories.SettlementResult{Invoice: invoice, Payment: payment}, nil)
	suite.customers.On("GetByID", ctx, suite.customer.ID).Return(suite.customer, nil)
	suite.notifications.On("SendPaymentReceived", ctx, suite.customer, invoice, payment).Return()

	suite.NoError(suite.service.HandleEvent(ctx, intentEvent(EventPaymentSucceeded, invoice.ID.String(), 5000)))
}

func (suite *ReconcilerServiceTestSuite) TestPaymentSucceeded_ReplayIsNoop() {
	ctx := context.Background()
	suite.billing.On("SettlePayment", ctx, "pi_9", 150.0, suite.now).Return(nil, repositories.ErrAlreadyApplied)

	suite.NoError(suite.service.HandleEvent(ctx, intentEvent(EventPaymentSucceeded, uuid.NewString(), 15000)))
}

func (suite *ReconcilerServiceTestSuite) TestPaymentSucceeded_WithoutInvoiceMetadataIgnored() {
	suite.NoError(suite.service.HandleEvent(context.Background(), intentEvent(EventPaymentSucceeded, "", 5000)))
	suite.billing.AssertNotCalled(suite.T(), "SettlePayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconcilerServiceTestSuite) TestPaymentFailed() {
	ctx := context.Background()
	suite.billing.On("FailPayment", ctx, "pi_9").Return(true, nil).Once()
	suite.NoError(suite.service.HandleEvent(ctx, intentEvent(EventPaymentFailed, "", 5000)))

	suite.billing.On("FailPayment", ctx, "pi_9").Return(false, errors.New("db down")).Once()
	suite.Error(suite.service.HandleEvent(ctx, intentEvent(EventPaymentFailed, "", 5000)))
}

func (suite *ReconcilerServiceTestSuite) TestIgnoredEvent() {
	suite.NoError(suite.service.HandleEvent(context.Background(), &WebhookEvent{ID: "evt_3", Type: "customer.created", Kind: EventIgnored}))
}
