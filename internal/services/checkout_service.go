package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"billingportal/internal/common"
	"billingportal/internal/models"
	"billingportal/internal/pricing"
	"billingportal/internal/repositories"

	"github.com/google/uuid"
)

// Checkout metadata keys shared with the webhook reconciler
const (
	MetaQuoteID     = "quote_id"
	MetaInvoiceID   = "invoice_id"
	MetaCustomerID  = "customer_id"
	MetaPaymentType = "payment_type"

	PaymentKindFull           = "full"
	PaymentKindPartial        = "partial"
	PaymentKindInvoicePayment = "invoice_payment"
)

// MinimumIntentCents is the smallest direct invoice payment accepted
const MinimumIntentCents = 50

// CheckoutRequest starts payment for a quote. Either CustomerID and QuoteID
// (portal session) or AccessToken (emailed link) identify the quote.
type CheckoutRequest struct {
	CustomerID  uuid.UUID
	QuoteID     uuid.UUID
	AccessToken string

	// SelectedOptions replaces the optional item selection when non-nil
	SelectedOptions []uuid.UUID
	PaymentAmount   *float64
}

func (r CheckoutRequest) anonymous() bool {
	return r.AccessToken != ""
}

type CheckoutResult struct {
	URL           string  `json:"url"`
	SessionID     string  `json:"session_id"`
	Amount        float64 `json:"amount"`
	IsFullPayment bool    `json:"is_full_payment"`
}

type InvoicePaymentResult struct {
	ClientSecret string `json:"clientSecret"`
}

// CheckoutSettings holds the knobs CheckoutService needs from configuration
type CheckoutSettings struct {
	SiteURL  string
	Currency string
}

// CheckoutService turns a quote into a hosted payment page
type CheckoutService interface {
	StartCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	CreateInvoicePayment(ctx context.Context, customerID, invoiceID uuid.UUID, amountCents int64) (*InvoicePaymentResult, error)
}

type checkoutService struct {
	quotes    repositories.QuoteRepository
	customers repositories.CustomerRepository
	invoices  repositories.InvoiceRepository
	payments  repositories.PaymentRepository
	processor PaymentProcessor
	settings  CheckoutSettings
	now       func() time.Time
}

func NewCheckoutService(
	quotes repositories.QuoteRepository,
	customers repositories.CustomerRepository,
	invoices repositories.InvoiceRepository,
	payments repositories.PaymentRepository,
	processor PaymentProcessor,
	settings CheckoutSettings,
) CheckoutService {
	return &checkoutService{
		quotes:    quotes,
		customers: customers,
		invoices:  invoices,
		payments:  payments,
		processor: processor,
		settings:  settings,
		now:       time.Now,
	}
}

func (s *checkoutService) resolveQuote(ctx context.Context, req CheckoutRequest) (*models.Quote, error) {
	if req.anonymous() {
		quote, err := s.quotes.GetByAccessToken(ctx, req.AccessToken)
		if err != nil {
			return nil, common.NewUpstreamError("load quote", err)
		}
		if quote == nil {
			return nil, common.NewAuthError("Invalid access token")
		}
		return quote, nil
	}

	quote, err := s.quotes.GetForCustomer(ctx, req.CustomerID, req.QuoteID)
	if err != nil {
		return nil, common.NewUpstreamError("load quote", err)
	}
	if quote == nil {
		return nil, common.NewNotFoundError("Quote")
	}
	return quote, nil
}

func (s *checkoutService) StartCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	quote, err := s.resolveQuote(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := quote.CheckAcceptable(s.now()); err != nil {
		return nil, err
	}

	if req.SelectedOptions != nil {
		if err := s.quotes.ReplaceSelection(ctx, quote.ID, req.SelectedOptions); err != nil {
			return nil, common.NewUpstreamError("save option selection", err)
		}
	}

	items, err := s.quotes.ListLineItems(ctx, quote.ID)
	if err != nil {
		return nil, common.NewUpstreamError("load line items", err)
	}

	breakdown, err := pricing.Compute(toPricingItems(items), depositPolicy(quote), quote.TaxRate, req.PaymentAmount)
	if err != nil {
		return nil, pricingError(err)
	}

	customer, err := s.customers.GetByID(ctx, quote.CustomerID)
	if err != nil {
		return nil, common.NewUpstreamError("load customer", err)
	}

	paymentKind := PaymentKindPartial
	description := "Deposit Payment"
	if breakdown.IsFullPayment {
		paymentKind = PaymentKindFull
		description = "Full Payment"
	}

	successURL, cancelURL := s.returnURLs(quote, req)
	cents := breakdown.AmountMinorUnits()
	sessionReq := CheckoutSessionRequest{
		ProductName: fmt.Sprintf("%s - %s", quote.QuoteNumber, quote.Title),
		Description: description,
		AmountCents: cents,
		Currency:    s.settings.Currency,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
		Metadata: map[string]string{
			MetaQuoteID:     quote.ID.String(),
			MetaCustomerID:  quote.CustomerID.String(),
			MetaPaymentType: paymentKind,
		},
		IdempotencyKey: checkoutIdempotencyKey(quote.ID, cents, items),
	}
	if customer != nil {
		sessionReq.CustomerEmail = customer.Email
	}

	session, err := s.processor.CreateCheckoutSession(ctx, sessionReq)
	if err != nil {
		return nil, common.NewUpstreamError("create checkout session", err)
	}

	log.Printf("Checkout session %s created for quote %s (%d cents, %s)", session.ID, quote.QuoteNumber, cents, paymentKind)
	return &CheckoutResult{
		URL:           session.URL,
		SessionID:     session.ID,
		Amount:        breakdown.PaymentAmount,
		IsFullPayment: breakdown.IsFullPayment,
	}, nil
}

func (s *checkoutService) returnURLs(quote *models.Quote, req CheckoutRequest) (string, string) {
	if req.anonymous() {
		base := fmt.Sprintf("%s/quote.html?token=%s", s.settings.SiteURL, url.QueryEscape(req.AccessToken))
		return base + "&payment=success", base + "&payment=cancelled"
	}
	base := fmt.Sprintf("%s/portal/quote.html?id=%s", s.settings.SiteURL, quote.ID)
	return base + "&payment=success", base + "&payment=cancelled"
}

func (s *checkoutService) CreateInvoicePayment(ctx context.Context, customerID, invoiceID uuid.UUID, amountCents int64) (*InvoicePaymentResult, error) {
	invoice, err := s.invoices.GetForCustomer(ctx, customerID, invoiceID)
	if err != nil {
		return nil, common.NewUpstreamError("load invoice", err)
	}
	if invoice == nil {
		return nil, common.NewNotFoundError("Invoice")
	}
	if !invoice.Status.CanTransitionTo(models.InvoicePaid) {
		return nil, common.NewStateError("invoice is not open for payment")
	}

	maxCents := pricing.ToMinorUnits(invoice.AmountDue)
	if amountCents < MinimumIntentCents {
		return nil, common.NewValidationError("Payment amount must be at least $0.50")
	}
	if amountCents > maxCents {
		return nil, common.NewValidationError(fmt.Sprintf("Payment amount cannot exceed the balance due of $%s", money(invoice.AmountDue)))
	}

	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, common.NewUpstreamError("load customer", err)
	}
	intentReq := PaymentIntentRequest{
		AmountCents: amountCents,
		Currency:    s.settings.Currency,
		Description: fmt.Sprintf("Payment for %s", invoice.InvoiceNumber),
		Metadata: map[string]string{
			MetaInvoiceID:   invoice.ID.String(),
			MetaCustomerID:  customerID.String(),
			MetaPaymentType: PaymentKindInvoicePayment,
		},
	}
	if customer != nil {
		intentReq.ReceiptEmail = customer.Email
	}

	intent, err := s.processor.CreatePaymentIntent(ctx, intentReq)
	if err != nil {
		return nil, common.NewUpstreamError("create payment intent", err)
	}

	intentID := intent.ID
	payment := &models.Payment{
		ID:                    uuid.New(),
		InvoiceID:             invoice.ID,
		CustomerID:            customerID,
		Amount:                pricing.FromMinorUnits(amountCents),
		PaymentType:           models.PaymentTypeProgress,
		Status:                models.PaymentPending,
		StripePaymentIntentID: &intentID,
		PaymentDate:           s.now(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, common.NewUpstreamError("record payment", err)
	}

	return &InvoicePaymentResult{ClientSecret: intent.ClientSecret}, nil
}

func toPricingItems(items []models.QuoteLineItem) []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, pricing.LineItem{
			LineTotal:  item.LineTotal,
			IsOptional: item.IsOptional,
			IsSelected: item.IsSelected,
			IsTaxable:  item.IsTaxable,
		})
	}
	return out
}

func depositPolicy(q *models.Quote) pricing.DepositPolicy {
	return pricing.DepositPolicy{Type: pricing.DepositType(q.DepositType), Value: q.DepositValue}
}

func pricingError(err error) error {
	var minErr *pricing.MinimumPaymentError
	var amountErr *pricing.InvalidAmountError
	switch {
	case errors.As(err, &minErr):
		return common.NewValidationError(minErr.Error())
	case errors.As(err, &amountErr):
		return common.NewValidationError(amountErr.Error())
	default:
		return common.NewInternalError(err)
	}
}

// checkoutIdempotencyKey is stable for the same quote, amount and selection
func checkoutIdempotencyKey(quoteID uuid.UUID, cents int64, items []models.QuoteLineItem) string {
	included := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsIncluded() {
			included = append(included, item.ID.String())
		}
	}
	sort.Strings(included)
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", quoteID, cents, strings.Join(included, ","))))
	return "checkout-" + hex.EncodeToString(sum[:16])
}
