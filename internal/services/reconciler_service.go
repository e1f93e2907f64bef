package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"billingportal/internal/models"
	"billingportal/internal/pricing"
	"billingportal/internal/repositories"

	"github.com/google/uuid"
)

// InvoiceDueAfter is the payment term on invoices created from accepted quotes
const InvoiceDueAfter = 30 * 24 * time.Hour

// ReconcilerService applies verified payment processor events to billing state.
// Every branch is safe to replay; a returned error asks the processor to retry.
type ReconcilerService interface {
	HandleEvent(ctx context.Context, event *WebhookEvent) error
}

type reconcilerService struct {
	quotes        repositories.QuoteRepository
	customers     repositories.CustomerRepository
	billing       repositories.BillingRepository
	notifications NotificationService
	now           func() time.Time
}

func NewReconcilerService(
	quotes repositories.QuoteRepository,
	customers repositories.CustomerRepository,
	billing repositories.BillingRepository,
	notifications NotificationService,
) ReconcilerService {
	return &reconcilerService{
		quotes:        quotes,
		customers:     customers,
		billing:       billing,
		notifications: notifications,
		now:           time.Now,
	}
}

func (s *reconcilerService) HandleEvent(ctx context.Context, event *WebhookEvent) error {
	switch event.Kind {
	case EventCheckoutCompleted:
		return s.checkoutCompleted(ctx, event.ID, event.Checkout)
	case EventPaymentSucceeded:
		return s.paymentSucceeded(ctx, event.ID, event.Intent)
	case EventPaymentFailed:
		return s.paymentFailed(ctx, event.ID, event.Intent)
	default:
		log.Printf("[WEBHOOK] Ignoring event %s of type %s", event.ID, event.Type)
		return nil
	}
}

func (s *reconcilerService) checkoutCompleted(ctx context.Context, eventID string, c *CheckoutCompletion) error {
	if c == nil {
		return nil
	}
	quoteID, err := uuid.Parse(c.Metadata[MetaQuoteID])
	if err != nil {
		log.Printf("[WEBHOOK] Checkout %s (event %s) has no usable quote_id metadata", c.SessionID, eventID)
		return nil
	}

	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("load quote %s: %w", quoteID, err)
	}
	if quote == nil {
		log.Printf("[WEBHOOK] Quote %s for checkout %s not found", quoteID, c.SessionID)
		return nil
	}
	if !quote.Status.CanTransitionTo(models.QuoteAccepted) {
		log.Printf("[WEBHOOK] Quote %s is %s, checkout %s already processed", quote.QuoteNumber, quote.Status, c.SessionID)
		return nil
	}

	items, err := s.quotes.ListLineItems(ctx, quote.ID)
	if err != nil {
		return fmt.Errorf("load line items for quote %s: %w", quote.ID, err)
	}
	totals, err := pricing.Compute(toPricingItems(items), depositPolicy(quote), quote.TaxRate, nil)
	if err != nil {
		return fmt.Errorf("recompute quote %s: %w", quote.ID, err)
	}

	paymentType := models.PaymentTypeDeposit
	if c.Metadata[MetaPaymentType] == PaymentKindFull {
		paymentType = models.PaymentTypeFull
	}
	var intentID *string
	if c.PaymentIntentID != "" {
		id := c.PaymentIntentID
		intentID = &id
	}

	now := s.now()
	result, err := s.billing.AcceptQuote(ctx, repositories.AcceptQuoteParams{
		Quote:             quote,
		CheckoutSessionID: c.SessionID,
		PaymentIntentID:   intentID,
		AmountPaid:        pricing.FromMinorUnits(c.AmountTotal),
		PaymentType:       paymentType,
		Subtotal:          totals.Subtotal,
		TaxAmount:         totals.Tax,
		Total:             totals.Total,
		AcceptedAt:        now,
		DueDate:           now.Add(InvoiceDueAfter),
	})
	switch {
	case errors.Is(err, repositories.ErrAlreadyApplied):
		log.Printf("[WEBHOOK] Checkout %s already recorded, skipping", c.SessionID)
		return nil
	case errors.Is(err, repositories.ErrQuoteNotAcceptable):
		log.Printf("WARN: [WEBHOOK] Paid checkout %s arrived for quote %s that can no longer be accepted; reconcile manually", c.SessionID, quote.QuoteNumber)
		return nil
	case err != nil:
		return fmt.Errorf("accept quote %s: %w", quote.ID, err)
	}

	log.Printf("[WEBHOOK] Quote %s accepted, invoice %s created (paid %.2f of %.2f)",
		quote.QuoteNumber, result.Invoice.InvoiceNumber, result.Invoice.AmountPaid, result.Invoice.Total)

	customer, err := s.customers.GetByID(ctx, quote.CustomerID)
	if err != nil || customer == nil {
		log.Printf("Failed to load customer %s for confirmation email: %v", quote.CustomerID, err)
		return nil
	}
	s.notifications.SendQuoteAccepted(ctx, customer, quote, result.Invoice, result.Payment)
	return nil
}

func (s *reconcilerService) paymentSucceeded(ctx context.Context, eventID string, in *IntentOutcome) error {
	if in == nil {
		return nil
	}
	if in.Metadata[MetaInvoiceID] == "" {
		log.Printf("[WEBHOOK] Payment intent %s (event %s) has no invoice_id metadata, skipping", in.PaymentIntentID, eventID)
		return nil
	}

	result, err := s.billing.SettlePayment(ctx, in.PaymentIntentID, pricing.FromMinorUnits(in.Amount), s.now())
	if errors.Is(err, repositories.ErrAlreadyApplied) {
		log.Printf("[WEBHOOK] Payment intent %s already settled, skipping", in.PaymentIntentID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("settle payment intent %s: %w", in.PaymentIntentID, err)
	}

	log.Printf("[WEBHOOK] Invoice %s now %s (paid %.2f, due %.2f)",
		result.Invoice.InvoiceNumber, result.Invoice.Status, result.Invoice.AmountPaid, result.Invoice.AmountDue)

	customer, err := s.customers.GetByID(ctx, result.Invoice.CustomerID)
	if err != nil || customer == nil {
		log.Printf("Failed to load customer %s for confirmation email: %v", result.Invoice.CustomerID, err)
		return nil
	}
	s.notifications.SendPaymentReceived(ctx, customer, result.Invoice, result.Payment)
	return nil
}

func (s *reconcilerService) paymentFailed(ctx context.Context, eventID string, in *IntentOutcome) error {
	if in == nil {
		return nil
	}
	updated, err := s.billing.FailPayment(ctx, in.PaymentIntentID)
	if err != nil {
		return fmt.Errorf("mark payment intent %s failed: %w", in.PaymentIntentID, err)
	}
	if updated {
		log.Printf("[WEBHOOK] Payment intent %s failed: %s", in.PaymentIntentID, in.FailureMessage)
	} else {
		log.Printf("[WEBHOOK] Payment intent %s failed (event %s) with no pending payment on record", in.PaymentIntentID, eventID)
	}
	return nil
}
