package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billingportal/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrQuoteNotAcceptable is returned when a paid checkout arrives for a quote
// that is no longer sent or viewed.
var ErrQuoteNotAcceptable = errors.New("quote is not in an acceptable status")

// AcceptQuoteParams describes a completed checkout to record
type AcceptQuoteParams struct {
	Quote             *models.Quote
	CheckoutSessionID string
	PaymentIntentID   *string
	AmountPaid        float64
	PaymentType       models.PaymentType
	Subtotal          float64
	TaxAmount         float64
	Total             float64
	AcceptedAt        time.Time
	DueDate           time.Time
}

type AcceptQuoteResult struct {
	Invoice *models.Invoice
	Payment *models.Payment
}

type SettlementResult struct {
	Invoice *models.Invoice
	Payment *models.Payment
}

// BillingRepository groups the multi-table writes performed when the payment
// processor reports an outcome. Each method runs in a single transaction.
type BillingRepository interface {
	AcceptQuote(ctx context.Context, p AcceptQuoteParams) (*AcceptQuoteResult, error)
	SettlePayment(ctx context.Context, paymentIntentID string, amount float64, paidAt time.Time) (*SettlementResult, error)
	FailPayment(ctx context.Context, paymentIntentID string) (bool, error)
}

type billingRepo struct {
	db DBTX
}

func NewBillingRepository(db DBTX) BillingRepository {
	return &billingRepo{db: db}
}

// AcceptQuote creates the invoice, its line items and the payment for a
// completed checkout and marks the quote accepted. A checkout session that was
// already recorded yields ErrAlreadyApplied and no writes.
func (r *billingRepo) AcceptQuote(ctx context.Context, p AcceptQuoteParams) (*AcceptQuoteResult, error) {
	var result *AcceptQuoteResult

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		number, err := nextInvoiceNumber(ctx, tx, p.AcceptedAt)
		if err != nil {
			return err
		}

		amountDue, _ := models.SettleBalance(p.Total, p.AmountPaid)
		quoteID := p.Quote.ID
		sessionID := p.CheckoutSessionID
		dueDate := p.DueDate
		sentAt := p.AcceptedAt
		invoice := &models.Invoice{
			ID:                uuid.New(),
			InvoiceNumber:     number,
			QuoteID:           &quoteID,
			CustomerID:        p.Quote.CustomerID,
			Title:             p.Quote.Title,
			Status:            models.InvoicePartial,
			Subtotal:          p.Subtotal,
			TaxRate:           p.Quote.TaxRate,
			TaxAmount:         p.TaxAmount,
			Total:             p.Total,
			AmountPaid:        p.AmountPaid,
			AmountDue:         amountDue,
			DueDate:           &dueDate,
			SentAt:            &sentAt,
			CheckoutSessionID: &sessionID,
		}

		insertInvoice := `
			INSERT INTO invoices (id, invoice_number, quote_id, customer_id, title, status, subtotal, tax_rate, tax_amount, total,
				amount_paid, amount_due, due_date, sent_at, checkout_session_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
			ON CONFLICT (checkout_session_id) DO NOTHING
			RETURNING created_at, updated_at
		`
		err = tx.QueryRow(ctx, insertInvoice,
			invoice.ID, invoice.InvoiceNumber, invoice.QuoteID, invoice.CustomerID, invoice.Title, invoice.Status,
			invoice.Subtotal, invoice.TaxRate, invoice.TaxAmount, invoice.Total, invoice.AmountPaid, invoice.AmountDue,
			invoice.DueDate, invoice.SentAt, invoice.CheckoutSessionID,
		).Scan(&invoice.CreatedAt, &invoice.UpdatedAt)
		if err != nil {
			if isNoRows(err) {
				return ErrAlreadyApplied
			}
			return fmt.Errorf("insert invoice: %w", err)
		}

		acceptQuote := `
			UPDATE quotes
			SET status = 'accepted', accepted_at = $2, subtotal = $3, tax_amount = $4, total = $5, updated_at = NOW()
			WHERE id = $1 AND status IN ('sent', 'viewed')
		`
		tag, err := tx.Exec(ctx, acceptQuote, quoteID, p.AcceptedAt, p.Subtotal, p.TaxAmount, p.Total)
		if err != nil {
			return fmt.Errorf("accept quote: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrQuoteNotAcceptable
		}

		copyItems := `
			INSERT INTO invoice_line_items (invoice_id, description, details, quantity, unit, unit_price, line_total, is_taxable, sort_order)
			SELECT $1, description, details, quantity, unit, unit_price, line_total, is_taxable, sort_order
			FROM quote_line_items
			WHERE quote_id = $2 AND (is_optional = FALSE OR is_selected = TRUE)
		`
		if _, err := tx.Exec(ctx, copyItems, invoice.ID, quoteID); err != nil {
			return fmt.Errorf("copy line items: %w", err)
		}

		payment := &models.Payment{
			ID:                    uuid.New(),
			InvoiceID:             invoice.ID,
			CustomerID:            invoice.CustomerID,
			Amount:                p.AmountPaid,
			PaymentType:           p.PaymentType,
			Status:                models.PaymentSucceeded,
			StripePaymentIntentID: p.PaymentIntentID,
			PaymentDate:           p.AcceptedAt,
		}
		if err := insertPayment(ctx, tx, payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		notifications := []models.Notification{
			{ID: uuid.New(), CustomerID: invoice.CustomerID, NotificationType: models.NotificationQuoteAccepted, ReferenceType: "quote", ReferenceID: quoteID, IsAdmin: true},
			{ID: uuid.New(), CustomerID: invoice.CustomerID, NotificationType: models.NotificationPaymentReceived, ReferenceType: "invoice", ReferenceID: invoice.ID, IsAdmin: false},
		}
		for i := range notifications {
			if err := insertNotification(ctx, tx, &notifications[i]); err != nil {
				return fmt.Errorf("queue notification: %w", err)
			}
		}

		result = &AcceptQuoteResult{Invoice: invoice, Payment: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SettlePayment marks a pending payment succeeded and applies its amount to
// the invoice balance under a row lock. A payment that is no longer pending
// yields ErrAlreadyApplied.
func (r *billingRepo) SettlePayment(ctx context.Context, paymentIntentID string, amount float64, paidAt time.Time) (*SettlementResult, error) {
	var result *SettlementResult

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		payment := &models.Payment{}
		flip := `
			UPDATE payments
			SET status = 'succeeded', payment_date = $2
			WHERE stripe_payment_intent_id = $1 AND status = 'pending'
			RETURNING id, invoice_id, customer_id, amount, payment_type, status, stripe_payment_intent_id, payment_date, created_at
		`
		err := tx.QueryRow(ctx, flip, paymentIntentID, paidAt).Scan(
			&payment.ID, &payment.InvoiceID, &payment.CustomerID, &payment.Amount, &payment.PaymentType, &payment.Status,
			&payment.StripePaymentIntentID, &payment.PaymentDate, &payment.CreatedAt,
		)
		if err != nil {
			if isNoRows(err) {
				return ErrAlreadyApplied
			}
			return fmt.Errorf("mark payment succeeded: %w", err)
		}

		invoice, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, payment.InvoiceID))
		if err != nil {
			return fmt.Errorf("lock invoice: %w", err)
		}
		if invoice == nil {
			return fmt.Errorf("invoice %s for payment %s not found", payment.InvoiceID, payment.ID)
		}

		amountPaid := invoice.AmountPaid + amount
		amountDue, next := models.SettleBalance(invoice.Total, amountPaid)
		status, err := invoice.Status.TransitionTo(next)
		if err != nil {
			return err
		}

		update := `
			UPDATE invoices
			SET amount_paid = $2, amount_due = $3, status = $4, updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, update, invoice.ID, amountPaid, amountDue, status); err != nil {
			return fmt.Errorf("update invoice balance: %w", err)
		}

		invoice.AmountPaid = amountPaid
		invoice.AmountDue = amountDue
		invoice.Status = status
		result = &SettlementResult{Invoice: invoice, Payment: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FailPayment marks a pending payment failed and reports whether one matched
func (r *billingRepo) FailPayment(ctx context.Context, paymentIntentID string) (bool, error) {
	query := `UPDATE payments SET status = 'failed' WHERE stripe_payment_intent_id = $1 AND status = 'pending'`
	tag, err := r.db.Exec(ctx, query, paymentIntentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
