package repositories

import (
	"context"

	"billingportal/internal/models"

	"github.com/google/uuid"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListSucceededForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PaymentHistoryEntry, error)
}

type paymentRepo struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return insertPayment(ctx, r.db, p)
}

func insertPayment(ctx context.Context, db DBTX, p *models.Payment) error {
	query := `
		INSERT INTO payments (id, invoice_id, customer_id, amount, payment_type, status, stripe_payment_intent_id, payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := db.Exec(ctx, query, p.ID, p.InvoiceID, p.CustomerID, p.Amount, p.PaymentType, p.Status, p.StripePaymentIntentID, p.PaymentDate)
	return err
}

func (r *paymentRepo) ListSucceededForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.PaymentHistoryEntry, error) {
	query := `
		SELECT p.id, p.invoice_id, p.customer_id, p.amount, p.payment_type, p.status, p.stripe_payment_intent_id, p.payment_date, p.created_at,
			i.invoice_number, i.title
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE p.customer_id = $1 AND p.status = 'succeeded'
		ORDER BY p.payment_date DESC
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []models.PaymentHistoryEntry{}
	for rows.Next() {
		var e models.PaymentHistoryEntry
		if err := rows.Scan(&e.ID, &e.InvoiceID, &e.CustomerID, &e.Amount, &e.PaymentType, &e.Status, &e.StripePaymentIntentID, &e.PaymentDate, &e.CreatedAt,
			&e.InvoiceNumber, &e.InvoiceTitle); err != nil {
			return nil, err
		}
		payments = append(payments, e)
	}
	return payments, rows.Err()
}
