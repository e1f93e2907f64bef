package repositories

import (
	"context"
	"fmt"
	"time"

	"billingportal/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InvoiceRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*models.Invoice, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Invoice, error)
	ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error)
	MarkSent(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error
}

type invoiceRepo struct {
	db DBTX
}

func NewInvoiceRepository(db DBTX) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = `id, invoice_number, quote_id, customer_id, title, status, subtotal, tax_rate, tax_amount, total,
	amount_paid, amount_due, due_date, sent_at, checkout_session_id, created_at, updated_at`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.QuoteID, &inv.CustomerID, &inv.Title, &inv.Status, &inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Total,
		&inv.AmountPaid, &inv.AmountDue, &inv.DueDate, &inv.SentAt, &inv.CheckoutSessionID, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return scanInvoice(r.db.QueryRow(ctx, query, id))
}

func (r *invoiceRepo) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND customer_id = $2 AND status <> 'draft'`
	return scanInvoice(r.db.QueryRow(ctx, query, id, customerID))
}

func (r *invoiceRepo) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE customer_id = $1 AND status <> 'draft' ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error) {
	query := `
		SELECT id, invoice_id, description, details, quantity, unit, unit_price, line_total, is_taxable, sort_order
		FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY sort_order
	`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.InvoiceLineItem{}
	for rows.Next() {
		var li models.InvoiceLineItem
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.Description, &li.Details, &li.Quantity, &li.Unit, &li.UnitPrice, &li.LineTotal, &li.IsTaxable, &li.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func (r *invoiceRepo) MarkSent(ctx context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	query := `UPDATE invoices SET status = $2, sent_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// nextInvoiceNumber allocates the next number in the yearly sequence
func nextInvoiceNumber(ctx context.Context, db DBTX, issued time.Time) (string, error) {
	query := `
		INSERT INTO invoice_sequences (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year)
		DO UPDATE SET last_number = invoice_sequences.last_number + 1
		RETURNING last_number
	`
	var next int
	if err := db.QueryRow(ctx, query, issued.Year()).Scan(&next); err != nil {
		return "", fmt.Errorf("allocate invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%d-%04d", issued.Year(), next), nil
}
