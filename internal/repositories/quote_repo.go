package repositories

import (
	"context"
	"time"

	"billingportal/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type QuoteRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*models.Quote, error)
	GetByAccessToken(ctx context.Context, accessToken string) (*models.Quote, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Quote, error)

	// MarkViewed moves a sent quote to viewed; it reports false when the quote was not in sent
	MarkViewed(ctx context.Context, id uuid.UUID) (bool, error)
	MarkSent(ctx context.Context, id uuid.UUID, status models.QuoteStatus, accessToken string) error
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)

	ListLineItems(ctx context.Context, quoteID uuid.UUID) ([]models.QuoteLineItem, error)
	GetLineItem(ctx context.Context, quoteID, itemID uuid.UUID) (*models.QuoteLineItem, error)
	SetItemSelected(ctx context.Context, quoteID, itemID uuid.UUID, selected bool) error
	ReplaceSelection(ctx context.Context, quoteID uuid.UUID, selected []uuid.UUID) error

	ListAttachments(ctx context.Context, quoteID uuid.UUID) ([]models.QuoteAttachment, error)
	ListCustomerFiles(ctx context.Context, customerID uuid.UUID) ([]models.CustomerFile, error)
}

type quoteRepo struct {
	db DBTX
}

func NewQuoteRepository(db DBTX) QuoteRepository {
	return &quoteRepo{db: db}
}

const quoteColumns = `id, quote_number, customer_id, title, description, status, subtotal, tax_rate, tax_amount, total,
	deposit_type, deposit_value, expires_at, access_token, internal_notes, sent_at, viewed_at, accepted_at, created_at, updated_at`

func scanQuote(row pgx.Row) (*models.Quote, error) {
	q := &models.Quote{}
	err := row.Scan(
		&q.ID, &q.QuoteNumber, &q.CustomerID, &q.Title, &q.Description, &q.Status, &q.Subtotal, &q.TaxRate, &q.TaxAmount, &q.Total,
		&q.DepositType, &q.DepositValue, &q.ExpiresAt, &q.AccessToken, &q.InternalNotes, &q.SentAt, &q.ViewedAt, &q.AcceptedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return q, nil
}

func (r *quoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	return scanQuote(r.db.QueryRow(ctx, query, id))
}

func (r *quoteRepo) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1 AND customer_id = $2 AND status <> 'draft'`
	return scanQuote(r.db.QueryRow(ctx, query, id, customerID))
}

func (r *quoteRepo) GetByAccessToken(ctx context.Context, accessToken string) (*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE access_token = $1`
	return scanQuote(r.db.QueryRow(ctx, query, accessToken))
}

func (r *quoteRepo) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE customer_id = $1 AND status <> 'draft' ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := []models.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, rows.Err()
}

func (r *quoteRepo) MarkViewed(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE quotes
		SET status = 'viewed', viewed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'sent'
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *quoteRepo) MarkSent(ctx context.Context, id uuid.UUID, status models.QuoteStatus, accessToken string) error {
	query := `
		UPDATE quotes
		SET status = $2, access_token = $3, sent_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, id, status, accessToken)
	return err
}

func (r *quoteRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE quotes
		SET status = 'expired', updated_at = NOW()
		WHERE status IN ('sent', 'viewed') AND expires_at IS NOT NULL AND expires_at <= $1
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const lineItemColumns = `id, quote_id, description, details, quantity, unit, unit_price, line_total, is_optional, is_selected, is_taxable, sort_order`

func scanLineItem(row pgx.Row) (*models.QuoteLineItem, error) {
	li := &models.QuoteLineItem{}
	err := row.Scan(&li.ID, &li.QuoteID, &li.Description, &li.Details, &li.Quantity, &li.Unit, &li.UnitPrice, &li.LineTotal,
		&li.IsOptional, &li.IsSelected, &li.IsTaxable, &li.SortOrder)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return li, nil
}

func (r *quoteRepo) ListLineItems(ctx context.Context, quoteID uuid.UUID) ([]models.QuoteLineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM quote_line_items WHERE quote_id = $1 ORDER BY sort_order`
	return listLineItems(ctx, r.db, query, quoteID)
}

func listLineItems(ctx context.Context, db DBTX, query string, args ...any) ([]models.QuoteLineItem, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.QuoteLineItem{}
	for rows.Next() {
		li, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *li)
	}
	return items, rows.Err()
}

func (r *quoteRepo) GetLineItem(ctx context.Context, quoteID, itemID uuid.UUID) (*models.QuoteLineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM quote_line_items WHERE id = $1 AND quote_id = $2`
	return scanLineItem(r.db.QueryRow(ctx, query, itemID, quoteID))
}

func (r *quoteRepo) SetItemSelected(ctx context.Context, quoteID, itemID uuid.UUID, selected bool) error {
	query := `
		UPDATE quote_line_items
		SET is_selected = $3
		WHERE id = $1 AND quote_id = $2 AND is_optional = TRUE
	`
	_, err := r.db.Exec(ctx, query, itemID, quoteID, selected)
	return err
}

// ReplaceSelection clears every optional item on the quote and selects exactly
// the given ids. Ids that are not optional items of the quote are ignored.
func (r *quoteRepo) ReplaceSelection(ctx context.Context, quoteID uuid.UUID, selected []uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE quote_line_items SET is_selected = FALSE WHERE quote_id = $1 AND is_optional = TRUE`, quoteID); err != nil {
			return err
		}
		if len(selected) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx,
			`UPDATE quote_line_items SET is_selected = TRUE WHERE quote_id = $1 AND is_optional = TRUE AND id = ANY($2)`,
			quoteID, selected)
		return err
	})
}

const attachmentColumns = `a.id, a.quote_id, a.file_url, a.file_name, a.file_type, a.caption, a.display_order, a.uploaded_at`

func (r *quoteRepo) ListAttachments(ctx context.Context, quoteID uuid.UUID) ([]models.QuoteAttachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM quote_attachments a WHERE a.quote_id = $1 ORDER BY a.display_order`
	rows, err := r.db.Query(ctx, query, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := []models.QuoteAttachment{}
	for rows.Next() {
		var a models.QuoteAttachment
		if err := rows.Scan(&a.ID, &a.QuoteID, &a.FileURL, &a.FileName, &a.FileType, &a.Caption, &a.DisplayOrder, &a.UploadedAt); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *quoteRepo) ListCustomerFiles(ctx context.Context, customerID uuid.UUID) ([]models.CustomerFile, error) {
	query := `
		SELECT ` + attachmentColumns + `, q.quote_number, q.title
		FROM quote_attachments a
		JOIN quotes q ON q.id = a.quote_id
		WHERE q.customer_id = $1 AND q.status <> 'draft'
		ORDER BY a.uploaded_at DESC
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []models.CustomerFile{}
	for rows.Next() {
		var f models.CustomerFile
		if err := rows.Scan(&f.ID, &f.QuoteID, &f.FileURL, &f.FileName, &f.FileType, &f.Caption, &f.DisplayOrder, &f.UploadedAt,
			&f.QuoteNumber, &f.QuoteTitle); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
