package repositories

import (
	"context"

	"billingportal/internal/models"

	"github.com/google/uuid"
)

type UploadRepository interface {
	Create(ctx context.Context, upload *models.CustomerUpload) error
	ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerUpload, error)
}

type uploadRepo struct {
	db DBTX
}

func NewUploadRepository(db DBTX) UploadRepository {
	return &uploadRepo{db: db}
}

func (r *uploadRepo) Create(ctx context.Context, u *models.CustomerUpload) error {
	query := `
		INSERT INTO customer_uploads (id, customer_id, quote_id, object_key, file_name, file_type, file_size, caption, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query, u.ID, u.CustomerID, u.QuoteID, u.ObjectKey, u.FileName, u.FileType, u.FileSize, u.Caption, u.UploadedAt)
	return err
}

func (r *uploadRepo) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]models.CustomerUpload, error) {
	query := `
		SELECT id, customer_id, quote_id, object_key, file_name, file_type, file_size, caption, uploaded_at
		FROM customer_uploads
		WHERE customer_id = $1
		ORDER BY uploaded_at DESC
	`
	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	uploads := []models.CustomerUpload{}
	for rows.Next() {
		var u models.CustomerUpload
		if err := rows.Scan(&u.ID, &u.CustomerID, &u.QuoteID, &u.ObjectKey, &u.FileName, &u.FileType, &u.FileSize, &u.Caption, &u.UploadedAt); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}
