package repositories

import (
	"context"

	"billingportal/internal/models"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}

type customerRepo struct {
	db DBTX
}

func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `id, name, email, phone, last_login_at, created_at`

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByEmail expects an already normalized address
func (r *customerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE LOWER(email) = $1`
	return r.scanOne(ctx, query, email)
}

func (r *customerRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE customers SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *customerRepo) scanOne(ctx context.Context, query string, arg any) (*models.Customer, error) {
	c := &models.Customer{}
	err := r.db.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.LastLoginAt, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}
