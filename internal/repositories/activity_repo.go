package repositories

import (
	"context"

	"billingportal/internal/models"

	"github.com/google/uuid"
)

type ActivityRepository interface {
	Log(ctx context.Context, entry *models.ActivityLog) error
}

type activityRepo struct {
	db DBTX
}

func NewActivityRepository(db DBTX) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Log(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	query := `
		INSERT INTO activity_log (id, customer_id, quote_id, activity_type, description, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.CustomerID, entry.QuoteID, entry.ActivityType, entry.Description, entry.IPAddress)
	return err
}
