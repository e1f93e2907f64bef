package repositories

import (
	"context"

	"billingportal/internal/models"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Enqueue(ctx context.Context, n *models.Notification) error
}

type notificationRepo struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Enqueue(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return insertNotification(ctx, r.db, n)
}

func insertNotification(ctx context.Context, db DBTX, n *models.Notification) error {
	query := `
		INSERT INTO notification_queue (id, customer_id, notification_type, reference_type, reference_id, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := db.Exec(ctx, query, n.ID, n.CustomerID, n.NotificationType, n.ReferenceType, n.ReferenceID, n.IsAdmin)
	return err
}
