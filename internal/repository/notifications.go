package repository

import (
	"context"
	"time"

	"github.com/seduc-dev/demanda-tracker/backend/internal/domain"
)

func (r *Repository) CreateNotification(notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, demand_id, urgency, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, read, created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{notification.RecipientID, notification.DemandID, notification.Urgency, notification.Message}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&notification.ID, &notification.Read, &notification.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetNotificationsByRecipient(recipientID int64) ([]*domain.Notification, error) {
	query := `
		SELECT id, recipient_id, demand_id, urgency, message, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*domain.Notification{}
	for rows.Next() {
		notification := &domain.Notification{}
		dst := []any{
			&notification.ID,
			&notification.RecipientID,
			&notification.DemandID,
			&notification.Urgency,
			&notification.Message,
			&notification.Read,
			&notification.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkNotificationRead só marca notificações do próprio destinatário.
func (r *Repository) MarkNotificationRead(id int64, recipientID int64) error {
	query := `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND recipient_id = $2
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var updatedID int64
	if err := r.dbpool.QueryRowContext(ctx, query, id, recipientID).Scan(&updatedID); err != nil {
		return err
	}

	return nil
}
