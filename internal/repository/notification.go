package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/overflow/internal/domain"
)

// NotificationRepository handles notification data access operations.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification record.
func (r *NotificationRepository) Create(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	var result domain.Notification
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (user_id, type, title, message, question_id, answer_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, type, title, message, is_read, question_id, answer_id, created_at`,
		n.UserID, n.Type, n.Title, n.Message, n.QuestionID, n.AnswerID,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &result, nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 20
	}

	var notifications []domain.Notification
	err := r.db.SelectContext(ctx, &notifications,
		`SELECT id, user_id, type, title, message, is_read, question_id, answer_id, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

// UnreadCount returns how many unread notifications the user has.
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications for user %d: %w", userID, err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", notificationID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", notificationID, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`,
		userID); err != nil {
		return fmt.Errorf("mark notifications read for user %d: %w", userID, err)
	}
	return nil
}
