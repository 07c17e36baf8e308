package domain

import "time"

// NotificationType represents the kind of notification.
type NotificationType string

const (
	NotificationAnswer   NotificationType = "answer"
	NotificationAccepted NotificationType = "accepted"
	NotificationMention  NotificationType = "mention"
	NotificationComment  NotificationType = "comment"
)

// Notification represents an in-app notification for a user.
type Notification struct {
	ID         int64            `json:"id" db:"id"`
	UserID     int64            `json:"user_id" db:"user_id"`
	Type       NotificationType `json:"type" db:"type"`
	Title      string           `json:"title" db:"title"`
	Message    string           `json:"message" db:"message"`
	IsRead     bool             `json:"is_read" db:"is_read"`
	QuestionID *int64           `json:"question_id,omitempty" db:"question_id"`
	AnswerID   *int64           `json:"answer_id,omitempty" db:"answer_id"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}
