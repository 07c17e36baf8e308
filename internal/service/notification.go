package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sumire/overflow/internal/domain"
	"github.com/sumire/overflow/internal/metrics"
)

// NotificationStore defines the notification data access interface.
type NotificationStore interface {
	Create(ctx context.Context, n domain.Notification) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

// NotificationService creates notifications as post-commit side
// effects and serves the inbox. Emission is fire-and-forget: a failed
// write is logged and dropped, never surfaced to the operation that
// triggered it.
type NotificationService struct {
	store NotificationStore
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// AnswerCreated notifies the question author that someone answered.
// Self-answers produce no notification.
func (s *NotificationService) AnswerCreated(ctx context.Context, question *domain.Question, answer *domain.Answer, answererName string) {
	if question.AuthorID == answer.AuthorID {
		return
	}
	s.emit(ctx, domain.Notification{
		UserID:     question.AuthorID,
		Type:       domain.NotificationAnswer,
		Title:      "New Answer",
		Message:    fmt.Sprintf("%s answered your question %q", answererName, question.Title),
		QuestionID: &question.ID,
		AnswerID:   &answer.ID,
	})
}

// AnswerAccepted notifies the answer author that their answer was
// accepted. Accepting one's own answer produces no notification.
func (s *NotificationService) AnswerAccepted(ctx context.Context, question *domain.Question, answer *domain.Answer) {
	if answer.AuthorID == question.AuthorID {
		return
	}
	s.emit(ctx, domain.Notification{
		UserID:     answer.AuthorID,
		Type:       domain.NotificationAccepted,
		Title:      "Answer Accepted",
		Message:    fmt.Sprintf("Your answer to %q was accepted", question.Title),
		QuestionID: &question.ID,
		AnswerID:   &answer.ID,
	})
}

func (s *NotificationService) emit(ctx context.Context, n domain.Notification) {
	if _, err := s.store.Create(ctx, n); err != nil {
		metrics.NotificationEmitFailures.Inc()
		slog.Warn("dropping notification",
			"type", n.Type,
			"recipient", n.UserID,
			"error", err,
		)
	}
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, error) {
	return s.store.ListByUser(ctx, userID, limit, offset)
}

// UnreadCount returns the user's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

// MarkRead marks one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}

// MarkAllRead marks all of the user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllRead(ctx, userID)
}
