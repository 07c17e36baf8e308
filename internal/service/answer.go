package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sumire/overflow/internal/domain"
	"github.com/sumire/overflow/internal/metrics"
)

// AnswerStore defines the answer data access interface.
type AnswerStore interface {
	Create(ctx context.Context, a domain.Answer) (*domain.Answer, error)
	FindByID(ctx context.Context, id int64) (*domain.Answer, error)
	ListByQuestion(ctx context.Context, questionID int64) ([]domain.Answer, error)
	Accept(ctx context.Context, questionID, answerID int64) error
	Unaccept(ctx context.Context, questionID int64) error
}

// AnswerService handles answer creation and the acceptance state
// machine.
type AnswerService struct {
	answers   AnswerStore
	questions QuestionStore
	users     UserStore
	notifier  *NotificationService

	allowAcceptingAIAnswers bool
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(answers AnswerStore, questions QuestionStore, users UserStore, notifier *NotificationService, allowAcceptingAIAnswers bool) *AnswerService {
	return &AnswerService{
		answers:                 answers,
		questions:               questions,
		users:                   users,
		notifier:                notifier,
		allowAcceptingAIAnswers: allowAcceptingAIAnswers,
	}
}

// Create stores a new answer and notifies the question author after
// the write commits. The notification is best-effort and never fails
// the creation.
func (s *AnswerService) Create(ctx context.Context, questionID, authorID int64, content string) (*domain.Answer, error) {
	if len(strings.TrimSpace(content)) < domain.ContentMinLen {
		return nil, domain.Invalid("content", "must be at least 20 characters")
	}

	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	answer, err := s.answers.Create(ctx, domain.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    content,
	})
	if err != nil {
		return nil, err
	}

	metrics.AnswersCreated.WithLabelValues("human").Inc()
	s.notifier.AnswerCreated(ctx, question, answer, author.Username)
	return answer, nil
}

// Accept marks an answer as the question's accepted one. Only the
// question author may accept; the answer must belong to the question;
// AI-generated answers are acceptable only when policy allows.
// Re-accepting a different answer re-clears and re-sets the state.
func (s *AnswerService) Accept(ctx context.Context, questionID, answerID, requesterID int64) error {
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return err
	}
	if question.AuthorID != requesterID {
		return fmt.Errorf("%w: only the question author can accept an answer", domain.ErrForbidden)
	}

	answer, err := s.answers.FindByID(ctx, answerID)
	if err != nil {
		return err
	}
	if answer.QuestionID != questionID {
		return fmt.Errorf("%w: answer %d does not belong to question %d", domain.ErrInvalidInput, answerID, questionID)
	}
	if answer.IsAIGenerated && !s.allowAcceptingAIAnswers {
		return fmt.Errorf("%w: AI-generated answers cannot be accepted", domain.ErrForbidden)
	}

	if err := s.answers.Accept(ctx, questionID, answerID); err != nil {
		return err
	}

	metrics.AnswersAccepted.Inc()
	s.notifier.AnswerAccepted(ctx, question, answer)
	return nil
}

// Unaccept clears the question's accepted answer. Only the question
// author may do so.
func (s *AnswerService) Unaccept(ctx context.Context, questionID, requesterID int64) error {
	question, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return err
	}
	if question.AuthorID != requesterID {
		return fmt.Errorf("%w: only the question author can change acceptance", domain.ErrForbidden)
	}

	return s.answers.Unaccept(ctx, questionID)
}
