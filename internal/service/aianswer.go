package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sumire/overflow/internal/ai"
	"github.com/sumire/overflow/internal/domain"
	"github.com/sumire/overflow/internal/metrics"
)

// AIJobStore defines the AI job queue interface.
type AIJobStore interface {
	Enqueue(ctx context.Context, questionID int64, maxAttempts int) (*domain.AIJob, error)
	ClaimNext(ctx context.Context) (*domain.AIJob, error)
	Complete(ctx context.Context, jobID int64) error
	Fail(ctx context.Context, jobID int64, message string) (domain.JobStatus, error)
}

// AIAnswerService generates AI answers for questions through a
// Postgres-backed job queue.
type AIAnswerService struct {
	jobs      AIJobStore
	questions QuestionStore
	answers   AnswerStore
	notifier  *NotificationService
	generator ai.Generator

	systemUser  *domain.User
	maxAttempts int
	genTimeout  time.Duration
	model       string
}

// NewAIAnswerService creates a new AIAnswerService. systemUser is the
// reserved identity that authors the generated answers.
func NewAIAnswerService(jobs AIJobStore, questions QuestionStore, answers AnswerStore, notifier *NotificationService, generator ai.Generator, systemUser *domain.User, maxAttempts int, genTimeout time.Duration, model string) *AIAnswerService {
	return &AIAnswerService{
		jobs:        jobs,
		questions:   questions,
		answers:     answers,
		notifier:    notifier,
		generator:   generator,
		systemUser:  systemUser,
		maxAttempts: maxAttempts,
		genTimeout:  genTimeout,
		model:       model,
	}
}

// Request enqueues AI answer generation for a question. A question
// with a generation already in flight yields ErrConflict.
func (s *AIAnswerService) Request(ctx context.Context, questionID int64) (*domain.AIJob, error) {
	if _, err := s.questions.FindByID(ctx, questionID); err != nil {
		return nil, err
	}
	return s.jobs.Enqueue(ctx, questionID, s.maxAttempts)
}

// ProcessNext claims and runs one job. It returns domain.ErrNotFound
// when the queue is empty; generation failures are recorded on the job
// and never returned, so workers keep draining.
func (s *AIAnswerService) ProcessNext(ctx context.Context) error {
	job, err := s.jobs.ClaimNext(ctx)
	if err != nil {
		return err
	}
	s.run(ctx, job)
	return nil
}

func (s *AIAnswerService) run(ctx context.Context, job *domain.AIJob) {
	question, err := s.questions.FindByID(ctx, job.QuestionID)
	if err != nil {
		s.fail(ctx, job, err)
		return
	}

	genCtx, cancel := context.WithTimeout(ctx, s.genTimeout)
	defer cancel()

	start := time.Now()
	content, err := s.generator.GenerateAnswer(genCtx, question.Title, question.Description)
	metrics.ObserveAIGeneration(s.model, start, err)
	if err != nil {
		s.fail(ctx, job, err)
		return
	}

	answer, err := s.answers.Create(ctx, domain.Answer{
		QuestionID:    question.ID,
		AuthorID:      s.systemUser.ID,
		Content:       content,
		IsAIGenerated: true,
	})
	if err != nil {
		s.fail(ctx, job, err)
		return
	}

	if err := s.jobs.Complete(ctx, job.ID); err != nil {
		// the answer exists; the stale job row only blocks re-requests
		slog.Error("complete ai job", "job_id", job.ID, "error", err)
	}

	metrics.AnswersCreated.WithLabelValues("ai").Inc()
	s.notifier.AnswerCreated(ctx, question, answer, s.systemUser.Username)
}

func (s *AIAnswerService) fail(ctx context.Context, job *domain.AIJob, cause error) {
	status, err := s.jobs.Fail(ctx, job.ID, cause.Error())
	if err != nil {
		slog.Error("record ai job failure", "job_id", job.ID, "error", err)
		return
	}
	slog.Warn("ai answer generation failed",
		"job_id", job.ID,
		"question_id", job.QuestionID,
		"attempt", job.Attempts,
		"status", status,
		"error", cause,
	)
}
