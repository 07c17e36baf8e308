package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sumire/overflow/internal/cache"
	"github.com/sumire/overflow/internal/domain"
	"github.com/sumire/overflow/internal/metrics"
)

const trendingCacheKey = "questions:trending"

// QuestionStore defines the question data access interface.
type QuestionStore interface {
	Create(ctx context.Context, q domain.Question) (*domain.Question, error)
	FindByID(ctx context.Context, id int64) (*domain.Question, error)
	FindAndIncrementViews(ctx context.Context, id int64) (*domain.Question, error)
	List(ctx context.Context, opts domain.QuestionFilter) ([]domain.Question, bool, error)
	Trending(ctx context.Context, limit int) ([]domain.Question, error)
}

// QuestionService handles question creation, listing and detail reads.
type QuestionService struct {
	questions QuestionStore
	answers   AnswerStore
	votes     VoteStore
	cache     cache.Cache
	cacheTTL  time.Duration
}

// NewQuestionService creates a new QuestionService. The cache may be
// nil; trending reads then always hit the store.
func NewQuestionService(questions QuestionStore, answers AnswerStore, votes VoteStore, c cache.Cache, cacheTTL time.Duration) *QuestionService {
	return &QuestionService{
		questions: questions,
		answers:   answers,
		votes:     votes,
		cache:     c,
		cacheTTL:  cacheTTL,
	}
}

// Create validates and stores a new question.
func (s *QuestionService) Create(ctx context.Context, authorID int64, title, description string, rawTags []string) (*domain.Question, error) {
	title = strings.TrimSpace(title)
	if len(title) < domain.TitleMinLen {
		return nil, domain.Invalid("title", "must be at least 10 characters")
	}
	if len(strings.TrimSpace(description)) < domain.DescriptionMinLen {
		return nil, domain.Invalid("description", "must be at least 20 characters")
	}
	tags, err := domain.NormalizeTags(rawTags)
	if err != nil {
		return nil, err
	}

	question, err := s.questions.Create(ctx, domain.Question{
		AuthorID:    authorID,
		Title:       title,
		Description: description,
		Tags:        tags,
	})
	if err != nil {
		return nil, err
	}

	metrics.QuestionsCreated.Inc()
	return question, nil
}

// List returns a page of questions.
func (s *QuestionService) List(ctx context.Context, opts domain.QuestionFilter) ([]domain.Question, bool, error) {
	return s.questions.List(ctx, opts)
}

// QuestionDetail is the full detail-page payload: the question, its
// answers and the viewer's standing votes.
type QuestionDetail struct {
	Question domain.Question `json:"question"`
	Answers  []domain.Answer `json:"answers"`
	// ViewerQuestionVote is the viewer's vote on the question: +1, -1 or 0.
	ViewerQuestionVote int `json:"viewer_question_vote"`
	// ViewerAnswerVotes maps answer id to the viewer's vote on it.
	ViewerAnswerVotes map[int64]int `json:"viewer_answer_votes"`
}

// GetDetail loads a question with its answers and bumps the view
// counter. viewerID is zero for anonymous readers.
func (s *QuestionService) GetDetail(ctx context.Context, questionID, viewerID int64) (*QuestionDetail, error) {
	question, err := s.questions.FindAndIncrementViews(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answers, err := s.answers.ListByQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	detail := &QuestionDetail{
		Question:          *question,
		Answers:           answers,
		ViewerAnswerVotes: map[int64]int{},
	}
	detail.Question.AnswerCount = len(answers)

	if viewerID == 0 {
		return detail, nil
	}

	qVotes, err := s.votes.ListForUser(ctx, viewerID, domain.TargetQuestion, []int64{questionID})
	if err != nil {
		return nil, err
	}
	if len(qVotes) > 0 {
		detail.ViewerQuestionVote = qVotes[0].Value
	}

	answerIDs := make([]int64, len(answers))
	for i, a := range answers {
		answerIDs[i] = a.ID
	}
	aVotes, err := s.votes.ListForUser(ctx, viewerID, domain.TargetAnswer, answerIDs)
	if err != nil {
		return nil, err
	}
	for _, v := range aVotes {
		detail.ViewerAnswerVotes[v.TargetID] = v.Value
	}

	return detail, nil
}

// Trending returns the most voted/viewed questions, served from the
// cache when fresh. Cache failures degrade to direct store reads.
func (s *QuestionService) Trending(ctx context.Context, limit int) ([]domain.Question, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, trendingCacheKey)
		if err == nil {
			var cached []domain.Question
			if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("trending cache read failed", "error", err)
		}
	}

	questions, err := s.questions.Trending(ctx, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(questions); err == nil {
			if err := s.cache.Set(ctx, trendingCacheKey, data, s.cacheTTL); err != nil {
				slog.Warn("trending cache write failed", "error", err)
			}
		}
	}

	return questions, nil
}
