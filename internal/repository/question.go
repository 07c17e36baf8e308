package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/overflow/internal/domain"
)

// QuestionRepository handles question data access operations.
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create inserts a new question and returns it with generated fields.
func (r *QuestionRepository) Create(ctx context.Context, q domain.Question) (*domain.Question, error) {
	var result domain.Question
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO questions (author_id, title, description, tags)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, author_id, title, description, tags, vote_total, view_count,
		           accepted_answer_id, created_at, updated_at`,
		q.AuthorID, q.Title, q.Description, q.Tags,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}
	return &result, nil
}

// FindByID retrieves a question without touching its view counter.
func (r *QuestionRepository) FindByID(ctx context.Context, id int64) (*domain.Question, error) {
	var q domain.Question
	err := r.db.GetContext(ctx, &q,
		`SELECT q.id, q.author_id, q.title, q.description, q.tags, q.vote_total,
		        q.view_count, q.accepted_answer_id, q.created_at, q.updated_at,
		        u.username AS author_username, u.reputation AS author_reputation
		 FROM questions q
		 JOIN users u ON u.id = q.author_id
		 WHERE q.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find question %d: %w", id, err)
	}
	return &q, nil
}

// FindAndIncrementViews bumps the view counter and returns the fresh
// row in the same statement. The increment is relative, so concurrent
// opens never lose updates, and it is independent of vote state.
func (r *QuestionRepository) FindAndIncrementViews(ctx context.Context, id int64) (*domain.Question, error) {
	var q domain.Question
	err := r.db.GetContext(ctx, &q,
		`UPDATE questions q SET view_count = q.view_count + 1
		 FROM users u
		 WHERE q.id = $1 AND u.id = q.author_id
		 RETURNING q.id, q.author_id, q.title, q.description, q.tags, q.vote_total,
		           q.view_count, q.accepted_answer_id, q.created_at, q.updated_at,
		           u.username AS author_username, u.reputation AS author_reputation`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("increment question %d views: %w", id, err)
	}
	return &q, nil
}

// List returns a page of questions with joined author info and answer
// counts. It fetches one extra row so the caller can detect whether a
// next page exists.
func (r *QuestionRepository) List(ctx context.Context, opts domain.QuestionFilter) ([]domain.Question, bool, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	where := `TRUE`
	args := []any{}
	if opts.Tag != "" {
		tagJSON, err := json.Marshal([]string{opts.Tag})
		if err != nil {
			return nil, false, fmt.Errorf("encode tag filter: %w", err)
		}
		args = append(args, string(tagJSON))
		where += fmt.Sprintf(` AND q.tags @> $%d`, len(args))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		where += fmt.Sprintf(` AND q.title ILIKE $%d`, len(args))
	}

	order := `q.created_at DESC`
	switch opts.Sort {
	case domain.SortVotes:
		order = `q.vote_total DESC, q.created_at DESC`
	case domain.SortViews:
		order = `q.view_count DESC, q.created_at DESC`
	}

	args = append(args, opts.Limit+1, opts.Offset)
	query := fmt.Sprintf(
		`SELECT q.id, q.author_id, q.title, q.description, q.tags, q.vote_total,
		        q.view_count, q.accepted_answer_id, q.created_at, q.updated_at,
		        u.username AS author_username, u.reputation AS author_reputation,
		        (SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id) AS answer_count
		 FROM questions q
		 JOIN users u ON u.id = q.author_id
		 WHERE %s
		 ORDER BY %s
		 LIMIT $%d OFFSET $%d`,
		where, order, len(args)-1, len(args))

	var questions []domain.Question
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, false, fmt.Errorf("list questions: %w", err)
	}

	hasNext := len(questions) > opts.Limit
	if hasNext {
		questions = questions[:opts.Limit]
	}
	return questions, hasNext, nil
}

// Trending returns the top questions by vote total, then views.
func (r *QuestionRepository) Trending(ctx context.Context, limit int) ([]domain.Question, error) {
	if limit <= 0 {
		limit = 5
	}

	var questions []domain.Question
	err := r.db.SelectContext(ctx, &questions,
		`SELECT q.id, q.author_id, q.title, q.description, q.tags, q.vote_total,
		        q.view_count, q.accepted_answer_id, q.created_at, q.updated_at,
		        u.username AS author_username, u.reputation AS author_reputation,
		        (SELECT COUNT(*) FROM answers a WHERE a.question_id = q.id) AS answer_count
		 FROM questions q
		 JOIN users u ON u.id = q.author_id
		 ORDER BY q.vote_total DESC, q.view_count DESC, q.created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list trending questions: %w", err)
	}
	return questions, nil
}
