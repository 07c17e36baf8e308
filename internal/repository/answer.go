package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/overflow/internal/domain"
)

// AnswerRepository handles answer data access, including the
// acceptance transition and the derived answer_count on users.
type AnswerRepository struct {
	db *sqlx.DB
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(db *sqlx.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// Create inserts an answer and bumps the author's answer count in the
// same transaction. AI-generated answers do not count toward the
// system identity's badge progress.
func (r *AnswerRepository) Create(ctx context.Context, a domain.Answer) (*domain.Answer, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin answer tx: %w", err)
	}
	defer tx.Rollback()

	var result domain.Answer
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO answers (question_id, author_id, content, is_ai_generated)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, question_id, author_id, content, vote_total, is_accepted,
		           is_ai_generated, created_at, updated_at`,
		a.QuestionID, a.AuthorID, a.Content, a.IsAIGenerated,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}

	if !a.IsAIGenerated {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET answer_count = answer_count + 1, updated_at = NOW() WHERE id = $1`,
			a.AuthorID); err != nil {
			return nil, fmt.Errorf("increment answer count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit answer tx: %w", err)
	}
	return &result, nil
}

// FindByID retrieves an answer by its ID.
func (r *AnswerRepository) FindByID(ctx context.Context, id int64) (*domain.Answer, error) {
	var a domain.Answer
	err := r.db.GetContext(ctx, &a,
		`SELECT a.id, a.question_id, a.author_id, a.content, a.vote_total, a.is_accepted,
		        a.is_ai_generated, a.created_at, a.updated_at,
		        u.username AS author_username, u.reputation AS author_reputation
		 FROM answers a
		 JOIN users u ON u.id = a.author_id
		 WHERE a.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find answer %d: %w", id, err)
	}
	return &a, nil
}

// ListByQuestion returns all answers under a question, accepted first,
// then by vote total.
func (r *AnswerRepository) ListByQuestion(ctx context.Context, questionID int64) ([]domain.Answer, error) {
	var answers []domain.Answer
	err := r.db.SelectContext(ctx, &answers,
		`SELECT a.id, a.question_id, a.author_id, a.content, a.vote_total, a.is_accepted,
		        a.is_ai_generated, a.created_at, a.updated_at,
		        u.username AS author_username, u.reputation AS author_reputation
		 FROM answers a
		 JOIN users u ON u.id = a.author_id
		 WHERE a.question_id = $1
		 ORDER BY a.is_accepted DESC, a.vote_total DESC, a.created_at ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("list answers for question %d: %w", questionID, err)
	}
	return answers, nil
}

// Accept atomically marks one answer accepted: it locks the question,
// verifies the answer belongs to it, clears every other accepted flag,
// sets the question's accepted_answer_id and moves the acceptance
// reputation bonus from the previously accepted author (if any) to the
// new one. A reader never observes two accepted answers.
func (r *AnswerRepository) Accept(ctx context.Context, questionID, answerID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin accept tx: %w", err)
	}
	defer tx.Rollback()

	var question struct {
		AuthorID         int64  `db:"author_id"`
		AcceptedAnswerID *int64 `db:"accepted_answer_id"`
	}
	err = tx.GetContext(ctx, &question,
		`SELECT author_id, accepted_answer_id FROM questions WHERE id = $1 FOR UPDATE`,
		questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock question %d: %w", questionID, err)
	}

	var answer struct {
		QuestionID int64 `db:"question_id"`
		AuthorID   int64 `db:"author_id"`
	}
	err = tx.GetContext(ctx, &answer,
		`SELECT question_id, author_id FROM answers WHERE id = $1`, answerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("find answer %d: %w", answerID, err)
	}
	if answer.QuestionID != questionID {
		return fmt.Errorf("%w: answer %d does not belong to question %d", domain.ErrInvalidInput, answerID, questionID)
	}

	if question.AcceptedAnswerID != nil && *question.AcceptedAnswerID == answerID {
		// already accepted, nothing to do
		return tx.Commit()
	}

	// Clear first, then set: the partial unique index on accepted
	// answers must never see two flagged rows.
	if err := clearAccepted(ctx, tx, questionID, question.AcceptedAnswerID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE answers SET is_accepted = TRUE, updated_at = NOW() WHERE id = $1`,
		answerID); err != nil {
		return fmt.Errorf("mark answer accepted: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE questions SET accepted_answer_id = $1, updated_at = NOW() WHERE id = $2`,
		answerID, questionID); err != nil {
		return fmt.Errorf("set accepted answer id: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET reputation = GREATEST(0, reputation + $1), updated_at = NOW() WHERE id = $2`,
		domain.RepAccepted, answer.AuthorID); err != nil {
		return fmt.Errorf("award acceptance reputation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit accept tx: %w", err)
	}
	return nil
}

// Unaccept reverses the acceptance state of a question.
func (r *AnswerRepository) Unaccept(ctx context.Context, questionID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unaccept tx: %w", err)
	}
	defer tx.Rollback()

	var acceptedID *int64
	err = tx.GetContext(ctx, &acceptedID,
		`SELECT accepted_answer_id FROM questions WHERE id = $1 FOR UPDATE`, questionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("lock question %d: %w", questionID, err)
	}
	if acceptedID == nil {
		return nil
	}

	if err := clearAccepted(ctx, tx, questionID, acceptedID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE questions SET accepted_answer_id = NULL, updated_at = NOW() WHERE id = $1`,
		questionID); err != nil {
		return fmt.Errorf("clear accepted answer id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unaccept tx: %w", err)
	}
	return nil
}

// clearAccepted removes the accepted flag from a question's answers
// and takes back the acceptance bonus from the displaced author.
func clearAccepted(ctx context.Context, tx *sqlx.Tx, questionID int64, previousID *int64) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE answers SET is_accepted = FALSE, updated_at = NOW()
		 WHERE question_id = $1 AND is_accepted`, questionID); err != nil {
		return fmt.Errorf("clear accepted answers: %w", err)
	}

	if previousID == nil {
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET reputation = GREATEST(0, reputation - $1), updated_at = NOW()
		 WHERE id = (SELECT author_id FROM answers WHERE id = $2)`,
		domain.RepAccepted, *previousID); err != nil {
		return fmt.Errorf("revoke acceptance reputation: %w", err)
	}
	return nil
}
