package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/sumire/overflow/internal/domain"
)

// VoteRepository owns the vote ledger and the denormalized vote totals
// on questions and answers. The ledger mutation, the counter update
// and the author reputation adjustment commit as a single transaction:
// a partial failure rolls all three back.
type VoteRepository struct {
	db *sqlx.DB
}

// NewVoteRepository creates a new VoteRepository.
func NewVoteRepository(db *sqlx.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

func targetTable(t domain.TargetType) (string, error) {
	switch t {
	case domain.TargetQuestion:
		return "questions", nil
	case domain.TargetAnswer:
		return "answers", nil
	default:
		return "", fmt.Errorf("%w: unknown target type %q", domain.ErrInvalidInput, t)
	}
}

// TargetAuthor returns the author of the voting target.
func (r *VoteRepository) TargetAuthor(ctx context.Context, targetID int64, targetType domain.TargetType) (int64, error) {
	table, err := targetTable(targetType)
	if err != nil {
		return 0, err
	}

	var authorID int64
	err = r.db.GetContext(ctx, &authorID,
		fmt.Sprintf(`SELECT author_id FROM %s WHERE id = $1`, table), targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("find %s author: %w", targetType, err)
	}
	return authorID, nil
}

// Cast applies one vote cast atomically: it locks the caller's
// existing vote row (if any), plans the toggle/flip/insert, applies
// the ledger change, shifts the target's vote_total by the planned
// delta and adjusts the author's reputation. The returned total comes
// from the UPDATE itself, never from a client-side computation.
func (r *VoteRepository) Cast(ctx context.Context, userID, targetID int64, targetType domain.TargetType, value int) (*domain.VoteResult, error) {
	table, err := targetTable(targetType)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin vote tx: %w", err)
	}
	defer tx.Rollback()

	var existing *domain.Vote
	var current domain.Vote
	err = tx.GetContext(ctx, &current,
		`SELECT id, user_id, target_id, target_type, value, created_at, updated_at
		 FROM votes
		 WHERE user_id = $1 AND target_id = $2 AND target_type = $3
		 FOR UPDATE`,
		userID, targetID, targetType)
	switch {
	case err == nil:
		existing = &current
	case errors.Is(err, sql.ErrNoRows):
		// first vote by this user on this target
	default:
		return nil, fmt.Errorf("lock vote row: %w", err)
	}

	change, err := domain.PlanVote(existing, value)
	if err != nil {
		return nil, err
	}

	switch change.Op {
	case domain.VoteOpInsert:
		res, err := tx.ExecContext(ctx,
			`INSERT INTO votes (user_id, target_id, target_type, value)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, target_id, target_type) DO NOTHING`,
			userID, targetID, targetType, change.Value)
		if err != nil {
			return nil, fmt.Errorf("insert vote: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("insert vote: %w", err)
		}
		if inserted == 0 {
			// another request from the same user won the race
			return nil, domain.ErrConflict
		}
	case domain.VoteOpDelete:
		if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE id = $1`, existing.ID); err != nil {
			return nil, fmt.Errorf("delete vote: %w", err)
		}
	case domain.VoteOpUpdate:
		if _, err := tx.ExecContext(ctx,
			`UPDATE votes SET value = $1, updated_at = NOW() WHERE id = $2`,
			change.Value, existing.ID); err != nil {
			return nil, fmt.Errorf("flip vote: %w", err)
		}
	}

	var target struct {
		VoteTotal int   `db:"vote_total"`
		AuthorID  int64 `db:"author_id"`
	}
	err = tx.GetContext(ctx, &target,
		fmt.Sprintf(`UPDATE %s SET vote_total = vote_total + $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING vote_total, author_id`, table),
		change.Delta, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update %s vote total: %w", targetType, err)
	}

	if repDelta := change.ReputationDelta(targetType); repDelta != 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET reputation = GREATEST(0, reputation + $1), updated_at = NOW() WHERE id = $2`,
			repDelta, target.AuthorID); err != nil {
			return nil, fmt.Errorf("update author reputation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit vote tx: %w", err)
	}

	return &domain.VoteResult{
		TargetID:   targetID,
		TargetType: targetType,
		VoteTotal:  target.VoteTotal,
		UserVote:   change.Value,
		Op:         change.Op,
	}, nil
}

// ListForUser returns the user's standing votes on the given targets,
// used to render vote state on detail pages.
func (r *VoteRepository) ListForUser(ctx context.Context, userID int64, targetType domain.TargetType, targetIDs []int64) ([]domain.Vote, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		`SELECT id, user_id, target_id, target_type, value, created_at, updated_at
		 FROM votes
		 WHERE user_id = ? AND target_type = ? AND target_id IN (?)`,
		userID, targetType, targetIDs)
	if err != nil {
		return nil, fmt.Errorf("build vote query: %w", err)
	}

	var votes []domain.Vote
	if err := r.db.SelectContext(ctx, &votes, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list votes for user %d: %w", userID, err)
	}
	return votes, nil
}

// isUniqueViolation reports whether the error is a Postgres unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
