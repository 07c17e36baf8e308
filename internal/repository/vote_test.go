package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/overflow/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "pgx"), mock
}

func voteRows(id, userID, targetID int64, targetType domain.TargetType, value int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "target_id", "target_type", "value", "created_at", "updated_at"}).
		AddRow(id, userID, targetID, string(targetType), value, now, now)
}

func TestVoteRepositoryCastInsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, user_id, target_id, target_type, value`).
		WithArgs(int64(20), int64(1), string(domain.TargetQuestion)).
		WillReturnRows(sqlmock.NewRows(nil))
	mock.ExpectExec(`INSERT INTO votes`).
		WithArgs(int64(20), int64(1), string(domain.TargetQuestion), 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`UPDATE questions SET vote_total = vote_total`).
		WithArgs(1, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"vote_total", "author_id"}).AddRow(4, int64(10)))
	mock.ExpectExec(`UPDATE users SET reputation = GREATEST`).
		WithArgs(domain.RepQuestionVote, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Cast(context.Background(), 20, 1, domain.TargetQuestion, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, result.VoteTotal)
	assert.Equal(t, 1, result.UserVote)
	assert.Equal(t, domain.VoteOpInsert, result.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepositoryCastToggleOff(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, user_id, target_id, target_type, value`).
		WithArgs(int64(20), int64(1), string(domain.TargetAnswer)).
		WillReturnRows(voteRows(7, 20, 1, domain.TargetAnswer, 1))
	mock.ExpectExec(`DELETE FROM votes WHERE id`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE answers SET vote_total = vote_total`).
		WithArgs(-1, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"vote_total", "author_id"}).AddRow(2, int64(10)))
	mock.ExpectExec(`UPDATE users SET reputation = GREATEST`).
		WithArgs(-domain.RepAnswerVote, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Cast(context.Background(), 20, 1, domain.TargetAnswer, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.VoteTotal)
	assert.Zero(t, result.UserVote)
	assert.Equal(t, domain.VoteOpDelete, result.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepositoryCastFlip(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, user_id, target_id, target_type, value`).
		WithArgs(int64(20), int64(1), string(domain.TargetQuestion)).
		WillReturnRows(voteRows(7, 20, 1, domain.TargetQuestion, -1))
	mock.ExpectExec(`UPDATE votes SET value`).
		WithArgs(1, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE questions SET vote_total = vote_total`).
		WithArgs(2, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"vote_total", "author_id"}).AddRow(5, int64(10)))
	mock.ExpectExec(`UPDATE users SET reputation = GREATEST`).
		WithArgs(2*domain.RepQuestionVote, int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := repo.Cast(context.Background(), 20, 1, domain.TargetQuestion, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, result.VoteTotal)
	assert.Equal(t, 1, result.UserVote)
	assert.Equal(t, domain.VoteOpUpdate, result.Op)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failed counter update must roll the ledger change back with it.
func TestVoteRepositoryCastRollsBackOnCounterFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, user_id, target_id, target_type, value`).
		WithArgs(int64(20), int64(1), string(domain.TargetQuestion)).
		WillReturnRows(sqlmock.NewRows(nil))
	mock.ExpectExec(`INSERT INTO votes`).
		WithArgs(int64(20), int64(1), string(domain.TargetQuestion), 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`UPDATE questions SET vote_total = vote_total`).
		WithArgs(1, int64(1)).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, err := repo.Cast(context.Background(), 20, 1, domain.TargetQuestion, 1)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepositoryCastDuplicateInsertConflicts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, user_id, target_id, target_type, value`).
		WithArgs(int64(20), int64(1), string(domain.TargetQuestion)).
		WillReturnRows(sqlmock.NewRows(nil))
	mock.ExpectExec(`INSERT INTO votes`).
		WithArgs(int64(20), int64(1), string(domain.TargetQuestion), 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Cast(context.Background(), 20, 1, domain.TargetQuestion, 1)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepositoryTargetAuthorNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectQuery(`SELECT author_id FROM questions`).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows(nil))

	_, err := repo.TargetAuthor(context.Background(), 999, domain.TargetQuestion)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.TargetAuthor(context.Background(), 1, "comment")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVoteRepositoryListForUserEmptyTargets(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewVoteRepository(db)

	votes, err := repo.ListForUser(context.Background(), 1, domain.TargetAnswer, nil)
	require.NoError(t, err)
	assert.Nil(t, votes)
}
