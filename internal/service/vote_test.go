package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/overflow/internal/domain"
)

func TestVoteServiceCast(t *testing.T) {
	ctx := context.Background()
	store := newFakeVoteStore()
	store.setAuthor(1, domain.TargetQuestion, 10)
	svc := NewVoteService(store, false)

	result, err := svc.Cast(ctx, 20, 1, domain.TargetQuestion, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.VoteTotal)
	assert.Equal(t, 1, result.UserVote)

	// same value again toggles it off
	result, err = svc.Cast(ctx, 20, 1, domain.TargetQuestion, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.VoteTotal)
	assert.Equal(t, 0, result.UserVote)

	// downvote then flip to upvote
	result, err = svc.Cast(ctx, 20, 1, domain.TargetQuestion, -1)
	require.NoError(t, err)
	assert.Equal(t, -1, result.VoteTotal)

	result, err = svc.Cast(ctx, 20, 1, domain.TargetQuestion, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.VoteTotal)
	assert.Equal(t, 1, result.UserVote)
}

func TestVoteServiceRejectsSelfVote(t *testing.T) {
	ctx := context.Background()
	store := newFakeVoteStore()
	store.setAuthor(1, domain.TargetAnswer, 10)
	svc := NewVoteService(store, false)

	_, err := svc.Cast(ctx, 10, 1, domain.TargetAnswer, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	// rejected before any ledger mutation
	assert.Zero(t, store.castCalls)
	assert.Empty(t, store.votes)
}

func TestVoteServiceAllowsSelfVoteWhenPolicyPermits(t *testing.T) {
	ctx := context.Background()
	store := newFakeVoteStore()
	store.setAuthor(1, domain.TargetAnswer, 10)
	svc := NewVoteService(store, true)

	result, err := svc.Cast(ctx, 10, 1, domain.TargetAnswer, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.VoteTotal)
}

func TestVoteServiceValidatesInput(t *testing.T) {
	ctx := context.Background()
	store := newFakeVoteStore()
	store.setAuthor(1, domain.TargetQuestion, 10)
	svc := NewVoteService(store, false)

	_, err := svc.Cast(ctx, 20, 1, domain.TargetQuestion, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Cast(ctx, 20, 1, "comment", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Cast(ctx, 20, 999, domain.TargetQuestion, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Concurrent distinct voters must each land exactly one vote.
func TestVoteServiceConcurrentCasts(t *testing.T) {
	ctx := context.Background()
	store := newFakeVoteStore()
	store.setAuthor(1, domain.TargetQuestion, 1000)
	svc := NewVoteService(store, false)

	const voters = 50
	var wg sync.WaitGroup
	for i := range voters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Cast(ctx, int64(i+1), 1, domain.TargetQuestion, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, voters, store.totals[targetKey(1, domain.TargetQuestion)])
	assert.Len(t, store.votes, voters)
}
