package service

import (
	"context"
	"fmt"

	"github.com/sumire/overflow/internal/domain"
	"github.com/sumire/overflow/internal/metrics"
)

// VoteStore defines the vote ledger access interface consumed by VoteService.
type VoteStore interface {
	TargetAuthor(ctx context.Context, targetID int64, targetType domain.TargetType) (int64, error)
	Cast(ctx context.Context, userID, targetID int64, targetType domain.TargetType, value int) (*domain.VoteResult, error)
	ListForUser(ctx context.Context, userID int64, targetType domain.TargetType, targetIDs []int64) ([]domain.Vote, error)
}

// VoteService enforces voting policy on top of the atomic ledger.
type VoteService struct {
	votes         VoteStore
	allowSelfVote bool
}

// NewVoteService creates a new VoteService.
func NewVoteService(votes VoteStore, allowSelfVote bool) *VoteService {
	return &VoteService{votes: votes, allowSelfVote: allowSelfVote}
}

// Cast records one vote cast and returns the authoritative result.
// Self-votes are rejected before any state changes when the policy
// forbids them.
func (s *VoteService) Cast(ctx context.Context, userID, targetID int64, targetType domain.TargetType, value int) (*domain.VoteResult, error) {
	if !targetType.Valid() {
		return nil, fmt.Errorf("%w: unknown target type %q", domain.ErrInvalidInput, targetType)
	}
	if value != 1 && value != -1 {
		return nil, fmt.Errorf("%w: vote value must be +1 or -1", domain.ErrInvalidInput)
	}

	authorID, err := s.votes.TargetAuthor(ctx, targetID, targetType)
	if err != nil {
		return nil, err
	}
	if authorID == userID && !s.allowSelfVote {
		return nil, fmt.Errorf("%w: you cannot vote on your own content", domain.ErrForbidden)
	}

	result, err := s.votes.Cast(ctx, userID, targetID, targetType, value)
	if err != nil {
		return nil, err
	}

	metrics.VotesCast.WithLabelValues(string(targetType), result.Op.String()).Inc()
	return result, nil
}

// ListForUser returns the user's standing votes on the given targets.
func (s *VoteService) ListForUser(ctx context.Context, userID int64, targetType domain.TargetType, targetIDs []int64) ([]domain.Vote, error) {
	return s.votes.ListForUser(ctx, userID, targetType, targetIDs)
}
