package service

import (
	"context"

	"github.com/sumire/overflow/internal/domain"
)

// Profile is a public user profile with the derived badge state.
type Profile struct {
	User      domain.User       `json:"user"`
	Badge     domain.BadgeTier  `json:"badge"`
	NextBadge *domain.BadgeTier `json:"next_badge,omitempty"`
	// AnswersToNext is how many more answered questions reach the next
	// tier; zero at the top tier.
	AnswersToNext int `json:"answers_to_next"`
}

// UserService serves public user profiles.
type UserService struct {
	users UserStore
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Profile loads a user and resolves their badge tier. The badge is
// derived from the stored answer count at read time, so it may briefly
// lag a just-created answer.
func (s *UserService) Profile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	badge, err := domain.ResolveBadge(user.AnswerCount)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextBadge(user.AnswerCount)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		User:      *user,
		Badge:     badge,
		NextBadge: next,
	}
	if next != nil {
		profile.AnswersToNext = next.MinAnswers - user.AnswerCount
	}
	return profile, nil
}
