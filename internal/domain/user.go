package domain

import "time"

// AuthProvider represents an OAuth provider.
type AuthProvider string

const (
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderGitHub AuthProvider = "github"

	// AuthProviderSystem is the reserved provider for internal identities
	// such as the AI answer author.
	AuthProviderSystem AuthProvider = "system"
)

// Role represents the permission level of a user.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a community member.
type User struct {
	ID          int64        `json:"id" db:"id"`
	Provider    AuthProvider `json:"-" db:"provider"`
	ProviderID  string       `json:"-" db:"provider_id"`
	Username    string       `json:"username" db:"username"`
	Email       string       `json:"email" db:"email"`
	AvatarURL   *string      `json:"avatar_url,omitempty" db:"avatar_url"`
	Role        Role         `json:"role" db:"role"`
	Reputation  int          `json:"reputation" db:"reputation"`
	AnswerCount int          `json:"answer_count" db:"answer_count"`
	CreatedAt   time.Time    `json:"joined_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"-" db:"updated_at"`
}

// Badge resolves the user's current badge tier from their answer count.
func (u User) Badge() BadgeTier {
	tier, err := ResolveBadge(u.AnswerCount)
	if err != nil {
		return Tiers[0]
	}
	return tier
}

// Reputation point adjustments applied as side effects of vote and
// acceptance activity on a user's content.
const (
	RepQuestionVote = 5
	RepAnswerVote   = 10
	RepAccepted     = 15
)
