package domain

import "fmt"

// BadgeTier is a named reputation milestone derived purely from the
// number of questions a user has answered.
type BadgeTier struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	MinAnswers  int    `json:"min_answers"`
}

// Tiers lists all badge tiers in ascending threshold order. The first
// tier must have a zero threshold so every answer count resolves.
var Tiers = []BadgeTier{
	{Name: "Newcomer", Description: "Welcome to the community!", Icon: "🌱", MinAnswers: 0},
	{Name: "Helper", Description: "Answered 5 questions", Icon: "🤝", MinAnswers: 5},
	{Name: "Contributor", Description: "Answered 15 questions", Icon: "💡", MinAnswers: 15},
	{Name: "Expert", Description: "Answered 50 questions", Icon: "🎯", MinAnswers: 50},
	{Name: "Master", Description: "Answered 100 questions", Icon: "👑", MinAnswers: 100},
	{Name: "Legend", Description: "Answered 250 questions", Icon: "🏆", MinAnswers: 250},
}

// ResolveBadge returns the highest tier whose threshold the given
// answer count meets.
func ResolveBadge(answerCount int) (BadgeTier, error) {
	if answerCount < 0 {
		return BadgeTier{}, fmt.Errorf("%w: answer count must not be negative", ErrInvalidInput)
	}
	tier := Tiers[0]
	for _, t := range Tiers {
		if answerCount >= t.MinAnswers {
			tier = t
		}
	}
	return tier, nil
}

// NextBadge returns the next tier above the given answer count, or nil
// when the top tier is already reached.
func NextBadge(answerCount int) (*BadgeTier, error) {
	if answerCount < 0 {
		return nil, fmt.Errorf("%w: answer count must not be negative", ErrInvalidInput)
	}
	for i := range Tiers {
		if Tiers[i].MinAnswers > answerCount {
			return &Tiers[i], nil
		}
	}
	return nil, nil
}
