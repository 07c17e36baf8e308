package domain

import (
	"fmt"
	"time"
)

// TargetType identifies what kind of content a vote applies to.
type TargetType string

const (
	TargetQuestion TargetType = "question"
	TargetAnswer   TargetType = "answer"
)

// Valid reports whether the target type is one of the known kinds.
func (t TargetType) Valid() bool {
	return t == TargetQuestion || t == TargetAnswer
}

// Vote records a single user's standing vote on a target. A user holds
// at most one vote per (target_id, target_type) at any time.
type Vote struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"user_id" db:"user_id"`
	TargetID   int64      `json:"target_id" db:"target_id"`
	TargetType TargetType `json:"target_type" db:"target_type"`
	Value      int        `json:"value" db:"value"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"-" db:"updated_at"`
}

// VoteOp is the ledger mutation a cast resolves to.
type VoteOp int

const (
	// VoteOpInsert records a fresh vote.
	VoteOpInsert VoteOp = iota
	// VoteOpDelete revokes an existing vote (toggle-off).
	VoteOpDelete
	// VoteOpUpdate flips an existing vote to the opposite value.
	VoteOpUpdate
)

func (o VoteOp) String() string {
	switch o {
	case VoteOpInsert:
		return "cast"
	case VoteOpDelete:
		return "revoke"
	case VoteOpUpdate:
		return "flip"
	default:
		return "unknown"
	}
}

// VoteChange is the planned ledger mutation plus the delta the
// aggregate counter must absorb to stay consistent with the ledger.
type VoteChange struct {
	Op    VoteOp
	Value int
	Delta int
}

// PlanVote decides how casting value against an existing vote (nil if
// the user has none) mutates the ledger:
//
//   - no existing vote: insert, delta = value
//   - same value again: toggle-off, delete, delta = -value
//   - opposite value: flip, delta = 2*value
func PlanVote(existing *Vote, value int) (VoteChange, error) {
	if value != 1 && value != -1 {
		return VoteChange{}, fmt.Errorf("%w: vote value must be +1 or -1", ErrInvalidInput)
	}
	if existing == nil {
		return VoteChange{Op: VoteOpInsert, Value: value, Delta: value}, nil
	}
	if existing.Value == value {
		return VoteChange{Op: VoteOpDelete, Delta: -value}, nil
	}
	return VoteChange{Op: VoteOpUpdate, Value: value, Delta: 2 * value}, nil
}

// ReputationDelta converts a counter delta into the reputation
// adjustment for the target's author.
func (c VoteChange) ReputationDelta(targetType TargetType) int {
	if targetType == TargetAnswer {
		return c.Delta * RepAnswerVote
	}
	return c.Delta * RepQuestionVote
}

// VoteResult is the authoritative outcome of a cast, read back from
// the store rather than computed by the caller.
type VoteResult struct {
	TargetID   int64      `json:"target_id"`
	TargetType TargetType `json:"target_type"`
	VoteTotal  int        `json:"vote_total"`
	// UserVote is the caller's standing vote after the cast: +1, -1,
	// or 0 when the cast toggled it off.
	UserVote int `json:"user_vote"`
	// Op is the ledger mutation that was applied.
	Op VoteOp `json:"-"`
}
