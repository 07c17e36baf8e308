package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanVote(t *testing.T) {
	tests := []struct {
		name     string
		existing *Vote
		value    int
		want     VoteChange
	}{
		{
			name:  "fresh upvote",
			value: 1,
			want:  VoteChange{Op: VoteOpInsert, Value: 1, Delta: 1},
		},
		{
			name:  "fresh downvote",
			value: -1,
			want:  VoteChange{Op: VoteOpInsert, Value: -1, Delta: -1},
		},
		{
			name:     "repeat upvote toggles off",
			existing: &Vote{Value: 1},
			value:    1,
			want:     VoteChange{Op: VoteOpDelete, Delta: -1},
		},
		{
			name:     "repeat downvote toggles off",
			existing: &Vote{Value: -1},
			value:    -1,
			want:     VoteChange{Op: VoteOpDelete, Delta: 1},
		},
		{
			name:     "upvote flips to downvote",
			existing: &Vote{Value: 1},
			value:    -1,
			want:     VoteChange{Op: VoteOpUpdate, Value: -1, Delta: -2},
		},
		{
			name:     "downvote flips to upvote",
			existing: &Vote{Value: -1},
			value:    1,
			want:     VoteChange{Op: VoteOpUpdate, Value: 1, Delta: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, err := PlanVote(tt.existing, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, change)
		})
	}
}

func TestPlanVoteInvalidValue(t *testing.T) {
	for _, value := range []int{0, 2, -2, 100} {
		_, err := PlanVote(nil, value)
		assert.ErrorIs(t, err, ErrInvalidInput, "value %d", value)
	}
}

// The total must end up as the sum of standing votes no matter what
// sequence of casts produced it. Replays the sequence +1, +1, -1, +1
// against one target: cast, toggle-off, downvote, flip back up.
func TestPlanVoteSequenceKeepsTotalConsistent(t *testing.T) {
	var existing *Vote
	total := 0

	apply := func(value int) VoteChange {
		change, err := PlanVote(existing, value)
		require.NoError(t, err)
		total += change.Delta
		switch change.Op {
		case VoteOpDelete:
			existing = nil
		default:
			existing = &Vote{Value: change.Value}
		}
		return change
	}

	change := apply(1)
	assert.Equal(t, VoteOpInsert, change.Op)
	assert.Equal(t, 1, total)

	change = apply(1)
	assert.Equal(t, VoteOpDelete, change.Op)
	assert.Equal(t, 0, total)

	change = apply(-1)
	assert.Equal(t, VoteOpInsert, change.Op)
	assert.Equal(t, -1, total)

	change = apply(1)
	assert.Equal(t, VoteOpUpdate, change.Op)
	assert.Equal(t, 1, total)
	require.NotNil(t, existing)
	assert.Equal(t, 1, existing.Value)
}

func TestReputationDelta(t *testing.T) {
	up := VoteChange{Op: VoteOpInsert, Value: 1, Delta: 1}
	assert.Equal(t, RepQuestionVote, up.ReputationDelta(TargetQuestion))
	assert.Equal(t, RepAnswerVote, up.ReputationDelta(TargetAnswer))

	flipDown := VoteChange{Op: VoteOpUpdate, Value: -1, Delta: -2}
	assert.Equal(t, -2*RepAnswerVote, flipDown.ReputationDelta(TargetAnswer))
}

func TestVoteOpString(t *testing.T) {
	assert.Equal(t, "cast", VoteOpInsert.String())
	assert.Equal(t, "revoke", VoteOpDelete.String())
	assert.Equal(t, "flip", VoteOpUpdate.String())
}
