package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBadge(t *testing.T) {
	tests := []struct {
		name        string
		answerCount int
		want        string
	}{
		{name: "zero answers", answerCount: 0, want: "Newcomer"},
		{name: "just below helper", answerCount: 4, want: "Newcomer"},
		{name: "exactly at helper threshold", answerCount: 5, want: "Helper"},
		{name: "between thresholds", answerCount: 14, want: "Helper"},
		{name: "contributor", answerCount: 15, want: "Contributor"},
		{name: "expert", answerCount: 50, want: "Expert"},
		{name: "master", answerCount: 100, want: "Master"},
		{name: "legend", answerCount: 250, want: "Legend"},
		{name: "beyond top tier", answerCount: 10000, want: "Legend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, err := ResolveBadge(tt.answerCount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tier.Name)
		})
	}
}

func TestResolveBadgeNegative(t *testing.T) {
	_, err := ResolveBadge(-1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNextBadge(t *testing.T) {
	next, err := NextBadge(0)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "Helper", next.Name)
	assert.Equal(t, 5, next.MinAnswers)

	next, err = NextBadge(99)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "Master", next.Name)

	next, err = NextBadge(250)
	require.NoError(t, err)
	assert.Nil(t, next)

	_, err = NextBadge(-5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestTiersAscending(t *testing.T) {
	require.NotEmpty(t, Tiers)
	assert.Equal(t, 0, Tiers[0].MinAnswers)
	for i := 1; i < len(Tiers); i++ {
		assert.Greater(t, Tiers[i].MinAnswers, Tiers[i-1].MinAnswers)
	}
}
