// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tomeswap/internal/core/swap"
	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/pkg/uuid"
)

/*
TestNewFeedback checks star bounds, the three opinion enums, and that a
valid rating reads back with identical field values.
*/
func TestNewFeedback(t *testing.T) {
	subSwapID := uuid.New()
	userID := uuid.New()

	t.Run("round_trip", func(t *testing.T) {
		feedback, err := swap.NewFeedback(subSwapID, userID, 5, true,
			swap.LengthJustRight, swap.ConditionAsDescribed, swap.CommunicationPerfect)
		require.NoError(t, err)

		assert.Equal(t, subSwapID, feedback.SubSwapID)
		assert.Equal(t, userID, feedback.UserID)
		assert.Equal(t, 5, feedback.Stars)
		assert.True(t, feedback.Recommend)
		assert.Equal(t, swap.LengthJustRight, feedback.Length)
		assert.Equal(t, swap.ConditionAsDescribed, feedback.Condition)
		assert.Equal(t, swap.CommunicationPerfect, feedback.Communication)
		assert.NotEmpty(t, feedback.ID)
	})

	tests := []struct {
		name          string
		stars         int
		length        swap.LengthOpinion
		condition     swap.ConditionOpinion
		communication swap.CommunicationOpinion
		wantErr       bool
	}{
		{"one_star", 1, swap.LengthTooShort, swap.ConditionWorse, swap.CommunicationPoor, false},
		{"five_stars", 5, swap.LengthTooLong, swap.ConditionBetter, swap.CommunicationOkay, false},
		{"zero_stars", 0, swap.LengthJustRight, swap.ConditionAsDescribed, swap.CommunicationOkay, true},
		{"six_stars", 6, swap.LengthJustRight, swap.ConditionAsDescribed, swap.CommunicationOkay, true},
		{"bad_length", 3, swap.LengthOpinion("epic"), swap.ConditionAsDescribed, swap.CommunicationOkay, true},
		{"bad_condition", 3, swap.LengthJustRight, swap.ConditionOpinion("soggy"), swap.CommunicationOkay, true},
		{"bad_communication", 3, swap.LengthJustRight, swap.ConditionAsDescribed, swap.CommunicationOpinion("psychic"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := swap.NewFeedback(subSwapID, userID, tt.stars, false, tt.length, tt.condition, tt.communication)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

/*
TestNewIssue checks dispute description bounds.
*/
func TestNewIssue(t *testing.T) {
	subSwapID := uuid.New()
	userID := uuid.New()

	t.Run("valid", func(t *testing.T) {
		issue, err := swap.NewIssue(subSwapID, userID, "missing pages 40 through 62")
		require.NoError(t, err)
		assert.Equal(t, subSwapID, issue.SubSwapID)
		assert.False(t, issue.CreatedAt.IsZero())
	})

	t.Run("empty_description", func(t *testing.T) {
		_, err := swap.NewIssue(subSwapID, userID, "")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("over_length_description", func(t *testing.T) {
		long := make([]byte, 1001)
		for index := range long {
			long[index] = 'x'
		}
		_, err := swap.NewIssue(subSwapID, userID, string(long))
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}
