// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tomeswap/internal/core/swap"
	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/pkg/uuid"
)

/*
TestNewTimelineUpdate checks entry validation: description bounds and the
closed status set.
*/
func TestNewTimelineUpdate(t *testing.T) {
	swapID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name        string
		status      swap.TimelineStatus
		description string
		wantErr     bool
	}{
		{"valid_entry", swap.TimelineAccepted, "Swap accepted", false},
		{"empty_description", swap.TimelineAccepted, "", true},
		{"max_length_description", swap.TimelineDisputed, strings.Repeat("a", 100), false},
		{"over_length_description", swap.TimelineDisputed, strings.Repeat("a", 101), true},
		{"unknown_status", swap.TimelineStatus("vanished"), "text", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := swap.NewTimelineUpdate(swapID, userID, tt.status, tt.description)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, swapID, entry.SwapID)
			assert.Equal(t, tt.status, entry.Status)
			assert.False(t, entry.CreatedAt.IsZero())
		})
	}
}

/*
TestTimelineUpdates_SingleRequested checks the append-only collection's
core invariant: at most one requested entry, all other statuses free.
*/
func TestTimelineUpdates_SingleRequested(t *testing.T) {
	swapID := uuid.New()
	userID := uuid.New()

	timeline := swap.TimelineUpdates{}

	first, err := swap.NewRequestedEntry(swapID, userID)
	require.NoError(t, err)
	require.NoError(t, timeline.Append(first))

	second, err := swap.NewRequestedEntry(swapID, userID)
	require.NoError(t, err)

	err = timeline.Append(second)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	assert.Equal(t, 1, timeline.Len())

	// Every non-requested status appends freely, repeatedly.
	for _, status := range []swap.TimelineStatus{
		swap.TimelineAccepted, swap.TimelineDeclined, swap.TimelineMeetingUp,
		swap.TimelineReadingBooks, swap.TimelineFinishedBooks, swap.TimelineWaitingToFinish,
		swap.TimelineFinished, swap.TimelineDisputed, swap.TimelineResolved,
	} {
		entry, err := swap.NewTimelineUpdate(swapID, userID, status, "entry")
		require.NoError(t, err)
		require.NoError(t, timeline.Append(entry), "status %s must not trip the requested guard", status)
		require.NoError(t, timeline.Append(entry), "repeat of status %s must be allowed", status)
	}

	assert.Equal(t, swap.TimelineResolved, timeline.Last().Status)
}

func TestTimelineUpdates_EmptyHistory(t *testing.T) {
	timeline := swap.TimelineUpdates{}
	assert.Nil(t, timeline.Last())
	assert.Equal(t, 0, timeline.Len())
	assert.Empty(t, timeline.Entries())
}

/*
TestTimelineFactory checks each factory constructor tags the right status
and carries its fixed wording.
*/
func TestTimelineFactory(t *testing.T) {
	swapID := uuid.New()
	userID := uuid.New()

	t.Run("requested", func(t *testing.T) {
		entry, err := swap.NewRequestedEntry(swapID, userID)
		require.NoError(t, err)
		assert.Equal(t, swap.TimelineRequested, entry.Status)
	})

	t.Run("response", func(t *testing.T) {
		accepted, err := swap.NewResponseEntry(swapID, userID, true)
		require.NoError(t, err)
		assert.Equal(t, swap.TimelineAccepted, accepted.Status)

		declined, err := swap.NewResponseEntry(swapID, userID, false)
		require.NoError(t, err)
		assert.Equal(t, swap.TimelineDeclined, declined.Status)
	})

	t.Run("reading_progress", func(t *testing.T) {
		entry, err := swap.NewReadingProgressEntry(swapID, userID, 42)
		require.NoError(t, err)
		assert.Equal(t, swap.TimelineReadingBooks, entry.Status)
		assert.Contains(t, entry.Description, "42")
	})

	t.Run("finished_reading", func(t *testing.T) {
		entry, err := swap.NewFinishedReadingEntry(swapID, userID)
		require.NoError(t, err)
		assert.Equal(t, swap.TimelineFinishedBooks, entry.Status)
	})

	t.Run("waiting_for_finish", func(t *testing.T) {
		entry, err := swap.NewWaitingForFinishEntry(swapID, userID)
		require.NoError(t, err)
		assert.Equal(t, swap.TimelineWaitingToFinish, entry.Status)
	})

	t.Run("meeting_up", func(t *testing.T) {
		entry, err := swap.NewMeetingUpEntry(swapID, userID)
		require.NoError(t, err)
		assert.Equal(t, swap.TimelineMeetingUp, entry.Status)
	})

	t.Run("completed", func(t *testing.T) {
		entry, err := swap.NewCompletedEntry(swapID, userID)
		require.NoError(t, err)
		assert.Equal(t, swap.TimelineFinished, entry.Status)
	})

	t.Run("dispute_carries_description", func(t *testing.T) {
		entry, err := swap.NewDisputeEntry(swapID, userID, "missing pages")
		require.NoError(t, err)
		assert.Equal(t, swap.TimelineDisputed, entry.Status)
		assert.Contains(t, entry.Description, "missing pages")
	})

	t.Run("resolved_carries_resolution", func(t *testing.T) {
		entry, err := swap.NewResolvedEntry(swapID, userID, "refunded")
		require.NoError(t, err)
		assert.Equal(t, swap.TimelineResolved, entry.Status)
		assert.Contains(t, entry.Description, "refunded")
	})

	t.Run("long_free_text_is_truncated", func(t *testing.T) {
		entry, err := swap.NewDisputeEntry(swapID, userID, strings.Repeat("x", 500))
		require.NoError(t, err)
		assert.LessOrEqual(t, len([]rune(entry.Description)), 100)
	})
}
