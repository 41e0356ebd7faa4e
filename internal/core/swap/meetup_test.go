// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/taibuivan/tomeswap/internal/core/swap"
	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/pkg/uuid"
)

func proposedMeetup(t *testing.T) *swap.Meetup {
	t.Helper()
	location, err := swap.NewCoordinates(52.2297, 21.0122)
	require.NoError(t, err)
	return swap.NewMeetup(uuid.New(), uuid.New(), location)
}

/*
TestNewCoordinates checks the latitude/longitude bounds.
*/
func TestNewCoordinates(t *testing.T) {
	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		wantErr   bool
	}{
		{"warsaw", 52.2297, 21.0122, false},
		{"poles", 90, -180, false},
		{"latitude_too_high", 90.01, 0, true},
		{"latitude_too_low", -90.01, 0, true},
		{"longitude_too_high", 0, 180.01, true},
		{"longitude_too_low", 0, -180.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := swap.NewCoordinates(tt.latitude, tt.longitude)
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
TestMeetup_Transition walks the negotiation state machine: from proposed
or changed_location only confirmed and changed_location are legal,
confirmed leads to completed, and completed is terminal.
*/
func TestMeetup_Transition(t *testing.T) {
	newLocation := swap.Coordinates{Latitude: 50.0647, Longitude: 19.945}

	tests := []struct {
		name     string
		from     swap.MeetupStatus
		target   swap.MeetupStatus
		location *swap.Coordinates
		wantCode string
	}{
		{"proposed_to_confirmed", swap.MeetupProposed, swap.MeetupConfirmed, nil, ""},
		{"proposed_to_changed", swap.MeetupProposed, swap.MeetupChangedLocation, &newLocation, ""},
		{"proposed_to_completed_illegal", swap.MeetupProposed, swap.MeetupCompleted, nil, "CONFLICT"},
		{"changed_to_confirmed", swap.MeetupChangedLocation, swap.MeetupConfirmed, nil, ""},
		{"changed_to_changed", swap.MeetupChangedLocation, swap.MeetupChangedLocation, &newLocation, ""},
		{"changed_to_proposed_illegal", swap.MeetupChangedLocation, swap.MeetupProposed, nil, "CONFLICT"},
		{"confirmed_to_completed", swap.MeetupConfirmed, swap.MeetupCompleted, nil, ""},
		{"confirmed_to_changed_illegal", swap.MeetupConfirmed, swap.MeetupChangedLocation, &newLocation, "CONFLICT"},
		{"no_location_to_proposed", swap.MeetupNoLocation, swap.MeetupProposed, nil, ""},
		{"completed_is_terminal", swap.MeetupCompleted, swap.MeetupConfirmed, nil, "CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meetup := proposedMeetup(t)
			meetup.Status = tt.from

			err := meetup.Transition(tt.target, tt.location)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperr.As(err).Code)
				assert.Equal(t, tt.from, meetup.Status, "failed transition must not move the status")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.target, meetup.Status)
			}
		})
	}

	t.Run("identical_coordinates_rejected", func(t *testing.T) {
		meetup := proposedMeetup(t)
		current := meetup.Location

		err := meetup.Transition(swap.MeetupChangedLocation, &current)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("changed_location_requires_coordinates", func(t *testing.T) {
		meetup := proposedMeetup(t)

		err := meetup.Transition(swap.MeetupChangedLocation, nil)
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("changed_location_moves_the_pin", func(t *testing.T) {
		meetup := proposedMeetup(t)

		require.NoError(t, meetup.Transition(swap.MeetupChangedLocation, &newLocation))
		assert.Equal(t, newLocation, meetup.Location)
	})
}

/*
TestMeetups_Add checks the collection rules: the first meetup goes in
freely, a follow-up requires the previous one completed, and the cap
sits at ten.
*/
func TestMeetups_Add(t *testing.T) {
	location := swap.Coordinates{Latitude: 52.2297, Longitude: 21.0122}
	swapID := uuid.New()
	userID := uuid.New()

	t.Run("first_meetup_bypasses_sequential_rule", func(t *testing.T) {
		meetups := swap.Meetups{}
		require.NoError(t, meetups.Add(swap.NewMeetup(swapID, userID, location)))
		assert.Equal(t, 1, meetups.Len())
	})

	t.Run("second_requires_previous_completed", func(t *testing.T) {
		meetups := swap.Meetups{}
		first := swap.NewMeetup(swapID, userID, location)
		require.NoError(t, meetups.Add(first))

		err := meetups.Add(swap.NewMeetup(swapID, userID, location))
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)

		first.Status = swap.MeetupCompleted
		require.NoError(t, meetups.Add(swap.NewMeetup(swapID, userID, location)))
	})

	t.Run("eleventh_add_hits_the_cap", func(t *testing.T) {
		meetups := swap.Meetups{}
		for index := 0; index < 10; index++ {
			meetup := swap.NewMeetup(swapID, userID, location)
			require.NoError(t, meetups.Add(meetup))
			meetup.Status = swap.MeetupCompleted
		}

		err := meetups.Add(swap.NewMeetup(swapID, userID, location))
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
		assert.Equal(t, 10, meetups.Len())
	})
}

func TestMeetups_Remove(t *testing.T) {
	location := swap.Coordinates{Latitude: 52.2297, Longitude: 21.0122}
	meetups := swap.Meetups{}

	meetup := swap.NewMeetup(uuid.New(), uuid.New(), location)
	require.NoError(t, meetups.Add(meetup))

	found, err := meetups.ByID(meetup.ID)
	require.NoError(t, err)
	assert.Equal(t, meetup, found)

	require.NoError(t, meetups.Remove(meetup.ID))
	assert.Equal(t, 0, meetups.Len())

	err = meetups.Remove(meetup.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestMeetups_Invariants drives random add/complete/remove sequences and
asserts the collection never exceeds the cap and never holds two
consecutive unfinished meetups.
*/
func TestMeetups_Invariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		location := swap.Coordinates{Latitude: 13.7563, Longitude: 100.5018}
		swapID := uuid.New()
		userID := uuid.New()

		meetups := swap.Meetups{}

		operations := rapid.IntRange(1, 40).Draw(t, "operations")
		for step := 0; step < operations; step++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				_ = meetups.Add(swap.NewMeetup(swapID, userID, location))
			case 1:
				if last := meetups.Last(); last != nil {
					last.Status = swap.MeetupCompleted
				}
			case 2:
				if last := meetups.Last(); last != nil {
					_ = meetups.Remove(last.ID)
				}
			}

			if meetups.Len() > 10 {
				t.Fatalf("collection exceeded the cap: %d", meetups.Len())
			}

			// Only the most recent meetup may be unfinished.
			items := meetups.Items()
			for index, meetup := range items {
				if index < len(items)-1 && meetup.Status != swap.MeetupCompleted {
					t.Fatalf("unfinished meetup at %d is not the tail", index)
				}
			}
		}
	})
}
