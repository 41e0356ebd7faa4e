// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap

import (
	"encoding/json"

	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/internal/platform/constants"
	"github.com/taibuivan/tomeswap/internal/platform/validate"
	"github.com/taibuivan/tomeswap/pkg/uuid"
)

// # Location

// Coordinates is a validated latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinates validates and builds a location.
func NewCoordinates(latitude, longitude float64) (Coordinates, error) {
	validator := &validate.Validator{}
	validator.Latitude("latitude", latitude)
	validator.Longitude("longitude", longitude)

	if err := validator.Err(); err != nil {
		return Coordinates{}, err
	}

	return Coordinates{Latitude: latitude, Longitude: longitude}, nil
}

// Equal reports whether two locations are the same point.
func (coordinates Coordinates) Equal(other Coordinates) bool {
	return coordinates.Latitude == other.Latitude && coordinates.Longitude == other.Longitude
}

// # Meetup Enums

// MeetupStatus tracks one meetup through its negotiation.
type MeetupStatus string

const (
	MeetupNoLocation      MeetupStatus = "no_location"
	MeetupProposed        MeetupStatus = "proposed"
	MeetupChangedLocation MeetupStatus = "changed_location"
	MeetupConfirmed       MeetupStatus = "confirmed"

	// MeetupCompleted is terminal; no further transitions are legal.
	MeetupCompleted MeetupStatus = "completed"
)

// meetupTransitions maps each status to its legal targets.
//
// From proposed or changed_location the counterpart either confirms the
// spot or counters with a new one. Completed has no outgoing edges.
var meetupTransitions = map[MeetupStatus][]MeetupStatus{
	MeetupNoLocation:      {MeetupProposed},
	MeetupProposed:        {MeetupConfirmed, MeetupChangedLocation},
	MeetupChangedLocation: {MeetupConfirmed, MeetupChangedLocation},
	MeetupConfirmed:       {MeetupCompleted},
	MeetupCompleted:       {},
}

// # Meetup Entity

// Meetup is one proposed physical handover for a swap.
type Meetup struct {
	ID          string       `json:"id"` // UUIDv7
	SwapID      string       `json:"swap_id"`
	SuggestedBy string       `json:"suggested_by"` // immutable once set
	Status      MeetupStatus `json:"status"`
	Location    Coordinates  `json:"location"`
}

/*
NewMeetup builds a meetup proposal at the given location.

Parameters:
  - swapID: string
  - suggestedBy: string (The proposing participant; immutable)
  - location: Coordinates

Returns:
  - *Meetup: New proposal in the proposed state
*/
func NewMeetup(swapID, suggestedBy string, location Coordinates) *Meetup {
	return &Meetup{
		ID:          uuid.New(),
		SwapID:      swapID,
		SuggestedBy: suggestedBy,
		Status:      MeetupProposed,
		Location:    location,
	}
}

/*
Transition moves the meetup to a new status, optionally with a new location.

Description: Completed is terminal; any transition off it fails with
Conflict. A changed_location transition must actually move the pin, so
identical coordinates are rejected.

Parameters:
  - target: MeetupStatus
  - location: *Coordinates (Required for changed_location, ignored otherwise)

Returns:
  - error: Conflict for illegal transitions, validation failures otherwise
*/
func (meetup *Meetup) Transition(target MeetupStatus, location *Coordinates) error {
	if meetup.Status == MeetupCompleted {
		return apperr.Conflict("Meetup is completed and cannot change")
	}

	allowed := false
	for _, candidate := range meetupTransitions[meetup.Status] {
		if candidate == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperr.Conflict("Illegal meetup transition from " + string(meetup.Status) + " to " + string(target))
	}

	if target == MeetupChangedLocation {
		if location == nil {
			return apperr.ValidationError("A new location is required to change location")
		}
		if meetup.Location.Equal(*location) {
			return apperr.ValidationError("New location must differ from the current one")
		}
		meetup.Location = *location
	}

	meetup.Status = target
	return nil
}

// # Meetup Collection

// Meetups is the bounded, sequential meetup history of one swap.
//
// # Invariants
//
// At most 10 meetups per swap. A new meetup may be added only when the
// collection is empty or the most recently added meetup is completed.
// The zero value is an empty, usable collection.
type Meetups struct {
	items []*Meetup
}

// RestoreMeetups rebuilds a collection from storage in insertion order.
func RestoreMeetups(items []*Meetup) Meetups {
	return Meetups{items: items}
}

// Add appends a new meetup, enforcing the cap and the sequential rule.
func (meetups *Meetups) Add(meetup *Meetup) error {
	if len(meetups.items) >= constants.MaxMeetupsPerSwap {
		return apperr.Conflict("Swap has reached the meetup limit")
	}

	if last := meetups.Last(); last != nil && last.Status != MeetupCompleted {
		return apperr.Conflict("Previous meetup must be completed first")
	}

	meetups.items = append(meetups.items, meetup)
	return nil
}

// Remove deletes a meetup by id, or NotFound.
func (meetups *Meetups) Remove(meetupID string) error {
	for index, meetup := range meetups.items {
		if meetup.ID == meetupID {
			meetups.items = append(meetups.items[:index], meetups.items[index+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Meetup")
}

// ByID returns the meetup with the given id, or NotFound.
func (meetups *Meetups) ByID(meetupID string) (*Meetup, error) {
	for _, meetup := range meetups.items {
		if meetup.ID == meetupID {
			return meetup, nil
		}
	}
	return nil, apperr.NotFound("Meetup")
}

// Last returns the most recently added meetup, or nil when empty.
func (meetups *Meetups) Last() *Meetup {
	if len(meetups.items) == 0 {
		return nil
	}
	return meetups.items[len(meetups.items)-1]
}

// Items returns the meetups in insertion order. Callers must not mutate it.
func (meetups *Meetups) Items() []*Meetup {
	return meetups.items
}

// Len reports the number of meetups.
func (meetups *Meetups) Len() int {
	return len(meetups.items)
}

// MarshalJSON renders the collection as a plain array, never null.
func (meetups Meetups) MarshalJSON() ([]byte, error) {
	if meetups.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(meetups.items)
}
