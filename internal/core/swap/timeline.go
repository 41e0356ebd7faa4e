// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/internal/platform/constants"
	"github.com/taibuivan/tomeswap/pkg/uuid"
)

// # Timeline Enums

// TimelineStatus tags a history entry with the transition it records.
type TimelineStatus string

const (
	TimelineRequested       TimelineStatus = "requested"
	TimelineAccepted        TimelineStatus = "accepted"
	TimelineDeclined        TimelineStatus = "declined"
	TimelineCanceled        TimelineStatus = "canceled"
	TimelineMeetingUp       TimelineStatus = "meeting_up"
	TimelineReadingBooks    TimelineStatus = "reading_books"
	TimelineFinishedBooks   TimelineStatus = "finished_books"
	TimelineWaitingToFinish TimelineStatus = "waiting_for_finish"
	TimelineFinished        TimelineStatus = "finished"
	TimelineRequestedFinish TimelineStatus = "requested_finish"
	TimelineDisputed        TimelineStatus = "disputed"
	TimelineResolved        TimelineStatus = "resolved"
)

// timelineStatuses is the closed set of valid entry tags.
var timelineStatuses = map[TimelineStatus]bool{
	TimelineRequested:       true,
	TimelineAccepted:        true,
	TimelineDeclined:        true,
	TimelineCanceled:        true,
	TimelineMeetingUp:       true,
	TimelineReadingBooks:    true,
	TimelineFinishedBooks:   true,
	TimelineWaitingToFinish: true,
	TimelineFinished:        true,
	TimelineRequestedFinish: true,
	TimelineDisputed:        true,
	TimelineResolved:        true,
}

// # Timeline Entry

// TimelineUpdate is one immutable entry in a swap's negotiation history.
//
// Entries are never mutated or removed once appended.
type TimelineUpdate struct {
	ID          string         `json:"id"` // UUIDv7
	SwapID      string         `json:"swap_id"`
	UserID      string         `json:"user_id"`
	Status      TimelineStatus `json:"status"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}

/*
NewTimelineUpdate validates and builds a history entry.

Parameters:
  - swapID, userID: string (Owning swap and acting participant)
  - status: TimelineStatus (Must be a known tag)
  - description: string (1 to 100 characters)

Returns:
  - *TimelineUpdate: The entry, timestamped now
  - error: Validation failures
*/
func NewTimelineUpdate(swapID, userID string, status TimelineStatus, description string) (*TimelineUpdate, error) {
	if description == "" {
		return nil, apperr.ValidationError("Timeline description must not be empty")
	}
	if len([]rune(description)) > constants.MaxTimelineDescriptionLen {
		return nil, apperr.ValidationError(fmt.Sprintf("Timeline description exceeds %d characters", constants.MaxTimelineDescriptionLen))
	}
	if !timelineStatuses[status] {
		return nil, apperr.ValidationError("Unknown timeline status")
	}

	return &TimelineUpdate{
		ID:          uuid.New(),
		SwapID:      swapID,
		UserID:      userID,
		Status:      status,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// # Timeline Collection

// TimelineUpdates is the append-only negotiation history of one swap.
//
// # Invariant
//
// At most one entry with status requested may ever exist. The zero value
// is an empty, usable history.
type TimelineUpdates struct {
	entries []*TimelineUpdate
}

// RestoreTimeline rebuilds a history from storage without re-checking
// invariants entry by entry. Storage order must be insertion order.
func RestoreTimeline(entries []*TimelineUpdate) TimelineUpdates {
	return TimelineUpdates{entries: entries}
}

// Append adds an entry, rejecting a second requested entry with Conflict.
func (timeline *TimelineUpdates) Append(entry *TimelineUpdate) error {
	if entry.Status == TimelineRequested {
		for _, existing := range timeline.entries {
			if existing.Status == TimelineRequested {
				return apperr.Conflict("Swap already has a requested entry")
			}
		}
	}
	timeline.entries = append(timeline.entries, entry)
	return nil
}

// Entries returns the history in insertion order. Callers must not mutate it.
func (timeline *TimelineUpdates) Entries() []*TimelineUpdate {
	return timeline.entries
}

// Last returns the most recent entry, or nil for an empty history.
func (timeline *TimelineUpdates) Last() *TimelineUpdate {
	if len(timeline.entries) == 0 {
		return nil
	}
	return timeline.entries[len(timeline.entries)-1]
}

// Len reports the number of entries.
func (timeline *TimelineUpdates) Len() int {
	return len(timeline.entries)
}

// MarshalJSON renders the history as a plain array, never null.
func (timeline TimelineUpdates) MarshalJSON() ([]byte, error) {
	if timeline.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(timeline.entries)
}

// # Entry Factory

// The factory functions below are the single place the audit-log wording
// lives. Handlers never hand-write descriptions.

// NewRequestedEntry records the opening of a swap.
func NewRequestedEntry(swapID, userID string) (*TimelineUpdate, error) {
	return NewTimelineUpdate(swapID, userID, TimelineRequested, "Swap requested")
}

// NewResponseEntry records the acceptor's answer to the offer.
func NewResponseEntry(swapID, userID string, accepted bool) (*TimelineUpdate, error) {
	if accepted {
		return NewTimelineUpdate(swapID, userID, TimelineAccepted, "Swap accepted")
	}
	return NewTimelineUpdate(swapID, userID, TimelineDeclined, "Swap declined")
}

// NewMeetingUpEntry records a meetup proposal.
func NewMeetingUpEntry(swapID, userID string) (*TimelineUpdate, error) {
	return NewTimelineUpdate(swapID, userID, TimelineMeetingUp, "Meetup proposed")
}

// NewReadingProgressEntry records a page-progress update.
func NewReadingProgressEntry(swapID, userID string, pageAt int) (*TimelineUpdate, error) {
	return NewTimelineUpdate(swapID, userID, TimelineReadingBooks, fmt.Sprintf("Reading at page %d", pageAt))
}

// NewFinishedReadingEntry records a participant reaching the last page.
func NewFinishedReadingEntry(swapID, userID string) (*TimelineUpdate, error) {
	return NewTimelineUpdate(swapID, userID, TimelineFinishedBooks, "Finished reading")
}

// NewWaitingForFinishEntry records one side asking to wrap up the swap.
func NewWaitingForFinishEntry(swapID, userID string) (*TimelineUpdate, error) {
	return NewTimelineUpdate(swapID, userID, TimelineWaitingToFinish, "Waiting for the other side to finish")
}

// NewCompletedEntry records feedback being left.
func NewCompletedEntry(swapID, userID string) (*TimelineUpdate, error) {
	return NewTimelineUpdate(swapID, userID, TimelineFinished, "Feedback left")
}

// NewDisputeEntry records an issue being opened, carrying its description.
func NewDisputeEntry(swapID, userID, description string) (*TimelineUpdate, error) {
	return NewTimelineUpdate(swapID, userID, TimelineDisputed, truncateDescription("Issue opened: "+description))
}

// NewResolvedEntry records an issue being resolved, carrying the resolution.
func NewResolvedEntry(swapID, userID, resolution string) (*TimelineUpdate, error) {
	return NewTimelineUpdate(swapID, userID, TimelineResolved, truncateDescription("Issue resolved: "+resolution))
}

// truncateDescription trims free text to the timeline entry bound.
func truncateDescription(text string) string {
	runes := []rune(text)
	if len(runes) <= constants.MaxTimelineDescriptionLen {
		return text
	}
	return string(runes[:constants.MaxTimelineDescriptionLen])
}
