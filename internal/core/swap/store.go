// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap

import (
	"context"

	"github.com/taibuivan/tomeswap/internal/core/book"
)

// # Swap Data Access

// Repository defines the data access contract for swap aggregates.
//
// # Atomicity
//
// Every write method that both mutates aggregate state and records
// history takes the [TimelineUpdate] alongside the mutation. The
// implementation commits both inside one transaction so a crash can
// never leave the audit log out of step with the aggregate.
type Repository interface {

	/*
		FindByID loads a fully hydrated aggregate: both sides, all meetups,
		the complete timeline in insertion order.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Swap: Hydrated aggregate
		  - error: apperr.NotFound if missing
	*/
	FindByID(context context.Context, id string) (*Swap, error)

	/*
		FindSubSwapID resolves a participant's side identifier.

		Parameters:
		  - context: context.Context
		  - swapID, userID: string

		Returns:
		  - string: SubSwap UUID
		  - error: apperr.NotFound if the user is not a participant
	*/
	FindSubSwapID(context context.Context, swapID, userID string) (string, error)

	/*
		FindMeetupByID retrieves one meetup record.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Meetup: Hydrated meetup
		  - error: apperr.NotFound if missing
	*/
	FindMeetupByID(context context.Context, id string) (*Meetup, error)

	/*
		ListForUser returns the swaps a member participates in, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - limit, offset: int

		Returns:
		  - []*Swap: Aggregates without meetup or timeline hydration
		  - int: Total record count
		  - error: Retrieval failures
	*/
	ListForUser(context context.Context, userID string, limit, offset int) ([]*Swap, int, error)

	/*
		CreateSwap persists a new aggregate and its opening history entry
		atomically.

		Parameters:
		  - context: context.Context
		  - swap: *Swap (Both sides included)
		  - entry: *TimelineUpdate (The requested entry)

		Returns:
		  - error: apperr.Conflict on a duplicate requested entry
	*/
	CreateSwap(context context.Context, swap *Swap, entry *TimelineUpdate) error

	/*
		SaveSubSwap persists one mutated side plus the swap status and the
		matching history entry atomically, under a row lock on the swap.

		Parameters:
		  - context: context.Context
		  - swap: *Swap (For status)
		  - subSwap: *SubSwap (The mutated side)
		  - entry: *TimelineUpdate

		Returns:
		  - error: Persistence failures
	*/
	SaveSubSwap(context context.Context, swap *Swap, subSwap *SubSwap, entry *TimelineUpdate) error

	/*
		AppendTimeline records a history entry with no aggregate mutation.

		Parameters:
		  - context: context.Context
		  - entry: *TimelineUpdate

		Returns:
		  - error: apperr.Conflict on a duplicate requested entry
	*/
	AppendTimeline(context context.Context, entry *TimelineUpdate) error

	/*
		AddMeetup persists a new meetup and its history entry atomically.

		Parameters:
		  - context: context.Context
		  - meetup: *Meetup
		  - entry: *TimelineUpdate

		Returns:
		  - error: Persistence failures
	*/
	AddMeetup(context context.Context, meetup *Meetup, entry *TimelineUpdate) error

	/*
		UpdateMeetup persists a transitioned meetup; the entry may be nil
		when the transition carries no history.

		Parameters:
		  - context: context.Context
		  - meetup: *Meetup
		  - entry: *TimelineUpdate (nilable)

		Returns:
		  - error: Persistence failures
	*/
	UpdateMeetup(context context.Context, meetup *Meetup, entry *TimelineUpdate) error

	/*
		RemoveMeetup hard-deletes a meetup record.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound if missing
	*/
	RemoveMeetup(context context.Context, id string) error

	/*
		AddFeedback persists the rating, the mutated side, the swap status,
		and the history entry atomically.

		Parameters:
		  - context: context.Context
		  - feedback: *Feedback
		  - swap: *Swap
		  - subSwap: *SubSwap
		  - entry: *TimelineUpdate

		Returns:
		  - error: apperr.Conflict on a second rating for the same side
	*/
	AddFeedback(context context.Context, feedback *Feedback, swap *Swap, subSwap *SubSwap, entry *TimelineUpdate) error

	/*
		AddIssue persists the dispute, the mutated side, the swap status,
		and the history entry atomically.

		Parameters:
		  - context: context.Context
		  - issue: *Issue
		  - swap: *Swap
		  - subSwap: *SubSwap
		  - entry: *TimelineUpdate

		Returns:
		  - error: Persistence failures
	*/
	AddIssue(context context.Context, issue *Issue, swap *Swap, subSwap *SubSwap, entry *TimelineUpdate) error

	/*
		RemoveIssue deletes the dispute, clears the side's back-reference,
		restores the swap status, and records the resolution atomically.

		Parameters:
		  - context: context.Context
		  - issueID: string
		  - swap: *Swap
		  - subSwap: *SubSwap
		  - entry: *TimelineUpdate

		Returns:
		  - error: apperr.NotFound if the issue is missing
	*/
	RemoveIssue(context context.Context, issueID string, swap *Swap, subSwap *SubSwap, entry *TimelineUpdate) error
}

// # Collaborator Ports

// BookCatalog is the narrow port onto the book catalog.
//
// The swap domain validates book references and page bounds through it,
// and flips a copy between available and swapping as the lifecycle moves.
// Metadata itself is never touched from here.
type BookCatalog interface {
	FindByID(context context.Context, id string) (*book.UserBook, error)

	// SetStatus marks a copy available or swapping. Applied after the swap
	// write has committed; failures are logged by the caller.
	SetStatus(context context.Context, id string, status book.Status) error
}

// ReputationUpdater applies a feedback's effect on the rated member's
// standing after the feedback write has committed.
//
// Implementations must tolerate duplicate application; failures are
// logged by the caller and never block or unwind the feedback write.
type ReputationUpdater interface {
	Apply(context context.Context, userID string, feedback *Feedback) error
}
