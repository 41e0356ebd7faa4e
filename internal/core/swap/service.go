// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/tomeswap/internal/core/book"
	"github.com/taibuivan/tomeswap/internal/platform/apperr"
)

// # Service Layer

// Service orchestrates the swap lifecycle commands.
//
// Each command loads the aggregate, mutates it in memory, and persists
// mutation plus history through one repository call. The repository is
// responsible for committing both atomically.
type Service struct {
	repo       Repository
	books      BookCatalog
	reputation ReputationUpdater
	logger     *slog.Logger
}

// NewService constructs a new swap [Service].
func NewService(repo Repository, books BookCatalog, reputation ReputationUpdater, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		books:      books,
		reputation: reputation,
		logger:     logger,
	}
}

// # Negotiation Commands

/*
CreateSwap opens a swap: the requester offers one of their copies to the
accepting member.

Parameters:
  - context: context.Context
  - requestingUserID: string (The caller)
  - acceptingUserID: string (The member being asked)
  - offeredBookID: string (Copy owned by the caller)

Returns:
  - *Swap: The new aggregate with its opening history entry
  - error: Validation, NotFound, or persistence failures
*/
func (service *Service) CreateSwap(context context.Context, requestingUserID, acceptingUserID, offeredBookID string) (*Swap, error) {
	offered, err := service.books.FindByID(context, offeredBookID)
	if err != nil {
		return nil, err
	}

	aggregate, err := NewSwap(requestingUserID, acceptingUserID, offered, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	entry, err := NewRequestedEntry(aggregate.ID, requestingUserID)
	if err != nil {
		return nil, err
	}
	if err := aggregate.Timeline.Append(entry); err != nil {
		return nil, err
	}

	if err := service.repo.CreateSwap(context, aggregate, entry); err != nil {
		return nil, err
	}

	service.markBookSwapping(context, aggregate.Requesting.BookID)

	service.logger.Info("swap_requested",
		slog.String("swap_id", aggregate.ID),
		slog.String("requesting_user_id", requestingUserID),
		slog.String("accepting_user_id", acceptingUserID),
	)

	return aggregate, nil
}

/*
AcceptSwap binds the accepting side to the copy they commit and activates
the swap.

Parameters:
  - context: context.Context
  - swapID: string
  - userID: string (Must be the accepting participant)
  - committedBookID: string (Copy owned by the caller)

Returns:
  - *Swap: The updated aggregate
  - error: Forbidden, Conflict, NotFound, or persistence failures
*/
func (service *Service) AcceptSwap(context context.Context, swapID, userID, committedBookID string) (*Swap, error) {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return nil, err
	}

	committed, err := service.books.FindByID(context, committedBookID)
	if err != nil {
		return nil, err
	}

	if err := aggregate.Accept(userID, committed); err != nil {
		return nil, err
	}

	entry, err := NewResponseEntry(swapID, userID, true)
	if err != nil {
		return nil, err
	}
	if err := aggregate.Timeline.Append(entry); err != nil {
		return nil, err
	}

	if err := service.repo.SaveSubSwap(context, aggregate, &aggregate.Accepting, entry); err != nil {
		return nil, err
	}

	service.markBookSwapping(context, aggregate.Accepting.BookID)

	service.logger.Info("swap_accepted",
		slog.String("swap_id", swapID),
		slog.String("user_id", userID),
	)

	return aggregate, nil
}

/*
DenySwap records the acceptor turning the offer down.

Description: The aggregate itself stays untouched; denial is a terminal
negotiation outcome recorded purely in the history.

Parameters:
  - context: context.Context
  - swapID: string
  - userID: string (Must be the accepting participant)

Returns:
  - error: Forbidden, NotFound, or persistence failures
*/
func (service *Service) DenySwap(context context.Context, swapID, userID string) error {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return err
	}

	if userID != aggregate.Accepting.UserID {
		return apperr.Forbidden("Only the accepting member may decline this swap")
	}

	entry, err := NewResponseEntry(swapID, userID, false)
	if err != nil {
		return err
	}

	if err := service.repo.AppendTimeline(context, entry); err != nil {
		return err
	}

	// The offer is dead; release the requester's copy.
	service.setBookStatus(context, aggregate.Requesting.BookID, book.StatusAvailable)

	service.logger.Info("swap_declined",
		slog.String("swap_id", swapID),
		slog.String("user_id", userID),
	)

	return nil
}

// # Progress Commands

/*
UpdatePageReading records a participant's reading position.

Description: Reaching the last page logs a finished-reading entry instead
of a plain progress entry.

Parameters:
  - context: context.Context
  - swapID: string
  - userID: string (Must be a participant)
  - pageAt: int

Returns:
  - *Swap: The updated aggregate
  - error: NotFound, validation, or persistence failures
*/
func (service *Service) UpdatePageReading(context context.Context, swapID, userID string, pageAt int) (*Swap, error) {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return nil, err
	}

	side, err := aggregate.SubSwapOf(userID)
	if err != nil {
		return nil, err
	}
	if side.BookID == nil {
		return nil, apperr.Conflict("No book committed for this side of the swap")
	}

	committed, err := service.books.FindByID(context, *side.BookID)
	if err != nil {
		return nil, err
	}

	if err := aggregate.UpdateProgress(userID, pageAt, committed); err != nil {
		return nil, err
	}

	var entry *TimelineUpdate
	if pageAt == committed.PageCount {
		entry, err = NewFinishedReadingEntry(swapID, userID)
	} else {
		entry, err = NewReadingProgressEntry(swapID, userID, pageAt)
	}
	if err != nil {
		return nil, err
	}
	if err := aggregate.Timeline.Append(entry); err != nil {
		return nil, err
	}

	if err := service.repo.SaveSubSwap(context, aggregate, side, entry); err != nil {
		return nil, err
	}

	return aggregate, nil
}

/*
RequestFinish records one side asking to wrap up the exchange while the
other is still reading.

Parameters:
  - context: context.Context
  - swapID: string
  - userID: string (Must be a participant)

Returns:
  - error: NotFound, Forbidden, or persistence failures
*/
func (service *Service) RequestFinish(context context.Context, swapID, userID string) error {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return err
	}

	if !aggregate.IsParticipant(userID) {
		return apperr.Forbidden("Only a participant may act on this swap")
	}

	entry, err := NewWaitingForFinishEntry(swapID, userID)
	if err != nil {
		return err
	}

	return service.repo.AppendTimeline(context, entry)
}

// # Meetup Commands

/*
AddMeetup proposes a physical handover location.

Parameters:
  - context: context.Context
  - swapID: string
  - userID: string (Must be a participant)
  - latitude, longitude: float64

Returns:
  - *Meetup: The new proposal
  - error: Conflict (cap or sequential rule), validation, or persistence failures
*/
func (service *Service) AddMeetup(context context.Context, swapID, userID string, latitude, longitude float64) (*Meetup, error) {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return nil, err
	}

	if !aggregate.IsParticipant(userID) {
		return nil, apperr.Forbidden("Only a participant may act on this swap")
	}

	location, err := NewCoordinates(latitude, longitude)
	if err != nil {
		return nil, err
	}

	meetup := NewMeetup(swapID, userID, location)
	if err := aggregate.Meetups.Add(meetup); err != nil {
		return nil, err
	}

	entry, err := NewMeetingUpEntry(swapID, userID)
	if err != nil {
		return nil, err
	}
	if err := aggregate.Timeline.Append(entry); err != nil {
		return nil, err
	}

	if err := service.repo.AddMeetup(context, meetup, entry); err != nil {
		return nil, err
	}

	service.logger.Info("meetup_proposed",
		slog.String("swap_id", swapID),
		slog.String("meetup_id", meetup.ID),
	)

	return meetup, nil
}

/*
UpdateMeetup moves a meetup through its negotiation states.

Parameters:
  - context: context.Context
  - swapID, meetupID: string
  - userID: string (Must be a participant)
  - target: MeetupStatus
  - latitude, longitude: *float64 (Both required for changed_location)

Returns:
  - *Meetup: The updated meetup
  - error: Conflict for illegal transitions, validation failures otherwise
*/
func (service *Service) UpdateMeetup(context context.Context, swapID, meetupID, userID string, target MeetupStatus, latitude, longitude *float64) (*Meetup, error) {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return nil, err
	}

	if !aggregate.IsParticipant(userID) {
		return nil, apperr.Forbidden("Only a participant may act on this swap")
	}

	meetup, err := aggregate.Meetups.ByID(meetupID)
	if err != nil {
		return nil, err
	}

	var location *Coordinates
	if latitude != nil && longitude != nil {
		coordinates, err := NewCoordinates(*latitude, *longitude)
		if err != nil {
			return nil, err
		}
		location = &coordinates
	}

	if err := meetup.Transition(target, location); err != nil {
		return nil, err
	}

	if err := service.repo.UpdateMeetup(context, meetup, nil); err != nil {
		return nil, err
	}

	return meetup, nil
}

/*
RemoveMeetup withdraws a meetup proposal.

Parameters:
  - context: context.Context
  - swapID, meetupID: string
  - userID: string (Must be a participant)

Returns:
  - error: NotFound if absent, Forbidden for outsiders
*/
func (service *Service) RemoveMeetup(context context.Context, swapID, meetupID, userID string) error {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return err
	}

	if !aggregate.IsParticipant(userID) {
		return apperr.Forbidden("Only a participant may act on this swap")
	}

	if err := aggregate.Meetups.Remove(meetupID); err != nil {
		return err
	}

	return service.repo.RemoveMeetup(context, meetupID)
}

// # Dispute Commands

/*
AddIssue opens a dispute on the caller's side of the swap.

Parameters:
  - context: context.Context
  - swapID: string
  - userID: string (Must be a participant)
  - description: string (1 to 1000 characters)

Returns:
  - *Issue: The new dispute
  - error: Conflict if one is already open, validation failures otherwise
*/
func (service *Service) AddIssue(context context.Context, swapID, userID, description string) (*Issue, error) {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return nil, err
	}

	side, err := aggregate.SubSwapOf(userID)
	if err != nil {
		return nil, err
	}

	issue, err := NewIssue(side.ID, userID, description)
	if err != nil {
		return nil, err
	}

	if err := aggregate.OpenDispute(userID, issue.ID); err != nil {
		return nil, err
	}

	entry, err := NewDisputeEntry(swapID, userID, description)
	if err != nil {
		return nil, err
	}
	if err := aggregate.Timeline.Append(entry); err != nil {
		return nil, err
	}

	if err := service.repo.AddIssue(context, issue, aggregate, side, entry); err != nil {
		return nil, err
	}

	service.logger.Info("swap_disputed",
		slog.String("swap_id", swapID),
		slog.String("issue_id", issue.ID),
	)

	return issue, nil
}

/*
RemoveIssue resolves a dispute and reactivates the swap.

Parameters:
  - context: context.Context
  - swapID: string
  - userID: string (Must be the participant who raised it)
  - issueID: string
  - resolution: string (Recorded in the history)

Returns:
  - error: NotFound if the issue is absent or not on the caller's side
*/
func (service *Service) RemoveIssue(context context.Context, swapID, userID, issueID, resolution string) error {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return err
	}

	side, err := aggregate.SubSwapOf(userID)
	if err != nil {
		return err
	}

	if side.IssueID == nil || *side.IssueID != issueID {
		return apperr.NotFound("Open issue")
	}

	if err := aggregate.ResolveDispute(userID); err != nil {
		return err
	}

	entry, err := NewResolvedEntry(swapID, userID, resolution)
	if err != nil {
		return err
	}
	if err := aggregate.Timeline.Append(entry); err != nil {
		return err
	}

	if err := service.repo.RemoveIssue(context, issueID, aggregate, side, entry); err != nil {
		return err
	}

	service.logger.Info("swap_issue_resolved",
		slog.String("swap_id", swapID),
		slog.String("issue_id", issueID),
	)

	return nil
}

// # Closure Commands

/*
AddFeedback rates the exchange from the caller's side.

Description: Once the feedback write commits, the counterpart's
reputation is updated as a detached side effect. Reputation failures are
logged and never surfaced; the feedback write stands regardless.

Parameters:
  - context: context.Context
  - swapID: string
  - userID: string (Must be a participant)
  - stars: int (1 to 5)
  - recommend: bool
  - length, condition, communication: opinion enums

Returns:
  - *Feedback: The recorded rating
  - error: Conflict on a second rating, validation failures otherwise
*/
func (service *Service) AddFeedback(context context.Context, swapID, userID string, stars int, recommend bool, length LengthOpinion, condition ConditionOpinion, communication CommunicationOpinion) (*Feedback, error) {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return nil, err
	}

	side, err := aggregate.SubSwapOf(userID)
	if err != nil {
		return nil, err
	}

	feedback, err := NewFeedback(side.ID, userID, stars, recommend, length, condition, communication)
	if err != nil {
		return nil, err
	}

	if err := aggregate.RecordFeedback(userID, feedback.ID); err != nil {
		return nil, err
	}

	entry, err := NewCompletedEntry(swapID, userID)
	if err != nil {
		return nil, err
	}
	if err := aggregate.Timeline.Append(entry); err != nil {
		return nil, err
	}

	if err := service.repo.AddFeedback(context, feedback, aggregate, side, entry); err != nil {
		return nil, err
	}

	service.logger.Info("swap_feedback_left",
		slog.String("swap_id", swapID),
		slog.String("feedback_id", feedback.ID),
	)

	// Both sides rated: the exchange is over, the copies are free again.
	if aggregate.Status == StatusCompleted {
		service.setBookStatus(context, aggregate.Requesting.BookID, book.StatusAvailable)
		service.setBookStatus(context, aggregate.Accepting.BookID, book.StatusAvailable)
	}

	// Post-commit side effect; the rated member is the counterpart.
	if counterpart, err := aggregate.CounterpartOf(userID); err == nil && service.reputation != nil {
		if err := service.reputation.Apply(context, counterpart.UserID, feedback); err != nil {
			service.logger.Error("reputation_update_failed",
				slog.String("swap_id", swapID),
				slog.String("user_id", counterpart.UserID),
				slog.Any("error", err),
			)
		}
	}

	return feedback, nil
}

// # Queries

/*
GetSwap returns the hydrated aggregate for one of its participants.

Parameters:
  - context: context.Context
  - swapID, userID: string

Returns:
  - *Swap: Hydrated aggregate
  - error: NotFound or Forbidden
*/
func (service *Service) GetSwap(context context.Context, swapID, userID string) (*Swap, error) {
	aggregate, err := service.repo.FindByID(context, swapID)
	if err != nil {
		return nil, err
	}

	if !aggregate.IsParticipant(userID) {
		return nil, apperr.Forbidden("Only a participant may view this swap")
	}

	return aggregate, nil
}

/*
GetTimeline returns the negotiation history for a participant.

Parameters:
  - context: context.Context
  - swapID, userID: string

Returns:
  - []*TimelineUpdate: History in insertion order
  - error: NotFound or Forbidden
*/
func (service *Service) GetTimeline(context context.Context, swapID, userID string) ([]*TimelineUpdate, error) {
	aggregate, err := service.GetSwap(context, swapID, userID)
	if err != nil {
		return nil, err
	}
	return aggregate.Timeline.Entries(), nil
}

/*
ListSwaps returns the caller's swaps, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - limit, offset: int

Returns:
  - []*Swap: Aggregates without meetup or timeline hydration
  - int: Total matching count
  - error: Retrieval failures
*/
func (service *Service) ListSwaps(context context.Context, userID string, limit, offset int) ([]*Swap, int, error) {
	return service.repo.ListForUser(context, userID, limit, offset)
}

// # Catalog Status Hooks

// setBookStatus flips a committed copy's catalog status after the swap
// write has committed. Best effort: a failure leaves a stale status, never
// a broken swap.
func (service *Service) setBookStatus(context context.Context, bookID *string, status book.Status) {
	if bookID == nil {
		return
	}

	if err := service.books.SetStatus(context, *bookID, status); err != nil {
		service.logger.Error("book_status_update_failed",
			slog.String("book_id", *bookID),
			slog.String("status", string(status)),
			slog.Any("error", err),
		)
	}
}

// markBookSwapping shields a freshly committed copy from deletion.
func (service *Service) markBookSwapping(context context.Context, bookID *string) {
	service.setBookStatus(context, bookID, book.StatusSwapping)
}
