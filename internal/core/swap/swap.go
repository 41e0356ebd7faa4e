// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package swap implements the bilateral book-exchange lifecycle.

A [Swap] is the aggregate root for one negotiation between two members:
the requester offers a copy, the acceptor commits one of their own, both
track reading progress, meet in person to hand books over, and close the
exchange with feedback or a dispute.

# Core Responsibility

  - Aggregate: One [Swap] owns exactly two [SubSwap] sides with fixed roles.
  - History: Every state transition appends an immutable [TimelineUpdate].
  - Negotiation: Meetups follow a bounded, sequential sub-state-machine.
  - Closure: [Feedback] and [Issue] drive the completed and disputed states.

All cross-side rules live on the aggregate; sides never reference each
other directly, only by identifier through the aggregate.
*/
package swap

import (
	"time"

	"github.com/taibuivan/tomeswap/internal/core/book"
	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/pkg/pointer"
	"github.com/taibuivan/tomeswap/pkg/uuid"
)

// # Swap Enums

// Status is the coarse lifecycle state of a swap.
type Status string

const (
	// StatusRequested means the offer is awaiting the acceptor's response.
	StatusRequested Status = "requested"

	// StatusActive means both sides have committed a book.
	StatusActive Status = "active"

	// StatusCompleted means both sides have left feedback.
	StatusCompleted Status = "completed"

	// StatusDisputed means at least one side has an open issue.
	StatusDisputed Status = "disputed"
)

// # SubSwap

// SubSwap is one participant's state within a swap.
//
// The book reference binds exactly once; feedback and issue attach at
// most once each. A SubSwap never outlives its swap.
type SubSwap struct {
	ID         string  `json:"id"` // UUIDv7
	SwapID     string  `json:"swap_id"`
	UserID     string  `json:"user_id"`
	PageAt     int     `json:"page_at"`
	BookID     *string `json:"book_id,omitempty"`
	FeedbackID *string `json:"feedback_id,omitempty"`
	IssueID    *string `json:"issue_id,omitempty"`
}

// BindBook sets the book this participant commits to provide.
//
// The binding is write-once; a second call fails with Conflict.
func (subSwap *SubSwap) BindBook(bookID string) error {
	if subSwap.BookID != nil {
		return apperr.Conflict("Book already committed for this side of the swap")
	}
	subSwap.BookID = pointer.To(bookID)
	return nil
}

// SetPage records reading progress, bounded by the committed book.
func (subSwap *SubSwap) SetPage(pageAt int, committed *book.UserBook) error {
	if subSwap.BookID == nil {
		return apperr.Conflict("No book committed for this side of the swap")
	}
	if pageAt < 0 || pageAt > committed.PageCount {
		return apperr.ValidationError("Page must be between 0 and the book's page count")
	}
	subSwap.PageAt = pageAt
	return nil
}

// AttachFeedback links a feedback record to this side, at most once.
func (subSwap *SubSwap) AttachFeedback(feedbackID string) error {
	if subSwap.FeedbackID != nil {
		return apperr.Conflict("Feedback already left for this side of the swap")
	}
	subSwap.FeedbackID = pointer.To(feedbackID)
	return nil
}

// AttachIssue links an open dispute to this side, at most one active.
func (subSwap *SubSwap) AttachIssue(issueID string) error {
	if subSwap.IssueID != nil {
		return apperr.Conflict("An issue is already open for this side of the swap")
	}
	subSwap.IssueID = pointer.To(issueID)
	return nil
}

// ClearIssue detaches the open dispute after resolution.
func (subSwap *SubSwap) ClearIssue() {
	subSwap.IssueID = nil
}

// # Swap Aggregate

// Swap is the aggregate root for one bilateral exchange.
type Swap struct {
	ID        string    `json:"id"` // UUIDv7
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Requesting and Accepting are the two fixed-role sides. Role
	// assignment is immutable after creation.
	Requesting SubSwap `json:"requesting"`
	Accepting  SubSwap `json:"accepting"`

	Meetups  Meetups         `json:"meetups"`
	Timeline TimelineUpdates `json:"timeline"`
}

/*
NewSwap builds a swap in the requested state.

Description: The requesting side binds immediately to the offered copy;
the accepting side starts without a book. The caller is responsible for
appending the matching requested timeline entry.

Parameters:
  - requestingUserID: string (The member proposing the swap)
  - acceptingUserID: string (The member being asked)
  - offered: *book.UserBook (The requester's copy, must be owned by them)
  - createdAt: time.Time

Returns:
  - *Swap: The new aggregate
  - error: Validation failures
*/
func NewSwap(requestingUserID, acceptingUserID string, offered *book.UserBook, createdAt time.Time) (*Swap, error) {
	if requestingUserID == acceptingUserID {
		return nil, apperr.ValidationError("Cannot open a swap with yourself")
	}
	if !offered.IsOwnedBy(requestingUserID) {
		return nil, apperr.Forbidden("Offered copy does not belong to the requesting member")
	}

	swapID := uuid.New()
	offeredID := offered.ID

	return &Swap{
		ID:        swapID,
		Status:    StatusRequested,
		CreatedAt: createdAt,
		Requesting: SubSwap{
			ID:     uuid.New(),
			SwapID: swapID,
			UserID: requestingUserID,
			BookID: &offeredID,
		},
		Accepting: SubSwap{
			ID:     uuid.New(),
			SwapID: swapID,
			UserID: acceptingUserID,
		},
	}, nil
}

// SubSwapOf returns the side belonging to the given user, or NotFound.
func (swap *Swap) SubSwapOf(userID string) (*SubSwap, error) {
	switch userID {
	case swap.Requesting.UserID:
		return &swap.Requesting, nil
	case swap.Accepting.UserID:
		return &swap.Accepting, nil
	default:
		return nil, apperr.NotFound("Swap participant")
	}
}

// CounterpartOf returns the opposite side for the given user, or NotFound.
func (swap *Swap) CounterpartOf(userID string) (*SubSwap, error) {
	switch userID {
	case swap.Requesting.UserID:
		return &swap.Accepting, nil
	case swap.Accepting.UserID:
		return &swap.Requesting, nil
	default:
		return nil, apperr.NotFound("Swap participant")
	}
}

// IsParticipant reports whether the user is on either side of the swap.
func (swap *Swap) IsParticipant(userID string) bool {
	return userID == swap.Requesting.UserID || userID == swap.Accepting.UserID
}

/*
Accept binds the accepting side to the copy they commit to provide.

Description: Only the accepting participant may accept. The binding is
write-once; a second accept fails with Conflict. On success the swap
becomes active.

Parameters:
  - userID: string (Must be the accepting participant)
  - committed: *book.UserBook (Copy owned by the accepting member)

Returns:
  - error: Forbidden, Conflict, or validation failures
*/
func (swap *Swap) Accept(userID string, committed *book.UserBook) error {
	if userID != swap.Accepting.UserID {
		return apperr.Forbidden("Only the accepting member may accept this swap")
	}
	if !committed.IsOwnedBy(userID) {
		return apperr.Forbidden("Committed copy does not belong to the accepting member")
	}

	if err := swap.Accepting.BindBook(committed.ID); err != nil {
		return err
	}

	swap.Status = StatusActive
	return nil
}

/*
UpdateProgress records a participant's reading position.

Parameters:
  - userID: string (Must be a participant)
  - pageAt: int (0 up to the committed book's page count)
  - committed: *book.UserBook (The book this side is reading)

Returns:
  - error: NotFound if not a participant, validation failures otherwise
*/
func (swap *Swap) UpdateProgress(userID string, pageAt int, committed *book.UserBook) error {
	side, err := swap.SubSwapOf(userID)
	if err != nil {
		return err
	}
	return side.SetPage(pageAt, committed)
}

// OpenDispute attaches an issue to the caller's side and marks the swap disputed.
func (swap *Swap) OpenDispute(userID, issueID string) error {
	side, err := swap.SubSwapOf(userID)
	if err != nil {
		return err
	}
	if err := side.AttachIssue(issueID); err != nil {
		return err
	}
	swap.Status = StatusDisputed
	return nil
}

// ResolveDispute clears the issue back-reference and reactivates the swap
// when no other side still has an open issue.
func (swap *Swap) ResolveDispute(userID string) error {
	side, err := swap.SubSwapOf(userID)
	if err != nil {
		return err
	}
	if side.IssueID == nil {
		return apperr.NotFound("Open issue")
	}
	side.ClearIssue()

	if swap.Requesting.IssueID == nil && swap.Accepting.IssueID == nil {
		swap.Status = StatusActive
	}
	return nil
}

// RecordFeedback attaches feedback to the caller's side and completes the
// swap once both sides have left theirs.
func (swap *Swap) RecordFeedback(userID, feedbackID string) error {
	side, err := swap.SubSwapOf(userID)
	if err != nil {
		return err
	}
	if err := side.AttachFeedback(feedbackID); err != nil {
		return err
	}

	if swap.Requesting.FeedbackID != nil && swap.Accepting.FeedbackID != nil {
		swap.Status = StatusCompleted
	}
	return nil
}
