// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taibuivan/tomeswap/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
//
// # Write Path
//
// Every mutating method locks the swap row with SELECT ... FOR UPDATE
// inside its transaction, so two participants racing on the same swap
// serialize at the storage layer. The partial unique index on timeline
// status 'requested' backs the single-requested invariant even against
// writers that bypass the collection guard.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed swap store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Aggregate Retrieval

/*
FindByID loads and hydrates a full aggregate.

Description: Four sequential reads on one connection: swap row, both
subswap rows, meetups, timeline. Insertion order is recovered through
createdat with the UUIDv7 id as tiebreaker.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Swap: Hydrated aggregate
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Swap, error) {
	const swapQuery = `
		SELECT id, status, createdat
		FROM swaps.swap
		WHERE id = $1
	`
	aggregate := &Swap{}
	err := repository.db.QueryRow(context, swapQuery, id).Scan(
		&aggregate.ID, &aggregate.Status, &aggregate.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_swap_by_id")
	}

	const sideQuery = `
		SELECT id, swapid, userid, role, pageat, bookid, feedbackid, issueid
		FROM swaps.subswap
		WHERE swapid = $1
	`
	rows, err := repository.db.Query(context, sideQuery, id)
	if err != nil {
		return nil, dberr.Wrap(err, "get_swap_sides")
	}
	defer rows.Close()

	for rows.Next() {
		side := SubSwap{}
		var role string
		if err := rows.Scan(&side.ID, &side.SwapID, &side.UserID, &role, &side.PageAt, &side.BookID, &side.FeedbackID, &side.IssueID); err != nil {
			return nil, dberr.Wrap(err, "scan_subswap")
		}
		if role == roleRequesting {
			aggregate.Requesting = side
		} else {
			aggregate.Accepting = side
		}
	}
	rows.Close()

	meetups, err := repository.meetupsForSwap(context, id)
	if err != nil {
		return nil, err
	}
	aggregate.Meetups = RestoreMeetups(meetups)

	entries, err := repository.timelineForSwap(context, id)
	if err != nil {
		return nil, err
	}
	aggregate.Timeline = RestoreTimeline(entries)

	return aggregate, nil
}

// roles stored on the subswap row.
const (
	roleRequesting = "requesting"
	roleAccepting  = "accepting"
)

// meetupsForSwap loads the meetup history in insertion order.
func (repository *PostgresRepository) meetupsForSwap(context context.Context, swapID string) ([]*Meetup, error) {
	const query = `
		SELECT id, swapid, suggestedby, status, latitude, longitude
		FROM swaps.meetup
		WHERE swapid = $1
		ORDER BY createdat ASC, id ASC
	`
	rows, err := repository.db.Query(context, query, swapID)
	if err != nil {
		return nil, dberr.Wrap(err, "get_swap_meetups")
	}
	defer rows.Close()

	var meetups []*Meetup
	for rows.Next() {
		meetup := &Meetup{}
		err := rows.Scan(&meetup.ID, &meetup.SwapID, &meetup.SuggestedBy, &meetup.Status,
			&meetup.Location.Latitude, &meetup.Location.Longitude)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_meetup")
		}
		meetups = append(meetups, meetup)
	}

	return meetups, nil
}

// timelineForSwap loads the history in insertion order.
func (repository *PostgresRepository) timelineForSwap(context context.Context, swapID string) ([]*TimelineUpdate, error) {
	const query = `
		SELECT id, swapid, userid, status, description, createdat
		FROM swaps.timelineupdate
		WHERE swapid = $1
		ORDER BY createdat ASC, id ASC
	`
	rows, err := repository.db.Query(context, query, swapID)
	if err != nil {
		return nil, dberr.Wrap(err, "get_swap_timeline")
	}
	defer rows.Close()

	var entries []*TimelineUpdate
	for rows.Next() {
		entry := &TimelineUpdate{}
		err := rows.Scan(&entry.ID, &entry.SwapID, &entry.UserID, &entry.Status, &entry.Description, &entry.CreatedAt)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_timeline_entry")
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

/*
FindSubSwapID resolves the side identifier for a participant.

Parameters:
  - context: context.Context
  - swapID, userID: string

Returns:
  - string: SubSwap UUID
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindSubSwapID(context context.Context, swapID, userID string) (string, error) {
	const query = `
		SELECT id FROM swaps.subswap
		WHERE swapid = $1 AND userid = $2
	`
	var id string
	err := repository.db.QueryRow(context, query, swapID, userID).Scan(&id)
	if err != nil {
		return "", dberr.Wrap(err, "get_subswap_id")
	}
	return id, nil
}

/*
FindMeetupByID retrieves one meetup record.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Meetup: Hydrated meetup
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindMeetupByID(context context.Context, id string) (*Meetup, error) {
	const query = `
		SELECT id, swapid, suggestedby, status, latitude, longitude
		FROM swaps.meetup
		WHERE id = $1
	`
	meetup := &Meetup{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&meetup.ID, &meetup.SwapID, &meetup.SuggestedBy, &meetup.Status,
		&meetup.Location.Latitude, &meetup.Location.Longitude,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_meetup_by_id")
	}
	return meetup, nil
}

/*
ListForUser returns the swaps a member participates in, newest first.

Description: Joins through the subswap table and hydrates both sides per
row; meetups and timeline stay unloaded for listing.

Parameters:
  - context: context.Context
  - userID: string
  - limit, offset: int

Returns:
  - []*Swap: Aggregates without meetup or timeline hydration
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListForUser(context context.Context, userID string, limit, offset int) ([]*Swap, int, error) {
	const query = `
		SELECT
			s.id, s.status, s.createdat,
			req.id, req.userid, req.pageat, req.bookid, req.feedbackid, req.issueid,
			acc.id, acc.userid, acc.pageat, acc.bookid, acc.feedbackid, acc.issueid,
			COUNT(*) OVER() as total
		FROM swaps.swap s
		JOIN swaps.subswap req ON req.swapid = s.id AND req.role = 'requesting'
		JOIN swaps.subswap acc ON acc.swapid = s.id AND acc.role = 'accepting'
		WHERE req.userid = $1 OR acc.userid = $1
		ORDER BY s.createdat DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := repository.db.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_swaps_for_user")
	}
	defer rows.Close()

	var swaps []*Swap
	var total int
	for rows.Next() {
		aggregate := &Swap{}
		err := rows.Scan(
			&aggregate.ID, &aggregate.Status, &aggregate.CreatedAt,
			&aggregate.Requesting.ID, &aggregate.Requesting.UserID, &aggregate.Requesting.PageAt,
			&aggregate.Requesting.BookID, &aggregate.Requesting.FeedbackID, &aggregate.Requesting.IssueID,
			&aggregate.Accepting.ID, &aggregate.Accepting.UserID, &aggregate.Accepting.PageAt,
			&aggregate.Accepting.BookID, &aggregate.Accepting.FeedbackID, &aggregate.Accepting.IssueID,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_swap_listing")
		}
		aggregate.Requesting.SwapID = aggregate.ID
		aggregate.Accepting.SwapID = aggregate.ID
		swaps = append(swaps, aggregate)
	}

	return swaps, total, nil
}

// # Aggregate Mutation

/*
CreateSwap persists a new aggregate and its opening history entry.

Description: One transaction inserts the swap row, both subswap rows,
and the requested timeline entry. The partial unique index turns a
duplicate requested entry into a Conflict.

Parameters:
  - context: context.Context
  - swap: *Swap
  - entry: *TimelineUpdate

Returns:
  - error: Transactional or database failures
*/
func (repository *PostgresRepository) CreateSwap(context context.Context, swap *Swap, entry *TimelineUpdate) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_swap_tx")
	}
	defer transaction.Rollback(context)

	const swapQuery = `
		INSERT INTO swaps.swap (id, status, createdat)
		VALUES ($1, $2, $3)
	`
	if _, err := transaction.Exec(context, swapQuery, swap.ID, swap.Status, swap.CreatedAt); err != nil {
		return dberr.Wrap(err, "insert_swap")
	}

	const sideQuery = `
		INSERT INTO swaps.subswap (id, swapid, userid, role, pageat, bookid)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = transaction.Exec(context, sideQuery,
		swap.Requesting.ID, swap.ID, swap.Requesting.UserID, roleRequesting, swap.Requesting.PageAt, swap.Requesting.BookID)
	if err != nil {
		return dberr.Wrap(err, "insert_requesting_subswap")
	}

	_, err = transaction.Exec(context, sideQuery,
		swap.Accepting.ID, swap.ID, swap.Accepting.UserID, roleAccepting, swap.Accepting.PageAt, swap.Accepting.BookID)
	if err != nil {
		return dberr.Wrap(err, "insert_accepting_subswap")
	}

	if err := insertTimelineEntry(context, transaction, entry); err != nil {
		return err
	}

	return transaction.Commit(context)
}

/*
SaveSubSwap persists one mutated side, the swap status, and the entry.

Description: Locks the swap row first so racing participants serialize,
then updates the swap status, the side, and appends the history entry,
all in one transaction.

Parameters:
  - context: context.Context
  - swap: *Swap
  - subSwap: *SubSwap
  - entry: *TimelineUpdate

Returns:
  - error: Transactional or database failures
*/
func (repository *PostgresRepository) SaveSubSwap(context context.Context, swap *Swap, subSwap *SubSwap, entry *TimelineUpdate) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_save_subswap_tx")
	}
	defer transaction.Rollback(context)

	if err := lockSwapRow(context, transaction, swap.ID); err != nil {
		return err
	}

	const statusQuery = `UPDATE swaps.swap SET status = $2 WHERE id = $1`
	if _, err := transaction.Exec(context, statusQuery, swap.ID, swap.Status); err != nil {
		return dberr.Wrap(err, "update_swap_status")
	}

	const sideQuery = `
		UPDATE swaps.subswap
		SET pageat = $2, bookid = $3, feedbackid = $4, issueid = $5
		WHERE id = $1
	`
	_, err = transaction.Exec(context, sideQuery,
		subSwap.ID, subSwap.PageAt, subSwap.BookID, subSwap.FeedbackID, subSwap.IssueID)
	if err != nil {
		return dberr.Wrap(err, "update_subswap")
	}

	if err := insertTimelineEntry(context, transaction, entry); err != nil {
		return err
	}

	return transaction.Commit(context)
}

/*
AppendTimeline records a history entry with no aggregate mutation.

Parameters:
  - context: context.Context
  - entry: *TimelineUpdate

Returns:
  - error: Database failures
*/
func (repository *PostgresRepository) AppendTimeline(context context.Context, entry *TimelineUpdate) error {
	const query = `
		INSERT INTO swaps.timelineupdate (id, swapid, userid, status, description, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := repository.db.Exec(context, query,
		entry.ID, entry.SwapID, entry.UserID, entry.Status, entry.Description, entry.CreatedAt)
	return dberr.Wrap(err, "append_timeline_entry")
}

// # Meetup Persistence

/*
AddMeetup persists a new meetup and its history entry atomically.

Parameters:
  - context: context.Context
  - meetup: *Meetup
  - entry: *TimelineUpdate

Returns:
  - error: Transactional or database failures
*/
func (repository *PostgresRepository) AddMeetup(context context.Context, meetup *Meetup, entry *TimelineUpdate) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_add_meetup_tx")
	}
	defer transaction.Rollback(context)

	if err := lockSwapRow(context, transaction, meetup.SwapID); err != nil {
		return err
	}

	const query = `
		INSERT INTO swaps.meetup (id, swapid, suggestedby, status, latitude, longitude, createdat)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err = transaction.Exec(context, query,
		meetup.ID, meetup.SwapID, meetup.SuggestedBy, meetup.Status,
		meetup.Location.Latitude, meetup.Location.Longitude)
	if err != nil {
		return dberr.Wrap(err, "insert_meetup")
	}

	if err := insertTimelineEntry(context, transaction, entry); err != nil {
		return err
	}

	return transaction.Commit(context)
}

/*
UpdateMeetup persists a transitioned meetup, with an optional entry.

Parameters:
  - context: context.Context
  - meetup: *Meetup
  - entry: *TimelineUpdate (nilable)

Returns:
  - error: Transactional or database failures
*/
func (repository *PostgresRepository) UpdateMeetup(context context.Context, meetup *Meetup, entry *TimelineUpdate) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_update_meetup_tx")
	}
	defer transaction.Rollback(context)

	if err := lockSwapRow(context, transaction, meetup.SwapID); err != nil {
		return err
	}

	const query = `
		UPDATE swaps.meetup
		SET status = $2, latitude = $3, longitude = $4
		WHERE id = $1
	`
	_, err = transaction.Exec(context, query,
		meetup.ID, meetup.Status, meetup.Location.Latitude, meetup.Location.Longitude)
	if err != nil {
		return dberr.Wrap(err, "update_meetup")
	}

	if entry != nil {
		if err := insertTimelineEntry(context, transaction, entry); err != nil {
			return err
		}
	}

	return transaction.Commit(context)
}

/*
RemoveMeetup hard-deletes a meetup record.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound if no row was removed
*/
func (repository *PostgresRepository) RemoveMeetup(context context.Context, id string) error {
	const query = `DELETE FROM swaps.meetup WHERE id = $1`
	result, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_meetup")
	}
	if result.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "delete_meetup")
	}
	return nil
}

// # Closure Persistence

/*
AddFeedback persists the rating, the mutated side, the swap status, and
the history entry in one transaction under the swap row lock.

Parameters:
  - context: context.Context
  - feedback: *Feedback
  - swap: *Swap
  - subSwap: *SubSwap
  - entry: *TimelineUpdate

Returns:
  - error: Transactional or database failures
*/
func (repository *PostgresRepository) AddFeedback(context context.Context, feedback *Feedback, swap *Swap, subSwap *SubSwap, entry *TimelineUpdate) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_add_feedback_tx")
	}
	defer transaction.Rollback(context)

	if err := lockSwapRow(context, transaction, swap.ID); err != nil {
		return err
	}

	const feedbackQuery = `
		INSERT INTO swaps.feedback (
			id, subswapid, userid, stars, recommend, length, condition, communication, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err = transaction.Exec(context, feedbackQuery,
		feedback.ID, feedback.SubSwapID, feedback.UserID, feedback.Stars, feedback.Recommend,
		feedback.Length, feedback.Condition, feedback.Communication)
	if err != nil {
		return dberr.Wrap(err, "insert_feedback")
	}

	if err := saveSideAndStatus(context, transaction, swap, subSwap); err != nil {
		return err
	}

	if err := insertTimelineEntry(context, transaction, entry); err != nil {
		return err
	}

	return transaction.Commit(context)
}

/*
AddIssue persists the dispute, the mutated side, the swap status, and
the history entry in one transaction under the swap row lock.

Parameters:
  - context: context.Context
  - issue: *Issue
  - swap: *Swap
  - subSwap: *SubSwap
  - entry: *TimelineUpdate

Returns:
  - error: Transactional or database failures
*/
func (repository *PostgresRepository) AddIssue(context context.Context, issue *Issue, swap *Swap, subSwap *SubSwap, entry *TimelineUpdate) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_add_issue_tx")
	}
	defer transaction.Rollback(context)

	if err := lockSwapRow(context, transaction, swap.ID); err != nil {
		return err
	}

	const issueQuery = `
		INSERT INTO swaps.issue (id, subswapid, userid, description, createdat)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = transaction.Exec(context, issueQuery,
		issue.ID, issue.SubSwapID, issue.UserID, issue.Description, issue.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_issue")
	}

	if err := saveSideAndStatus(context, transaction, swap, subSwap); err != nil {
		return err
	}

	if err := insertTimelineEntry(context, transaction, entry); err != nil {
		return err
	}

	return transaction.Commit(context)
}

/*
RemoveIssue deletes the dispute, clears the back-reference, restores the
swap status, and records the resolution in one transaction.

Parameters:
  - context: context.Context
  - issueID: string
  - swap: *Swap
  - subSwap: *SubSwap
  - entry: *TimelineUpdate

Returns:
  - error: apperr.NotFound if the issue is missing
*/
func (repository *PostgresRepository) RemoveIssue(context context.Context, issueID string, swap *Swap, subSwap *SubSwap, entry *TimelineUpdate) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_remove_issue_tx")
	}
	defer transaction.Rollback(context)

	if err := lockSwapRow(context, transaction, swap.ID); err != nil {
		return err
	}

	const deleteQuery = `DELETE FROM swaps.issue WHERE id = $1`
	result, err := transaction.Exec(context, deleteQuery, issueID)
	if err != nil {
		return dberr.Wrap(err, "delete_issue")
	}
	if result.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "delete_issue")
	}

	if err := saveSideAndStatus(context, transaction, swap, subSwap); err != nil {
		return err
	}

	if err := insertTimelineEntry(context, transaction, entry); err != nil {
		return err
	}

	return transaction.Commit(context)
}

// # Transaction Helpers

// lockSwapRow serializes writers on one swap for the transaction's lifetime.
func lockSwapRow(context context.Context, transaction pgx.Tx, swapID string) error {
	const query = `SELECT id FROM swaps.swap WHERE id = $1 FOR UPDATE`
	var id string
	if err := transaction.QueryRow(context, query, swapID).Scan(&id); err != nil {
		return dberr.Wrap(err, "lock_swap_row")
	}
	return nil
}

// saveSideAndStatus flushes a mutated side and the swap's coarse status.
func saveSideAndStatus(context context.Context, transaction pgx.Tx, swap *Swap, subSwap *SubSwap) error {
	const statusQuery = `UPDATE swaps.swap SET status = $2 WHERE id = $1`
	if _, err := transaction.Exec(context, statusQuery, swap.ID, swap.Status); err != nil {
		return dberr.Wrap(err, "update_swap_status")
	}

	const sideQuery = `
		UPDATE swaps.subswap
		SET pageat = $2, bookid = $3, feedbackid = $4, issueid = $5
		WHERE id = $1
	`
	_, err := transaction.Exec(context, sideQuery,
		subSwap.ID, subSwap.PageAt, subSwap.BookID, subSwap.FeedbackID, subSwap.IssueID)
	return dberr.Wrap(err, "update_subswap")
}

// insertTimelineEntry appends one history row inside the transaction.
func insertTimelineEntry(context context.Context, transaction pgx.Tx, entry *TimelineUpdate) error {
	const query = `
		INSERT INTO swaps.timelineupdate (id, swapid, userid, status, description, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := transaction.Exec(context, query,
		entry.ID, entry.SwapID, entry.UserID, entry.Status, entry.Description, entry.CreatedAt)
	return dberr.Wrap(err, "insert_timeline_entry")
}
