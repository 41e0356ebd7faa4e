// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/tomeswap/internal/media/thumbnail"
	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/internal/platform/validate"
	"github.com/taibuivan/tomeswap/pkg/slug"
	"github.com/taibuivan/tomeswap/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for the user-book catalog.
type Service struct {
	repo       Repository
	thumbnails *thumbnail.Queue
	logger     *slog.Logger
}

// NewService constructs a new catalog [Service].
func NewService(repo Repository, thumbnails *thumbnail.Queue, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		thumbnails: thumbnails,
		logger:     logger,
	}
}

// # Catalog Queries

/*
ListBooks retrieves a paginated and filtered list of listed copies.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*UserBook: List of copies
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*UserBook, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetBook retrieves a single copy by its UUID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *UserBook: Hydrated entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetBook(context context.Context, id string) (*UserBook, error) {
	return service.repo.FindByID(context, id)
}

// # Catalog Mutation

/*
CreateBook lists a new copy for the given owner.

Description: Validates metadata, generates the identifier and slug, and
persists the copy as available. When a cover URL is supplied, a thumbnail
job is enqueued; a full queue is logged and skipped, never surfaced to
the caller.

Parameters:
  - context: context.Context
  - userBook: *UserBook
  - ownerID: string (The member listing the copy)

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) CreateBook(context context.Context, userBook *UserBook, ownerID string) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, userBook.Title).MaxLen(FieldTitle, userBook.Title, 300)
	validator.Required(FieldAuthor, userBook.Author).MaxLen(FieldAuthor, userBook.Author, 200)
	validator.Min(FieldPageCount, userBook.PageCount, 1)
	validator.OneOf(FieldCondition, string(userBook.Condition),
		string(ConditionPoor), string(ConditionAcceptable), string(ConditionGood), string(ConditionLikeNew))

	if userBook.CoverURL != nil && *userBook.CoverURL != "" {
		validator.URL(FieldCoverURL, *userBook.CoverURL)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	userBook.ID = uuid.New()
	userBook.OwnerID = ownerID
	userBook.Slug = slug.From(userBook.Title)
	userBook.Status = StatusAvailable
	userBook.ThumbnailURL = nil

	if err := service.repo.Create(context, userBook); err != nil {
		return err
	}

	service.enqueueThumbnail(userBook)

	service.logger.Info("book_listed",
		slog.String("book_id", userBook.ID),
		slog.String("owner_id", ownerID),
	)

	return nil
}

/*
UpdateBook modifies the metadata of an existing copy.

Description: Only the owner may update a copy. A changed cover URL clears
the stale thumbnail and enqueues regeneration.

Parameters:
  - context: context.Context
  - userBook: *UserBook (sparse; ID and changed fields set)
  - actorID: string

Returns:
  - error: Validation, authorization, or persistence failures
*/
func (service *Service) UpdateBook(context context.Context, userBook *UserBook, actorID string) error {
	current, err := service.repo.FindByID(context, userBook.ID)
	if err != nil {
		return err
	}

	if !current.IsOwnedBy(actorID) {
		return apperr.Forbidden("Only the owner may update this copy")
	}

	validator := &validate.Validator{}
	if userBook.Title != "" {
		validator.MaxLen(FieldTitle, userBook.Title, 300)
		current.Title = userBook.Title
		current.Slug = slug.From(userBook.Title)
	}
	if userBook.Author != "" {
		validator.MaxLen(FieldAuthor, userBook.Author, 200)
		current.Author = userBook.Author
	}
	if userBook.Condition != "" {
		validator.OneOf(FieldCondition, string(userBook.Condition),
			string(ConditionPoor), string(ConditionAcceptable), string(ConditionGood), string(ConditionLikeNew))
		current.Condition = userBook.Condition
	}

	coverChanged := false
	if userBook.CoverURL != nil && *userBook.CoverURL != "" {
		validator.URL(FieldCoverURL, *userBook.CoverURL)
		coverChanged = current.CoverURL == nil || *current.CoverURL != *userBook.CoverURL
		current.CoverURL = userBook.CoverURL
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if coverChanged {
		current.ThumbnailURL = nil
	}

	if err := service.repo.Update(context, current); err != nil {
		return err
	}

	if coverChanged {
		service.enqueueThumbnail(current)
	}

	*userBook = *current

	service.logger.Info("book_updated", slog.String("book_id", current.ID))

	return nil
}

/*
DeleteBook retires a copy from the catalog.

Description: Only the owner may delete, and never while the copy is
committed to an active swap. Deletion is soft so swap history survives.

Parameters:
  - context: context.Context
  - id: string
  - actorID: string

Returns:
  - error: Authorization, state, or persistence failures
*/
func (service *Service) DeleteBook(context context.Context, id, actorID string) error {
	current, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if !current.IsOwnedBy(actorID) {
		return apperr.Forbidden("Only the owner may delete this copy")
	}

	if current.Status == StatusSwapping {
		return apperr.Conflict("Copy is committed to an active swap")
	}

	if err := service.repo.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Info("book_retired", slog.String("book_id", id))

	return nil
}

// # Thumbnail Dispatch

// enqueueThumbnail hands a cover off to the background worker.
//
// Best effort: the catalog write already committed, so a saturated queue
// only costs a missing thumbnail until the cover is re-uploaded.
func (service *Service) enqueueThumbnail(userBook *UserBook) {
	if service.thumbnails == nil || userBook.CoverURL == nil || *userBook.CoverURL == "" {
		return
	}

	job := thumbnail.Job{
		BookID:     userBook.ID,
		SourceURL:  *userBook.CoverURL,
		EnqueuedAt: time.Now().UTC(),
	}

	if err := service.thumbnails.Enqueue(job); err != nil {
		if errors.Is(err, thumbnail.ErrQueueFull) {
			service.logger.Warn("thumbnail_queue_full", slog.String("book_id", userBook.ID))
			return
		}
		service.logger.Error("thumbnail_enqueue_failed",
			slog.String("book_id", userBook.ID),
			slog.Any("error", err),
		)
	}
}
