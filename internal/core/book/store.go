// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// # Book Data Access

// Repository defines the data access contract for the user-book catalog.
type Repository interface {

	/*
		List returns a filtered, paginated slice of copies and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (search query, owner, status)
		  - limit: int
		  - offset: int

		Returns:
		  - []*UserBook: Slice of matching copies
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*UserBook, int, error)

	/*
		FindByID retrieves a copy by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *UserBook: Hydrated entity
		  - error: apperr.NotFound if missing or soft-deleted
	*/
	FindByID(context context.Context, id string) (*UserBook, error)

	/*
		Create persists a new copy to the catalog.

		Parameters:
		  - context: context.Context
		  - userBook: *UserBook

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, userBook *UserBook) error

	/*
		Update modifies an existing copy's metadata.

		Parameters:
		  - context: context.Context
		  - userBook: *UserBook

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, userBook *UserBook) error

	/*
		SetThumbnailURL records the generated cover thumbnail location.

		Called from the background thumbnail worker, never from a request path.

		Parameters:
		  - context: context.Context
		  - id: string
		  - thumbnailURL: string

		Returns:
		  - error: Persistence failures
	*/
	SetThumbnailURL(context context.Context, id string, thumbnailURL string) error

	/*
		SetStatus flips a copy between available and swapping.

		Parameters:
		  - context: context.Context
		  - id: string
		  - status: Status

		Returns:
		  - error: Persistence failures
	*/
	SetStatus(context context.Context, id string, status Status) error

	/*
		SoftDelete marks a copy as deleted without removing swap history.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error
}
