// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taibuivan/tomeswap/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed catalog store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Catalog Retrieval

/*
List returns a filtered and paginated list of copies.

Description: Uses ILIKE on title and author for search and COUNT(*) OVER()
for total metadata.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*UserBook: Slice of matching copies
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*UserBook, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			id, ownerid, title, author, slug, pagecount, condition,
			coverurl, thumbnailurl, status, createdat, updatedat,
			COUNT(*) OVER() as total
		FROM books.userbook
		WHERE deletedat IS NULL
	`)

	args := []any{}
	argID := 1

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (title ILIKE $%d OR author ILIKE $%d)", argID, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.OwnerID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND ownerid = $%d", argID))
		args = append(args, filter.OwnerID)
		argID++
	}

	if filter.Status != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY createdat DESC LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	var books []*UserBook
	var total int
	for rows.Next() {
		userBook := &UserBook{}
		err := rows.Scan(
			&userBook.ID, &userBook.OwnerID, &userBook.Title, &userBook.Author, &userBook.Slug,
			&userBook.PageCount, &userBook.Condition, &userBook.CoverURL, &userBook.ThumbnailURL,
			&userBook.Status, &userBook.CreatedAt, &userBook.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_book")
		}
		books = append(books, userBook)
	}

	return books, total, nil
}

/*
FindByID retrieves a single copy record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *UserBook: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*UserBook, error) {
	const query = `
		SELECT
			id, ownerid, title, author, slug, pagecount, condition,
			coverurl, thumbnailurl, status, createdat, updatedat
		FROM books.userbook
		WHERE id = $1 AND deletedat IS NULL
	`
	userBook := &UserBook{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&userBook.ID, &userBook.OwnerID, &userBook.Title, &userBook.Author, &userBook.Slug,
		&userBook.PageCount, &userBook.Condition, &userBook.CoverURL, &userBook.ThumbnailURL,
		&userBook.Status, &userBook.CreatedAt, &userBook.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_book_by_id")
	}
	return userBook, nil
}

// # Catalog Mutation

/*
Create inserts a new copy record.

Parameters:
  - context: context.Context
  - userBook: *UserBook

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, userBook *UserBook) error {
	const query = `
		INSERT INTO books.userbook (
			id, ownerid, title, author, slug, pagecount, condition,
			coverurl, status, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING createdat, updatedat
	`
	err := repository.db.QueryRow(context, query,
		userBook.ID, userBook.OwnerID, userBook.Title, userBook.Author, userBook.Slug,
		userBook.PageCount, userBook.Condition, userBook.CoverURL, userBook.Status,
	).Scan(&userBook.CreatedAt, &userBook.UpdatedAt)

	return dberr.Wrap(err, "create_book")
}

/*
Update modifies copy metadata fields.

Parameters:
  - context: context.Context
  - userBook: *UserBook

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, userBook *UserBook) error {
	const query = `
		UPDATE books.userbook
		SET title = $2, author = $3, slug = $4, condition = $5,
			coverurl = $6, thumbnailurl = $7, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL
		RETURNING updatedat
	`
	err := repository.db.QueryRow(context, query,
		userBook.ID, userBook.Title, userBook.Author, userBook.Slug, userBook.Condition,
		userBook.CoverURL, userBook.ThumbnailURL,
	).Scan(&userBook.UpdatedAt)
	return dberr.Wrap(err, "update_book")
}

/*
SetThumbnailURL records the generated thumbnail location for a copy.

Parameters:
  - context: context.Context
  - id: string
  - thumbnailURL: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SetThumbnailURL(context context.Context, id, thumbnailURL string) error {
	const query = `
		UPDATE books.userbook
		SET thumbnailurl = $2, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL
	`
	_, err := repository.db.Exec(context, query, id, thumbnailURL)
	return dberr.Wrap(err, "set_book_thumbnail")
}

/*
SetStatus flips a copy between available and swapping.

Parameters:
  - context: context.Context
  - id: string
  - status: Status

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SetStatus(context context.Context, id string, status Status) error {
	const query = `
		UPDATE books.userbook
		SET status = $2, updatedat = NOW()
		WHERE id = $1 AND deletedat IS NULL
	`
	_, err := repository.db.Exec(context, query, id, status)
	return dberr.Wrap(err, "set_book_status")
}

/*
SoftDelete flags a copy as deleted.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	const query = `UPDATE books.userbook SET deletedat = NOW() WHERE id = $1`
	_, err := repository.db.Exec(context, query, id)
	return dberr.Wrap(err, "delete_book")
}
