// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tomeswap/internal/core/book"
	"github.com/taibuivan/tomeswap/internal/media/thumbnail"
	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/pkg/pointer"
)

// # Fakes

type fakeRepository struct {
	books   map[string]*book.UserBook
	deleted []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{books: make(map[string]*book.UserBook)}
}

func (repo *fakeRepository) List(_ context.Context, filter book.Filter, limit, offset int) ([]*book.UserBook, int, error) {
	var matches []*book.UserBook
	for _, userBook := range repo.books {
		if filter.OwnerID != "" && userBook.OwnerID != filter.OwnerID {
			continue
		}
		matches = append(matches, userBook)
	}
	return matches, len(matches), nil
}

func (repo *fakeRepository) FindByID(_ context.Context, id string) (*book.UserBook, error) {
	if userBook, ok := repo.books[id]; ok {
		clone := *userBook
		return &clone, nil
	}
	return nil, apperr.NotFound("Book")
}

func (repo *fakeRepository) Create(_ context.Context, userBook *book.UserBook) error {
	clone := *userBook
	repo.books[userBook.ID] = &clone
	return nil
}

func (repo *fakeRepository) Update(_ context.Context, userBook *book.UserBook) error {
	clone := *userBook
	repo.books[userBook.ID] = &clone
	return nil
}

func (repo *fakeRepository) SetThumbnailURL(_ context.Context, id, thumbnailURL string) error {
	if userBook, ok := repo.books[id]; ok {
		userBook.ThumbnailURL = pointer.To(thumbnailURL)
	}
	return nil
}

func (repo *fakeRepository) SetStatus(_ context.Context, id string, status book.Status) error {
	if userBook, ok := repo.books[id]; ok {
		userBook.Status = status
	}
	return nil
}

func (repo *fakeRepository) SoftDelete(_ context.Context, id string) error {
	delete(repo.books, id)
	repo.deleted = append(repo.deleted, id)
	return nil
}

// # Fixture

func newService(repo *fakeRepository, queue *thumbnail.Queue) *book.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return book.NewService(repo, queue, logger)
}

func listedBook() *book.UserBook {
	return &book.UserBook{
		Title:     "The Left Hand of Darkness",
		Author:    "Ursula K. Le Guin",
		PageCount: 304,
		Condition: book.ConditionGood,
	}
}

// # Tests

func TestService_CreateBook(t *testing.T) {
	repo := newFakeRepository()
	queue := thumbnail.NewQueue(4)
	service := newService(repo, queue)

	input := listedBook()
	input.CoverURL = pointer.To("https://covers.example.com/lhod.jpg")

	require.NoError(t, service.CreateBook(context.Background(), input, "owner-1"))

	assert.NotEmpty(t, input.ID)
	assert.Equal(t, "owner-1", input.OwnerID)
	assert.Equal(t, "the-left-hand-of-darkness", input.Slug)
	assert.Equal(t, book.StatusAvailable, input.Status)

	// A cover means one queued thumbnail job.
	assert.Equal(t, 1, queue.Depth())

	t.Run("missing title rejected", func(t *testing.T) {
		invalid := listedBook()
		invalid.Title = ""
		err := service.CreateBook(context.Background(), invalid, "owner-1")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("bad cover url rejected", func(t *testing.T) {
		invalid := listedBook()
		invalid.CoverURL = pointer.To("not a url")
		err := service.CreateBook(context.Background(), invalid, "owner-1")
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})

	t.Run("no cover means no job", func(t *testing.T) {
		depth := queue.Depth()
		plain := listedBook()
		require.NoError(t, service.CreateBook(context.Background(), plain, "owner-1"))
		assert.Equal(t, depth, queue.Depth())
	})
}

func TestService_UpdateBook(t *testing.T) {
	repo := newFakeRepository()
	queue := thumbnail.NewQueue(4)
	service := newService(repo, queue)

	created := listedBook()
	created.CoverURL = pointer.To("https://covers.example.com/original.jpg")
	require.NoError(t, service.CreateBook(context.Background(), created, "owner-1"))
	require.NoError(t, repo.SetThumbnailURL(context.Background(), created.ID, "/media/old.jpg"))

	depthBefore := queue.Depth()

	t.Run("only owner may update", func(t *testing.T) {
		patch := &book.UserBook{ID: created.ID, Title: "Renamed"}
		err := service.UpdateBook(context.Background(), patch, "intruder")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("title change regenerates slug", func(t *testing.T) {
		patch := &book.UserBook{ID: created.ID, Title: "A Wizard of Earthsea"}
		require.NoError(t, service.UpdateBook(context.Background(), patch, "owner-1"))
		assert.Equal(t, "a-wizard-of-earthsea", patch.Slug)
		assert.Equal(t, "Ursula K. Le Guin", patch.Author)
	})

	t.Run("cover change clears thumbnail and requeues", func(t *testing.T) {
		patch := &book.UserBook{ID: created.ID, CoverURL: pointer.To("https://covers.example.com/new.jpg")}
		require.NoError(t, service.UpdateBook(context.Background(), patch, "owner-1"))
		assert.Nil(t, patch.ThumbnailURL)
		assert.Equal(t, depthBefore+1, queue.Depth())
	})

	t.Run("unknown copy", func(t *testing.T) {
		patch := &book.UserBook{ID: "missing", Title: "Ghost"}
		err := service.UpdateBook(context.Background(), patch, "owner-1")
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

func TestService_DeleteBook(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo, thumbnail.NewQueue(1))

	created := listedBook()
	require.NoError(t, service.CreateBook(context.Background(), created, "owner-1"))

	t.Run("only owner may delete", func(t *testing.T) {
		err := service.DeleteBook(context.Background(), created.ID, "intruder")
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("mid-swap copy is protected", func(t *testing.T) {
		require.NoError(t, repo.SetStatus(context.Background(), created.ID, book.StatusSwapping))
		err := service.DeleteBook(context.Background(), created.ID, "owner-1")
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
		require.NoError(t, repo.SetStatus(context.Background(), created.ID, book.StatusAvailable))
	})

	require.NoError(t, service.DeleteBook(context.Background(), created.ID, "owner-1"))
	assert.Contains(t, repo.deleted, created.ID)

	_, err := service.GetBook(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
