// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tomeswap/internal/core/book"
	"github.com/taibuivan/tomeswap/internal/core/swap"
	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/pkg/uuid"
)

func ownedBook(ownerID string, pageCount int) *book.UserBook {
	return &book.UserBook{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     "The Master and Margarita",
		Author:    "Mikhail Bulgakov",
		PageCount: pageCount,
		Condition: book.ConditionGood,
		Status:    book.StatusAvailable,
	}
}

/*
TestNewSwap checks the creation scenario: two fixed-role sides, the
requester's copy bound immediately, the acceptor's side left open.
*/
func TestNewSwap(t *testing.T) {
	requester := uuid.New()
	acceptor := uuid.New()
	offered := ownedBook(requester, 480)
	createdAt := time.Now().UTC()

	aggregate, err := swap.NewSwap(requester, acceptor, offered, createdAt)
	require.NoError(t, err)

	assert.Equal(t, swap.StatusRequested, aggregate.Status)
	assert.Equal(t, createdAt, aggregate.CreatedAt)

	assert.Equal(t, requester, aggregate.Requesting.UserID)
	require.NotNil(t, aggregate.Requesting.BookID)
	assert.Equal(t, offered.ID, *aggregate.Requesting.BookID)

	assert.Equal(t, acceptor, aggregate.Accepting.UserID)
	assert.Nil(t, aggregate.Accepting.BookID)

	assert.NotEqual(t, aggregate.Requesting.UserID, aggregate.Accepting.UserID)
	assert.Equal(t, aggregate.ID, aggregate.Requesting.SwapID)
	assert.Equal(t, aggregate.ID, aggregate.Accepting.SwapID)
}

func TestNewSwap_SelfSwapRejected(t *testing.T) {
	userID := uuid.New()
	offered := ownedBook(userID, 100)

	_, err := swap.NewSwap(userID, userID, offered, time.Now().UTC())
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestNewSwap_ForeignBookRejected(t *testing.T) {
	requester := uuid.New()
	offered := ownedBook(uuid.New(), 100)

	_, err := swap.NewSwap(requester, uuid.New(), offered, time.Now().UTC())
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

/*
TestSwap_Accept checks the acceptance rules: only the accepting member,
only with their own copy, and only once.
*/
func TestSwap_Accept(t *testing.T) {
	requester := uuid.New()
	acceptor := uuid.New()

	aggregate, err := swap.NewSwap(requester, acceptor, ownedBook(requester, 200), time.Now().UTC())
	require.NoError(t, err)

	committed := ownedBook(acceptor, 320)

	t.Run("wrong_user_forbidden", func(t *testing.T) {
		err := aggregate.Accept(requester, committed)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("foreign_book_forbidden", func(t *testing.T) {
		err := aggregate.Accept(acceptor, ownedBook(uuid.New(), 50))
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	})

	t.Run("accept_binds_and_activates", func(t *testing.T) {
		require.NoError(t, aggregate.Accept(acceptor, committed))
		require.NotNil(t, aggregate.Accepting.BookID)
		assert.Equal(t, committed.ID, *aggregate.Accepting.BookID)
		assert.Equal(t, swap.StatusActive, aggregate.Status)
	})

	t.Run("second_bind_conflicts", func(t *testing.T) {
		err := aggregate.Accept(acceptor, ownedBook(acceptor, 99))
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

/*
TestSubSwap_SetPage checks reading progress stays inside the committed
book's page bound.
*/
func TestSubSwap_SetPage(t *testing.T) {
	requester := uuid.New()
	committed := ownedBook(requester, 300)

	aggregate, err := swap.NewSwap(requester, uuid.New(), committed, time.Now().UTC())
	require.NoError(t, err)

	tests := []struct {
		name    string
		pageAt  int
		wantErr bool
	}{
		{"page_zero", 0, false},
		{"mid_book", 150, false},
		{"last_page", 300, false},
		{"past_the_end", 301, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := aggregate.UpdateProgress(requester, tt.pageAt, committed)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.pageAt, aggregate.Requesting.PageAt)
			}
		})
	}

	t.Run("outsider_not_found", func(t *testing.T) {
		err := aggregate.UpdateProgress(uuid.New(), 10, committed)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})

	t.Run("no_committed_book_conflicts", func(t *testing.T) {
		err := aggregate.Accepting.SetPage(10, committed)
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})
}

/*
TestSwap_DisputeLifecycle checks issue attachment flips the status to
disputed and resolution reactivates the swap and clears the reference.
*/
func TestSwap_DisputeLifecycle(t *testing.T) {
	requester := uuid.New()
	aggregate, err := swap.NewSwap(requester, uuid.New(), ownedBook(requester, 100), time.Now().UTC())
	require.NoError(t, err)
	aggregate.Status = swap.StatusActive

	issueID := uuid.New()

	require.NoError(t, aggregate.OpenDispute(requester, issueID))
	assert.Equal(t, swap.StatusDisputed, aggregate.Status)
	require.NotNil(t, aggregate.Requesting.IssueID)
	assert.Equal(t, issueID, *aggregate.Requesting.IssueID)

	t.Run("second_issue_conflicts", func(t *testing.T) {
		err := aggregate.OpenDispute(requester, uuid.New())
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperr.As(err).Code)
	})

	require.NoError(t, aggregate.ResolveDispute(requester))
	assert.Nil(t, aggregate.Requesting.IssueID)
	assert.Equal(t, swap.StatusActive, aggregate.Status)

	t.Run("resolve_without_issue_not_found", func(t *testing.T) {
		err := aggregate.ResolveDispute(requester)
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
	})
}

/*
TestSwap_RecordFeedback checks that the swap completes only once both
sides have left feedback, and each side rates at most once.
*/
func TestSwap_RecordFeedback(t *testing.T) {
	requester := uuid.New()
	acceptor := uuid.New()
	aggregate, err := swap.NewSwap(requester, acceptor, ownedBook(requester, 100), time.Now().UTC())
	require.NoError(t, err)
	aggregate.Status = swap.StatusActive

	require.NoError(t, aggregate.RecordFeedback(requester, uuid.New()))
	assert.Equal(t, swap.StatusActive, aggregate.Status, "one-sided feedback must not complete the swap")

	err = aggregate.RecordFeedback(requester, uuid.New())
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)

	require.NoError(t, aggregate.RecordFeedback(acceptor, uuid.New()))
	assert.Equal(t, swap.StatusCompleted, aggregate.Status)
}

func TestSwap_Counterpart(t *testing.T) {
	requester := uuid.New()
	acceptor := uuid.New()
	aggregate, err := swap.NewSwap(requester, acceptor, ownedBook(requester, 100), time.Now().UTC())
	require.NoError(t, err)

	counterpart, err := aggregate.CounterpartOf(requester)
	require.NoError(t, err)
	assert.Equal(t, acceptor, counterpart.UserID)

	counterpart, err = aggregate.CounterpartOf(acceptor)
	require.NoError(t, err)
	assert.Equal(t, requester, counterpart.UserID)

	_, err = aggregate.CounterpartOf(uuid.New())
	require.Error(t, err)
}
