// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package thumbnail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProcessor struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (processor *stubProcessor) Process(_ context.Context, job Job) (string, error) {
	processor.mu.Lock()
	defer processor.mu.Unlock()

	processor.calls++
	if processor.calls <= processor.failures {
		return "", errors.New("render failed")
	}
	return "https://cdn.tomeswap.app/thumbs/" + job.BookID + ".webp", nil
}

func (processor *stubProcessor) callCount() int {
	processor.mu.Lock()
	defer processor.mu.Unlock()
	return processor.calls
}

type applyRecorder struct {
	mu      sync.Mutex
	applied map[string]string
}

func newApplyRecorder() *applyRecorder {
	return &applyRecorder{applied: make(map[string]string)}
}

func (recorder *applyRecorder) apply(_ context.Context, bookID string, thumbnailURL string) error {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.applied[bookID] = thumbnailURL
	return nil
}

func (recorder *applyRecorder) get(bookID string) (string, bool) {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	url, ok := recorder.applied[bookID]
	return url, ok
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerProcessesJob(t *testing.T) {
	queue := NewQueue(4)
	processor := &stubProcessor{}
	recorder := newApplyRecorder()

	worker := NewWorker(queue, processor, recorder.apply, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	require.NoError(t, queue.Enqueue(Job{BookID: "book-1", SourceURL: "https://example.com/cover.jpg"}))

	require.Eventually(t, func() bool {
		_, ok := recorder.get("book-1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	url, _ := recorder.get("book-1")
	assert.Equal(t, "https://cdn.tomeswap.app/thumbs/book-1.webp", url)
	assert.Empty(t, worker.DeadLetters())
}

func TestWorkerRetriesThenSucceeds(t *testing.T) {
	queue := NewQueue(4)
	processor := &stubProcessor{failures: 2}
	recorder := newApplyRecorder()

	worker := NewWorker(queue, processor, recorder.apply, testLogger())
	worker.BaseBackoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	require.NoError(t, queue.Enqueue(Job{BookID: "book-2", SourceURL: "https://example.com/cover.jpg"}))

	require.Eventually(t, func() bool {
		_, ok := recorder.get("book-2")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 3, processor.callCount())
	assert.Empty(t, worker.DeadLetters())
}

func TestWorkerDeadLettersAfterMaxAttempts(t *testing.T) {
	queue := NewQueue(4)
	processor := &stubProcessor{failures: 100}
	recorder := newApplyRecorder()

	worker := NewWorker(queue, processor, recorder.apply, testLogger())
	worker.BaseBackoff = time.Millisecond
	worker.MaxAttempts = 3

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	require.NoError(t, queue.Enqueue(Job{BookID: "book-3", SourceURL: "https://example.com/cover.jpg"}))

	require.Eventually(t, func() bool {
		return len(worker.DeadLetters()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	dead := worker.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, "book-3", dead[0].BookID)
	assert.Equal(t, 3, dead[0].Attempts)

	_, applied := recorder.get("book-3")
	assert.False(t, applied)
}

func TestQueueRejectsWhenFull(t *testing.T) {
	queue := NewQueue(1)

	require.NoError(t, queue.Enqueue(Job{BookID: "book-a"}))
	err := queue.Enqueue(Job{BookID: "book-b"})

	require.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1, queue.Depth())
}
