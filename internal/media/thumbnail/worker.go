// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package thumbnail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Default retry policy for thumbnail generation.
const (
	// DefaultMaxAttempts bounds how many times a job is retried before it is
	// moved to the dead-letter list.
	DefaultMaxAttempts = 5

	// DefaultBaseBackoff is the first retry delay; it doubles per attempt.
	DefaultBaseBackoff = 2 * time.Second
)

// Processor performs the actual image work for one job.
type Processor interface {
	// Process downloads the source cover, renders the thumbnail, stores it,
	// and returns the public URL of the stored thumbnail.
	Process(ctx context.Context, job Job) (string, error)
}

// ApplyFunc records a generated thumbnail URL against the owning book.
//
// Defined as a function type rather than an interface so the catalog package
// can hand over a repository method without an adapter struct.
type ApplyFunc func(ctx context.Context, bookID string, thumbnailURL string) error

// Worker is the single consumer of a thumbnail [Queue].
type Worker struct {
	queue     *Queue
	processor Processor
	apply     ApplyFunc
	logger    *slog.Logger

	// MaxAttempts and BaseBackoff default to the package policy; tests and
	// specialized deployments may override them before calling Run.
	MaxAttempts int
	BaseBackoff time.Duration

	mu          sync.Mutex
	deadLetters []Job
}

// NewWorker constructs a worker with the default retry policy.
func NewWorker(queue *Queue, processor Processor, apply ApplyFunc, logger *slog.Logger) *Worker {
	return &Worker{
		queue:       queue,
		processor:   processor,
		apply:       apply,
		logger:      logger,
		MaxAttempts: DefaultMaxAttempts,
		BaseBackoff: DefaultBaseBackoff,
	}
}

// Run consumes jobs until the context is canceled.
//
// # Delivery Semantics
//
// At-least-once: a crash between Process and apply regenerates the thumbnail
// on the next run. Processing is idempotent (same source, same output key),
// so duplicates are harmless.
func (worker *Worker) Run(ctx context.Context) {
	worker.logger.Info("thumbnail_worker_started")

	for {
		select {
		case <-ctx.Done():
			worker.logger.Info("thumbnail_worker_stopped", slog.Int("pending", worker.queue.Depth()))
			return

		case job := <-worker.queue.jobs:
			worker.handle(ctx, job)
		}
	}
}

// handle processes a single job, scheduling a retry or dead-lettering on failure.
func (worker *Worker) handle(ctx context.Context, job Job) {
	thumbnailURL, err := worker.processor.Process(ctx, job)
	if err == nil {
		err = worker.apply(ctx, job.BookID, thumbnailURL)
	}

	if err == nil {
		worker.logger.Info("thumbnail_generated",
			slog.String("book_id", job.BookID),
			slog.Int("attempts", job.Attempts+1),
		)
		return
	}

	job.Attempts++

	if job.Attempts >= worker.MaxAttempts {
		worker.deadLetter(job, err)
		return
	}

	worker.logger.Warn("thumbnail_retry_scheduled",
		slog.String("book_id", job.BookID),
		slog.Int("attempt", job.Attempts),
		slog.Any("error", err),
	)

	// Exponential backoff: base * 2^(attempt-1). The sleep happens on the
	// worker goroutine; a single slow job delaying the queue is acceptable
	// for this workload and keeps ordering simple.
	delay := worker.BaseBackoff << (job.Attempts - 1)

	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}

	if enqueueErr := worker.queue.Enqueue(job); enqueueErr != nil {
		worker.deadLetter(job, enqueueErr)
	}
}

// deadLetter parks a job that exhausted its retry budget.
func (worker *Worker) deadLetter(job Job, cause error) {
	worker.mu.Lock()
	worker.deadLetters = append(worker.deadLetters, job)
	worker.mu.Unlock()

	worker.logger.Error("thumbnail_dead_lettered",
		slog.String("book_id", job.BookID),
		slog.Int("attempts", job.Attempts),
		slog.Any("error", cause),
	)
}

// DeadLetters returns a snapshot of jobs that exhausted their retries.
func (worker *Worker) DeadLetters() []Job {
	worker.mu.Lock()
	defer worker.mu.Unlock()

	snapshot := make([]Job, len(worker.deadLetters))
	copy(snapshot, worker.deadLetters)
	return snapshot
}
