// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package thumbnail generates cover thumbnails for listed books in the background.

# Architecture

A bounded in-process queue feeds a single consumer goroutine. Failed jobs are
retried with exponential backoff up to a fixed attempt budget; jobs that
exhaust the budget land in a dead-letter list for operator inspection instead
of being retried forever.

The actual image work is behind the [Processor] interface so the package stays
independent of any particular storage or imaging backend.
*/
package thumbnail

import (
	"errors"
	"time"
)

// ErrQueueFull is returned when the bounded queue cannot accept more work.
//
// Callers treat this as a soft failure: the listing succeeds and the
// thumbnail is simply regenerated on the next cover update.
var ErrQueueFull = errors.New("thumbnail: queue is full")

// Job describes one pending thumbnail generation.
type Job struct {
	// BookID identifies the catalog copy the cover belongs to.
	BookID string

	// SourceURL is the location of the original cover image.
	SourceURL string

	// Attempts counts how many times this job has already failed.
	Attempts int

	// EnqueuedAt records when the job first entered the queue.
	EnqueuedAt time.Time
}

// Queue is a bounded FIFO of thumbnail jobs.
//
// # Concurrency
//
// Enqueue may be called from any goroutine. Jobs are consumed by exactly
// one [Worker].
type Queue struct {
	jobs chan Job
}

// NewQueue creates a queue holding at most size pending jobs.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{jobs: make(chan Job, size)}
}

// Enqueue adds a job without blocking.
//
// Returns [ErrQueueFull] when the buffer is exhausted; the caller decides
// whether that is fatal (it never is for listing flows).
func (queue *Queue) Enqueue(job Job) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	select {
	case queue.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Depth reports the number of jobs currently waiting.
func (queue *Queue) Depth() int {
	return len(queue.jobs)
}
