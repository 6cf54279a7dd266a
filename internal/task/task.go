/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package task runs one long-lived background job at a time and streams
// its progress over a bounded channel. Each run gets its own channel;
// there is no shared bus and no mid-run cancellation beyond the context
// handed to the job itself.
package task

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("a task is already running")

// Phase marks where in its life cycle an event was emitted.
type Phase string

const (
	PhaseStarted   Phase = "started"
	PhaseProgress  Phase = "progress"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

// Event is one progress notification from a running task.
type Event struct {
	Task    string
	Phase   Phase
	Message string
}

// Func is the body of a task. It reports progress through emit, which
// never blocks, and signals failure by returning an error.
type Func func(ctx context.Context, emit func(message string)) error

const eventBuffer = 64

// Runner executes at most one task at a time.
type Runner struct {
	mu      sync.Mutex
	running bool
	logger  zerolog.Logger
}

// NewRunner constructs a runner.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{logger: log.With().Str("component", "task").Logger()}
}

// Running reports whether a task is currently in flight.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Run starts fn in the background and returns the channel its events
// arrive on. The channel is closed after the terminal Completed or
// Failed event. If a slow consumer lets the buffer fill, progress
// events are dropped rather than stalling the task; terminal events
// are always delivered. A second Run while one is in flight returns
// ErrBusy.
func (r *Runner) Run(ctx context.Context, name string, fn Func) (<-chan Event, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrBusy
	}
	r.running = true
	r.mu.Unlock()

	events := make(chan Event, eventBuffer)
	emit := func(message string) {
		select {
		case events <- Event{Task: name, Phase: PhaseProgress, Message: message}:
		default:
			r.logger.Debug().Str("task", name).Str("message", message).Msg("progress event dropped")
		}
	}

	go func() {
		defer func() {
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
			close(events)
		}()

		events <- Event{Task: name, Phase: PhaseStarted}
		r.logger.Info().Str("task", name).Msg("task started")

		if err := fn(ctx, emit); err != nil {
			r.logger.Error().Err(err).Str("task", name).Msg("task failed")
			events <- Event{Task: name, Phase: PhaseFailed, Message: err.Error()}
			return
		}
		r.logger.Info().Str("task", name).Msg("task completed")
		events <- Event{Task: name, Phase: PhaseCompleted}
	}()

	return events, nil
}
