/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package syncer pushes a generated schedule into the two stores: the
// authoritative playout database and the local mirror. Prior rows for
// the affected dates and hours are deleted first, then the remote rows
// go out as one batch and the mirror rows one statement at a time.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/citizenfm/autoscheduler/internal/models"
	"github.com/citizenfm/autoscheduler/internal/store/mirror"
	"github.com/citizenfm/autoscheduler/internal/store/remote"
	"github.com/citizenfm/autoscheduler/internal/telemetry"
)

// State is where the sync run currently stands. Transitions are strictly
// forward: Idle, Started, DeletingPriorHours, InsertingRemote,
// InsertingLocal, then Completed or Failed.
type State string

const (
	StateIdle               State = "idle"
	StateStarted            State = "started"
	StateDeletingPriorHours State = "deleting_prior_hours"
	StateInsertingRemote    State = "inserting_remote"
	StateInsertingLocal     State = "inserting_local"
	StateCompleted          State = "completed"
	StateFailed             State = "failed"
)

// Message renders the state as the progress sentence shown to operators.
func (s State) Message() string {
	switch s {
	case StateStarted:
		return "Starting schedule save..."
	case StateDeletingPriorHours:
		return "Deleting previously scheduled hours..."
	case StateInsertingRemote:
		return "Writing playout database rows..."
	case StateInsertingLocal:
		return "Writing local mirror rows..."
	case StateCompleted:
		return "Schedule save complete"
	case StateFailed:
		return "Schedule save failed"
	}
	return string(s)
}

// RemoteStore is the slice of the playout database the syncer needs.
type RemoteStore interface {
	DeleteCuedHours(ctx context.Context, dates []string, hours []int) (int64, error)
	InsertBatch(ctx context.Context, rows []remote.Row) error
}

// MirrorStore is the slice of the local mirror the syncer needs.
type MirrorStore interface {
	DeleteHours(ctx context.Context, dates []string, hours []int) (int64, error)
	InsertScheduleRow(ctx context.Context, row mirror.ScheduleRow) error
}

// Report summarizes a completed sync run.
type Report struct {
	Dates          int
	RemoteRows     int
	MirrorRows     int
	MirrorFailures int
	DeletedRemote  int64
	DeletedMirror  int64
}

// Syncer writes generated schedules to both stores.
type Syncer struct {
	remote RemoteStore
	mirror MirrorStore
	logger zerolog.Logger

	mu    sync.Mutex
	state State
}

// New constructs a syncer.
func New(remoteStore RemoteStore, mirrorStore MirrorStore, log zerolog.Logger) *Syncer {
	return &Syncer{
		remote: remoteStore,
		mirror: mirrorStore,
		logger: log.With().Str("component", "syncer").Logger(),
		state:  StateIdle,
	}
}

// State returns the current run state.
func (s *Syncer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Syncer) transition(to State, progress func(string)) {
	s.mu.Lock()
	s.state = to
	s.mu.Unlock()
	if progress != nil {
		progress(to.Message())
	}
}

// Sync replaces the stored schedule for every date and hour present in
// cache. ref is the batch's schedule reference: one run, one reference,
// carried by every row it writes. progress may be nil.
//
// The remote delete-and-insert runs first and any failure there aborts
// the run before the mirror is touched, so the authoritative store is
// never left behind the mirror. A mirror delete failure after the remote
// delete has already happened is still a failed run: the stores have
// diverged and the caller has to re-sync. Individual mirror inserts are
// best effort; failures are logged and counted but do not abort.
func (s *Syncer) Sync(ctx context.Context, cache *models.ScheduleCache, templateID int64, ref string, progress func(string)) (*Report, error) {
	began := time.Now()
	report := &Report{Dates: cache.Len()}

	fail := func(err error) (*Report, error) {
		s.transition(StateFailed, progress)
		telemetry.SyncRunsTotal.WithLabelValues("failed").Inc()
		return report, err
	}

	s.transition(StateStarted, progress)

	if ref == "" {
		return fail(fmt.Errorf("no schedule ref allocated for this run"))
	}
	dates := cache.Dates()
	hours := cache.Hours()
	if len(dates) == 0 || len(hours) == 0 {
		return fail(fmt.Errorf("nothing to sync"))
	}

	remoteRows, mirrorRows := buildRows(cache, templateID, ref)
	report.RemoteRows = len(remoteRows)
	report.MirrorRows = len(mirrorRows)

	s.transition(StateDeletingPriorHours, progress)
	deleted, err := s.remote.DeleteCuedHours(ctx, dates, hours)
	if err != nil {
		return fail(fmt.Errorf("deleting prior remote hours: %w", err))
	}
	report.DeletedRemote = deleted

	deleted, err = s.mirror.DeleteHours(ctx, dates, hours)
	if err != nil {
		// The remote delete already ran; the stores have diverged.
		return fail(fmt.Errorf("deleting prior mirror hours after remote delete, stores need a re-sync: %w", err))
	}
	report.DeletedMirror = deleted

	s.transition(StateInsertingRemote, progress)
	if err := s.remote.InsertBatch(ctx, remoteRows); err != nil {
		return fail(fmt.Errorf("inserting remote batch: %w", err))
	}
	telemetry.SyncStatementsTotal.WithLabelValues("remote").Add(float64(len(remoteRows)))

	s.transition(StateInsertingLocal, progress)
	for _, row := range mirrorRows {
		if err := s.mirror.InsertScheduleRow(ctx, row); err != nil {
			report.MirrorFailures++
			telemetry.MirrorStatementFailuresTotal.Inc()
			s.logger.Error().Err(err).
				Str("date", row.ScheduleDate).
				Int("hour", row.ScheduleHour).
				Int("row", row.ItemRow).
				Msg("mirror insert failed")
			continue
		}
		telemetry.SyncStatementsTotal.WithLabelValues("mirror").Inc()
	}

	s.transition(StateCompleted, progress)
	telemetry.SyncRunsTotal.WithLabelValues("completed").Inc()
	s.logger.Info().
		Int("dates", report.Dates).
		Int("remote_rows", report.RemoteRows).
		Int("mirror_rows", report.MirrorRows).
		Int("mirror_failures", report.MirrorFailures).
		Dur("elapsed", time.Since(began)).
		Msg("schedule synchronized")
	return report, nil
}

// buildRows walks the cache in date and item order and produces the rows
// for each store, all carrying the run's shared schedule reference. The
// two stores number their rows independently, each restarting at zero per
// date: headers exist only in the mirror, playable items in both, and
// blanks and commercial breaks in neither.
func buildRows(cache *models.ScheduleCache, templateID int64, ref string) ([]remote.Row, []mirror.ScheduleRow) {
	var remoteRows []remote.Row
	var mirrorRows []mirror.ScheduleRow

	for _, date := range cache.Dates() {
		remoteSeq, mirrorSeq := 0, 0
		for _, item := range cache.Day(date).Items() {
			switch {
			case item.Type == models.ItemHeader:
				mirrorRows = append(mirrorRows, mirror.NewScheduleRow(date, ref, templateID, item, mirrorSeq))
				mirrorSeq++
			case item.Playable():
				remoteRows = append(remoteRows, remote.NewSongRow(date, ref, item, remoteSeq))
				remoteSeq++
				mirrorRows = append(mirrorRows, mirror.NewScheduleRow(date, ref, templateID, item, mirrorSeq))
				mirrorSeq++
			}
		}
	}
	return remoteRows, mirrorRows
}
