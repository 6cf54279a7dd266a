/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package generator expands a template over a date range into concrete,
// time-sequenced daily schedules: category placeholders are resolved to
// random tracks, start times are accumulated per hour, and externally
// booked commercial breaks are merged in by start time.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/citizenfm/autoscheduler/internal/library"
	"github.com/citizenfm/autoscheduler/internal/models"
	"github.com/citizenfm/autoscheduler/internal/telemetry"
)

// ErrEmptyPool is returned when a category pool has no eligible media.
var ErrEmptyPool = errors.New("no eligible media in pool")

// BreakSource fetches booked commercial breaks from the playout database.
type BreakSource interface {
	CommercialBreaks(ctx context.Context, startDate, endDate string, hours []int) ([]models.CommercialBreak, error)
}

// Result is one expansion run: the per-date schedules plus non-fatal
// warnings the caller should surface.
type Result struct {
	Cache        *models.ScheduleCache
	Warnings     []string
	DroppedSlots int
}

// Generator expands templates into daily schedules.
type Generator struct {
	library *library.Library
	breaks  BreakSource
	rng     *rand.Rand
	logger  zerolog.Logger
}

// New constructs a generator. rng may be nil, in which case a time-seeded
// source is used; tests inject a fixed seed.
func New(lib *library.Library, breaks BreakSource, rng *rand.Rand, log zerolog.Logger) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{
		library: lib,
		breaks:  breaks,
		rng:     rng,
		logger:  log.With().Str("component", "generator").Logger(),
	}
}

// Expand iterates the inclusive date range, skipping dates outside the
// template's day-of-week set, and produces one daily schedule per retained
// date. The booking source being unreachable is a warning, not an error:
// affected hours proceed with zero breaks.
func (g *Generator) Expand(ctx context.Context, tpl *models.Template, start, end time.Time) (*Result, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s before start date %s", end.Format(models.DateFormat), start.Format(models.DateFormat))
	}

	began := time.Now()
	result := &Result{Cache: models.NewScheduleCache()}

	startKey := start.Format(models.DateFormat)
	endKey := end.Format(models.DateFormat)

	breaks, err := g.breaks.CommercialBreaks(ctx, startKey, endKey, tpl.Hours)
	if err != nil {
		warning := fmt.Sprintf("commercial bookings unavailable, generating without breaks: %v", err)
		g.logger.Warn().Err(err).Str("template", tpl.Name).Msg("commercial booking source unreachable")
		result.Warnings = append(result.Warnings, warning)
		breaks = nil
	}
	breaksByDateHour := groupBreaks(breaks)

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if !tpl.AppliesTo(models.ISOWeekday(date)) {
			continue
		}
		dateKey := date.Format(models.DateFormat)
		day := models.NewDailySchedule(dateKey)

		for _, hour := range tpl.Hours {
			playable := g.resolveHour(tpl, hour, dateKey, result)
			SequenceHour(hour, playable)
			merged := MergeHour(hour, playable, breaksByDateHour[dateKey][hour])
			for _, item := range merged {
				day.Append(item)
			}
		}
		result.Cache.Put(day)
	}

	telemetry.GenerationRunsTotal.WithLabelValues(tpl.Name).Inc()
	telemetry.GenerationDuration.WithLabelValues(tpl.Name).Observe(time.Since(began).Seconds())
	g.logger.Info().
		Str("template", tpl.Name).
		Str("start", startKey).
		Str("end", endKey).
		Int("dates", result.Cache.Len()).
		Int("dropped_slots", result.DroppedSlots).
		Msg("schedule generated")

	return result, nil
}

// resolveHour converts one hour of template slots into playable schedule
// items: songs are cloned with fresh identifiers, categories are resolved
// to random tracks, and headers/blanks are left for the merge step.
func (g *Generator) resolveHour(tpl *models.Template, hour int, date string, result *Result) []*models.Slot {
	var out []*models.Slot
	for _, slot := range tpl.SlotsForHour(hour) {
		switch slot.Type {
		case models.ItemEmpty, models.ItemHeader:
			continue
		case models.ItemFolder:
			track, err := g.ResolveCategory(slot)
			if err != nil {
				// Deliberate policy: an empty category yields a shorter
				// schedule, not a failed run.
				result.DroppedSlots++
				telemetry.GenerationDroppedSlotsTotal.WithLabelValues(tpl.Name).Inc()
				g.logger.Debug().
					Int64("folder_id", slot.FolderID).
					Str("folder", slot.FolderName).
					Int("hour", hour).
					Str("date", date).
					Msg("category slot dropped")
				continue
			}
			song := models.NewSongSlot(track)
			song.TemplateID = tpl.ID
			song.Hour = hour
			song.FolderID = slot.FolderID
			song.FolderName = slot.FolderName
			out = append(out, song)
		case models.ItemSong:
			out = append(out, cloneForSchedule(slot, tpl.ID))
		}
	}
	return out
}

// ResolveCategory picks one eligible track uniformly at random from the
// slot's media pool. Zero-length entries are excluded; an absent or fully
// excluded pool returns ErrEmptyPool.
func (g *Generator) ResolveCategory(slot *models.Slot) (models.Track, error) {
	pool := g.library.Pool(slot.FolderID)
	eligible := make([]models.Track, 0, len(pool))
	for _, track := range pool {
		if track.DurationMS == 0 {
			continue
		}
		eligible = append(eligible, track)
	}
	if len(eligible) == 0 {
		return models.Track{}, fmt.Errorf("folder %d (%s): %w", slot.FolderID, slot.FolderName, ErrEmptyPool)
	}
	return eligible[g.rng.Intn(len(eligible))], nil
}

// SequenceHour assigns cumulative start times within one hour: the first
// item starts at hh:00:00, each subsequent item at the previous item's
// start plus its duration. Crossing the hour boundary is permitted and not
// re-clipped. Re-running on an unchanged list yields the same outputs.
func SequenceHour(hour int, items []*models.Slot) {
	start := models.ClockTimeAtHour(hour)
	for _, item := range items {
		item.StartTime = start
		start = start.AddMillis(item.DurationMS)
	}
}

// MergeHour interleaves booked breaks into the sequenced playable items
// for one hour, ordered by start time, with the hour's header prepended
// unconditionally. The sort is stable and breaks are appended after the
// playable items, so a playable item wins a start-time tie.
func MergeHour(hour int, playable []*models.Slot, breaks []models.CommercialBreak) []*models.Slot {
	merged := make([]*models.Slot, 0, len(playable)+len(breaks)+1)
	merged = append(merged, playable...)
	for _, b := range breaks {
		merged = append(merged, models.NewCommercialBreakSlot(b.Hour, b.StartTime, b.BookedSpots, b.BookedDurationMS))
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].StartTime < merged[j].StartTime
	})
	return append([]*models.Slot{models.NewHeaderSlot(hour)}, merged...)
}

// cloneForSchedule copies a template song slot into a schedule item with a
// fresh identifier and no persistence state.
func cloneForSchedule(slot *models.Slot, templateID int64) *models.Slot {
	song := models.NewSongSlot(models.Track{
		ID:         slot.TrackID,
		Title:      slot.Title,
		ArtistID:   slot.ArtistID,
		ArtistName: slot.ArtistName,
		FolderID:   slot.FolderID,
		DurationMS: slot.DurationMS,
		FilePath:   slot.FilePath,
	})
	song.TemplateID = templateID
	song.Hour = slot.Hour
	song.FolderID = slot.FolderID
	song.FolderName = slot.FolderName
	return song
}

func groupBreaks(breaks []models.CommercialBreak) map[string]map[int][]models.CommercialBreak {
	grouped := make(map[string]map[int][]models.CommercialBreak)
	for _, b := range breaks {
		if grouped[b.Date] == nil {
			grouped[b.Date] = make(map[int][]models.CommercialBreak)
		}
		grouped[b.Date][b.Hour] = append(grouped[b.Date][b.Hour], b)
	}
	return grouped
}
