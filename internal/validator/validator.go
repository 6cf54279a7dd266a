/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package validator compares a generated schedule against what the
// playout database actually holds, hour by hour. Commercially booked
// rows are excluded on the stored side, so the comparison is strictly
// music against music.
package validator

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/citizenfm/autoscheduler/internal/models"
	"github.com/citizenfm/autoscheduler/internal/telemetry"
)

// CountSource reports stored per-hour row counts from the playout
// database, excluding commercial rows.
type CountSource interface {
	HourCounts(ctx context.Context, dates []string, hours []int) (map[string]map[int]int, error)
}

// Cell is one date-hour comparison.
type Cell struct {
	Hour      int
	Generated int
	Stored    int
}

// Match reports whether the stored count equals the generated one.
func (c Cell) Match() bool { return c.Generated == c.Stored }

// EligibleForCreate reports that nothing is stored for this hour yet, so
// a sync would be a pure insert.
func (c Cell) EligibleForCreate() bool { return c.Stored == 0 }

// EligibleForDelete reports that stored rows exist for this hour, so a
// sync would first delete them.
func (c Cell) EligibleForDelete() bool { return c.Stored > 0 }

// DateReport is one date's comparison cells, in ascending hour order.
type DateReport struct {
	Date           string
	Cells          []Cell
	GeneratedTotal int
	StoredTotal    int
}

// Matches reports whether every hour of the date lines up.
func (d DateReport) Matches() bool {
	for _, cell := range d.Cells {
		if !cell.Match() {
			return false
		}
	}
	return true
}

// Report is the full comparison, in generated date order.
type Report struct {
	Dates []DateReport
}

// Matches reports whether every date in the report lines up.
func (r Report) Matches() bool {
	for _, d := range r.Dates {
		if !d.Matches() {
			return false
		}
	}
	return true
}

// Date returns the report for one date, or nil.
func (r Report) Date(date string) *DateReport {
	for i := range r.Dates {
		if r.Dates[i].Date == date {
			return &r.Dates[i]
		}
	}
	return nil
}

// Validator compares generated schedules against stored state.
type Validator struct {
	counts CountSource
	logger zerolog.Logger
}

// New constructs a validator.
func New(counts CountSource, log zerolog.Logger) *Validator {
	return &Validator{
		counts: counts,
		logger: log.With().Str("component", "validator").Logger(),
	}
}

// Compare fetches stored counts for the cache's dates and hours and
// lines them up against the generated playable item counts. Every
// generated date-hour pair gets a cell even when the store has nothing
// for it.
func (v *Validator) Compare(ctx context.Context, cache *models.ScheduleCache) (*Report, error) {
	dates := cache.Dates()
	hours := cache.Hours()
	if len(dates) == 0 {
		return nil, fmt.Errorf("nothing generated to validate")
	}

	stored, err := v.counts.HourCounts(ctx, dates, hours)
	if err != nil {
		telemetry.ValidatorRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetching stored hour counts: %w", err)
	}

	generated := cache.CountsByHour()
	report := &Report{}
	for _, date := range dates {
		dr := DateReport{Date: date}
		hourSet := make(map[int]struct{})
		for hour := range generated[date] {
			hourSet[hour] = struct{}{}
		}
		for hour := range stored[date] {
			hourSet[hour] = struct{}{}
		}
		cellHours := make([]int, 0, len(hourSet))
		for hour := range hourSet {
			cellHours = append(cellHours, hour)
		}
		sort.Ints(cellHours)

		for _, hour := range cellHours {
			cell := Cell{
				Hour:      hour,
				Generated: generated[date][hour],
				Stored:    stored[date][hour],
			}
			dr.Cells = append(dr.Cells, cell)
			dr.GeneratedTotal += cell.Generated
			dr.StoredTotal += cell.Stored
		}
		report.Dates = append(report.Dates, dr)
	}

	result := "mismatch"
	if report.Matches() {
		result = "match"
	}
	telemetry.ValidatorRunsTotal.WithLabelValues(result).Inc()
	v.logger.Info().
		Int("dates", len(report.Dates)).
		Bool("match", report.Matches()).
		Msg("schedule validated")
	return report, nil
}
