/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"fmt"
	"slices"
)

// Template is a reusable hourly programming pattern: the hours it covers,
// the days of week it applies to (ISO, Monday=1), and the ordered slots.
type Template struct {
	ID          int64
	Name        string
	Description string
	Hours       []int
	DaysOfWeek  []int
	Slots       []*Slot

	Intent PersistIntent
}

// NewTemplate creates an empty template.
func NewTemplate(name string) *Template {
	return &Template{ID: -1, Name: name}
}

// AppliesTo reports whether the template covers the given ISO weekday.
func (t *Template) AppliesTo(isoWeekday int) bool {
	return slices.Contains(t.DaysOfWeek, isoWeekday)
}

// AddSlot appends a slot in template order.
func (t *Template) AddSlot(s *Slot) {
	s.TemplateID = t.ID
	t.Slots = append(t.Slots, s)
}

// Slot returns the slot with the given identifier, or nil.
func (t *Template) Slot(identifier string) *Slot {
	for _, s := range t.Slots {
		if s.Identifier == identifier {
			return s
		}
	}
	return nil
}

// SlotsForHour returns the slots belonging to one hour, in template order.
func (t *Template) SlotsForHour(hour int) []*Slot {
	var out []*Slot
	for _, s := range t.Slots {
		if s.Hour == hour {
			out = append(out, s)
		}
	}
	return out
}

// InsertHour adds a new hour to the template: a header and trailing blank
// pair placed before the first slot with a later start time, or at the end
// when the hour is the latest. The hour set stays sorted and duplicate
// hours are rejected.
func (t *Template) InsertHour(hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour %d out of range", hour)
	}
	if slices.Contains(t.Hours, hour) {
		return fmt.Errorf("hour %d already present in template %q", hour, t.Name)
	}

	header := NewHeaderSlot(hour)
	header.TemplateID = t.ID
	header.Intent = IntentCreate
	blank := NewBlankSlot(hour)
	blank.TemplateID = t.ID
	blank.Intent = IntentCreate

	inserted := false
	out := make([]*Slot, 0, len(t.Slots)+2)
	for _, s := range t.Slots {
		if !inserted && s.Type == ItemHeader && header.StartTime < s.StartTime {
			out = append(out, header, blank)
			inserted = true
		}
		out = append(out, s)
	}
	if !inserted {
		out = append(out, header, blank)
	}
	t.Slots = out

	t.Hours = append(t.Hours, hour)
	slices.Sort(t.Hours)
	return nil
}

// RemoveHour marks every slot of the hour for deletion and drops the hour
// from the hour set. The slots stay in place until the store write so the
// delete intent can be persisted.
func (t *Template) RemoveHour(hour int) {
	for _, s := range t.Slots {
		if s.Hour == hour {
			s.Intent = IntentDelete
		}
	}
	t.Hours = slices.DeleteFunc(t.Hours, func(h int) bool { return h == hour })
}

// HourStats summarizes one hour of a template.
type HourStats struct {
	Hour            int
	ItemCount       int
	TotalDurationMS int64
	EndTime         ClockTime
}

// Stats computes per-hour item counts and projected end-of-hour times, in
// hour order.
func (t *Template) Stats() []HourStats {
	stats := make([]HourStats, 0, len(t.Hours))
	for _, hour := range t.Hours {
		var count int
		var total int64
		for _, s := range t.SlotsForHour(hour) {
			count++
			total += s.DurationMS
		}
		stats = append(stats, HourStats{
			Hour:            hour,
			ItemCount:       count,
			TotalDurationMS: total,
			EndTime:         ClockTimeAtHour(hour).AddMillis(total),
		})
	}
	return stats
}
