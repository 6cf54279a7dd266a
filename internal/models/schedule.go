/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"slices"
	"time"
)

// DateFormat is the canonical schedule date key layout.
const DateFormat = "2006-01-02"

// ISOWeekday returns the day of week with Monday=1 .. Sunday=7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DailySchedule is the ordered set of generated items for one calendar
// date, keyed by item identifier. Iteration order is insertion order.
type DailySchedule struct {
	Date  string
	order []string
	items map[string]*Slot
}

// NewDailySchedule creates an empty schedule for date.
func NewDailySchedule(date string) *DailySchedule {
	return &DailySchedule{Date: date, items: make(map[string]*Slot)}
}

// Append adds an item, keeping insertion order. A re-appended identifier
// keeps its original position.
func (d *DailySchedule) Append(s *Slot) {
	if _, ok := d.items[s.Identifier]; !ok {
		d.order = append(d.order, s.Identifier)
	}
	d.items[s.Identifier] = s
}

// Items returns the items in insertion order.
func (d *DailySchedule) Items() []*Slot {
	out := make([]*Slot, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.items[id])
	}
	return out
}

// Item returns the item with the given identifier, or nil.
func (d *DailySchedule) Item(identifier string) *Slot {
	return d.items[identifier]
}

// Len returns the item count.
func (d *DailySchedule) Len() int { return len(d.order) }

// ItemsForHours returns the items whose hour is in the given set, in
// schedule order. This backs the caller's filtered hour view.
func (d *DailySchedule) ItemsForHours(hours []int) []*Slot {
	var out []*Slot
	for _, s := range d.Items() {
		if slices.Contains(hours, s.Hour) {
			out = append(out, s)
		}
	}
	return out
}

// ScheduleCache holds generated daily schedules keyed by date, in
// generation order, until they are saved or discarded. It is mutated in
// place and must not be shared between concurrent generation runs.
type ScheduleCache struct {
	dates  []string
	byDate map[string]*DailySchedule
}

// NewScheduleCache creates an empty cache.
func NewScheduleCache() *ScheduleCache {
	return &ScheduleCache{byDate: make(map[string]*DailySchedule)}
}

// Put stores a day's schedule, replacing any previous entry for the date.
func (c *ScheduleCache) Put(day *DailySchedule) {
	if _, ok := c.byDate[day.Date]; !ok {
		c.dates = append(c.dates, day.Date)
	}
	c.byDate[day.Date] = day
}

// Dates returns the cached dates in generation order.
func (c *ScheduleCache) Dates() []string {
	return slices.Clone(c.dates)
}

// Day returns the schedule for date, or nil.
func (c *ScheduleCache) Day(date string) *DailySchedule {
	return c.byDate[date]
}

// Len returns the number of cached dates.
func (c *ScheduleCache) Len() int { return len(c.dates) }

// Clear discards all cached schedules.
func (c *ScheduleCache) Clear() {
	c.dates = nil
	c.byDate = make(map[string]*DailySchedule)
}

// Hours returns the union of distinct hours touched across all dates, in
// ascending order.
func (c *ScheduleCache) Hours() []int {
	seen := make(map[int]struct{})
	for _, date := range c.dates {
		for _, s := range c.byDate[date].Items() {
			seen[s.Hour] = struct{}{}
		}
	}
	hours := make([]int, 0, len(seen))
	for h := range seen {
		hours = append(hours, h)
	}
	slices.Sort(hours)
	return hours
}

// CountsByHour returns per-date per-hour generated item counts, excluding
// header, blank and commercial-break rows so the figures line up with what
// the synchronizer writes to the remote store.
func (c *ScheduleCache) CountsByHour() map[string]map[int]int {
	counts := make(map[string]map[int]int, len(c.dates))
	for _, date := range c.dates {
		hours := make(map[int]int)
		for _, s := range c.byDate[date].Items() {
			if !s.Playable() {
				continue
			}
			hours[s.Hour]++
		}
		counts[date] = hours
	}
	return counts
}
