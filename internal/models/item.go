/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemType tags the slot variants. The integer values are stable because
// they are persisted in the mirror's item_type column.
type ItemType int

const (
	ItemEmpty           ItemType = -1
	ItemHeader          ItemType = 0
	ItemSong            ItemType = 1
	ItemFolder          ItemType = 2
	ItemFirstColumn     ItemType = 3
	ItemCommercialBreak ItemType = 4
	ItemScheduleItem    ItemType = 5
)

// String returns the human-readable tag name.
func (t ItemType) String() string {
	switch t {
	case ItemEmpty:
		return "empty"
	case ItemHeader:
		return "header"
	case ItemSong:
		return "song"
	case ItemFolder:
		return "folder"
	case ItemFirstColumn:
		return "first_column"
	case ItemCommercialBreak:
		return "commercial_break"
	case ItemScheduleItem:
		return "schedule_item"
	}
	return fmt.Sprintf("item_type(%d)", int(t))
}

// PersistIntent records what should happen to a slot on the next store write.
type PersistIntent int

const (
	IntentNone   PersistIntent = 0
	IntentCreate PersistIntent = 1
	IntentUpdate PersistIntent = 2
	IntentDelete PersistIntent = 3
)

// ClockTime is a wall-clock offset from midnight. Values past 24h are kept
// as-is so sequencing can roll over the hour boundary without re-clipping;
// only the rendered form wraps.
type ClockTime time.Duration

// ClockTimeAtHour returns hh:00:00.
func ClockTimeAtHour(hour int) ClockTime {
	return ClockTime(time.Duration(hour) * time.Hour)
}

// ParseClockTime parses an HH:MM:SS string.
func ParseClockTime(s string) (ClockTime, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	return ClockTime(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second), nil
}

// AddMillis advances the clock time by a duration in milliseconds.
func (c ClockTime) AddMillis(ms int64) ClockTime {
	return c + ClockTime(time.Duration(ms)*time.Millisecond)
}

// String renders HH:MM:SS, wrapping at midnight.
func (c ClockTime) String() string {
	d := time.Duration(c) % (24 * time.Hour)
	if d < 0 {
		d += 24 * time.Hour
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Slot is the closed tagged union over template and schedule positions.
// Which fields are meaningful depends on Type: a Header carries only hour
// and start time, a Folder carries the category pool reference plus an
// assumed duration, a Song carries the concrete track fields, and a
// CommercialBreak carries the booking figures.
type Slot struct {
	Type       ItemType
	RowID      int64  // database row id, -1 until persisted
	Identifier string // opaque join key, unique within a template
	TemplateID int64

	Hour        int
	StartTime   ClockTime
	RowPosition int
	DurationMS  int64

	Title      string
	ArtistID   int64
	ArtistName string
	FolderID   int64
	FolderName string
	TrackID    int64
	FilePath   string

	BookedSpots      int
	BookedDurationMS int64

	Intent PersistIntent
}

func newSlot(t ItemType) *Slot {
	return &Slot{
		Type:        t,
		RowID:       -1,
		Identifier:  uuid.NewString(),
		TemplateID:  -1,
		Hour:        -1,
		RowPosition: -1,
		ArtistID:    -1,
		FolderID:    -1,
		Intent:      IntentNone,
	}
}

// NewHeaderSlot creates the zero-duration hour marker for hour.
func NewHeaderSlot(hour int) *Slot {
	s := newSlot(ItemHeader)
	s.Hour = hour
	s.StartTime = ClockTimeAtHour(hour)
	s.Title = "HEADER"
	return s
}

// NewBlankSlot creates the zero-duration spacer between hour groups.
func NewBlankSlot(hour int) *Slot {
	s := newSlot(ItemEmpty)
	s.Hour = hour
	return s
}

// NewFolderSlot creates a category placeholder pointing at a media pool.
// assumedDurationMS is the average duration used for sequencing before the
// placeholder is resolved to a concrete track.
func NewFolderSlot(folderID int64, folderName string, assumedDurationMS int64) *Slot {
	s := newSlot(ItemFolder)
	s.FolderID = folderID
	s.FolderName = folderName
	s.DurationMS = assumedDurationMS
	return s
}

// NewSongSlot creates a concrete media slot from a track.
func NewSongSlot(track Track) *Slot {
	s := newSlot(ItemSong)
	s.Title = track.Title
	s.ArtistID = track.ArtistID
	s.ArtistName = track.ArtistName
	s.TrackID = track.ID
	s.FilePath = track.FilePath
	s.DurationMS = track.DurationMS
	return s
}

// NewCommercialBreakSlot creates a merge placeholder for a booked break.
// Break slots are never written by the synchronizer.
func NewCommercialBreakSlot(hour int, start ClockTime, bookedSpots int, bookedDurationMS int64) *Slot {
	s := newSlot(ItemCommercialBreak)
	s.Hour = hour
	s.StartTime = start
	s.BookedSpots = bookedSpots
	s.BookedDurationMS = bookedDurationMS
	s.Title = fmt.Sprintf("%s - Commercial Break (%d spots)", start, bookedSpots)
	return s
}

// Playable reports whether the slot represents airable content, i.e. it
// participates in sequencing and is written to the remote store.
func (s *Slot) Playable() bool {
	return s.Type == ItemSong || s.Type == ItemFolder
}

// DisplayTitle renders the title column for the slot variant.
func (s *Slot) DisplayTitle() string {
	switch s.Type {
	case ItemHeader:
		return "HEADER"
	case ItemFolder, ItemEmpty:
		return ""
	default:
		return s.Title
	}
}

// DisplayArtist renders the artist column for the slot variant. Header rows
// repeat the marker text and folder rows show the category name, matching
// the mirror's historical presentation.
func (s *Slot) DisplayArtist() string {
	switch s.Type {
	case ItemHeader:
		return "HEADER"
	case ItemFolder:
		return s.FolderName
	default:
		return s.ArtistName
	}
}

// FormattedDuration renders HH:MM:SS for song slots and an empty string for
// every other variant.
func (s *Slot) FormattedDuration() string {
	if s.Type != ItemSong {
		return ""
	}
	return FormatAudioLen(s.DurationMS)
}

// FormattedTrackID renders the 8-digit zero-padded track reference.
func (s *Slot) FormattedTrackID() string {
	return fmt.Sprintf("%08d", s.TrackID)
}

// FormatAudioLen renders a millisecond length as HH:MM:SS.
func FormatAudioLen(ms int64) string {
	seconds := ms / 1000
	hours := seconds / 3600
	seconds %= 3600
	minutes := seconds / 60
	seconds %= 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
