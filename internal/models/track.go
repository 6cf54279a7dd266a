/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import "fmt"

// Track is one record in the media library.
type Track struct {
	ID         int64
	Title      string
	ArtistID   int64
	ArtistName string
	FolderID   int64
	DurationMS int64
	FilePath   string
}

// FormattedID renders the 8-digit zero-padded track reference.
func (t Track) FormattedID() string {
	return fmt.Sprintf("%08d", t.ID)
}

// FormattedDuration renders the track length as HH:MM:SS.
func (t Track) FormattedDuration() string {
	return FormatAudioLen(t.DurationMS)
}

// CommercialBreak is one booked break record fetched from the playout
// database, grouped by date and hour.
type CommercialBreak struct {
	Date             string
	StartTime        ClockTime
	Hour             int
	BookedSpots      int
	BookedDurationMS int64
}
