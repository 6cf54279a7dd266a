/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package library holds the in-memory media pool the generator resolves
// category slots against. Tracks are loaded from the playout system's CSV
// export.
package library

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/citizenfm/autoscheduler/internal/models"
)

// Library indexes tracks by id and by folder (category pool).
type Library struct {
	tracks   map[int64]models.Track
	byFolder map[int64][]models.Track
	order    []int64
}

// New creates an empty library.
func New() *Library {
	return &Library{
		tracks:   make(map[int64]models.Track),
		byFolder: make(map[int64][]models.Track),
	}
}

// Add inserts or replaces a track. Replacing removes the previous entry
// from its folder pool, so a duplicated id in the export never carries
// double weight in random selection.
func (l *Library) Add(t models.Track) {
	if prev, ok := l.tracks[t.ID]; ok {
		l.removeFromPool(prev)
	} else {
		l.order = append(l.order, t.ID)
	}
	l.tracks[t.ID] = t
	l.byFolder[t.FolderID] = append(l.byFolder[t.FolderID], t)
}

func (l *Library) removeFromPool(t models.Track) {
	pool := l.byFolder[t.FolderID]
	for i, entry := range pool {
		if entry.ID == t.ID {
			l.byFolder[t.FolderID] = append(pool[:i], pool[i+1:]...)
			return
		}
	}
}

// Track returns the track with the given id.
func (l *Library) Track(id int64) (models.Track, bool) {
	t, ok := l.tracks[id]
	return t, ok
}

// Pool returns the tracks belonging to a folder, in load order. The
// returned slice is shared; callers must not mutate it.
func (l *Library) Pool(folderID int64) []models.Track {
	return l.byFolder[folderID]
}

// Folders returns the ids of all folders with at least one track, in no
// particular order.
func (l *Library) Folders() []int64 {
	folders := make([]int64, 0, len(l.byFolder))
	for id := range l.byFolder {
		folders = append(folders, id)
	}
	return folders
}

// Len returns the number of tracks loaded.
func (l *Library) Len() int { return len(l.order) }

// LoadCSV reads a track export with columns
// track_id, title, artist_name, duration_ms, artist_id, folder_id, file_path.
func LoadCSV(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open track export: %w", err)
	}
	defer f.Close()

	lib := New()
	if err := lib.ReadCSV(f); err != nil {
		return nil, fmt.Errorf("read track export %s: %w", path, err)
	}
	return lib, nil
}

// ReadCSV parses track rows from r into the library.
func (l *Library) ReadCSV(r io.Reader) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 7

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line++

		track, err := parseRecord(record)
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		l.Add(track)
	}
}

func parseRecord(record []string) (models.Track, error) {
	trackID, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return models.Track{}, fmt.Errorf("track_id %q: %w", record[0], err)
	}
	duration, err := strconv.ParseInt(record[3], 10, 64)
	if err != nil {
		return models.Track{}, fmt.Errorf("duration %q: %w", record[3], err)
	}
	artistID, err := strconv.ParseInt(record[4], 10, 64)
	if err != nil {
		return models.Track{}, fmt.Errorf("artist_id %q: %w", record[4], err)
	}
	folderID, err := strconv.ParseInt(record[5], 10, 64)
	if err != nil {
		return models.Track{}, fmt.Errorf("folder_id %q: %w", record[5], err)
	}

	return models.Track{
		ID:         trackID,
		Title:      record[1],
		ArtistName: record[2],
		DurationMS: duration,
		ArtistID:   artistID,
		FolderID:   folderID,
		FilePath:   record[6],
	}, nil
}
