/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package generator

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/citizenfm/autoscheduler/internal/library"
	"github.com/citizenfm/autoscheduler/internal/models"
)

type fakeBreakSource struct {
	breaks []models.CommercialBreak
	err    error
	calls  int
}

func (f *fakeBreakSource) CommercialBreaks(_ context.Context, _, _ string, _ []int) ([]models.CommercialBreak, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.breaks, nil
}

func testLibrary() *library.Library {
	lib := library.New()
	lib.Add(models.Track{ID: 1, Title: "One", ArtistID: 10, ArtistName: "A", FolderID: 3, DurationMS: 180000, FilePath: "/m/1.mp3"})
	lib.Add(models.Track{ID: 2, Title: "Two", ArtistID: 11, ArtistName: "B", FolderID: 3, DurationMS: 200000, FilePath: "/m/2.mp3"})
	lib.Add(models.Track{ID: 3, Title: "Zero", ArtistID: 12, ArtistName: "C", FolderID: 9, DurationMS: 0, FilePath: "/m/3.mp3"})
	return lib
}

func testGenerator(breaks BreakSource) *Generator {
	return New(testLibrary(), breaks, rand.New(rand.NewSource(1)), zerolog.Nop())
}

func templateWithHours(hours []int, dow []int) *models.Template {
	tpl := models.NewTemplate("test")
	tpl.ID = 7
	tpl.Hours = hours
	tpl.DaysOfWeek = dow
	for _, h := range hours {
		header := models.NewHeaderSlot(h)
		tpl.AddSlot(header)
		folder := models.NewFolderSlot(3, "Gold", 190000)
		folder.Hour = h
		tpl.AddSlot(folder)
		blank := models.NewBlankSlot(h)
		tpl.AddSlot(blank)
	}
	return tpl
}

func TestSequenceHour(t *testing.T) {
	a := models.NewSongSlot(models.Track{ID: 1, DurationMS: 180000})
	a.Hour = 5
	b := models.NewSongSlot(models.Track{ID: 2, DurationMS: 200000})
	b.Hour = 5

	items := []*models.Slot{a, b}
	SequenceHour(5, items)

	if got := a.StartTime.String(); got != "05:00:00" {
		t.Errorf("first start = %q, want 05:00:00", got)
	}
	if got := b.StartTime.String(); got != "05:03:00" {
		t.Errorf("second start = %q, want 05:03:00", got)
	}

	// Idempotent on unchanged input.
	SequenceHour(5, items)
	if a.StartTime.String() != "05:00:00" || b.StartTime.String() != "05:03:00" {
		t.Error("re-sequencing changed start times")
	}
}

func TestSequenceHourRollover(t *testing.T) {
	a := models.NewSongSlot(models.Track{ID: 1, DurationMS: 3_500_000})
	b := models.NewSongSlot(models.Track{ID: 2, DurationMS: 200_000})
	SequenceHour(5, []*models.Slot{a, b})

	// 58m20s pushes the second item past the hour boundary; not re-clipped.
	if got := b.StartTime.String(); got != "05:58:20" {
		t.Errorf("rollover start = %q, want 05:58:20", got)
	}
}

func TestMergeHourOrder(t *testing.T) {
	item := models.NewSongSlot(models.Track{ID: 1, DurationMS: 60000})
	item.Hour = 5
	item.StartTime = models.ClockTimeAtHour(5).AddMillis(180000) // 05:03:00

	breaks := []models.CommercialBreak{
		{Hour: 5, StartTime: models.ClockTimeAtHour(5).AddMillis(60000), BookedSpots: 4}, // 05:01:00
	}

	merged := MergeHour(5, []*models.Slot{item}, breaks)
	if len(merged) != 3 {
		t.Fatalf("merged len = %d, want 3", len(merged))
	}
	if merged[0].Type != models.ItemHeader {
		t.Errorf("position 0 = %v, want header", merged[0].Type)
	}
	if merged[1].Type != models.ItemCommercialBreak || merged[1].StartTime.String() != "05:01:00" {
		t.Errorf("position 1 = %v@%s, want break@05:01:00", merged[1].Type, merged[1].StartTime)
	}
	if merged[2].Type != models.ItemSong || merged[2].StartTime.String() != "05:03:00" {
		t.Errorf("position 2 = %v@%s, want song@05:03:00", merged[2].Type, merged[2].StartTime)
	}
}

func TestMergeHourTieBreak(t *testing.T) {
	item := models.NewSongSlot(models.Track{ID: 1, DurationMS: 60000})
	item.Hour = 5
	item.StartTime = models.ClockTimeAtHour(5)

	breaks := []models.CommercialBreak{{Hour: 5, StartTime: models.ClockTimeAtHour(5), BookedSpots: 2}}

	merged := MergeHour(5, []*models.Slot{item}, breaks)
	if merged[1].Type != models.ItemSong {
		t.Errorf("equal start times: playable must precede break, got %v", merged[1].Type)
	}
	if merged[2].Type != models.ItemCommercialBreak {
		t.Errorf("position 2 = %v, want break", merged[2].Type)
	}
}

func TestResolveCategoryExcludesZeroLength(t *testing.T) {
	gen := testGenerator(&fakeBreakSource{})

	slot := models.NewFolderSlot(9, "AllZero", 0)
	if _, err := gen.ResolveCategory(slot); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("err = %v, want ErrEmptyPool", err)
	}

	slot = models.NewFolderSlot(42, "Absent", 0)
	if _, err := gen.ResolveCategory(slot); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("absent pool err = %v, want ErrEmptyPool", err)
	}

	slot = models.NewFolderSlot(3, "Gold", 0)
	track, err := gen.ResolveCategory(slot)
	if err != nil {
		t.Fatalf("ResolveCategory: %v", err)
	}
	if track.DurationMS == 0 {
		t.Error("resolver picked a zero-length track")
	}
}

func TestExpandEveryDay(t *testing.T) {
	gen := testGenerator(&fakeBreakSource{})
	tpl := templateWithHours([]int{2, 3, 4}, []int{1, 2, 3, 4, 5, 6, 7})

	start := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC) // Wednesday
	end := start.AddDate(0, 0, 6)

	result, err := gen.Expand(context.Background(), tpl, start, end)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result.Cache.Len() != 7 {
		t.Errorf("dates = %d, want 7", result.Cache.Len())
	}
}

func TestExpandMondayOnly(t *testing.T) {
	gen := testGenerator(&fakeBreakSource{})
	tpl := templateWithHours([]int{6}, []int{1})

	start := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC) // Tuesday
	end := start.AddDate(0, 0, 13)

	result, err := gen.Expand(context.Background(), tpl, start, end)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if result.Cache.Len() != 2 {
		t.Errorf("dates = %d, want 2 (Mondays only)", result.Cache.Len())
	}
	for _, date := range result.Cache.Dates() {
		parsed, err := time.Parse(models.DateFormat, date)
		if err != nil {
			t.Fatalf("bad date key %q", date)
		}
		if models.ISOWeekday(parsed) != 1 {
			t.Errorf("date %s is not a Monday", date)
		}
	}
}

func TestExpandDropsEmptyCategory(t *testing.T) {
	gen := testGenerator(&fakeBreakSource{})
	tpl := models.NewTemplate("sparse")
	tpl.ID = 1
	tpl.Hours = []int{5}
	tpl.DaysOfWeek = []int{1, 2, 3, 4, 5, 6, 7}
	tpl.AddSlot(models.NewHeaderSlot(5))
	good := models.NewFolderSlot(3, "Gold", 190000)
	good.Hour = 5
	tpl.AddSlot(good)
	empty := models.NewFolderSlot(9, "AllZero", 190000)
	empty.Hour = 5
	tpl.AddSlot(empty)

	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	result, err := gen.Expand(context.Background(), tpl, day, day)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	items := result.Cache.Day("2026-08-24").Items()
	// Header plus one resolved song; the empty category is dropped.
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if result.DroppedSlots != 1 {
		t.Errorf("dropped = %d, want 1", result.DroppedSlots)
	}
}

func TestExpandOneHeaderPerHour(t *testing.T) {
	gen := testGenerator(&fakeBreakSource{})
	tpl := templateWithHours([]int{5, 6}, []int{1, 2, 3, 4, 5, 6, 7})

	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	result, err := gen.Expand(context.Background(), tpl, day, day)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	headers := make(map[int]int)
	var lastHour = -1
	for _, item := range result.Cache.Day("2026-08-24").Items() {
		if item.Type == models.ItemHeader {
			headers[item.Hour]++
		}
		if item.Hour < lastHour {
			t.Errorf("hours not ascending: %d after %d", item.Hour, lastHour)
		}
		lastHour = item.Hour
	}
	for hour, n := range headers {
		if n != 1 {
			t.Errorf("hour %d has %d headers, want 1", hour, n)
		}
	}
}

func TestExpandBreakSourceUnreachable(t *testing.T) {
	src := &fakeBreakSource{err: errors.New("connection refused")}
	gen := testGenerator(src)
	tpl := templateWithHours([]int{5}, []int{1, 2, 3, 4, 5, 6, 7})

	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	result, err := gen.Expand(context.Background(), tpl, day, day)
	if err != nil {
		t.Fatalf("Expand must not fail on booking source errors: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", result.Warnings)
	}
	for _, item := range result.Cache.Day("2026-08-24").Items() {
		if item.Type == models.ItemCommercialBreak {
			t.Error("break item present despite unreachable source")
		}
	}
}

func TestExpandMergesFetchedBreaks(t *testing.T) {
	src := &fakeBreakSource{breaks: []models.CommercialBreak{
		{Date: "2026-08-24", Hour: 5, StartTime: models.ClockTimeAtHour(5).AddMillis(60000), BookedSpots: 3, BookedDurationMS: 90000},
		{Date: "2026-08-25", Hour: 5, StartTime: models.ClockTimeAtHour(5).AddMillis(60000), BookedSpots: 3, BookedDurationMS: 90000},
	}}
	gen := testGenerator(src)
	tpl := templateWithHours([]int{5}, []int{1, 2, 3, 4, 5, 6, 7})

	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	result, err := gen.Expand(context.Background(), tpl, day, day)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	var breaks int
	for _, item := range result.Cache.Day("2026-08-24").Items() {
		if item.Type == models.ItemCommercialBreak {
			breaks++
			if item.BookedSpots != 3 {
				t.Errorf("booked spots = %d, want 3", item.BookedSpots)
			}
		}
	}
	// Only the matching date's booking is merged.
	if breaks != 1 {
		t.Errorf("break items = %d, want 1", breaks)
	}
	if src.calls != 1 {
		t.Errorf("booking source calls = %d, want 1 for the range", src.calls)
	}
}

func TestExpandFreshIdentifiers(t *testing.T) {
	gen := testGenerator(&fakeBreakSource{})
	tpl := templateWithHours([]int{5}, []int{1, 2, 3, 4, 5, 6, 7})

	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	first, err := gen.Expand(context.Background(), tpl, day, day)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	second, err := gen.Expand(context.Background(), tpl, day, day)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	seen := make(map[string]bool)
	for _, item := range first.Cache.Day("2026-08-24").Items() {
		seen[item.Identifier] = true
	}
	for _, item := range second.Cache.Day("2026-08-24").Items() {
		if seen[item.Identifier] {
			t.Errorf("identifier %s reused across generations", item.Identifier)
		}
	}
}
