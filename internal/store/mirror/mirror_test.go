/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package mirror

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/citizenfm/autoscheduler/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("open mirror store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func buildTemplate() *models.Template {
	tpl := models.NewTemplate("breakfast")
	tpl.Description = "weekday breakfast show"
	tpl.DaysOfWeek = []int{1, 2, 3, 4, 5}
	_ = tpl.InsertHour(6)

	folder := models.NewFolderSlot(3, "Gold", 210000)
	folder.Hour = 6
	folder.Intent = models.IntentCreate
	// Place the category before the trailing blank spacer.
	tpl.Slots = append(tpl.Slots[:1], append([]*models.Slot{folder}, tpl.Slots[1:]...)...)
	return tpl
}

func TestTemplateRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tpl := buildTemplate()
	if err := store.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if tpl.ID < 0 {
		t.Fatal("template id not assigned")
	}

	loaded, err := store.TemplateByName(ctx, "breakfast")
	if err != nil {
		t.Fatalf("TemplateByName: %v", err)
	}
	if loaded.Description != "weekday breakfast show" {
		t.Errorf("description = %q", loaded.Description)
	}
	if len(loaded.Hours) != 1 || loaded.Hours[0] != 6 {
		t.Errorf("hours = %v, want [6]", loaded.Hours)
	}
	if len(loaded.DaysOfWeek) != 5 {
		t.Errorf("dow = %v, want 5 weekdays", loaded.DaysOfWeek)
	}

	// Blank spacer is not persisted: header + folder only, in row order.
	if len(loaded.Slots) != 2 {
		t.Fatalf("slot count = %d, want 2", len(loaded.Slots))
	}
	if loaded.Slots[0].Type != models.ItemHeader {
		t.Errorf("slot 0 type = %v, want header", loaded.Slots[0].Type)
	}
	if loaded.Slots[1].Type != models.ItemFolder || loaded.Slots[1].FolderID != 3 {
		t.Errorf("slot 1 = %+v, want folder 3", loaded.Slots[1])
	}
}

func TestSaveSlotIntentsDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tpl := buildTemplate()
	if err := store.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}

	tpl.RemoveHour(6)
	if err := store.SaveSlotIntents(ctx, tpl); err != nil {
		t.Fatalf("SaveSlotIntents: %v", err)
	}
	if len(tpl.Slots) != 0 {
		t.Errorf("slots after delete = %d, want 0", len(tpl.Slots))
	}

	loaded, err := store.TemplateByName(ctx, "breakfast")
	if err != nil {
		t.Fatalf("TemplateByName: %v", err)
	}
	if len(loaded.Slots) != 0 {
		t.Errorf("stored slots = %d, want 0", len(loaded.Slots))
	}
}

func TestScheduleRowLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	song := models.NewSongSlot(models.Track{ID: 42, Title: "x", ArtistID: 7, ArtistName: "y", DurationMS: 180000, FilePath: "/m/x.mp3"})
	song.Hour = 6
	song.StartTime = models.ClockTimeAtHour(6)

	row := NewScheduleRow("2026-08-24", "123456789", 1, song, 2)
	if err := store.InsertScheduleRow(ctx, row); err != nil {
		t.Fatalf("InsertScheduleRow: %v", err)
	}
	header := models.NewHeaderSlot(6)
	if err := store.InsertScheduleRow(ctx, NewScheduleRow("2026-08-24", "123456789", 1, header, 1)); err != nil {
		t.Fatalf("InsertScheduleRow header: %v", err)
	}

	refs, err := store.ScheduleRefs(ctx, "2026-08-24", []int{6})
	if err != nil {
		t.Fatalf("ScheduleRefs: %v", err)
	}
	if refs[6] != "123456789" {
		t.Errorf("ref for hour 6 = %q, want 123456789", refs[6])
	}

	deleted, err := store.DeleteHours(ctx, []string{"2026-08-24"}, []int{6})
	if err != nil {
		t.Fatalf("DeleteHours: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
}

func TestNewScheduleRowHeaderPresentation(t *testing.T) {
	header := models.NewHeaderSlot(5)
	row := NewScheduleRow("2026-08-24", "ref", 1, header, 1)
	if row.Title != "HEADER" || row.ArtistName != "HEADER" {
		t.Errorf("header row presentation = %q/%q, want HEADER/HEADER", row.Title, row.ArtistName)
	}
	if row.StartTime != "05:00:00" {
		t.Errorf("header start = %q, want 05:00:00", row.StartTime)
	}
	if row.ItemType != int(models.ItemHeader) {
		t.Errorf("item_type = %d, want %d", row.ItemType, int(models.ItemHeader))
	}
}
