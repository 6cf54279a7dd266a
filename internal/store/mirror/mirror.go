/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package mirror is the local sqlite copy of the playout schedule plus the
// template store. Schedule writes are single statements so one bad row
// never takes down the rest of a batch.
package mirror

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/citizenfm/autoscheduler/internal/models"
)

// ScheduleRow is one mirrored schedule line.
type ScheduleRow struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ScheduleRef    string `gorm:"column:schedule_ref;index"`
	ScheduleDate   string `gorm:"column:schedule_date;index"`
	TemplateID     int64  `gorm:"column:template_id"`
	StartTime      string `gorm:"column:start_time"`
	ScheduleHour   int    `gorm:"column:schedule_hour;index"`
	ItemIdentifier string `gorm:"column:item_identifier"`
	ItemType       int    `gorm:"column:item_type"`
	Duration       int64  `gorm:"column:duration"`
	Title          string `gorm:"column:title"`
	ArtistID       int64  `gorm:"column:artist_id"`
	ArtistName     string `gorm:"column:artist_name"`
	FolderID       int64  `gorm:"column:folder_id"`
	FolderName     string `gorm:"column:folder_name"`
	TrackID        int64  `gorm:"column:track_id"`
	Filepath       string `gorm:"column:filepath"`
	ItemRow        int    `gorm:"column:item_row"`
}

// TableName keeps the historical table name.
func (ScheduleRow) TableName() string { return "schedule" }

// NewScheduleRow maps a generated item onto the mirror schema. seq is the
// per-date mirror sequence (item_row).
func NewScheduleRow(date, scheduleRef string, templateID int64, item *models.Slot, seq int) ScheduleRow {
	return ScheduleRow{
		ScheduleRef:    scheduleRef,
		ScheduleDate:   date,
		TemplateID:     templateID,
		StartTime:      item.StartTime.String(),
		ScheduleHour:   item.Hour,
		ItemIdentifier: item.Identifier,
		ItemType:       int(item.Type),
		Duration:       item.DurationMS,
		Title:          item.DisplayTitle(),
		ArtistID:       item.ArtistID,
		ArtistName:     item.DisplayArtist(),
		FolderID:       item.FolderID,
		FolderName:     item.FolderName,
		TrackID:        item.TrackID,
		Filepath:       item.FilePath,
		ItemRow:        seq,
	}
}

// templateHeader is the persisted template row.
type templateHeader struct {
	ID    int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name  string `gorm:"column:name;uniqueIndex"`
	Desc  string `gorm:"column:desc"`
	Hours string `gorm:"column:hours"`
	Dow   string `gorm:"column:dow"`
}

func (templateHeader) TableName() string { return "templateheader" }

// templateItem is one persisted template slot.
type templateItem struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ItemType       int    `gorm:"column:item_type"`
	StartTime      string `gorm:"column:start_time"`
	Hour           int    `gorm:"column:hour"`
	Duration       int64  `gorm:"column:duration"`
	Title          string `gorm:"column:title"`
	ArtistID       int64  `gorm:"column:artist_id"`
	ArtistName     string `gorm:"column:artist_name"`
	FolderID       int64  `gorm:"column:folder_id"`
	FolderName     string `gorm:"column:folder_name"`
	ItemPath       string `gorm:"column:item_path"`
	TrackID        int64  `gorm:"column:track_id"`
	ItemRow        int    `gorm:"column:item_row"`
	ItemIdentifier string `gorm:"column:item_identifier;index"`
	TemplateID     int64  `gorm:"column:template_id;index"`
}

func (templateItem) TableName() string { return "templateitem" }

// Store wraps the sqlite mirror connection.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Open opens (and migrates) the sqlite mirror at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open mirror database: %w", err)
	}
	if err := db.AutoMigrate(&ScheduleRow{}, &templateHeader{}, &templateItem{}); err != nil {
		return nil, fmt.Errorf("migrate mirror database: %w", err)
	}
	return &Store{db: db, logger: log.With().Str("component", "mirror_store").Logger()}, nil
}

// Close releases the sqlite handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertScheduleRow writes one mirrored line. sqlite gets one statement at
// a time; batching is the caller's loop.
func (s *Store) InsertScheduleRow(ctx context.Context, row ScheduleRow) error {
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert mirror row: %w", err)
	}
	return nil
}

// DeleteHours removes mirrored lines for the date/hour set.
func (s *Store) DeleteHours(ctx context.Context, dates []string, hours []int) (int64, error) {
	if len(dates) == 0 || len(hours) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).
		Where("schedule_date IN ? AND schedule_hour IN ?", dates, hours).
		Delete(&ScheduleRow{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete mirror hours: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ScheduleRefs returns the distinct schedule references present for a date
// and hour set, keyed by hour.
func (s *Store) ScheduleRefs(ctx context.Context, date string, hours []int) (map[int]string, error) {
	var rows []ScheduleRow
	err := s.db.WithContext(ctx).
		Select("schedule_ref", "schedule_hour").
		Where("schedule_date = ? AND schedule_hour IN ?", date, hours).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch schedule refs: %w", err)
	}
	refs := make(map[int]string)
	for _, row := range rows {
		if _, ok := refs[row.ScheduleHour]; !ok {
			refs[row.ScheduleHour] = row.ScheduleRef
		}
	}
	return refs, nil
}

// CreateTemplate persists a template header and its slots. Blank spacers
// are presentation only and never stored. The template and slot row ids
// are filled in on success.
func (s *Store) CreateTemplate(ctx context.Context, tpl *models.Template) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := templateHeader{
			Name:  tpl.Name,
			Desc:  tpl.Description,
			Hours: joinInts(tpl.Hours),
			Dow:   joinInts(tpl.DaysOfWeek),
		}
		if err := tx.Create(&header).Error; err != nil {
			return fmt.Errorf("create template header: %w", err)
		}
		tpl.ID = header.ID

		for pos, slot := range tpl.Slots {
			if slot.Type == models.ItemEmpty {
				continue
			}
			item := slotToItem(slot, header.ID, pos)
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("create template item: %w", err)
			}
			slot.RowID = item.ID
			slot.TemplateID = header.ID
			slot.Intent = models.IntentNone
		}
		tpl.Intent = models.IntentNone
		return nil
	})
}

// SaveSlotIntents applies per-slot persistence intents for an existing
// template: creates, updates, and deletes in one transaction. Applied
// slots are reset to intent none; deleted slots are dropped from the
// template.
func (s *Store) SaveSlotIntents(ctx context.Context, tpl *models.Template) error {
	if tpl.ID < 0 {
		return fmt.Errorf("template %q has no row id", tpl.Name)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&templateHeader{}).Where("id = ?", tpl.ID).Updates(map[string]any{
			"desc":  tpl.Description,
			"hours": joinInts(tpl.Hours),
			"dow":   joinInts(tpl.DaysOfWeek),
		}).Error; err != nil {
			return fmt.Errorf("update template header: %w", err)
		}

		for pos, slot := range tpl.Slots {
			if slot.Type == models.ItemEmpty {
				continue
			}
			switch slot.Intent {
			case models.IntentCreate:
				item := slotToItem(slot, tpl.ID, pos)
				if err := tx.Create(&item).Error; err != nil {
					return fmt.Errorf("create template item: %w", err)
				}
				slot.RowID = item.ID
			case models.IntentUpdate:
				item := slotToItem(slot, tpl.ID, pos)
				item.ID = slot.RowID
				if err := tx.Save(&item).Error; err != nil {
					return fmt.Errorf("update template item: %w", err)
				}
			case models.IntentDelete:
				if slot.RowID >= 0 {
					if err := tx.Delete(&templateItem{}, slot.RowID).Error; err != nil {
						return fmt.Errorf("delete template item: %w", err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	kept := tpl.Slots[:0]
	for _, slot := range tpl.Slots {
		if slot.Intent == models.IntentDelete {
			continue
		}
		slot.Intent = models.IntentNone
		kept = append(kept, slot)
	}
	tpl.Slots = kept
	return nil
}

// Templates loads all template headers, without slots.
func (s *Store) Templates(ctx context.Context) ([]*models.Template, error) {
	var headers []templateHeader
	if err := s.db.WithContext(ctx).Order("name").Find(&headers).Error; err != nil {
		return nil, fmt.Errorf("fetch templates: %w", err)
	}
	out := make([]*models.Template, 0, len(headers))
	for _, h := range headers {
		out = append(out, headerToTemplate(h))
	}
	return out, nil
}

// TemplateByName loads one template with its slots in row order.
func (s *Store) TemplateByName(ctx context.Context, name string) (*models.Template, error) {
	var header templateHeader
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&header).Error; err != nil {
		return nil, fmt.Errorf("fetch template %q: %w", name, err)
	}

	tpl := headerToTemplate(header)

	var items []templateItem
	err := s.db.WithContext(ctx).
		Where("template_id = ?", header.ID).
		Order("item_row").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("fetch template items: %w", err)
	}

	for _, item := range items {
		slot, err := itemToSlot(item)
		if err != nil {
			s.logger.Warn().Err(err).Str("identifier", item.ItemIdentifier).Msg("skipping unreadable template item")
			continue
		}
		tpl.Slots = append(tpl.Slots, slot)
	}
	return tpl, nil
}

// DeleteTemplate removes a template and its slots.
func (s *Store) DeleteTemplate(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&templateItem{}).Error; err != nil {
			return fmt.Errorf("delete template items: %w", err)
		}
		if err := tx.Delete(&templateHeader{}, id).Error; err != nil {
			return fmt.Errorf("delete template header: %w", err)
		}
		return nil
	})
}

func slotToItem(slot *models.Slot, templateID int64, pos int) templateItem {
	return templateItem{
		ItemType:       int(slot.Type),
		StartTime:      slot.StartTime.String(),
		Hour:           slot.Hour,
		Duration:       slot.DurationMS,
		Title:          slot.Title,
		ArtistID:       slot.ArtistID,
		ArtistName:     slot.ArtistName,
		FolderID:       slot.FolderID,
		FolderName:     slot.FolderName,
		ItemPath:       slot.FilePath,
		TrackID:        slot.TrackID,
		ItemRow:        pos,
		ItemIdentifier: slot.Identifier,
		TemplateID:     templateID,
	}
}

func itemToSlot(item templateItem) (*models.Slot, error) {
	start, err := models.ParseClockTime(item.StartTime)
	if err != nil {
		return nil, err
	}
	slot := &models.Slot{
		Type:        models.ItemType(item.ItemType),
		RowID:       item.ID,
		Identifier:  item.ItemIdentifier,
		TemplateID:  item.TemplateID,
		Hour:        item.Hour,
		StartTime:   start,
		RowPosition: item.ItemRow,
		DurationMS:  item.Duration,
		Title:       item.Title,
		ArtistID:    item.ArtistID,
		ArtistName:  item.ArtistName,
		FolderID:    item.FolderID,
		FolderName:  item.FolderName,
		TrackID:     item.TrackID,
		FilePath:    item.ItemPath,
		Intent:      models.IntentNone,
	}
	return slot, nil
}

func headerToTemplate(h templateHeader) *models.Template {
	return &models.Template{
		ID:          h.ID,
		Name:        h.Name,
		Description: h.Desc,
		Hours:       splitInts(h.Hours),
		DaysOfWeek:  splitInts(h.Dow),
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
