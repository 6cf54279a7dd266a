/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package remote talks to the authoritative playout database. The schema
// is owned by the playout system; this store only reads booking data and
// writes cued song rows, always through parameterized statements.
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/citizenfm/autoscheduler/internal/config"
	"github.com/citizenfm/autoscheduler/internal/models"
)

// Playout constants written with every song row.
const (
	playStatusCued  = "CUED"
	sourceSong      = "SONG"
	sourceComms     = "COMMS"
	commMediaAudio  = "AUDIO"
	scheduleService = 1
)

// Row is one schedule line in the playout database's column layout.
type Row struct {
	ScheduleService        int
	ScheduleLineRef        string
	ScheduleDate           string
	ScheduleTime           string
	ScheduleHour           int
	ScheduleHourTime       int
	ScheduleTrackReference int64
	ScheduledFadeIn        int
	ScheduledFadeOut       int
	ScheduledFadeDelay     int
	PlayStatus             string
	AutoTransition         int
	LiveTransition         int
	ItemSource             string
	ScheduleCommMediaType  string
}

// NewSongRow maps a resolved schedule item onto the playout schema. seq is
// the per-date remote sequence (ScheduleHourTime).
func NewSongRow(date, scheduleRef string, item *models.Slot, seq int) Row {
	return Row{
		ScheduleService:        scheduleService,
		ScheduleLineRef:        scheduleRef,
		ScheduleDate:           date,
		ScheduleTime:           item.StartTime.String(),
		ScheduleHour:           item.Hour,
		ScheduleHourTime:       seq,
		ScheduleTrackReference: item.TrackID,
		PlayStatus:             playStatusCued,
		AutoTransition:         1,
		LiveTransition:         1,
		ItemSource:             sourceSong,
		ScheduleCommMediaType:  commMediaAudio,
	}
}

// Store wraps the playout database connection.
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Open establishes the playout database connection for the configured
// backend.
func Open(cfg *config.Config, log zerolog.Logger) (*Store, error) {
	var dialector gorm.Dialector

	switch cfg.RemoteBackend {
	case config.RemotePostgres:
		dialector = postgres.Open(cfg.RemoteDSN)
	case config.RemoteMySQL:
		dialector = mysql.Open(cfg.RemoteDSN)
	default:
		return nil, fmt.Errorf("unknown remote backend: %s", cfg.RemoteBackend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect playout database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db, logger: log.With().Str("component", "remote_store").Logger()}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RefExists reports whether any schedule line already carries the given
// schedule reference.
func (s *Store) RefExists(ctx context.Context, ref string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Table("schedule").
		Where("ScheduleLineRef = ?", ref).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check schedule reference: %w", err)
	}
	return count > 0, nil
}

// DeleteCuedHours removes previously committed cued song rows for the
// date/hour set. Comms rows and rows already played are untouched.
func (s *Store) DeleteCuedHours(ctx context.Context, dates []string, hours []int) (int64, error) {
	if len(dates) == 0 || len(hours) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).Exec(
		"DELETE FROM schedule WHERE ItemSource = ? AND PlayStatus = ? AND ScheduleDate IN ? AND ScheduleHour IN ?",
		sourceSong, playStatusCued, dates, hours,
	)
	if result.Error != nil {
		return 0, fmt.Errorf("delete cued hours: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// InsertBatch writes all rows in one transaction, so the playout database
// sees either the whole batch or none of it.
func (s *Store) InsertBatch(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			result := tx.Exec(
				`INSERT INTO schedule (ScheduleService, ScheduleLineRef, ScheduleDate, ScheduleTime, ScheduleHour,
					ScheduleHourTime, ScheduleTrackReference, ScheduledFadeIn, ScheduledFadeOut, ScheduledFadeDelay,
					PlayStatus, AutoTransition, LiveTransition, ItemSource, ScheduleCommMediaType)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				row.ScheduleService, row.ScheduleLineRef, row.ScheduleDate, row.ScheduleTime, row.ScheduleHour,
				row.ScheduleHourTime, row.ScheduleTrackReference, row.ScheduledFadeIn, row.ScheduledFadeOut,
				row.ScheduledFadeDelay, row.PlayStatus, row.AutoTransition, row.LiveTransition,
				row.ItemSource, row.ScheduleCommMediaType,
			)
			if result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert playout batch: %w", err)
	}
	return nil
}

// CommercialBreaks fetches booked break records for the inclusive date
// range and hour set, ordered by hour then time.
func (s *Store) CommercialBreaks(ctx context.Context, startDate, endDate string, hours []int) ([]models.CommercialBreak, error) {
	if len(hours) == 0 {
		return nil, nil
	}
	rows, err := s.db.WithContext(ctx).Raw(
		`SELECT ScheduleDate, ScheduleTime, ScheduleHour, BookedSpots, SpotBookedDuration
		FROM schedule
		WHERE ScheduleDate BETWEEN ? AND ? AND ScheduleHour IN ? AND ItemSource = ?
		ORDER BY ScheduleHour, ScheduleTime`,
		startDate, endDate, hours, sourceComms,
	).Rows()
	if err != nil {
		return nil, fmt.Errorf("fetch commercial breaks: %w", err)
	}
	defer rows.Close()

	var breaks []models.CommercialBreak
	for rows.Next() {
		var (
			rawDate  any
			rawTime  any
			hour     int
			spots    int
			duration int64
		)
		if err := rows.Scan(&rawDate, &rawTime, &hour, &spots, &duration); err != nil {
			return nil, fmt.Errorf("scan commercial break: %w", err)
		}
		start, err := scanClockTime(rawTime)
		if err != nil {
			return nil, err
		}
		breaks = append(breaks, models.CommercialBreak{
			Date:             scanDate(rawDate),
			StartTime:        start,
			Hour:             hour,
			BookedSpots:      spots,
			BookedDurationMS: duration,
		})
	}
	return breaks, rows.Err()
}

// HourCounts returns stored line counts per date and hour for the given
// set, excluding commercial rows, matching what the synchronizer writes.
func (s *Store) HourCounts(ctx context.Context, dates []string, hours []int) (map[string]map[int]int, error) {
	counts := make(map[string]map[int]int)
	if len(dates) == 0 || len(hours) == 0 {
		return counts, nil
	}
	rows, err := s.db.WithContext(ctx).Raw(
		`SELECT ScheduleDate, ScheduleHour, COUNT(*)
		FROM schedule
		WHERE ScheduleDate IN ? AND ScheduleHour IN ? AND ItemSource <> ?
		GROUP BY ScheduleDate, ScheduleHour
		ORDER BY ScheduleDate, ScheduleHour`,
		dates, hours, sourceComms,
	).Rows()
	if err != nil {
		return nil, fmt.Errorf("fetch hour counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rawDate any
			hour    int
			count   int
		)
		if err := rows.Scan(&rawDate, &hour, &count); err != nil {
			return nil, fmt.Errorf("scan hour count: %w", err)
		}
		date := scanDate(rawDate)
		if counts[date] == nil {
			counts[date] = make(map[int]int)
		}
		counts[date][hour] = count
	}
	return counts, rows.Err()
}

// scanDate normalizes a date column to the canonical key format. Drivers
// return either time.Time or text depending on the column type.
func scanDate(v any) string {
	switch val := v.(type) {
	case time.Time:
		return val.Format(models.DateFormat)
	case []byte:
		return trimDate(string(val))
	case string:
		return trimDate(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func trimDate(s string) string {
	if len(s) > len(models.DateFormat) {
		return s[:len(models.DateFormat)]
	}
	return s
}

func scanClockTime(v any) (models.ClockTime, error) {
	switch val := v.(type) {
	case time.Time:
		return models.ClockTimeAtHour(val.Hour()).
			AddMillis(int64(val.Minute())*60_000 + int64(val.Second())*1_000), nil
	case []byte:
		return models.ParseClockTime(string(val))
	case string:
		return models.ParseClockTime(val)
	default:
		return 0, fmt.Errorf("unexpected schedule time type %T", v)
	}
}
