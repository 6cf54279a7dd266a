/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/citizenfm/autoscheduler/internal/generator"
	"github.com/citizenfm/autoscheduler/internal/models"
	"github.com/citizenfm/autoscheduler/internal/refalloc"
	"github.com/citizenfm/autoscheduler/internal/syncer"
	"github.com/citizenfm/autoscheduler/internal/task"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a schedule and print it",
	Long:  "Expand a template over a date range and print the resulting schedule without writing to either store",
	RunE:  runGenerate,
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Generate a schedule and write it to both stores",
	Long:  "Expand a template over a date range, allocate schedule references, and replace the affected hours in the playout database and the local mirror",
	RunE:  runSave,
}

var (
	generateTemplate string
	generateStart    string
	generateEnd      string
)

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(saveCmd)

	for _, cmd := range []*cobra.Command{generateCmd, saveCmd} {
		cmd.Flags().StringVar(&generateTemplate, "template", "", "Template name (required)")
		cmd.Flags().StringVar(&generateStart, "start", "", "First date, YYYY-MM-DD (required)")
		cmd.Flags().StringVar(&generateEnd, "end", "", "Last date, inclusive; defaults to --start")
		cmd.MarkFlagRequired("template")
		cmd.MarkFlagRequired("start")
	}
}

func parseRange() (time.Time, time.Time, error) {
	start, err := time.Parse(models.DateFormat, generateStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse --start: %w", err)
	}
	if generateEnd == "" {
		return start, start, nil
	}
	end, err := time.Parse(models.DateFormat, generateEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse --end: %w", err)
	}
	return start, end, nil
}

// expand wires the generator from config and runs one expansion.
func expand(ctx context.Context) (*models.Template, *generator.Result, error) {
	start, end, err := parseRange()
	if err != nil {
		return nil, nil, err
	}

	mir, err := openMirror()
	if err != nil {
		return nil, nil, err
	}
	defer mir.Close()

	tpl, err := mir.TemplateByName(ctx, generateTemplate)
	if err != nil {
		return nil, nil, err
	}

	lib, err := loadLibrary()
	if err != nil {
		return nil, nil, err
	}

	rem, err := openRemote()
	if err != nil {
		return nil, nil, err
	}
	defer rem.Close()

	gen := generator.New(lib, rem, nil, logger)
	result, err := gen.Expand(ctx, tpl, start, end)
	if err != nil {
		return nil, nil, err
	}
	return tpl, result, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx := cmd.Context()
	_, result, err := expand(ctx)
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	for _, date := range result.Cache.Dates() {
		fmt.Printf("\n%s\n", date)
		for _, item := range result.Cache.Day(date).Items() {
			switch item.Type {
			case models.ItemHeader:
				fmt.Printf("  -- %02d:00 --\n", item.Hour)
			case models.ItemCommercialBreak:
				fmt.Printf("  %s  %s\n", item.StartTime, item.Title)
			default:
				fmt.Printf("  %s  %-8s %s - %s  (%s)\n",
					item.StartTime, item.FormattedTrackID(), item.DisplayArtist(), item.DisplayTitle(), item.FormattedDuration())
			}
		}
	}
	if result.DroppedSlots > 0 {
		fmt.Printf("\n%d slot(s) dropped for empty categories\n", result.DroppedSlots)
	}
	return nil
}

func runSave(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	serveMetrics()

	ctx := cmd.Context()
	tpl, result, err := expand(ctx)
	if err != nil {
		return err
	}
	if result.Cache.Len() == 0 {
		return fmt.Errorf("template %q matched no dates in the range", generateTemplate)
	}
	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}

	rem, err := openRemote()
	if err != nil {
		return err
	}
	defer rem.Close()
	mir, err := openMirror()
	if err != nil {
		return err
	}
	defer mir.Close()

	// One save run, one schedule reference: every row of the batch
	// carries it, across all dates in the range.
	alloc := refalloc.New(rem, nil, logger)
	ref, err := alloc.Allocate(ctx)
	if err != nil {
		return fmt.Errorf("allocate schedule ref: %w", err)
	}

	sync := syncer.New(rem, mir, logger)
	runner := task.NewRunner(logger)

	var report *syncer.Report
	events, err := runner.Run(ctx, "save", func(ctx context.Context, emit func(string)) error {
		var err error
		report, err = sync.Sync(ctx, result.Cache, tpl.ID, ref, emit)
		return err
	})
	if err != nil {
		return err
	}
	for ev := range events {
		switch ev.Phase {
		case task.PhaseProgress:
			fmt.Printf("  %s\n", ev.Message)
		case task.PhaseFailed:
			return fmt.Errorf("save failed: %s", ev.Message)
		}
	}

	fmt.Printf("saved %d date(s) under schedule ref %s: %d playout rows, %d mirror rows (%d mirror failures)\n",
		report.Dates, ref, report.RemoteRows, report.MirrorRows, report.MirrorFailures)
	return nil
}
