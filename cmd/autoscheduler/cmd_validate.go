/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/citizenfm/autoscheduler/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compare a generated schedule against the playout database",
	Long:  "Expand a template over a date range and compare per-hour item counts against what the playout database currently stores, excluding commercial rows",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&generateTemplate, "template", "", "Template name (required)")
	validateCmd.Flags().StringVar(&generateStart, "start", "", "First date, YYYY-MM-DD (required)")
	validateCmd.Flags().StringVar(&generateEnd, "end", "", "Last date, inclusive; defaults to --start")
	validateCmd.MarkFlagRequired("template")
	validateCmd.MarkFlagRequired("start")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx := cmd.Context()
	_, result, err := expand(ctx)
	if err != nil {
		return err
	}

	rem, err := openRemote()
	if err != nil {
		return err
	}
	defer rem.Close()

	report, err := validator.New(rem, logger).Compare(ctx, result.Cache)
	if err != nil {
		return err
	}

	for _, dr := range report.Dates {
		status := "MATCH"
		if !dr.Matches() {
			status = "MISMATCH"
		}
		fmt.Printf("\n%s  generated %d / stored %d  [%s]\n", dr.Date, dr.GeneratedTotal, dr.StoredTotal, status)
		for _, cell := range dr.Cells {
			marker := "  "
			switch {
			case cell.Match():
			case cell.EligibleForCreate():
				marker = " +" // nothing stored, a save would purely insert
			default:
				marker = " !"
			}
			fmt.Printf("  hour %02d: generated %2d, stored %2d%s\n", cell.Hour, cell.Generated, cell.Stored, marker)
		}
	}
	if !report.Matches() {
		return fmt.Errorf("schedule differs from stored state")
	}
	return nil
}
