/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/citizenfm/autoscheduler/internal/library"
)

var importTracksCmd = &cobra.Command{
	Use:   "import-tracks",
	Short: "Check a track export and summarize its category pools",
	Long:  "Parse a track library CSV export and report per-folder pool sizes, so an export can be checked before it is pointed at by the configuration",
	RunE:  runImportTracks,
}

var importTracksPath string

func init() {
	rootCmd.AddCommand(importTracksCmd)
	importTracksCmd.Flags().StringVar(&importTracksPath, "csv", "", "Path to the track CSV export (defaults to the configured library)")
}

func runImportTracks(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	path := importTracksPath
	if path == "" {
		path = cfg.TracksCSV
	}

	lib, err := library.LoadCSV(path)
	if err != nil {
		return err
	}

	folders := lib.Folders()
	sort.Slice(folders, func(i, j int) bool { return folders[i] < folders[j] })

	fmt.Printf("%d track(s) in %d folder(s)\n", lib.Len(), len(folders))
	for _, folder := range folders {
		pool := lib.Pool(folder)
		var zeroLength int
		for _, track := range pool {
			if track.DurationMS == 0 {
				zeroLength++
			}
		}
		fmt.Printf("  folder %d: %d track(s)", folder, len(pool))
		if zeroLength > 0 {
			fmt.Printf(", %d with no duration (excluded from scheduling)", zeroLength)
		}
		fmt.Println()
	}
	return nil
}
