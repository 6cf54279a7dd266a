/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage hourly schedule templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	RunE:  runTemplatesList,
}

var templatesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one template's hours and per-hour totals",
	RunE:  runTemplatesShow,
}

var templatesAddHourCmd = &cobra.Command{
	Use:   "add-hour",
	Short: "Insert an empty hour into a template",
	RunE:  runTemplatesAddHour,
}

var templatesRemoveHourCmd = &cobra.Command{
	Use:   "remove-hour",
	Short: "Remove an hour and its slots from a template",
	RunE:  runTemplatesRemoveHour,
}

var templatesDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a template and its slots",
	RunE:  runTemplatesDelete,
}

var (
	templateName string
	templateHour int
)

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesAddHourCmd)
	templatesCmd.AddCommand(templatesRemoveHourCmd)
	templatesCmd.AddCommand(templatesDeleteCmd)

	for _, cmd := range []*cobra.Command{templatesShowCmd, templatesAddHourCmd, templatesRemoveHourCmd, templatesDeleteCmd} {
		cmd.Flags().StringVar(&templateName, "name", "", "Template name (required)")
		cmd.MarkFlagRequired("name")
	}
	for _, cmd := range []*cobra.Command{templatesAddHourCmd, templatesRemoveHourCmd} {
		cmd.Flags().IntVar(&templateHour, "hour", -1, "Broadcast hour, 0-23 (required)")
		cmd.MarkFlagRequired("hour")
	}
}

func joinHours(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%02d", h)
	}
	return strings.Join(parts, " ")
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	mir, err := openMirror()
	if err != nil {
		return err
	}
	defer mir.Close()

	templates, err := mir.Templates(cmd.Context())
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		fmt.Println("no templates stored")
		return nil
	}
	for _, tpl := range templates {
		fmt.Printf("%-24s hours [%s]  days %v\n", tpl.Name, joinHours(tpl.Hours), tpl.DaysOfWeek)
	}
	return nil
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	mir, err := openMirror()
	if err != nil {
		return err
	}
	defer mir.Close()

	tpl, err := mir.TemplateByName(cmd.Context(), templateName)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", tpl.Name)
	if tpl.Description != "" {
		fmt.Printf("%s\n", tpl.Description)
	}
	fmt.Printf("days %v\n\n", tpl.DaysOfWeek)
	for _, stats := range tpl.Stats() {
		fmt.Printf("hour %02d: %d slot(s), projected end %s\n", stats.Hour, stats.ItemCount, stats.EndTime)
	}
	return nil
}

func runTemplatesAddHour(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	mir, err := openMirror()
	if err != nil {
		return err
	}
	defer mir.Close()

	tpl, err := mir.TemplateByName(cmd.Context(), templateName)
	if err != nil {
		return err
	}
	if err := tpl.InsertHour(templateHour); err != nil {
		return err
	}
	if err := mir.SaveSlotIntents(cmd.Context(), tpl); err != nil {
		return err
	}
	fmt.Printf("added hour %02d to %q\n", templateHour, templateName)
	return nil
}

func runTemplatesRemoveHour(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	mir, err := openMirror()
	if err != nil {
		return err
	}
	defer mir.Close()

	tpl, err := mir.TemplateByName(cmd.Context(), templateName)
	if err != nil {
		return err
	}
	tpl.RemoveHour(templateHour)
	if err := mir.SaveSlotIntents(cmd.Context(), tpl); err != nil {
		return err
	}
	fmt.Printf("removed hour %02d from %q\n", templateHour, templateName)
	return nil
}

func runTemplatesDelete(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	mir, err := openMirror()
	if err != nil {
		return err
	}
	defer mir.Close()

	tpl, err := mir.TemplateByName(cmd.Context(), templateName)
	if err != nil {
		return err
	}
	if err := mir.DeleteTemplate(cmd.Context(), tpl.ID); err != nil {
		return err
	}
	fmt.Printf("deleted template %q\n", templateName)
	return nil
}
