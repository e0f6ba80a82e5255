// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyCount int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the backend's command history",
	Long: `Print the commands the backend sent to the device, newest first.

Needs the backend (--api or [backend] url). Use --clear to empty it.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyCount, "limit", "n", historyLimit, "Number of entries to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Clear the history")
}

func runHistory(cmd *cobra.Command, args []string) error {
	client, err := requireBackend()
	if err != nil {
		return err
	}

	if historyClear {
		if err := client.ClearHistory(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("History cleared")
		return nil
	}

	entries, err := client.History(cmd.Context(), historyCount)
	if err != nil {
		return err
	}
	fmt.Println(renderHistory(entries))
	return nil
}
