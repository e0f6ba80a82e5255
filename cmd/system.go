// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Thermoquad/prism/pkg/backend"
	"github.com/spf13/cobra"
)

var systemYes bool

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Shut down or restart the backend host",
	Long: `Power actions for the machine running the backend.

Shutdown and restart ask for confirmation unless --yes is given, and are
scheduled by the host after a short countdown that can be cancelled.`,
}

func init() {
	rootCmd.AddCommand(systemCmd)
	systemCmd.PersistentFlags().BoolVarP(&systemYes, "yes", "y", false, "Do not ask for confirmation")

	systemCmd.AddCommand(
		powerActionCmd("shutdown", "Shut down the backend host", (*backend.Client).Shutdown),
		powerActionCmd("restart", "Restart the backend host", (*backend.Client).Restart),
		cancelActionCmd("cancel-shutdown", "Cancel a pending shutdown", (*backend.Client).CancelShutdown),
		cancelActionCmd("cancel-restart", "Cancel a pending restart", (*backend.Client).CancelRestart),
	)
}

func powerActionCmd(use, short string, action func(*backend.Client, context.Context) (backend.PowerAction, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := requireBackend()
			if err != nil {
				return err
			}
			if !systemYes && !confirm(os.Stdin, fmt.Sprintf("Really %s %s?", use, client.URL())) {
				fmt.Println("Aborted")
				return nil
			}

			res, err := action(client, cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(res.Message)
			if d := res.Delay(); d > 0 {
				fmt.Printf("Countdown: %v (cancel with prism system cancel-%s)\n", d, use)
			}
			return nil
		},
	}
}

func cancelActionCmd(use, short string, action func(*backend.Client, context.Context) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := requireBackend()
			if err != nil {
				return err
			}
			msg, err := action(client, cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
}

// confirm asks a yes/no question on stderr and reads the answer from r.
func confirm(r io.Reader, question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
