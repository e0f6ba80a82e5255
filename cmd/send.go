// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/Thermoquad/prism/pkg/session"
	"github.com/Thermoquad/prism/pkg/transport"
	"github.com/spf13/cobra"
)

var sendInteractive bool

var sendCmd = &cobra.Command{
	Use:   "send [command...]",
	Short: "Send raw commands to the multiviewer",
	Long: `Send raw device commands and print each exchange.

The trailing "!" is added when missing. Set commands with out-of-range
arguments are reported but still sent.

With --interactive (or no arguments), commands are read line by line from
stdin until EOF.

Examples:
  prism send r power
  prism send "s output audio vol 30!"
  prism send -i`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().BoolVarP(&sendInteractive, "interactive", "i", false, "Read commands from stdin")
}

func runSend(cmd *cobra.Command, args []string) error {
	link, err := OpenLink()
	if err != nil {
		return err
	}
	defer link.Close()

	ctrl := newController(link.transport)
	ctx := cmd.Context()

	send := func(command string) error {
		resp, err := ctrl.SendRaw(ctx, command)
		if err != nil && !transport.IsNoResponse(err) {
			return err
		}
		fmt.Println(orei.FormatExchange(time.Now(), orei.Normalize(command), resp))
		return nil
	}

	if len(args) > 0 && !sendInteractive {
		return send(strings.Join(args, " "))
	}

	fmt.Printf("Prism - Raw Command Console\n")
	fmt.Printf("Connection: %s\n", link.info)
	fmt.Printf("Press Ctrl+D to exit\n\n")

	events, id := ctrl.Events().Subscribe(16)
	defer ctrl.Events().Unsubscribe(id)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		command := strings.TrimSpace(scanner.Text())
		if command == "" {
			continue
		}
		if err := send(command); err != nil {
			fmt.Printf("[ERROR] %v\n", err)
		}
		printWarnings(events)
	}
	return scanner.Err()
}

// printWarnings drains pending validation notices.
func printWarnings(events <-chan session.Event) {
	for {
		select {
		case e := <-events:
			if e.Type == session.EventNotice && e.Level == session.LevelWarning {
				fmt.Printf("[WARNING] %s\n", e.Message)
			}
		default:
			return
		}
	}
}
