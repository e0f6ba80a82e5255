// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/Thermoquad/prism/pkg/transport"
	"github.com/spf13/cobra"
)

var (
	pingTimeout int
	pingCount   int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the link by sending power queries to the multiviewer",
	Long: `Send power queries to the multiviewer and wait for the reply.

This command tests the whole path to the device: the backend or bridge, the
serial line and the device itself. Each reply's round-trip time is shown.

Exit codes:
  0 - All pings successful
  1 - One or more pings failed/timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
}

func runPing(cmd *cobra.Command, args []string) error {
	link, err := OpenLink()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer link.Close()

	fmt.Printf("Prism - Ping Test\n")
	fmt.Printf("Connection: %s\n", link.info)
	fmt.Printf("Timeout: %d seconds per ping\n", pingTimeout)
	fmt.Printf("Count: %d pings\n\n", pingCount)

	recorder := newRecorder(link.transport)
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, pingCount)

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(pingTimeout)*time.Second)
		startTime := time.Now()
		resp, err := recorder.Send(ctx, orei.QUERY_POWER)
		rtt := time.Since(startTime)
		timedOut := ctx.Err() != nil
		cancel()

		switch {
		case err == nil:
			on, _ := orei.ParsePower(resp)
			state := "off"
			if on {
				state = "on"
			}
			fmt.Printf("reply, power=%s, rtt=%v\n", state, rtt.Round(time.Millisecond))
		case transport.IsNoResponse(err):
			fmt.Printf("NO RESPONSE after %v\n", rtt.Round(time.Millisecond))
			failCount++
		case timedOut:
			fmt.Printf("TIMEOUT (no response in %ds)\n", pingTimeout)
			failCount++
		default:
			fmt.Printf("FAILED: %v\n", err)
			failCount++
		}

		// Small delay between pings
		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	// Summary
	c := recorder.Statistics().Snapshot()
	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d responses received, %.0f%% loss\n",
		pingCount, pingCount-failCount, float64(failCount)/float64(max(1, pingCount))*100)
	if c.Responses > 0 {
		fmt.Printf("rtt min/avg/max = %v/%v/%v\n",
			c.MinLatency.Round(time.Millisecond), c.AvgLatency().Round(time.Millisecond), c.MaxLatency.Round(time.Millisecond))
	}

	if failCount > 0 {
		link.Close()
		os.Exit(1)
	}
	return nil
}
