// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/prism/pkg/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	watchInterval time.Duration
	watchStats    int
	watchShowAll  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the multiviewer and report changes",
	Long: `Keep the session in step with the device and print what changes.

After an initial full refresh the device is polled for power and display
mode. Mode settings and window inputs are only read again when the mode
changed, for example from the front panel or IR remote. Companion remotes
are recomputed on every layout change.

By default only mode, input, power and connection changes are printed. Use
--show-all to print every session event. Statistics are printed at
--stats-interval.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Poll interval (default from config)")
	watchCmd.Flags().IntVar(&watchStats, "stats-interval", 60, "Statistics update interval (seconds)")
	watchCmd.Flags().BoolVar(&watchShowAll, "show-all", false, "Print every session event")
}

func runWatch(cmd *cobra.Command, args []string) error {
	link, err := OpenLink()
	if err != nil {
		return err
	}
	defer link.Close()

	interval := watchInterval
	if interval <= 0 {
		interval = cfg.Timing().PollInterval.Std()
	}

	fmt.Printf("Prism - Watch Mode\n")
	fmt.Printf("Connection: %s\n", link.info)
	fmt.Printf("Poll interval: %v\n", interval)
	fmt.Printf("Statistics interval: %d seconds\n", watchStats)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	recorder := newRecorder(link.transport)
	ctrl := newController(recorder)
	mapper := newMapper(link.backend)
	if err := mapper.Load(cmd.Context()); err != nil {
		log.Warn().Err(err).Msg("failed to load companion mappings")
	}

	printed, _ := ctrl.Events().Subscribe(64)
	mapperEvents, _ := ctrl.Events().Subscribe(16)

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		mapper.Watch(ctx, mapperEvents)
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-printed:
				if !ok {
					return nil
				}
				printEvent(e, watchShowAll, mapper.Visible())
			}
		}
	})

	g.Go(func() error {
		defer ctrl.Events().Close()
		return pollLoop(ctx, ctrl, interval, time.Duration(watchStats)*time.Second, func() {
			fmt.Println()
			fmt.Print(recorder.Statistics().Snapshot().String())
			fmt.Println()
		})
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// pollLoop refreshes once, then checks status every interval and calls
// stats every statsEvery until ctx ends.
func pollLoop(ctx context.Context, ctrl *session.Controller, interval, statsEvery time.Duration, stats func()) error {
	if _, err := ctrl.Refresh(ctx); err != nil && ctx.Err() == nil {
		log.Warn().Err(err).Msg("initial refresh failed")
	}

	pollTicker := time.NewTicker(interval)
	defer pollTicker.Stop()

	statsTicker := time.NewTicker(max(time.Second, statsEvery))
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-pollTicker.C:
			// Reconnect by full refresh once the device answers again
			if !ctrl.Snapshot().Connected {
				_, _ = ctrl.Refresh(ctx)
				continue
			}
			if _, err := ctrl.CheckStatus(ctx); err != nil && ctx.Err() == nil {
				log.Debug().Err(err).Msg("status check failed")
			}

		case <-statsTicker.C:
			stats()
		}
	}
}

// printEvent prints one session event line. Busy and idle markers are only
// shown with showAll.
func printEvent(e session.Event, showAll bool, remotes []int) {
	timestamp := time.Now().Format("15:04:05.000")
	st := e.State

	switch e.Type {
	case session.EventModeChanged:
		fmt.Printf("[%s] \033[1;36mMODE:\033[0m %s\n", timestamp, st.Mode.Label())
	case session.EventWindowInputsChanged:
		line := ""
		for n := 1; n <= st.Mode.WindowCount(); n++ {
			line += fmt.Sprintf(" W%d=HDMI%d", n, st.Inputs.Resolve(n))
		}
		fmt.Printf("[%s] \033[1;36mINPUTS:\033[0m%s  remotes=%v\n", timestamp, line, remotes)
	case session.EventPowerChanged:
		fmt.Printf("[%s] \033[1;33mPOWER:\033[0m %s\n", timestamp, st.Power)
	case session.EventConnectionChanged:
		if st.Connected {
			fmt.Printf("[%s] \033[1;32mCONNECTED\033[0m\n", timestamp)
		} else {
			fmt.Printf("[%s] \033[1;31mDISCONNECTED\033[0m\n", timestamp)
		}
	case session.EventNotice:
		if e.Level == session.LevelError || e.Level == session.LevelWarning || showAll {
			fmt.Printf("[%s] %s\n", timestamp, e.Message)
		}
	default:
		if showAll {
			fmt.Printf("[%s] %s\n", timestamp, e.Type)
		}
	}
}
