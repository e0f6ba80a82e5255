// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/Thermoquad/prism/pkg/session"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read and print the full multiviewer state",
	Long: `Run a full refresh against the device and print power, display mode, mode
settings, window inputs, audio and output.

In backend mode the backend's own status (serial port, connection) is shown
first.

Exit codes:
  0 - Device on and refreshed
  1 - Device reachable but powered off
  2 - Connection error or device not responding`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	link, err := OpenLink()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer link.Close()

	fmt.Printf("Prism - Device Status\n")
	fmt.Printf("Connection: %s\n", link.info)

	if link.backend != nil {
		bs, err := link.backend.Status(ctx)
		if err != nil {
			fmt.Printf("Backend:    %v\n", err)
		} else {
			fmt.Printf("Backend:    port %s, connected %t\n", bs.Port, bs.Connected)
		}
	}
	fmt.Println()

	ctrl := newController(link.transport)
	st, err := ctrl.Refresh(ctx)
	if errors.Is(err, session.ErrDisconnected) {
		fmt.Println("Device not responding")
		link.Close()
		os.Exit(2)
	}
	if err != nil {
		return err
	}

	fmt.Print(formatState(st))

	if st.Power != session.PowerOn {
		link.Close()
		os.Exit(1)
	}
	return nil
}

// formatState renders a session state as aligned text.
func formatState(st session.State) string {
	out := fmt.Sprintf("Power:      %s\n", st.Power)
	if st.Power != session.PowerOn {
		return out
	}

	out += fmt.Sprintf("Mode:       %d (%s)\n", int(st.Mode), st.Mode.Label())
	switch {
	case st.Mode == layout.ModePIP:
		out += fmt.Sprintf("PIP:        %s, %s\n", st.Settings.PIP.Position, st.Settings.PIP.Size)
	case st.Mode.IsSplit():
		sp, _ := st.Settings.Split(st.Mode)
		out += fmt.Sprintf("Sub-mode:   %d, %s\n", sp.SubMode, sp.Aspect)
	}
	for n := 1; n <= st.Mode.WindowCount(); n++ {
		out += fmt.Sprintf("Window %d:   HDMI %d\n", n, st.Inputs.Resolve(n))
	}

	if st.Audio.Known {
		out += fmt.Sprintf("Audio:      %s, volume %s\n",
			orei.FormatAudioSource(st.Audio.Source), orei.FormatVolume(st.Audio.Volume, st.Audio.Muted))
	}
	if st.Output.Resolution != 0 {
		out += fmt.Sprintf("Resolution: %s\n", orei.ResolutionName(st.Output.Resolution))
	}
	if st.Output.HDCP != 0 {
		out += fmt.Sprintf("HDCP:       %s\n", st.Output.HDCP)
	}
	return out
}
