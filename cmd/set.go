// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/Thermoquad/prism/pkg/session"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one multiviewer setting",
	Long: `Change a single multiviewer setting and print the result.

Examples:
  prism set mode quad
  prism set input 2 4
  prism set volume 30
  prism set pip-position rb
  prism set power toggle`,
}

// setter describes one set subcommand.
type setter struct {
	use   string
	short string
	args  int
	// needsMode setters act on the current split mode, which is read first.
	needsMode bool
	run       func(ctx context.Context, ctrl *session.Controller, args []string) (string, error)
}

var setters = []setter{
	{
		use: "mode <1-5|single|pip|pbp|triple|quad>", short: "Switch the display mode", args: 1,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			m, err := layout.ParseMode(args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("mode %s", m.Label()), ctrl.SetMode(ctx, m)
		},
	},
	{
		use: "input <window> <input>", short: "Route an HDMI input to a window", args: 2,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			window, err := parseIntIn(args[0], "window", 1, layout.MaxWindows)
			if err != nil {
				return "", err
			}
			input, err := parseIntIn(args[1], "input", 1, layout.MaxInputs)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("window %d shows HDMI %d", window, input), ctrl.SetWindowInput(ctx, window, input)
		},
	},
	{
		use: "submode <n>", short: "Choose the sub-layout of the current split mode", args: 1, needsMode: true,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			mode := ctrl.Snapshot().Mode
			sub, err := parseIntIn(args[0], "sub-mode", 1, max(1, mode.SubModeCount()))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s sub-mode %d", mode.Label(), sub), ctrl.SetSubMode(ctx, sub)
		},
	},
	{
		use: "aspect <full|original>", short: "Set the aspect of the current split mode", args: 1, needsMode: true,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			a, err := parseAspect(args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s aspect %s", ctrl.Snapshot().Mode.Label(), a), ctrl.SetAspect(ctx, a)
		},
	},
	{
		use: "pip-position <lt|lb|rt|rb>", short: "Move the PIP overlay", args: 1,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			p, err := parsePIPPosition(args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("PIP position %s", p), ctrl.SetPIPPosition(ctx, p)
		},
	},
	{
		use: "pip-size <small|medium|large>", short: "Resize the PIP overlay", args: 1,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			sz, err := parsePIPSize(args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("PIP size %s", sz), ctrl.SetPIPSize(ctx, sz)
		},
	},
	{
		use: "audio <follow|1-4>", short: "Select the output audio source", args: 1,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			source, err := parseAudioSource(args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("audio source %d", source), ctrl.SetAudioSource(ctx, source)
		},
	},
	{
		use: "volume <0-100>", short: "Set the output volume", args: 1,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			v, err := parseIntIn(args[0], "volume", 0, 100)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("volume %d", v), ctrl.SetVolume(ctx, v)
		},
	},
	{
		use: "mute <on|off>", short: "Mute or unmute the output", args: 1,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			on, err := parseOnOff(args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("mute %t", on), ctrl.SetMute(ctx, on)
		},
	},
	{
		use: "resolution <code|token>", short: "Set the output resolution", args: 1,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			code, err := parseResolution(args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("resolution %d", code), ctrl.SetResolution(ctx, code)
		},
	},
	{
		use: "hdcp <1.4|2.2|off>", short: "Set the output HDCP mode", args: 1,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			h, err := parseHDCP(args[0])
			if err != nil {
				return "", err
			}
			return h.String(), ctrl.SetHDCP(ctx, h)
		},
	},
	{
		use: "power <on|off|toggle>", short: "Switch the device on or off", args: 1,
		run: func(ctx context.Context, ctrl *session.Controller, args []string) (string, error) {
			if strings.EqualFold(args[0], "toggle") {
				if err := ctrl.TogglePower(ctx); err != nil {
					return "", err
				}
				return fmt.Sprintf("power %s", ctrl.Snapshot().Power), nil
			}
			on, err := parseOnOff(args[0])
			if err != nil {
				return "", err
			}
			if err := ctrl.SetPower(ctx, on); err != nil {
				return "", err
			}
			return fmt.Sprintf("power %s", ctrl.Snapshot().Power), nil
		},
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
	for _, s := range setters {
		setCmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  cobra.ExactArgs(s.args),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSetter(cmd.Context(), s, args)
			},
		})
	}
}

func runSetter(ctx context.Context, s setter, args []string) error {
	link, err := OpenLink()
	if err != nil {
		return err
	}
	defer link.Close()

	ctrl := newController(link.transport)
	if s.needsMode {
		mode, ok := ctrl.FetchMode(ctx)
		if !ok {
			return fmt.Errorf("failed to read the current mode: %w", session.ErrDisconnected)
		}
		ctrl.Session().SetMode(mode)
	}

	done, err := s.run(ctx, ctrl, args)
	if err != nil {
		return err
	}
	fmt.Printf("OK: %s\n", done)
	return nil
}
