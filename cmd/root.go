// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Thermoquad/prism/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Backend flags
	apiURL string

	configPath string
	debug      bool

	cfg *config.Instance
)

// Commands that own the terminal log to the file only.
const annotationNoConsoleLog = "no-console-log"

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Control panel for the Orei UHD-404MV HDMI multiviewer",
	Long: `Prism - A terminal control panel for the Orei UHD-404MV 4x1 HDMI multiviewer.

Controls display layout, window inputs, audio, output resolution and power,
drives Roku remotes attached to the inputs, and offers a raw command console.

Connection modes:
  Backend:   --api http://host:5000 [--username user]
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Without flags the backend URL, then the serial port from the config file is
used. For authentication, the password is read from the PRISM_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: user config dir, or $PRISM_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	// Backend flags
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Backend URL (http:// or https://)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 0, "Baud rate (serial only, default from config)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification")
}

func setup(cmd *cobra.Command, _ []string) error {
	dir, err := config.DefaultDir()
	if err != nil {
		return err
	}
	cfg, err = config.NewConfig(afero.NewOsFs(), dir, configPath, config.BaseDefaults)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	_, noConsole := cmd.Annotations[annotationNoConsoleLog]
	if err := initLogging(debug || cfg.DebugLogging(), !noConsole); err != nil {
		return err
	}
	log.Debug().Str("config", cfg.Path()).Str("command", cmd.Name()).Msg("starting")
	return nil
}

// Execute runs the root command. Interrupt and terminate cancel the
// command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
