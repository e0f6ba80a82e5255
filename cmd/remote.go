// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/prism/pkg/companion"
	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/spf13/cobra"
)

var (
	remoteName   string
	remoteModel  string
	remoteSerial string
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Manage and drive the Roku devices attached to the inputs",
	Long: `Assign streaming devices to HDMI inputs and send them remote keys.

Mappings are kept by the backend when one is configured, otherwise in a
local file next to the config. Discovery, key presses and apps need the
backend.`,
}

func init() {
	rootCmd.AddCommand(remoteCmd)

	remoteAssignCmd.Flags().StringVar(&remoteName, "name", "", "Device name")
	remoteAssignCmd.Flags().StringVar(&remoteModel, "model", "", "Device model")
	remoteAssignCmd.Flags().StringVar(&remoteSerial, "serial", "", "Device serial number")

	remoteCmd.AddCommand(remoteDiscoverCmd, remoteListCmd, remoteAssignCmd, remoteRemoveCmd,
		remotePressCmd, remoteKeysCmd, remoteAppsCmd, remoteLaunchCmd)
}

func parseHDMI(s string) (int, error) {
	return parseIntIn(strings.TrimPrefix(strings.ToLower(s), "hdmi"), "HDMI input", 1, layout.MaxInputs)
}

var remoteDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search the network for Roku devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := requireBackend()
		if err != nil {
			return err
		}
		devices, err := client.Roku().Discover(cmd.Context())
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No devices found")
			return nil
		}
		for _, d := range devices {
			fmt.Printf("%-16s %-24s %-16s %s\n", d.Address, d.Name, d.Model, d.Serial)
		}
		return nil
	},
}

var remoteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List HDMI input to device mappings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend()
		if err != nil {
			return err
		}
		mapper := newMapper(b)
		if err := mapper.Load(cmd.Context()); err != nil {
			return err
		}
		fmt.Print(formatMappings(mapper.Mappings()))
		return nil
	},
}

// formatMappings lists mappings in input order.
func formatMappings(m companion.Mappings) string {
	inputs := m.Inputs()
	if len(inputs) == 0 {
		return "No mappings\n"
	}
	var s strings.Builder
	for _, hdmi := range inputs {
		d, _ := m.Get(hdmi)
		fmt.Fprintf(&s, "HDMI %d  %-16s %s\n", hdmi, d.Address, d.Label())
	}
	return s.String()
}

var remoteAssignCmd = &cobra.Command{
	Use:   "assign <hdmi> <ip>",
	Short: "Assign a device to an HDMI input",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hdmi, err := parseHDMI(args[0])
		if err != nil {
			return err
		}
		b, err := openBackend()
		if err != nil {
			return err
		}
		mapper := newMapper(b)
		if err := mapper.Load(cmd.Context()); err != nil {
			return err
		}
		d := companion.Device{Address: args[1], Name: remoteName, Model: remoteModel, Serial: remoteSerial}
		if err := mapper.Assign(cmd.Context(), hdmi, d); err != nil {
			return err
		}
		fmt.Printf("HDMI %d -> %s\n", hdmi, d.Label())
		return nil
	},
}

var remoteRemoveCmd = &cobra.Command{
	Use:   "remove <hdmi>",
	Short: "Remove the device mapped to an HDMI input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hdmi, err := parseHDMI(args[0])
		if err != nil {
			return err
		}
		b, err := openBackend()
		if err != nil {
			return err
		}
		mapper := newMapper(b)
		if err := mapper.Load(cmd.Context()); err != nil {
			return err
		}
		if err := mapper.Remove(cmd.Context(), hdmi); err != nil {
			return err
		}
		fmt.Printf("HDMI %d unmapped\n", hdmi)
		return nil
	},
}

var remotePressCmd = &cobra.Command{
	Use:   "press <hdmi> <key>...",
	Short: "Send remote keys to the device on an HDMI input",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hdmi, err := parseHDMI(args[0])
		if err != nil {
			return err
		}
		keys := make([]companion.Key, 0, len(args)-1)
		for _, a := range args[1:] {
			k, err := companion.ParseKey(a)
			if err != nil {
				return err
			}
			keys = append(keys, k)
		}

		client, err := requireBackend()
		if err != nil {
			return err
		}
		mapper := newMapper(client)
		if err := mapper.Load(cmd.Context()); err != nil {
			return err
		}
		for _, k := range keys {
			if err := mapper.Press(cmd.Context(), hdmi, k); err != nil {
				return err
			}
			fmt.Printf("HDMI %d: %s\n", hdmi, k)
		}
		return nil
	},
}

var remoteKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the remote keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range companion.Keys() {
			fmt.Println(k)
		}
	},
}

var remoteAppsCmd = &cobra.Command{
	Use:   "apps <hdmi>",
	Short: "List the apps installed on the device on an HDMI input",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hdmi, err := parseHDMI(args[0])
		if err != nil {
			return err
		}
		client, err := requireBackend()
		if err != nil {
			return err
		}
		apps, err := client.Roku().Apps(cmd.Context(), hdmi)
		if err != nil {
			return err
		}
		for _, a := range apps {
			fmt.Printf("%-10s %s\n", a.ID, a.Name)
		}
		return nil
	},
}

var remoteLaunchCmd = &cobra.Command{
	Use:   "launch <hdmi> <app-id>",
	Short: "Launch an app on the device on an HDMI input",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hdmi, err := parseHDMI(args[0])
		if err != nil {
			return err
		}
		client, err := requireBackend()
		if err != nil {
			return err
		}
		if err := client.Roku().Launch(cmd.Context(), hdmi, args[1]); err != nil {
			return err
		}
		fmt.Printf("HDMI %d: launched %s\n", hdmi, args[1])
		return nil
	},
}
