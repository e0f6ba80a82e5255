// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var serialCmd = &cobra.Command{
	Use:   "serial",
	Short: "Show or change the serial port used to reach the device",
	Long: `Show the current serial port and the ports available, or switch ports.

With the backend, the backend's port is shown and changed. Otherwise the
local ports are listed and [serial] port in the config file is updated.`,
}

var serialListCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports",
	Args:  cobra.NoArgs,
	RunE:  runSerialList,
}

var serialSetCmd = &cobra.Command{
	Use:   "set <port>",
	Short: "Switch to another serial port",
	Args:  cobra.ExactArgs(1),
	RunE:  runSerialSet,
}

func init() {
	rootCmd.AddCommand(serialCmd)
	serialCmd.AddCommand(serialListCmd, serialSetCmd)
}

func runSerialList(cmd *cobra.Command, args []string) error {
	client, err := openBackend()
	if err != nil {
		return err
	}

	if client != nil {
		sc, err := client.SerialConfig(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Current: %s (connected: %t)\n\n", sc.CurrentPort, sc.Connected)
		for _, p := range sc.AvailablePorts {
			fmt.Printf("%-20s %s %s\n", p.Device, p.Description, p.Manufacturer)
		}
		return nil
	}

	fmt.Printf("Current: %s @ %d baud\n\n", cfg.Serial().Port, cfg.Serial().Baud)
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("failed to list serial ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return nil
	}
	for _, p := range ports {
		if p.IsUSB {
			fmt.Printf("%-20s USB %s:%s %s %s\n", p.Name, p.VID, p.PID, p.Product, p.SerialNumber)
		} else {
			fmt.Printf("%s\n", p.Name)
		}
	}
	return nil
}

func runSerialSet(cmd *cobra.Command, args []string) error {
	port := args[0]

	client, err := openBackend()
	if err != nil {
		return err
	}

	if client != nil {
		res, err := client.SetSerialPort(cmd.Context(), port)
		if err != nil {
			return err
		}
		fmt.Println(res.Message)
		if !res.Connected {
			return fmt.Errorf("backend could not open %s", res.Port)
		}
		return nil
	}

	// Check the port opens before saving it
	conn, err := OpenSerialConnection(port, cfg.Serial().Baud)
	if err != nil {
		return err
	}
	_ = conn.Close()

	cfg.SetSerialPort(port)
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Serial port set to %s in %s\n", port, cfg.Path())
	return nil
}
