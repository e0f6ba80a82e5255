// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Prism - Orei UHD-404MV Multiviewer Control Panel
//
// A CLI and terminal UI for driving the multiviewer's display layout,
// inputs, audio and output over its serial command language, either
// directly or through the control backend.

package main

import (
	"os"

	"github.com/Thermoquad/prism/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
