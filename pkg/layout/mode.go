// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package layout models the multiviewer's display modes, the per-mode
// sub-layout settings, and the on-screen geometry each combination produces.
package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Mode is the multiview display mode as numbered by the device.
type Mode int

const (
	ModeSingle Mode = iota + 1
	ModePIP
	ModePBP
	ModeTriple
	ModeQuad
)

// MaxWindows is the largest window count of any mode.
const MaxWindows = 4

// ErrInvalidMode is returned for mode numbers outside 1..5.
var ErrInvalidMode = errors.New("invalid multiview mode")

var modeNames = map[Mode]string{
	ModeSingle: "single",
	ModePIP:    "pip",
	ModePBP:    "pbp",
	ModeTriple: "triple",
	ModeQuad:   "quad",
}

// Modes lists every mode in device order.
func Modes() []Mode {
	return []Mode{ModeSingle, ModePIP, ModePBP, ModeTriple, ModeQuad}
}

// Valid reports whether m is one of the five device modes.
func (m Mode) Valid() bool {
	return m >= ModeSingle && m <= ModeQuad
}

// WindowCount returns how many windows the mode puts on screen. Invalid
// modes have no windows.
func (m Mode) WindowCount() int {
	switch m {
	case ModeSingle:
		return 1
	case ModePIP, ModePBP:
		return 2
	case ModeTriple:
		return 3
	case ModeQuad:
		return 4
	default:
		return 0
	}
}

// SubModeCount returns the number of selectable sub-layouts for split modes,
// or 0 for modes without one.
func (m Mode) SubModeCount() int {
	switch m {
	case ModePBP, ModeTriple:
		return 2
	case ModeQuad:
		return 3
	default:
		return 0
	}
}

// IsSplit reports whether the mode carries a sub-mode and aspect setting.
func (m Mode) IsSplit() bool {
	return m.SubModeCount() > 0
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Label is the human-facing name shown in the control panel.
func (m Mode) Label() string {
	switch m {
	case ModeSingle:
		return "Single Screen"
	case ModePIP:
		return "PIP"
	case ModePBP:
		return "PBP"
	case ModeTriple:
		return "Triple"
	case ModeQuad:
		return "Quad"
	default:
		return m.String()
	}
}

// ParseMode accepts a device mode number or a mode name.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		m := Mode(n)
		if !m.Valid() {
			return 0, fmt.Errorf("%w: %d", ErrInvalidMode, n)
		}
		return m, nil
	}
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}
