// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package orei

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/prism/pkg/layout"
)

// Normalize trims cmd and appends the terminator when it is missing.
func Normalize(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" || strings.HasSuffix(cmd, TERMINATOR) {
		return cmd
	}
	return cmd + TERMINATOR
}

// splitKeyword is the device's name for a split mode's settings group.
func splitKeyword(m layout.Mode) string {
	switch m {
	case layout.ModePBP:
		return "PBP"
	case layout.ModeTriple:
		return "triple"
	case layout.ModeQuad:
		return "quad"
	default:
		return ""
	}
}

// QueryWindowInput asks which input window n shows.
func QueryWindowInput(n int) string {
	return fmt.Sprintf("r window %d in!", n)
}

// QuerySubMode asks for the sub-layout of a split mode. It returns "" for
// modes without one.
func QuerySubMode(m layout.Mode) string {
	kw := splitKeyword(m)
	if kw == "" {
		return ""
	}
	return fmt.Sprintf("r %s mode!", kw)
}

// QueryAspect asks for the aspect setting of a split mode. It returns "" for
// modes without one.
func QueryAspect(m layout.Mode) string {
	kw := splitKeyword(m)
	if kw == "" {
		return ""
	}
	return fmt.Sprintf("r %s aspect!", kw)
}

func boolArg(on bool) int {
	if on {
		return 1
	}
	return 0
}

func SetPower(on bool) string {
	return fmt.Sprintf("power %d!", boolArg(on))
}

// SetAudioSource routes output audio; 0 follows the selected window.
func SetAudioSource(source int) string {
	return fmt.Sprintf("s output audio %d!", source)
}

func SetVolume(v int) string {
	return fmt.Sprintf("s output audio vol %d!", v)
}

func SetMute(on bool) string {
	return fmt.Sprintf("s output audio mute %d!", boolArg(on))
}

func SetMultiview(m layout.Mode) string {
	return fmt.Sprintf("s multiview %d!", int(m))
}

func SetResolution(code int) string {
	return fmt.Sprintf("s output res %d!", code)
}

func SetHDCP(h HDCP) string {
	return fmt.Sprintf("s output hdcp %d!", int(h))
}

func SetWindowInput(window, input int) string {
	return fmt.Sprintf("s window %d in %d!", window, input)
}

func SetPIPPosition(p layout.PIPPosition) string {
	return fmt.Sprintf("s PIP position %d!", int(p))
}

func SetPIPSize(s layout.PIPSize) string {
	return fmt.Sprintf("s PIP size %d!", int(s))
}

// SetSubMode selects a split mode's sub-layout. It returns "" for modes
// without one.
func SetSubMode(m layout.Mode, sub int) string {
	kw := splitKeyword(m)
	if kw == "" {
		return ""
	}
	return fmt.Sprintf("s %s mode %d!", kw, sub)
}

// SetAspect sets a split mode's aspect. It returns "" for modes without one.
func SetAspect(m layout.Mode, a layout.Aspect) string {
	kw := splitKeyword(m)
	if kw == "" {
		return ""
	}
	return fmt.Sprintf("s %s aspect %d!", kw, int(a))
}
