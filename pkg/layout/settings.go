// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package layout

import "fmt"

// PIPPosition is the corner the picture-in-picture overlay sits in.
type PIPPosition int

const (
	PIPLeftTop PIPPosition = iota + 1
	PIPLeftBottom
	PIPRightTop
	PIPRightBottom
)

func (p PIPPosition) Valid() bool { return p >= PIPLeftTop && p <= PIPRightBottom }

func (p PIPPosition) String() string {
	switch p {
	case PIPLeftTop:
		return "left top"
	case PIPLeftBottom:
		return "left bottom"
	case PIPRightTop:
		return "right top"
	case PIPRightBottom:
		return "right bottom"
	default:
		return fmt.Sprintf("position(%d)", int(p))
	}
}

// PIPSize is the overlay size step.
type PIPSize int

const (
	PIPSmall PIPSize = iota + 1
	PIPMedium
	PIPLarge
)

func (s PIPSize) Valid() bool { return s >= PIPSmall && s <= PIPLarge }

// Percent returns the overlay edge length as a percentage of the screen.
func (s PIPSize) Percent() float64 {
	switch s {
	case PIPSmall:
		return 20
	case PIPLarge:
		return 30
	default:
		return 25
	}
}

func (s PIPSize) String() string {
	switch s {
	case PIPSmall:
		return "small"
	case PIPMedium:
		return "medium"
	case PIPLarge:
		return "large"
	default:
		return fmt.Sprintf("size(%d)", int(s))
	}
}

// Aspect selects how sources are scaled inside split windows.
type Aspect int

const (
	AspectFullScreen Aspect = iota + 1
	AspectOriginal
)

func (a Aspect) Valid() bool { return a == AspectFullScreen || a == AspectOriginal }

func (a Aspect) String() string {
	if a == AspectFullScreen {
		return "full screen"
	}
	return "original"
}

// PIP holds the picture-in-picture settings.
type PIP struct {
	Position PIPPosition
	Size     PIPSize
}

// Split holds the settings shared by the PBP, triple and quad modes.
type Split struct {
	SubMode int
	Aspect  Aspect
}

// Settings is the full set of per-mode sub-configuration. Only the part
// selected by the current mode is meaningful at any time.
type Settings struct {
	PIP    PIP
	PBP    Split
	Triple Split
	Quad   Split
}

// DefaultSettings mirrors what the device ships with.
func DefaultSettings() Settings {
	return Settings{
		PIP:    PIP{Position: PIPRightTop, Size: PIPMedium},
		PBP:    Split{SubMode: 1, Aspect: AspectFullScreen},
		Triple: Split{SubMode: 1, Aspect: AspectFullScreen},
		Quad:   Split{SubMode: 1, Aspect: AspectFullScreen},
	}
}

// Split returns the split settings for m, or false when m is not a split mode.
func (s Settings) Split(m Mode) (Split, bool) {
	switch m {
	case ModePBP:
		return s.PBP, true
	case ModeTriple:
		return s.Triple, true
	case ModeQuad:
		return s.Quad, true
	default:
		return Split{}, false
	}
}

// SetSplit replaces the split settings for m.
func (s *Settings) SetSplit(m Mode, sp Split) error {
	if !m.IsSplit() {
		return fmt.Errorf("%w: %s has no sub-mode", ErrInvalidMode, m)
	}
	if sp.SubMode < 1 || sp.SubMode > m.SubModeCount() {
		return fmt.Errorf("sub-mode %d out of range for %s", sp.SubMode, m)
	}
	if !sp.Aspect.Valid() {
		return fmt.Errorf("invalid aspect %d", sp.Aspect)
	}
	switch m {
	case ModePBP:
		s.PBP = sp
	case ModeTriple:
		s.Triple = sp
	case ModeQuad:
		s.Quad = sp
	}
	return nil
}

// SubMode returns the active sub-layout for m, 1 when m has none.
func (s Settings) SubMode(m Mode) int {
	if sp, ok := s.Split(m); ok && sp.SubMode >= 1 && sp.SubMode <= m.SubModeCount() {
		return sp.SubMode
	}
	return 1
}
