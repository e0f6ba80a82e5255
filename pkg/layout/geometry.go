// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package layout

// OverlayMargin is the gap between the PIP overlay and the screen edge, in
// percent of the screen.
const OverlayMargin = 3.0

// Rect is a window rectangle in percent of the output frame.
type Rect struct {
	X, Y, W, H float64
}

// Window is one on-screen window.
type Window struct {
	Number  int
	Input   int
	Rect    Rect
	Overlay bool
}

// Layout is the rendered arrangement for a mode and its settings.
type Layout struct {
	Mode    Mode
	SubMode int
	Windows []Window
}

const third = 100.0 / 3

// Compute arranges the windows of m. Windows are returned in window-number
// order and carry the input resolved through in.
func Compute(m Mode, s Settings, in Inputs) Layout {
	if !m.Valid() {
		m = ModeSingle
	}
	l := Layout{Mode: m, SubMode: s.SubMode(m)}

	var rects []Rect
	switch m {
	case ModeSingle:
		rects = []Rect{{0, 0, 100, 100}}
	case ModePIP:
		rects = []Rect{{0, 0, 100, 100}, overlayRect(s.PIP)}
	case ModePBP:
		if l.SubMode == 2 {
			rects = []Rect{{0, 0, 75, 100}, {75, 0, 25, 100}}
		} else {
			rects = []Rect{{0, 0, 50, 100}, {50, 0, 50, 100}}
		}
	case ModeTriple:
		if l.SubMode == 2 {
			rects = []Rect{{0, 0, 50, 100}, {50, 0, 25, 50}, {50, 50, 25, 50}}
		} else {
			rects = []Rect{{0, 0, 60, 100}, {60, 0, 40, 50}, {60, 50, 40, 50}}
		}
	case ModeQuad:
		switch l.SubMode {
		case 2:
			rects = []Rect{{0, 0, 75, 100}, {75, 0, 25, third}, {75, third, 25, third}, {75, 2 * third, 25, third}}
		case 3:
			rects = []Rect{{0, 0, 25, third}, {0, third, 25, third}, {0, 2 * third, 25, third}, {25, 0, 75, 100}}
		default:
			rects = []Rect{{0, 0, 50, 50}, {50, 0, 50, 50}, {0, 50, 50, 50}, {50, 50, 50, 50}}
		}
	}

	l.Windows = make([]Window, len(rects))
	for i, r := range rects {
		n := i + 1
		l.Windows[i] = Window{
			Number:  n,
			Input:   in.Resolve(n),
			Rect:    r,
			Overlay: m == ModePIP && n == 2,
		}
	}
	return l
}

func overlayRect(p PIP) Rect {
	size := p.Size.Percent()
	near := OverlayMargin
	far := 100 - size - OverlayMargin

	switch p.Position {
	case PIPLeftTop:
		return Rect{near, near, size, size}
	case PIPLeftBottom:
		return Rect{near, far, size, size}
	case PIPRightBottom:
		return Rect{far, far, size, size}
	default:
		return Rect{far, near, size, size}
	}
}
