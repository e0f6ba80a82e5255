// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"math"
	"strings"

	"github.com/Thermoquad/prism/pkg/layout"
)

// renderDiagram draws l as boxes on a width x height character grid.
// Windows are drawn in order, so the PIP overlay lands on top.
func renderDiagram(l layout.Layout, width, height int) string {
	if width < 2 || height < 2 {
		return ""
	}

	grid := make([][]rune, height)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
	}

	for _, w := range l.Windows {
		x0 := scale(w.Rect.X, width)
		x1 := scale(w.Rect.X+w.Rect.W, width)
		y0 := scale(w.Rect.Y, height)
		y1 := scale(w.Rect.Y+w.Rect.H, height)
		drawBox(grid, x0, y0, x1, y1, fmt.Sprintf("%d:HDMI %d", w.Number, w.Input))
	}

	lines := make([]string, height)
	for y, row := range grid {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}

func scale(percent float64, cells int) int {
	return int(math.Round(percent * float64(cells) / 100))
}

// drawBox fills [x0,x1) x [y0,y1) with a bordered box and centers label
// in it.
func drawBox(grid [][]rune, x0, y0, x1, y1 int, label string) {
	if x1-x0 < 2 || y1-y0 < 2 {
		return
	}

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			var r rune
			switch {
			case y == y0 && x == x0:
				r = '┌'
			case y == y0 && x == x1-1:
				r = '┐'
			case y == y1-1 && x == x0:
				r = '└'
			case y == y1-1 && x == x1-1:
				r = '┘'
			case y == y0 || y == y1-1:
				r = '─'
			case x == x0 || x == x1-1:
				r = '│'
			default:
				r = ' '
			}
			grid[y][x] = r
		}
	}

	inner := x1 - x0 - 2
	if inner <= 0 || y1-y0 < 3 {
		return
	}
	text := []rune(label)
	if len(text) > inner {
		text = text[:inner]
	}
	row := y0 + (y1-y0)/2
	col := x0 + 1 + (inner-len(text))/2
	copy(grid[row][col:], text)
}
