// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package layout

import "maps"

// MaxInputs is the number of HDMI inputs on the device.
const MaxInputs = 4

// Inputs maps a window number (1-based) to the HDMI input shown in it.
// Entries past the current mode's window count may linger and are ignored.
type Inputs map[int]int

// Resolve returns the input assigned to window n. Unknown windows show the
// input with their own number.
func (in Inputs) Resolve(n int) int {
	if v, ok := in[n]; ok && v >= 1 && v <= MaxInputs {
		return v
	}
	return n
}

// Clone returns an independent copy.
func (in Inputs) Clone() Inputs {
	out := make(Inputs, len(in))
	maps.Copy(out, in)
	return out
}

// Complete reports whether every window of m has an entry.
func (in Inputs) Complete(m Mode) bool {
	for n := 1; n <= m.WindowCount(); n++ {
		if _, ok := in[n]; !ok {
			return false
		}
	}
	return true
}

// Visible returns the distinct inputs on screen under m, in window order.
func (in Inputs) Visible(m Mode) []int {
	seen := make(map[int]bool, MaxInputs)
	out := make([]int, 0, m.WindowCount())
	for n := 1; n <= m.WindowCount(); n++ {
		v := in.Resolve(n)
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
