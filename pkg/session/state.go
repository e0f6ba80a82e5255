// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package session holds the control panel's view of the multiviewer and
// sequences the device queries that keep it current.
package session

import (
	"time"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/Thermoquad/prism/pkg/syncutil"
)

// Power is the device power state as last observed.
type Power int

const (
	PowerUnknown Power = iota
	PowerOff
	PowerOn
)

func (p Power) String() string {
	switch p {
	case PowerOn:
		return "on"
	case PowerOff:
		return "off"
	default:
		return "unknown"
	}
}

// Audio is the output audio state.
type Audio struct {
	Source int
	Volume int
	Muted  bool
	// Known is false until audio has been read from the device.
	Known bool
}

// Output is the HDMI output state. Zero values mean not yet read.
type Output struct {
	Resolution int
	HDCP       orei.HDCP
}

// State is a copy of the session at one moment.
type State struct {
	Connected   bool
	Power       Power
	Mode        layout.Mode
	Inputs      layout.Inputs
	Settings    layout.Settings
	Audio       Audio
	Output      Output
	LastRefresh time.Time
}

// Layout computes the on-screen arrangement for the state.
func (s State) Layout() layout.Layout {
	return layout.Compute(s.Mode, s.Settings, s.Inputs)
}

// Session is the single shared record of device state. All mutation goes
// through its methods.
type Session struct {
	mu syncutil.RWMutex
	s  State
}

// NewSession starts in single-screen mode with every window on its own
// input.
func NewSession() *Session {
	return &Session{s: State{
		Mode:     layout.ModeSingle,
		Inputs:   layout.Inputs{1: 1, 2: 2, 3: 3, 4: 4},
		Settings: layout.DefaultSettings(),
	}}
}

// Snapshot returns an independent copy of the current state.
func (ss *Session) Snapshot() State {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	s := ss.s
	s.Inputs = ss.s.Inputs.Clone()
	return s
}

// SetConnected records connectivity and reports whether it changed.
func (ss *Session) SetConnected(connected bool) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	changed := ss.s.Connected != connected
	ss.s.Connected = connected
	if !connected {
		ss.s.Power = PowerUnknown
	}
	return changed
}

// SetPower records the power state and reports whether it changed.
func (ss *Session) SetPower(p Power) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	changed := ss.s.Power != p
	ss.s.Power = p
	return changed
}

// SetMode records the display mode and reports whether it changed.
// Invalid modes are ignored.
func (ss *Session) SetMode(m layout.Mode) bool {
	if !m.Valid() {
		return false
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	changed := ss.s.Mode != m
	ss.s.Mode = m
	return changed
}

// SetInput records which input window shows.
func (ss *Session) SetInput(window, input int) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.s.Inputs[window] = input
}

// MergeInputs overwrites the given windows and leaves the rest cached.
func (ss *Session) MergeInputs(in layout.Inputs) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for w, v := range in {
		ss.s.Inputs[w] = v
	}
}

// UpdateSettings applies fn to the mode settings under the lock.
func (ss *Session) UpdateSettings(fn func(*layout.Settings)) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	fn(&ss.s.Settings)
}

// UpdateAudio applies fn to the audio state under the lock.
func (ss *Session) UpdateAudio(fn func(*Audio)) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	fn(&ss.s.Audio)
}

// UpdateOutput applies fn to the output state under the lock.
func (ss *Session) UpdateOutput(fn func(*Output)) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	fn(&ss.s.Output)
}

// MarkRefreshed stamps the time of the last completed full refresh.
func (ss *Session) MarkRefreshed(t time.Time) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.s.LastRefresh = t
}
