// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"testing"
	"time"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/Thermoquad/prism/pkg/session"
	"github.com/Thermoquad/prism/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycle(t *testing.T) {
	tests := []struct {
		name    string
		v       int
		forward bool
		want    int
	}{
		{"next", 2, true, 3},
		{"wrap forward", 4, true, 1},
		{"previous", 3, false, 2},
		{"wrap backward", 1, false, 4},
		{"out of range", 0, true, 1},
		{"above range", 9, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cycle(tt.v, 1, 4, tt.forward))
		})
	}
}

func TestRenderHistory(t *testing.T) {
	assert.Equal(t, "(no commands yet)", renderHistory(nil))

	ts := time.Date(2025, 1, 1, 12, 30, 5, 0, time.UTC)
	out := renderHistory([]transport.Entry{
		{Timestamp: ts, Command: "r power!", Response: "power on"},
	})
	assert.Contains(t, out, "[12:30:05] > r power!")
	assert.Contains(t, out, "< power on")
}

func TestHandleSessionEvent(t *testing.T) {
	m := controlModel{maxLogEntries: 3, selectedWindow: 4}

	st := session.NewSession()
	st.SetMode(layout.ModePBP)
	snapshot := st.Snapshot()

	m.handleSessionEvent(session.Event{Type: session.EventBusy, State: snapshot})
	assert.Equal(t, 1, m.busy)
	assert.Equal(t, 2, m.selectedWindow, "selection clamps to the window count")

	m.handleSessionEvent(session.Event{Type: session.EventIdle, State: snapshot})
	m.handleSessionEvent(session.Event{Type: session.EventIdle, State: snapshot})
	assert.Equal(t, 0, m.busy)

	m.handleSessionEvent(session.Event{Type: session.EventNotice, State: snapshot, Level: session.LevelError, Message: "Error: boom"})
	require.Len(t, m.eventLog, 1)
	assert.Equal(t, "Error: boom", m.eventLog[0].message)
	assert.Equal(t, session.LevelError, m.eventLog[0].level)
}

func TestAddLogEntryBounded(t *testing.T) {
	m := controlModel{maxLogEntries: 2}
	m.addLogEntry("a", session.LevelInfo)
	m.addLogEntry("b", session.LevelInfo)
	m.addLogEntry("c", session.LevelInfo)

	require.Len(t, m.eventLog, 2)
	assert.Equal(t, "b", m.eventLog[0].message)
	assert.Equal(t, "c", m.eventLog[1].message)
}

func TestAddConsoleResult(t *testing.T) {
	m := controlModel{}
	ts := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	m.addConsoleResult(consoleResultMsg{timestamp: ts, command: "r power!", response: "power on"})
	m.addConsoleResult(consoleResultMsg{timestamp: ts, command: "r mode!", err: transport.ErrNoResponse})
	m.addConsoleResult(consoleResultMsg{timestamp: ts, command: "r mode!", err: transport.ErrClosed})

	require.Len(t, m.consoleRows, 3)
	assert.Contains(t, m.consoleRows[0], "< power on")
	assert.Contains(t, m.consoleRows[2], transport.ErrClosed.Error())
}
