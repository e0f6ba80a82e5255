// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/prism/pkg/backend"
	"github.com/Thermoquad/prism/pkg/companion"
	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/Thermoquad/prism/pkg/session"
	"github.com/Thermoquad/prism/pkg/transport"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	volumeStep     = 5
	maxConsoleRows = 200
	historyLimit   = transport.MAX_HISTORY
)

// Views
const (
	viewControl = iota
	viewConsole
	viewHistory
)

// Focus states on the control view
const (
	focusPanel = iota
	focusRemotes
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// eventLogEntry is one line of the event log
type eventLogEntry struct {
	timestamp time.Time
	message   string
	level     session.Level
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	ctx context.Context

	// Connection manager (reconnection) and what sits on top of it
	connMgr  *connectionManager
	connInfo string
	ctrl     *session.Controller
	recorder *transport.Recorder
	mapper   *companion.Mapper
	backend  *backend.Client

	// Device state as of the last session event
	state session.State
	busy  int

	// Polling
	pollInterval time.Duration
	lastPoll     time.Time
	polling      bool

	// Selection
	view           int
	focus          int
	selectedWindow int
	selectedRemote int

	// Debug console
	console     textinput.Model
	consoleRows []string

	// History
	history     viewport.Model
	historyRows []transport.Entry

	// Event log
	eventLog      []eventLogEntry
	maxLogEntries int

	// UI state
	width          int
	height         int
	showHelp       bool
	quitting       bool
	connectionLost bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

type sessionEventMsg session.Event

type opResultMsg struct {
	label string
	err   error
}

type pollResultMsg struct {
	changed bool
	err     error
}

type consoleResultMsg struct {
	timestamp time.Time
	command   string
	response  string
	err       error
}

type historyMsg struct {
	entries []transport.Entry
	err     error
}

type connectionLostMsg struct{}

type reconnectedMsg struct {
	connInfo string
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(ctx context.Context, connMgr *connectionManager, ctrl *session.Controller,
	recorder *transport.Recorder, mapper *companion.Mapper, link *deviceLink,
) controlModel {
	// Initialize text input for the raw command console
	ti := textinput.New()
	ti.Placeholder = "r power!"
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Width = 40

	return controlModel{
		ctx:            ctx,
		connMgr:        connMgr,
		connInfo:       link.info,
		ctrl:           ctrl,
		recorder:       recorder,
		mapper:         mapper,
		backend:        link.backend,
		state:          ctrl.Snapshot(),
		pollInterval:   cfg.Timing().PollInterval.Std(),
		lastPoll:       time.Now(),
		selectedWindow: 1,
		console:        ti,
		consoleRows:    make([]string, 0),
		history:        viewport.New(80, 16),
		eventLog:       make([]eventLogEntry, 0),
		maxLogEntries:  100,
		width:          80,
		height:         24,
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return tea.Batch(controlTickCmd(), m.refreshCmd())
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		if m.view == viewHistory {
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.history.Width = max(20, m.width-4)
		m.history.Height = max(5, m.height-6)
		m.console.Width = max(20, m.width-8)

	case controlTickMsg:
		var cmd tea.Cmd
		if !m.polling && !m.connectionLost && m.busy == 0 && time.Since(m.lastPoll) >= m.pollInterval {
			m.polling = true
			m.lastPoll = time.Now()
			cmd = m.pollCmd()
		}
		return m, tea.Batch(controlTickCmd(), cmd)

	case sessionEventMsg:
		m.handleSessionEvent(session.Event(msg))

	case opResultMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) && !errors.Is(msg.err, session.ErrDisconnected) {
			m.addLogEntry(fmt.Sprintf("%s failed: %v", msg.label, msg.err), session.LevelError)
		}

	case pollResultMsg:
		m.polling = false
		if msg.changed {
			m.addLogEntry(fmt.Sprintf("Device switched to %s", m.ctrl.Snapshot().Mode.Label()), session.LevelInfo)
		}

	case consoleResultMsg:
		m.addConsoleResult(msg)

	case historyMsg:
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Failed to load history: %v", msg.err), session.LevelError)
			break
		}
		m.historyRows = msg.entries
		m.history.SetContent(renderHistory(msg.entries))
		m.history.GotoTop()

	case connectionLostMsg:
		m.connectionLost = true
		m.addLogEntry("Connection lost - reconnecting...", session.LevelError)

	case reconnectedMsg:
		m.connectionLost = false
		m.connInfo = msg.connInfo
		m.addLogEntry("Reconnected - refreshing", session.LevelSuccess)
		return m, m.refreshCmd()
	}

	return m, nil
}

func (m controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.view {
	case viewConsole:
		return m.handleConsoleKey(msg)
	case viewHistory:
		return m.handleHistoryKey(msg)
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "?":
		m.showHelp = true
		return m, nil

	case "tab", "shift+tab":
		if m.focus == focusPanel && len(m.mapper.Visible()) > 0 {
			m.focus = focusRemotes
		} else {
			m.focus = focusPanel
		}
		return m, nil

	case ":":
		m.view = viewConsole
		return m, m.console.Focus()

	case "H":
		m.view = viewHistory
		return m, m.loadHistoryCmd()
	}

	if m.connectionLost {
		m.addLogEntry("Cannot send command: connection lost", session.LevelError)
		return m, nil
	}

	if m.focus == focusRemotes {
		return m.handleRemoteKey(msg)
	}
	return m.handlePanelKey(msg)
}

func (m controlModel) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.state

	switch key := msg.String(); key {
	case "1", "2", "3", "4", "5":
		mode := layout.Mode(key[0] - '0')
		return m, m.run("Set mode", func(ctx context.Context) error {
			return m.ctrl.SetMode(ctx, mode)
		})

	case "w":
		m.selectedWindow = m.selectedWindow%max(1, st.Mode.WindowCount()) + 1

	case "i", "I":
		window := m.selectedWindow
		input := cycle(st.Inputs.Resolve(window), 1, layout.MaxInputs, key == "i")
		return m, m.run("Set window input", func(ctx context.Context) error {
			return m.ctrl.SetWindowInput(ctx, window, input)
		})

	case "s":
		if !st.Mode.IsSplit() {
			break
		}
		sub := cycle(st.Settings.SubMode(st.Mode), 1, st.Mode.SubModeCount(), true)
		return m, m.run("Set sub-mode", func(ctx context.Context) error {
			return m.ctrl.SetSubMode(ctx, sub)
		})

	case "a":
		sp, ok := st.Settings.Split(st.Mode)
		if !ok {
			break
		}
		aspect := layout.AspectFullScreen
		if sp.Aspect == layout.AspectFullScreen {
			aspect = layout.AspectOriginal
		}
		return m, m.run("Set aspect", func(ctx context.Context) error {
			return m.ctrl.SetAspect(ctx, aspect)
		})

	case "p":
		if st.Mode != layout.ModePIP {
			break
		}
		pos := layout.PIPPosition(cycle(int(st.Settings.PIP.Position), int(layout.PIPLeftTop), int(layout.PIPRightBottom), true))
		return m, m.run("Set PIP position", func(ctx context.Context) error {
			return m.ctrl.SetPIPPosition(ctx, pos)
		})

	case "z":
		if st.Mode != layout.ModePIP {
			break
		}
		size := layout.PIPSize(cycle(int(st.Settings.PIP.Size), int(layout.PIPSmall), int(layout.PIPLarge), true))
		return m, m.run("Set PIP size", func(ctx context.Context) error {
			return m.ctrl.SetPIPSize(ctx, size)
		})

	case "+", "=", "-":
		step := volumeStep
		if key == "-" {
			step = -volumeStep
		}
		volume := min(max(st.Audio.Volume+step, orei.VOLUME_MIN), orei.VOLUME_MAX)
		if volume == st.Audio.Volume {
			break
		}
		return m, m.run("Set volume", func(ctx context.Context) error {
			return m.ctrl.SetVolume(ctx, volume)
		})

	case "m":
		muted := !st.Audio.Muted
		return m, m.run("Set mute", func(ctx context.Context) error {
			return m.ctrl.SetMute(ctx, muted)
		})

	case "o":
		source := cycle(st.Audio.Source, orei.AUDIO_FOLLOW_WINDOW, orei.AUDIO_SOURCE_MAX, true)
		return m, m.run("Set audio source", func(ctx context.Context) error {
			return m.ctrl.SetAudioSource(ctx, source)
		})

	case "e":
		code := cycle(st.Output.Resolution, orei.RESOLUTION_MIN, orei.RESOLUTION_MAX, true)
		return m, m.run("Set resolution", func(ctx context.Context) error {
			return m.ctrl.SetResolution(ctx, code)
		})

	case "r":
		return m, m.refreshCmd()

	case "P":
		return m, m.run("Toggle power", m.ctrl.TogglePower)
	}

	return m, nil
}

// remoteKeys maps terminal keys to remote buttons.
var remoteKeys = map[string]companion.Key{
	"up":        companion.KeyUp,
	"down":      companion.KeyDown,
	"left":      companion.KeyLeft,
	"right":     companion.KeyRight,
	"enter":     companion.KeySelect,
	"backspace": companion.KeyBack,
	"h":         companion.KeyHome,
	"i":         companion.KeyInfo,
	" ":         companion.KeyPlay,
	",":         companion.KeyRev,
	".":         companion.KeyFwd,
	"p":         companion.KeyPower,
	"+":         companion.KeyVolumeUp,
	"-":         companion.KeyVolumeDown,
	"m":         companion.KeyVolumeMute,
}

func (m controlModel) handleRemoteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.mapper.Visible()
	if len(visible) == 0 {
		m.focus = focusPanel
		return m, nil
	}
	m.selectedRemote = min(m.selectedRemote, len(visible)-1)

	switch msg.String() {
	case "]":
		m.selectedRemote = (m.selectedRemote + 1) % len(visible)
		return m, nil
	case "[":
		m.selectedRemote = (m.selectedRemote + len(visible) - 1) % len(visible)
		return m, nil
	case "esc":
		m.focus = focusPanel
		return m, nil
	}

	key, ok := remoteKeys[msg.String()]
	if !ok {
		return m, nil
	}
	hdmi := visible[m.selectedRemote]
	mapper := m.mapper
	return m, m.run(fmt.Sprintf("HDMI %d %s", hdmi, key), func(ctx context.Context) error {
		return mapper.Press(ctx, hdmi, key)
	})
}

func (m controlModel) handleConsoleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewControl
		m.console.Blur()
		return m, nil

	case "enter":
		command := strings.TrimSpace(m.console.Value())
		if command == "" {
			return m, nil
		}
		m.console.Reset()
		ctrl := m.ctrl
		ctx := m.ctx
		return m, func() tea.Msg {
			resp, err := ctrl.SendRaw(ctx, command)
			return consoleResultMsg{timestamp: time.Now(), command: orei.Normalize(command), response: resp, err: err}
		}
	}

	var cmd tea.Cmd
	m.console, cmd = m.console.Update(msg)
	return m, cmd
}

func (m controlModel) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.view = viewControl
		return m, nil
	case "r":
		return m, m.loadHistoryCmd()
	case "c":
		return m, m.clearHistoryCmd()
	}

	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func (m *controlModel) handleSessionEvent(e session.Event) {
	m.state = e.State
	m.selectedWindow = min(m.selectedWindow, max(1, m.state.Mode.WindowCount()))

	switch e.Type {
	case session.EventBusy:
		m.busy++
	case session.EventIdle:
		m.busy = max(0, m.busy-1)
	case session.EventNotice:
		m.addLogEntry(e.Message, e.Level)
	case session.EventConnectionChanged:
		if !e.State.Connected {
			m.addLogEntry("Device disconnected", session.LevelWarning)
		}
	case session.EventPowerChanged:
		m.addLogEntry(fmt.Sprintf("Power %s", e.State.Power), session.LevelInfo)
	}
}

func (m controlModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var s strings.Builder

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("PRISM CONTROL"))
	s.WriteString(" ")
	connStatus := m.connInfo
	if m.connectionLost {
		connStatus = warningStyle.Render("RECONNECTING...")
	}
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | %s", connStatus, m.statusText())))
	s.WriteString("\n\n")

	switch {
	case m.showHelp:
		s.WriteString(boxStyle.Width(m.width - 4).Render(helpText))
	case m.view == viewConsole:
		s.WriteString(m.renderConsole(statsLabelStyle, headerStyle, boxStyle))
	case m.view == viewHistory:
		s.WriteString(m.renderHistoryView(statsLabelStyle, headerStyle, boxStyle))
	default:
		s.WriteString(m.renderControlView(statsLabelStyle, statsValueStyle, headerStyle, boxStyle, focusedBoxStyle))
	}

	s.WriteString("\n")
	s.WriteString(headerStyle.Render(m.footerText()))
	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

const helpText = `Layout      1-5 mode   w window   i/I input   s sub-mode   a aspect
PIP         p position   z size
Audio       +/- volume   m mute   o source
Output      e resolution   P power   r refresh
Remotes     tab focus   [ ] select   arrows/enter/backspace   h home
            space play   , rev   . fwd   i info   p power   +/- m volume
Views       : console   H history   ? help   q quit`

func (m controlModel) statusText() string {
	st := m.state
	if !st.Connected {
		return "disconnected"
	}
	text := fmt.Sprintf("power %s", st.Power)
	if m.busy > 0 {
		text += " | busy"
	}
	if !st.LastRefresh.IsZero() {
		text += fmt.Sprintf(" | refreshed %s", st.LastRefresh.Format("15:04:05"))
	}
	return text
}

func (m controlModel) footerText() string {
	switch m.view {
	case viewConsole:
		return "enter=send esc=back"
	case viewHistory:
		return "r=reload c=clear esc=back"
	}
	if m.focus == focusRemotes {
		return "tab=panel [ ]=select remote ?=help q=quit"
	}
	return "tab=remotes :=console H=history ?=help q=quit"
}

func (m controlModel) renderControlView(statsLabelStyle, statsValueStyle, headerStyle, boxStyle, focusedBoxStyle lipgloss.Style) string {
	var s strings.Builder

	// Layout: left panel (diagram) | right panel (settings)
	leftWidth := max(30, m.width/2-4)
	rightWidth := max(30, m.width-leftWidth-10)
	diagramHeight := max(6, leftWidth*9/32)

	l := m.state.Layout()
	diagram := fmt.Sprintf("%s %s\n%s",
		statsLabelStyle.Render("LAYOUT"),
		statsValueStyle.Render(m.state.Mode.Label()),
		renderDiagram(l, leftWidth, diagramHeight))
	diagramPanel := boxStyle.Render(diagram)

	settingsStyle := boxStyle.Width(rightWidth)
	if m.focus == focusPanel {
		settingsStyle = focusedBoxStyle.Width(rightWidth)
	}
	settingsPanel := settingsStyle.Render(m.renderSettings(statsLabelStyle, statsValueStyle, headerStyle))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, diagramPanel, " ", settingsPanel))
	s.WriteString("\n")

	s.WriteString(m.renderRemotes(statsLabelStyle, statsValueStyle, headerStyle, boxStyle, focusedBoxStyle))
	s.WriteString("\n")

	s.WriteString(m.renderStatisticsBar(statsLabelStyle, statsValueStyle, boxStyle))
	s.WriteString("\n")

	s.WriteString(m.renderEventLog(statsLabelStyle, headerStyle, boxStyle))
	return s.String()
}

func (m controlModel) renderSettings(statsLabelStyle, statsValueStyle, headerStyle lipgloss.Style) string {
	var s strings.Builder
	st := m.state
	row := func(label, value string) {
		s.WriteString(fmt.Sprintf("%s %s\n", statsLabelStyle.Render(label), statsValueStyle.Render(value)))
	}

	row("Mode:", fmt.Sprintf("%d %s", int(st.Mode), st.Mode.Label()))
	switch {
	case st.Mode == layout.ModePIP:
		row("PIP:", fmt.Sprintf("%s, %s", st.Settings.PIP.Position, st.Settings.PIP.Size))
	case st.Mode.IsSplit():
		sp, _ := st.Settings.Split(st.Mode)
		row("Layout:", fmt.Sprintf("sub-mode %d/%d, %s", sp.SubMode, st.Mode.SubModeCount(), sp.Aspect))
	}
	s.WriteString("\n")

	for n := 1; n <= st.Mode.WindowCount(); n++ {
		marker := "  "
		if n == m.selectedWindow {
			marker = "> "
		}
		s.WriteString(fmt.Sprintf("%sWindow %d: %s\n", marker, n,
			statsValueStyle.Render(fmt.Sprintf("HDMI %d", st.Inputs.Resolve(n)))))
	}
	s.WriteString("\n")

	if st.Audio.Known {
		row("Audio:", fmt.Sprintf("%s, volume %s", orei.FormatAudioSource(st.Audio.Source), orei.FormatVolume(st.Audio.Volume, st.Audio.Muted)))
	} else {
		s.WriteString(headerStyle.Render("Audio: unknown"))
		s.WriteString("\n")
	}

	output := "unknown"
	if st.Output.Resolution != 0 {
		output = orei.ResolutionName(st.Output.Resolution)
	}
	if st.Output.HDCP != 0 {
		output += ", " + st.Output.HDCP.String()
	}
	row("Output:", output)
	return strings.TrimRight(s.String(), "\n")
}

func (m controlModel) renderRemotes(statsLabelStyle, statsValueStyle, headerStyle, boxStyle, focusedBoxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("REMOTES"))
	s.WriteString(" ")

	visible := m.mapper.Visible()
	if len(visible) == 0 {
		s.WriteString(headerStyle.Render("(no remotes for the inputs on screen)"))
		return boxStyle.Width(m.width - 4).Render(s.String())
	}

	mappings := m.mapper.Mappings()
	selected := min(m.selectedRemote, len(visible)-1)
	for i, hdmi := range visible {
		d, _ := mappings.Get(hdmi)
		label := fmt.Sprintf("HDMI %d %s", hdmi, d.Label())
		if m.focus == focusRemotes && i == selected {
			s.WriteString(statsValueStyle.Render("[" + label + "]"))
		} else {
			s.WriteString(" " + label + " ")
		}
		s.WriteString(" ")
	}

	style := boxStyle
	if m.focus == focusRemotes {
		style = focusedBoxStyle
	}
	return style.Width(m.width - 4).Render(s.String())
}

func (m controlModel) renderStatisticsBar(statsLabelStyle, statsValueStyle, boxStyle lipgloss.Style) string {
	c := m.recorder.Statistics().Snapshot()
	var answeredPercent float64
	if c.TotalCommands > 0 {
		answeredPercent = float64(c.Responses) * 100.0 / float64(c.TotalCommands)
	}

	content := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		statsLabelStyle.Render("Commands:"), statsValueStyle.Render(fmt.Sprintf("%d", c.TotalCommands)),
		statsLabelStyle.Render("Answered:"), statsValueStyle.Render(fmt.Sprintf("%.1f%%", answeredPercent)),
		statsLabelStyle.Render("Silent:"), statsValueStyle.Render(fmt.Sprintf("%d", c.NoResponses)),
		statsLabelStyle.Render("Latency:"), statsValueStyle.Render(c.AvgLatency().Round(time.Millisecond).String()),
	)

	return boxStyle.Width(m.width - 4).Render(content)
}

func levelStyle(level session.Level) (string, lipgloss.Style) {
	switch level {
	case session.LevelSuccess:
		return "+", lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case session.LevelWarning:
		return "!", lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	case session.LevelError:
		return "x", lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	default:
		return "i", lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	}
}

func (m controlModel) renderEventLog(statsLabelStyle, headerStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("EVENTS"))
	s.WriteString("\n")

	logHeight := min(6, len(m.eventLog))
	startIdx := len(m.eventLog) - logHeight

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			icon, style := levelStyle(entry.level)
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
				style.Render(icon),
				entry.message))
		}
	}

	return boxStyle.Width(m.width - 4).Render(strings.TrimRight(s.String(), "\n"))
}

func (m controlModel) renderConsole(statsLabelStyle, headerStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(statsLabelStyle.Render("CONSOLE"))
	s.WriteString(headerStyle.Render(" raw device commands, e.g. r multiview! or s output audio vol 30!"))
	s.WriteString("\n\n")

	rows := max(3, m.height-10)
	start := max(0, len(m.consoleRows)-rows)
	for _, line := range m.consoleRows[start:] {
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(m.console.View())

	return boxStyle.Width(m.width - 4).Render(s.String())
}

func (m controlModel) renderHistoryView(statsLabelStyle, headerStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	source := "this session"
	if m.backend != nil {
		source = "backend"
	}
	s.WriteString(statsLabelStyle.Render("HISTORY"))
	s.WriteString(headerStyle.Render(fmt.Sprintf(" %d commands, %s", len(m.historyRows), source)))
	s.WriteString("\n")
	s.WriteString(m.history.View())
	return boxStyle.Width(m.width - 4).Render(s.String())
}

// renderHistory lists entries newest first.
func renderHistory(entries []transport.Entry) string {
	if len(entries) == 0 {
		return "(no commands yet)"
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, orei.FormatExchange(e.Timestamp, e.Command, e.Response))
	}
	return strings.Join(lines, "\n")
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

// run performs fn off the UI goroutine and reports the outcome.
func (m controlModel) run(label string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opResultMsg{label: label, err: fn(ctx)}
	}
}

func (m controlModel) refreshCmd() tea.Cmd {
	ctrl := m.ctrl
	return m.run("Refresh", func(ctx context.Context) error {
		_, err := ctrl.Refresh(ctx)
		return err
	})
}

func (m controlModel) pollCmd() tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		changed, err := ctrl.CheckStatus(ctx)
		return pollResultMsg{changed: changed, err: err}
	}
}

func (m controlModel) loadHistoryCmd() tea.Cmd {
	ctx := m.ctx
	client := m.backend
	local := m.recorder.History()
	return func() tea.Msg {
		if client != nil {
			entries, err := client.History(ctx, historyLimit)
			return historyMsg{entries: entries, err: err}
		}
		return historyMsg{entries: local.Entries(historyLimit)}
	}
}

func (m controlModel) clearHistoryCmd() tea.Cmd {
	ctx := m.ctx
	client := m.backend
	local := m.recorder.History()
	return func() tea.Msg {
		local.Clear()
		if client != nil {
			if err := client.ClearHistory(ctx); err != nil {
				return historyMsg{err: err}
			}
		}
		return historyMsg{entries: nil}
	}
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

// cycle steps v through [lo, hi], wrapping at both ends. Values outside the
// range start from lo.
func cycle(v, lo, hi int, forward bool) int {
	if v < lo || v > hi {
		return lo
	}
	if forward {
		if v == hi {
			return lo
		}
		return v + 1
	}
	if v == lo {
		return hi
	}
	return v - 1
}

func (m *controlModel) addLogEntry(message string, level session.Level) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		level:     level,
	}
	m.eventLog = append(m.eventLog, entry)

	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m *controlModel) addConsoleResult(msg consoleResultMsg) {
	switch {
	case msg.err != nil && !transport.IsNoResponse(msg.err):
		m.consoleRows = append(m.consoleRows, fmt.Sprintf("[%s] > %s\n           x %v",
			msg.timestamp.Format("15:04:05"), msg.command, msg.err))
	default:
		m.consoleRows = append(m.consoleRows, orei.FormatExchange(msg.timestamp, msg.command, msg.response))
	}

	if len(m.consoleRows) > maxConsoleRows {
		m.consoleRows = m.consoleRows[len(m.consoleRows)-maxConsoleRows:]
	}
}
