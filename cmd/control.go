// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Thermoquad/prism/pkg/session"
	"github.com/Thermoquad/prism/pkg/transport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Interactive TUI for controlling the multiviewer",
	Long: `Control the multiviewer via an interactive terminal UI.

This command provides a TUI for monitoring and controlling the Orei UHD-404MV
through the backend, or directly over a serial port or WebSocket bridge.

Features:
  - Live layout diagram of the current display mode
  - Mode, window input, split and PIP settings
  - Audio source, volume and mute
  - Roku remotes for the inputs on screen
  - Raw command console and command history
  - Periodic status polling
  - Automatic reconnection on connection loss

Press ? in the TUI for the key map.`,
	Annotations: map[string]string{annotationNoConsoleLog: "true"},
	RunE:        runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)
}

// connectionManager handles connection lifecycle and reconnection. It is
// the Transport the session controller talks to, so a reconnect swaps the
// link underneath without the controller noticing.
type connectionManager struct {
	link     *deviceLink
	connInfo string
	mu       sync.RWMutex
	p        *tea.Program
	done     chan struct{}
}

var _ transport.Transport = (*connectionManager)(nil)

func (cm *connectionManager) getLink() *deviceLink {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.link
}

func (cm *connectionManager) setLink(link *deviceLink) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.link = link
	cm.connInfo = link.info
}

// Send forwards to the current link.
func (cm *connectionManager) Send(ctx context.Context, command string) (string, error) {
	link := cm.getLink()
	if link == nil {
		return "", transport.ErrClosed
	}
	return link.transport.Send(ctx, command)
}

func runControl(cmd *cobra.Command, args []string) error {
	// Open initial connection (backend, serial or WebSocket)
	link, err := OpenLink()
	if err != nil {
		return err
	}

	cm := &connectionManager{
		link:     link,
		connInfo: link.info,
		done:     make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	recorder := newRecorder(cm)
	ctrl := newController(recorder)
	mapper := newMapper(link.backend)
	if err := mapper.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to load companion mappings")
	}

	uiEvents, _ := ctrl.Events().Subscribe(256)
	mapperEvents, _ := ctrl.Events().Subscribe(64)

	m := initialControlModel(ctx, cm, ctrl, recorder, mapper, link)

	// Create TUI program with alt screen and mouse support
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	cm.p = p

	go cm.watchLoop()
	go mapper.Watch(ctx, mapperEvents)
	go forwardEvents(p, uiEvents)

	_, err = p.Run()

	// Signal goroutines to stop
	close(cm.done)
	cancel()
	ctrl.Events().Close()
	if link := cm.getLink(); link != nil {
		_ = link.Close()
	}

	if err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}

// forwardEvents hands session events to the TUI until the dispatcher closes.
func forwardEvents(p *tea.Program, events <-chan session.Event) {
	for e := range events {
		p.Send(sessionEventMsg(e))
	}
}

// watchLoop waits for a direct line to drop and reconnects it. The backend
// is stateless, so there is nothing to watch.
func (cm *connectionManager) watchLoop() {
	for {
		lost := cm.getLink().Done()
		if lost == nil {
			<-cm.done
			return
		}

		select {
		case <-cm.done:
			return
		case <-lost:
		}

		// Notify TUI about connection loss
		cm.p.Send(connectionLostMsg{})

		// Attempt to reconnect
		if !cm.reconnect() {
			return // Shutdown requested during reconnect
		}
	}
}

// reconnect attempts to reconnect with exponential backoff
// Returns false if shutdown was requested during reconnection
func (cm *connectionManager) reconnect() bool {
	// Close old connection
	if link := cm.getLink(); link != nil {
		_ = link.Close()
	}

	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-cm.done:
			return false
		case <-time.After(backoff):
		}

		// Attempt to reconnect
		link, err := OpenLink()
		if err == nil {
			cm.setLink(link)

			// Notify TUI about reconnection
			cm.p.Send(reconnectedMsg{connInfo: link.info})
			return true
		}
		log.Debug().Err(err).Dur("backoff", backoff).Msg("reconnect failed")

		// Exponential backoff
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
