// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/Thermoquad/prism/pkg/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	DefaultCommandDelay = 200 * time.Millisecond
	DefaultReadTimeout  = 2 * time.Second

	lineBacklog = 64
)

// LineOptions tunes the timing of a Line transport.
type LineOptions struct {
	// CommandDelay is how long to wait after writing before reading.
	CommandDelay time.Duration
	// ReadTimeout bounds how long response lines are collected.
	ReadTimeout time.Duration
	// Clock drives both waits; nil means the wall clock.
	Clock clockwork.Clock
}

// Line talks to the device directly over a byte stream such as a serial
// port or a WebSocket bridge. One command is in flight at a time.
type Line struct {
	conn  io.ReadWriteCloser
	opts  LineOptions
	clock clockwork.Clock

	sendMu syncutil.Mutex

	decMu   syncutil.Mutex
	decoder *LineDecoder

	lines     chan string
	dead      chan struct{}
	readErr   error
	closeOnce sync.Once
}

// NewLine wraps conn and starts its reader goroutine. Close stops it.
func NewLine(conn io.ReadWriteCloser, opts LineOptions) *Line {
	if opts.CommandDelay < 0 {
		opts.CommandDelay = 0
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	l := &Line{
		conn:    conn,
		opts:    opts,
		clock:   clock,
		decoder: NewLineDecoder(),
		lines:   make(chan string, lineBacklog),
		dead:    make(chan struct{}),
	}
	go l.readLoop()
	return l
}

// readLoop decodes incoming bytes into lines until the connection fails
func (l *Line) readLoop() {
	buf := make([]byte, 128)
	for {
		n, err := l.conn.Read(buf)
		if n > 0 {
			l.decode(buf[:n])
		}
		if err != nil {
			l.readErr = err
			close(l.dead)
			return
		}
	}
}

func (l *Line) decode(data []byte) {
	l.decMu.Lock()
	defer l.decMu.Unlock()

	for _, b := range data {
		line, ok, err := l.decoder.DecodeByte(b)
		if err != nil {
			log.Warn().Err(err).Msg("discarding device output")
			continue
		}
		if !ok {
			continue
		}
		select {
		case l.lines <- line:
		default:
			log.Warn().Str("line", line).Msg("response backlog full, dropping line")
		}
	}
}

// flushPartial returns a line the device did not terminate before the
// read window closed.
func (l *Line) flushPartial() string {
	l.decMu.Lock()
	defer l.decMu.Unlock()
	line := strings.TrimSpace(l.decoder.Pending())
	l.decoder.Reset()
	return line
}

func (l *Line) drain() {
	for {
		select {
		case <-l.lines:
		default:
			return
		}
	}
}

func (l *Line) closedErr() error {
	select {
	case <-l.dead:
	default:
		return nil
	}
	if l.readErr != nil && !errors.Is(l.readErr, io.EOF) {
		return fmt.Errorf("%w: %v", ErrClosed, l.readErr)
	}
	return ErrClosed
}

// Done is closed when the connection has failed or been closed.
func (l *Line) Done() <-chan struct{} {
	return l.dead
}

// Send writes command, terminated with '!', and collects reply lines until
// one contains a completion keyword or the read timeout passes. Lines are
// joined with single spaces.
func (l *Line) Send(ctx context.Context, command string) (string, error) {
	command = orei.Normalize(command)
	if command == "" {
		return "", errors.New("empty command")
	}

	l.sendMu.Lock()
	defer l.sendMu.Unlock()

	if err := l.closedErr(); err != nil {
		return "", err
	}

	l.drain()
	l.flushPartial()

	if _, err := l.conn.Write([]byte(command)); err != nil {
		return "", fmt.Errorf("write %q: %w", command, err)
	}
	log.Debug().Str("command", command).Msg("sent")

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-l.dead:
		return "", l.closedErr()
	case <-l.clock.After(l.opts.CommandDelay):
	}

	var got []string
	deadline := l.clock.After(l.opts.ReadTimeout)
collect:
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case line := <-l.lines:
			got = append(got, line)
			if isComplete(line) {
				break collect
			}
		case <-deadline:
			if partial := l.flushPartial(); partial != "" {
				got = append(got, partial)
			}
			break collect
		case <-l.dead:
			if len(got) == 0 {
				return "", l.closedErr()
			}
			break collect
		}
	}

	if len(got) == 0 {
		return "", ErrNoResponse
	}
	resp := strings.Join(got, " ")
	log.Debug().Str("command", command).Str("response", resp).Msg("received")
	return resp, nil
}

func isComplete(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range orei.CompletionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Close closes the connection and waits for the reader to stop.
func (l *Line) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = l.conn.Close()
		<-l.dead
	})
	return err
}
