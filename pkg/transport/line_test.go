// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"bufio"
	"context"
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipeConn struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeConn) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeConn) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p *pipeConn) Close() error {
	_ = p.w.Close()
	return p.r.Close()
}

// fakeSerialDevice answers each '!'-terminated command with reply(cmd).
// An empty reply sends nothing.
func fakeSerialDevice(t *testing.T, reply func(cmd string) string) (*pipeConn, <-chan string) {
	t.Helper()

	hostR, devW := io.Pipe()
	devR, hostW := io.Pipe()
	host := &pipeConn{r: hostR, w: hostW}
	dev := &pipeConn{r: devR, w: devW}

	received := make(chan string, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer dev.Close()
		br := bufio.NewReader(dev.r)
		for {
			cmd, err := br.ReadString('!')
			if err != nil {
				return
			}
			received <- cmd
			if out := reply(cmd); out != "" {
				if _, err := dev.w.Write([]byte(out)); err != nil {
					return
				}
			}
		}
	}()
	t.Cleanup(func() { <-done })
	return host, received
}

func startSend(ctx context.Context, l *Line, cmd string) <-chan sendResult {
	ch := make(chan sendResult, 1)
	go func() {
		resp, err := l.Send(ctx, cmd)
		ch <- sendResult{resp, err}
	}()
	return ch
}

type sendResult struct {
	resp string
	err  error
}

func newTestLine(t *testing.T, conn io.ReadWriteCloser) (*Line, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	l := NewLine(conn, LineOptions{
		CommandDelay: DefaultCommandDelay,
		ReadTimeout:  DefaultReadTimeout,
		Clock:        clock,
	})
	t.Cleanup(func() { _ = l.Close() })
	return l, clock
}

func waitResult(t *testing.T, ch <-chan sendResult) sendResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("send did not return")
		return sendResult{}
	}
}

func TestLineSendAppendsTerminatorAndStopsOnKeyword(t *testing.T) {
	conn, received := fakeSerialDevice(t, func(string) string { return "power on\r\n" })
	l, clock := newTestLine(t, conn)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res := startSend(ctx, l, "r power")
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(DefaultCommandDelay)

	r := waitResult(t, res)
	require.NoError(t, r.err)
	assert.Equal(t, "power on", r.resp)
	assert.Equal(t, "r power!", <-received)
}

func TestLineSendJoinsLines(t *testing.T) {
	conn, _ := fakeSerialDevice(t, func(string) string { return "size: large\r\nPIP mode enabled\r\n" })
	l, clock := newTestLine(t, conn)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res := startSend(ctx, l, "r PIP size!")
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(DefaultCommandDelay)

	r := waitResult(t, res)
	require.NoError(t, r.err)
	assert.Equal(t, "size: large PIP mode enabled", r.resp)
}

func TestLineSendNoResponse(t *testing.T) {
	conn, _ := fakeSerialDevice(t, func(string) string { return "" })
	l, clock := newTestLine(t, conn)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res := startSend(ctx, l, "r power!")
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(DefaultCommandDelay)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(DefaultReadTimeout)

	r := waitResult(t, res)
	require.ErrorIs(t, r.err, ErrNoResponse)
}

func TestLineSendFlushesUnterminatedReply(t *testing.T) {
	conn, _ := fakeSerialDevice(t, func(string) string { return "vol: 12" })
	l, clock := newTestLine(t, conn)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	res := startSend(ctx, l, "r output audio vol!")
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(DefaultCommandDelay)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	require.Eventually(t, func() bool {
		l.decMu.Lock()
		defer l.decMu.Unlock()
		return l.decoder.Pending() == "vol: 12"
	}, time.Second, 5*time.Millisecond)
	clock.Advance(DefaultReadTimeout)

	r := waitResult(t, res)
	require.NoError(t, r.err)
	assert.Equal(t, "vol: 12", r.resp)
}

func TestLineSendCancelledDuringDelay(t *testing.T) {
	conn, _ := fakeSerialDevice(t, func(string) string { return "" })
	l, clock := newTestLine(t, conn)
	ctx, cancel := context.WithCancel(context.Background())

	res := startSend(ctx, l, "r power!")
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	cancel()

	r := waitResult(t, res)
	require.ErrorIs(t, r.err, context.Canceled)
}

func TestLineSendAfterDeviceHangsUp(t *testing.T) {
	conn, _ := fakeSerialDevice(t, func(string) string { return "" })
	l, _ := newTestLine(t, conn)

	// Closing the host read half stops the reader goroutine.
	_ = conn.r.CloseWithError(io.EOF)
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("reader did not stop")
	}

	_, err := l.Send(context.Background(), "r power!")
	require.ErrorIs(t, err, ErrClosed)
}

func TestLineSendEmptyCommand(t *testing.T) {
	conn, _ := fakeSerialDevice(t, func(string) string { return "" })
	l, _ := newTestLine(t, conn)

	_, err := l.Send(context.Background(), "   ")
	require.Error(t, err)
}
