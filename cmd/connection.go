// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/Thermoquad/prism/pkg/backend"
	"github.com/Thermoquad/prism/pkg/transport"
	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"
)

// Connection provides a common interface for reading/writing bytes from serial or WebSocket
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = errors.New("websocket connection closed")

// WebSocketConnection wraps a WebSocket bridge to the device's serial line.
// Each message carries raw device text.
type WebSocketConnection struct {
	conn      *websocket.Conn
	buf       []byte
	bufOffset int
	closed    bool
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	if w.closed {
		return 0, ErrConnectionClosed
	}

	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.closed = true
			return 0, fmt.Errorf("%w: %v", ErrConnectionClosed, err)
		}

		// Control frames are handled by gorilla; anything else is device text
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		if len(data) == 0 {
			continue
		}

		w.buf = data
		w.bufOffset = 0
		n := copy(p, w.buf)
		w.bufOffset = n
		return n, nil
	}
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	err := w.conn.WriteMessage(websocket.TextMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	return w.conn.Close()
}

// OpenSerialConnection opens the device's RS-232 port at 8N1
func OpenSerialConnection(portName string, baudRate int) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(wsURL, username, password string, skipSSLVerify bool) (Connection, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify, //nolint:gosec // user opt-in
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return &WebSocketConnection{conn: conn}, nil
}

// passwordCache keeps the password for reconnects within one run.
var passwordCache string

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	if passwordCache != "" {
		return passwordCache, nil
	}
	if pw := os.Getenv("PRISM_PASSWORD"); pw != "" {
		passwordCache = pw
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		passwordCache = strings.TrimSpace(password)
		return passwordCache, nil
	}

	fmt.Fprintln(os.Stderr)
	passwordCache = string(passwordBytes)
	return passwordCache, nil
}

// deviceLink is an open path to the multiviewer: either the backend or a
// direct line over serial or WebSocket.
type deviceLink struct {
	transport transport.Transport
	backend   *backend.Client
	line      *transport.Line
	info      string
}

// Done is closed when a direct line drops. It is nil for the backend,
// which is stateless.
func (l *deviceLink) Done() <-chan struct{} {
	if l.line == nil {
		return nil
	}
	return l.line.Done()
}

func (l *deviceLink) Close() error {
	if l.line == nil {
		return nil
	}
	return l.line.Close()
}

func (l *deviceLink) direct() bool {
	return l.backend == nil
}

func backendURL() string {
	if apiURL != "" {
		return apiURL
	}
	if wsURL != "" || portName != "" {
		return ""
	}
	return cfg.Backend().URL
}

// openBackend returns a backend client from flags and config, or nil when
// no backend is configured.
func openBackend() (*backend.Client, error) {
	u := backendURL()
	if u == "" {
		return nil, nil //nolint:nilnil // no backend configured
	}

	b := cfg.Backend()
	opts := []backend.Option{}
	username := wsUsername
	if username == "" {
		username = b.Username
	}
	if username != "" {
		password, err := GetPassword()
		if err != nil {
			return nil, err
		}
		opts = append(opts, backend.WithBasicAuth(username, password))
	}
	if b.Insecure || wsNoSSLVerify {
		opts = append(opts, backend.WithInsecureTLS())
	}
	return backend.NewClient(u, opts...)
}

// requireBackend is for commands only the backend can serve.
func requireBackend() (*backend.Client, error) {
	c, err := openBackend()
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.New("this command needs the backend: pass --api or set [backend] url in the config")
	}
	return c, nil
}

// OpenLink picks the connection mode from flags, then config: backend URL,
// WebSocket bridge, serial port.
func OpenLink() (*deviceLink, error) {
	c, err := openBackend()
	if err != nil {
		return nil, err
	}
	if c != nil {
		return &deviceLink{transport: c, backend: c, info: fmt.Sprintf("Backend: %s", c.URL())}, nil
	}

	s := cfg.Serial()
	opts := transport.LineOptions{
		CommandDelay: s.CommandDelay.Std(),
		ReadTimeout:  s.ReadTimeout.Std(),
	}

	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			password, err = GetPassword()
			if err != nil {
				return nil, err
			}
		}
		conn, err := OpenWebSocketConnection(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, err
		}
		line := transport.NewLine(conn, opts)
		return &deviceLink{transport: line, line: line, info: fmt.Sprintf("WebSocket: %s", wsURL)}, nil
	}

	port := portName
	if port == "" {
		port = s.Port
	}
	baud := baudRate
	if baud == 0 {
		baud = s.Baud
	}
	if port == "" {
		return nil, errors.New("either --api, --port or --url must be specified")
	}

	conn, err := OpenSerialConnection(port, baud)
	if err != nil {
		return nil, err
	}
	line := transport.NewLine(conn, opts)
	return &deviceLink{transport: line, line: line, info: fmt.Sprintf("Serial: %s @ %d baud", port, baud)}, nil
}
