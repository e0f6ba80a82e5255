// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"strings"
)

// Line size limit
const MAX_LINE_SIZE = 256

// Decoder states
const (
	STATE_IDLE = iota
	STATE_LINE
)

// LineDecoder splits the device's byte stream into text lines. CR and LF
// both end a line, empty lines are skipped and bytes outside printable
// ASCII are dropped.
type LineDecoder struct {
	state  int
	buffer []byte
}

// NewLineDecoder creates a new line decoder
func NewLineDecoder() *LineDecoder {
	return &LineDecoder{
		state:  STATE_IDLE,
		buffer: make([]byte, 0, MAX_LINE_SIZE),
	}
}

// Reset discards any partial line
func (d *LineDecoder) Reset() {
	d.state = STATE_IDLE
	d.buffer = d.buffer[:0]
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns a completed line and true when b terminates one. Returns an error
// when a line overflows MAX_LINE_SIZE; the partial line is discarded.
func (d *LineDecoder) DecodeByte(b byte) (string, bool, error) {
	if b == '\r' || b == '\n' {
		if d.state != STATE_LINE {
			return "", false, nil
		}
		line := strings.TrimSpace(string(d.buffer))
		d.Reset()
		if line == "" {
			return "", false, nil
		}
		return line, true, nil
	}

	if b == '\t' {
		b = ' '
	}
	if b < 0x20 || b > 0x7E {
		return "", false, nil
	}

	switch d.state {
	case STATE_IDLE:
		if b == ' ' {
			return "", false, nil
		}
		d.state = STATE_LINE
		d.buffer = append(d.buffer, b)
		return "", false, nil

	case STATE_LINE:
		if len(d.buffer) >= MAX_LINE_SIZE {
			d.Reset()
			return "", false, fmt.Errorf("line overflow: exceeds %d bytes", MAX_LINE_SIZE)
		}
		d.buffer = append(d.buffer, b)
		return "", false, nil

	default:
		d.Reset()
		return "", false, fmt.Errorf("invalid state: %d", d.state)
	}
}

// Pending returns the partial line collected so far.
func (d *LineDecoder) Pending() string {
	return string(d.buffer)
}
