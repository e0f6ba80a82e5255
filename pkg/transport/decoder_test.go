// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, d *LineDecoder, data string) []string {
	t.Helper()
	var lines []string
	for i := 0; i < len(data); i++ {
		line, ok, err := d.DecodeByte(data[i])
		require.NoError(t, err)
		if ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestLineDecoder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    []string
		pending string
	}{
		{"crlf", "power on\r\n", []string{"power on"}, ""},
		{"lf only", "a\nb\n", []string{"a", "b"}, ""},
		{"blank lines skipped", "\r\n\r\n  \r\nok\r\n", []string{"ok"}, ""},
		{"control bytes dropped", "po\x00wer\x07 on\r", []string{"power on"}, ""},
		{"tab becomes space", "audio\tvolume: 5\n", []string{"audio volume: 5"}, ""},
		{"unterminated", "multiview: quad", nil, "multiview: quad"},
		{"leading space trimmed", "   mute: off\n", []string{"mute: off"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := NewLineDecoder()
			assert.Equal(t, tt.want, decodeAll(t, d, tt.input))
			assert.Equal(t, tt.pending, d.Pending())
		})
	}
}

func TestLineDecoderOverflow(t *testing.T) {
	t.Parallel()

	d := NewLineDecoder()
	long := strings.Repeat("x", MAX_LINE_SIZE)
	for i := 0; i < len(long); i++ {
		_, _, err := d.DecodeByte(long[i])
		require.NoError(t, err)
	}

	_, ok, err := d.DecodeByte('y')
	require.Error(t, err)
	assert.False(t, ok)
	assert.Empty(t, d.Pending())

	// Decoder recovers on the next line.
	assert.Equal(t, []string{"ok"}, decodeAll(t, d, "\nok\n"))
}
