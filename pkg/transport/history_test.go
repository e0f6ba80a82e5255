// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryNewestFirstAndBounded(t *testing.T) {
	t.Parallel()

	h := NewHistory(0)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := range MAX_HISTORY + 5 {
		h.Add(Entry{Timestamp: base.Add(time.Duration(i) * time.Second), Command: fmt.Sprintf("cmd %d", i)})
	}

	require.Equal(t, MAX_HISTORY, h.Len())
	all := h.Entries(0)
	require.Len(t, all, MAX_HISTORY)
	assert.Equal(t, fmt.Sprintf("cmd %d", MAX_HISTORY+4), all[0].Command)
	assert.Equal(t, "cmd 5", all[len(all)-1].Command, "oldest entries evicted")

	recent := h.Entries(3)
	require.Len(t, recent, 3)
	assert.Equal(t, all[:3], recent)
}

func TestHistoryClear(t *testing.T) {
	t.Parallel()

	h := NewHistory(10)
	h.Add(Entry{Command: "r power!"})
	h.Clear()
	assert.Zero(t, h.Len())
	assert.Empty(t, h.Entries(5))

	h.Add(Entry{Command: "r multiview!"})
	assert.Equal(t, 1, h.Len())
}
