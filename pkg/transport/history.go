// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"time"

	"github.com/Thermoquad/prism/pkg/syncutil"
)

// MAX_HISTORY is how many exchanges the panel remembers.
const MAX_HISTORY = 50

// Entry is one command and the reply it got.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Response  string    `json:"response"`
}

// History is a bounded, append-only log of exchanges. The oldest entry is
// evicted once the limit is reached.
type History struct {
	mu      syncutil.RWMutex
	entries []Entry
	limit   int
}

// NewHistory creates a history holding at most limit entries. A
// non-positive limit means MAX_HISTORY.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = MAX_HISTORY
	}
	return &History{
		entries: make([]Entry, 0, limit),
		limit:   limit,
	}
}

// Add appends an entry.
func (h *History) Add(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == h.limit {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, e)
}

// Entries returns up to n entries, newest first. n <= 0 returns all.
func (h *History) Entries(n int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(h.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Clear drops every entry.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
}
