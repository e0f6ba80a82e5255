// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/prism/pkg/syncutil"
	"github.com/jonboulle/clockwork"
)

// Counters is a point-in-time copy of the exchange statistics
type Counters struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalCommands   uint64
	Responses       uint64
	NoResponses     uint64
	TransportErrors uint64
	Cancelled       uint64

	// Latency of answered commands
	MinLatency   time.Duration
	MaxLatency   time.Duration
	TotalLatency time.Duration

	// Rates (calculated)
	CommandRate float64 // commands/sec
	FailureRate float64 // failures/sec
}

// Statistics tracks command outcomes and response latency
type Statistics struct {
	mu    syncutil.Mutex
	clock clockwork.Clock
	c     Counters
}

// NewStatistics creates a new statistics tracker. A nil clock means the
// wall clock.
func NewStatistics(clock clockwork.Clock) *Statistics {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	now := clock.Now()
	return &Statistics{
		clock: clock,
		c: Counters{
			StartTime:      now,
			LastUpdateTime: now,
		},
	}
}

// Record updates statistics for one send
func (s *Statistics) Record(err error, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.c.TotalCommands++
	s.c.LastUpdateTime = s.clock.Now()

	switch {
	case err == nil:
		s.c.Responses++
		s.c.TotalLatency += latency
		if s.c.MinLatency == 0 || latency < s.c.MinLatency {
			s.c.MinLatency = latency
		}
		if latency > s.c.MaxLatency {
			s.c.MaxLatency = latency
		}
	case IsNoResponse(err):
		s.c.NoResponses++
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.c.Cancelled++
	default:
		s.c.TransportErrors++
	}
}

// Snapshot returns the counters with rates calculated
func (s *Statistics) Snapshot() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.c
	elapsed := s.clock.Since(c.StartTime).Seconds()
	if elapsed > 0 {
		c.CommandRate = float64(c.TotalCommands) / elapsed
		c.FailureRate = float64(c.NoResponses+c.TransportErrors) / elapsed
	}
	return c
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.c = Counters{StartTime: now, LastUpdateTime: now}
}

// AvgLatency returns the mean latency of answered commands
func (c Counters) AvgLatency() time.Duration {
	if c.Responses == 0 {
		return 0
	}
	return c.TotalLatency / time.Duration(c.Responses)
}

// String returns a formatted statistics summary
func (c Counters) String() string {
	var answeredPercent, silentPercent, errorPercent float64
	if c.TotalCommands > 0 {
		answeredPercent = float64(c.Responses) * 100.0 / float64(c.TotalCommands)
		silentPercent = float64(c.NoResponses) * 100.0 / float64(c.TotalCommands)
		errorPercent = float64(c.TransportErrors) * 100.0 / float64(c.TotalCommands)
	}

	elapsed := c.LastUpdateTime.Sub(c.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Commands:  %8d\n", c.TotalCommands)
	result += fmt.Sprintf("Answered:        %8d (%.1f%%)\n", c.Responses, answeredPercent)

	if c.NoResponses > 0 {
		result += fmt.Sprintf("No Response:     %8d (%.1f%%)\n", c.NoResponses, silentPercent)
	}
	if c.TransportErrors > 0 {
		result += fmt.Sprintf("Transport Errors:%8d (%.1f%%)\n", c.TransportErrors, errorPercent)
	}
	if c.Cancelled > 0 {
		result += fmt.Sprintf("Cancelled:       %8d\n", c.Cancelled)
	}
	if c.Responses > 0 {
		result += fmt.Sprintf("Latency:         min %v / avg %v / max %v\n",
			c.MinLatency.Round(time.Millisecond), c.AvgLatency().Round(time.Millisecond), c.MaxLatency.Round(time.Millisecond))
	}

	result += fmt.Sprintf("Command Rate:    %8.1f cmds/sec\n", c.CommandRate)
	result += fmt.Sprintf("Failure Rate:    %8.1f failures/sec\n", c.FailureRate)
	result += "================================\n"

	return result
}
