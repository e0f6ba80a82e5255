// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"context"
	"errors"

	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Recorder wraps a Transport and logs every exchange into a History and
// Statistics.
type Recorder struct {
	next    Transport
	history *History
	stats   *Statistics
	clock   clockwork.Clock
}

// NewRecorder wraps next. history and stats may be nil.
func NewRecorder(next Transport, history *History, stats *Statistics, clock clockwork.Clock) *Recorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Recorder{next: next, history: history, stats: stats, clock: clock}
}

func (r *Recorder) Send(ctx context.Context, command string) (string, error) {
	start := r.clock.Now()
	resp, err := r.next.Send(ctx, command)
	latency := r.clock.Since(start)

	if err == nil && orei.IsNoData(resp) {
		resp, err = "", ErrNoResponse
	}

	if r.stats != nil {
		r.stats.Record(err, latency)
	}

	recorded := resp
	switch {
	case IsNoResponse(err):
		recorded = orei.NO_RESPONSE
	case err != nil:
		recorded = "Error: " + err.Error()
	}

	if r.history != nil && !errors.Is(err, context.Canceled) {
		r.history.Add(Entry{
			Timestamp: start,
			Command:   orei.Normalize(command),
			Response:  recorded,
		})
	}

	if err != nil && !IsNoResponse(err) {
		log.Warn().Err(err).Str("command", command).Msg("command failed")
	}
	return resp, err
}

// History returns the recorder's history.
func (r *Recorder) History() *History {
	return r.history
}

// Statistics returns the recorder's statistics.
func (r *Recorder) Statistics() *Statistics {
	return r.stats
}
