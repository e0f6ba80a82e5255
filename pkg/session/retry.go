// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"context"
	"time"

	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/Thermoquad/prism/pkg/transport"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// RetryPolicy bounds how often a silent device is asked again. Only
// ErrNoResponse is retried; transport and backend errors return at once.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// NoRetry sends once.
var NoRetry = RetryPolicy{MaxAttempts: 1}

// Send issues command through t under the policy.
func (p RetryPolicy) Send(ctx context.Context, clock clockwork.Clock, t transport.Transport, command string) (string, error) {
	attempts := max(p.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		resp, err := t.Send(ctx, command)
		if err == nil && orei.IsNoData(resp) {
			err = transport.ErrNoResponse
		}
		if err == nil {
			return resp, nil
		}
		if !transport.IsNoResponse(err) || attempt >= attempts {
			return "", err
		}

		log.Debug().
			Str("command", command).
			Int("attempt", attempt).
			Dur("backoff", p.Backoff).
			Msg("no response, retrying")

		if p.Backoff <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-clock.After(p.Backoff):
		}
	}
}
