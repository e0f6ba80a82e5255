// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package backend

import (
	"context"
	"net/http"
	"time"
)

// PowerAction is the backend's answer to a shutdown or restart request.
type PowerAction struct {
	Message   string `json:"message"`
	Countdown int    `json:"countdown"`
}

// Delay is how long until the host acts.
func (a PowerAction) Delay() time.Duration {
	return time.Duration(a.Countdown) * time.Second
}

type confirmation struct {
	Confirmed bool `json:"confirmed"`
}

func (c *Client) powerAction(ctx context.Context, path string) (PowerAction, error) {
	var out PowerAction
	err := c.do(ctx, http.MethodPost, path, confirmation{Confirmed: true}, &out)
	return out, err
}

func (c *Client) cancel(ctx context.Context, path string) (string, error) {
	var out envelope
	err := c.do(ctx, http.MethodPost, path, nil, &out)
	return out.Message, err
}

// Shutdown schedules a host shutdown. Callers confirm with the user first;
// the request itself always carries confirmation.
func (c *Client) Shutdown(ctx context.Context) (PowerAction, error) {
	return c.powerAction(ctx, "/api/system/shutdown")
}

func (c *Client) Restart(ctx context.Context) (PowerAction, error) {
	return c.powerAction(ctx, "/api/system/restart")
}

// CancelShutdown aborts a pending shutdown. The backend reports an
// APIError when nothing is pending.
func (c *Client) CancelShutdown(ctx context.Context) (string, error) {
	return c.cancel(ctx, "/api/system/shutdown/cancel")
}

func (c *Client) CancelRestart(ctx context.Context) (string, error) {
	return c.cancel(ctx, "/api/system/restart/cancel")
}
