// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transport carries text commands to the multiviewer and brings
// back its replies, either over a raw byte stream or through the control
// backend. It also keeps the bounded command history.
package transport

import (
	"context"
	"errors"
)

// Transport sends one command and returns the device's reply.
//
// A reply that carries no data is reported as ErrNoResponse. Any other
// error is a transport failure.
type Transport interface {
	Send(ctx context.Context, command string) (string, error)
}

// Func adapts a plain function to Transport.
type Func func(ctx context.Context, command string) (string, error)

func (f Func) Send(ctx context.Context, command string) (string, error) {
	return f(ctx, command)
}

var (
	// ErrNoResponse means the device did not answer within the read window.
	ErrNoResponse = errors.New("no response from device")

	// ErrClosed is returned once the underlying connection is gone.
	ErrClosed = errors.New("transport closed")
)

// IsNoResponse reports whether err means the device stayed silent.
func IsNoResponse(err error) bool {
	return errors.Is(err, ErrNoResponse)
}
