// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build deadlock

// Package syncutil wraps the mutex types so that a debug build can swap in a
// deadlock detector. Build with -tags=deadlock to enable it.
package syncutil

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether the deadlock detector is compiled in.
const DeadlockEnabled = true

func init() {
	// The device read timeout plus settle delays can hold the transport lock
	// for several seconds.
	deadlock.Opts.DeadlockTimeout = 30 * time.Second
}

// Mutex is a mutual exclusion lock.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex is a reader/writer mutual exclusion lock.
type RWMutex struct {
	deadlock.RWMutex
}
