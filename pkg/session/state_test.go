// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"testing"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/stretchr/testify/assert"
)

func TestSessionSnapshotIsIndependent(t *testing.T) {
	t.Parallel()

	s := NewSession()
	snap := s.Snapshot()
	snap.Inputs[1] = 4

	assert.Equal(t, 1, s.Snapshot().Inputs[1])
}

func TestSessionChangeReporting(t *testing.T) {
	t.Parallel()

	s := NewSession()
	assert.True(t, s.SetConnected(true))
	assert.False(t, s.SetConnected(true))
	assert.True(t, s.SetPower(PowerOn))
	assert.False(t, s.SetPower(PowerOn))

	assert.False(t, s.SetMode(layout.ModeSingle))
	assert.True(t, s.SetMode(layout.ModeQuad))
	assert.False(t, s.SetMode(layout.Mode(9)), "invalid mode ignored")
	assert.Equal(t, layout.ModeQuad, s.Snapshot().Mode)

	assert.True(t, s.SetConnected(false))
	assert.Equal(t, PowerUnknown, s.Snapshot().Power)
}

func TestSessionMergeInputsKeepsOtherWindows(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.MergeInputs(layout.Inputs{1: 4, 2: 3})

	assert.Equal(t, layout.Inputs{1: 4, 2: 3, 3: 3, 4: 4}, s.Snapshot().Inputs)
}
