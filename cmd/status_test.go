// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"testing"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/Thermoquad/prism/pkg/orei"
	"github.com/Thermoquad/prism/pkg/session"
	"github.com/stretchr/testify/assert"
)

func TestFormatStateOff(t *testing.T) {
	st := session.NewSession().Snapshot()
	st.Power = session.PowerOff

	assert.Equal(t, "Power:      off\n", formatState(st))
}

func TestFormatStateOn(t *testing.T) {
	ss := session.NewSession()
	ss.SetPower(session.PowerOn)
	ss.SetMode(layout.ModePBP)
	ss.MergeInputs(layout.Inputs{1: 3, 2: 1})
	ss.UpdateAudio(func(a *session.Audio) {
		a.Source = 0
		a.Volume = 40
		a.Muted = true
		a.Known = true
	})
	ss.UpdateOutput(func(o *session.Output) {
		o.Resolution = 8
		o.HDCP = orei.HDCP_2_2
	})

	out := formatState(ss.Snapshot())
	assert.Contains(t, out, "Mode:       3 (PBP)")
	assert.Contains(t, out, "Sub-mode:   1, full screen")
	assert.Contains(t, out, "Window 1:   HDMI 3")
	assert.Contains(t, out, "Window 2:   HDMI 1")
	assert.NotContains(t, out, "Window 3")
	assert.Contains(t, out, "Audio:      Follow Window, volume 40 (muted)")
	assert.Contains(t, out, "Resolution: 1920x1080p60")
	assert.Contains(t, out, "HDCP:       HDCP 2.2")
}
