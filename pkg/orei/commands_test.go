// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package orei

import (
	"testing"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/stretchr/testify/assert"
)

func TestCommandStrings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		got  string
		want string
	}{
		{QueryWindowInput(3), "r window 3 in!"},
		{QuerySubMode(layout.ModePBP), "r PBP mode!"},
		{QuerySubMode(layout.ModeTriple), "r triple mode!"},
		{QueryAspect(layout.ModeQuad), "r quad aspect!"},
		{SetPower(true), "power 1!"},
		{SetPower(false), "power 0!"},
		{SetAudioSource(0), "s output audio 0!"},
		{SetVolume(57), "s output audio vol 57!"},
		{SetMute(true), "s output audio mute 1!"},
		{SetMultiview(layout.ModeQuad), "s multiview 5!"},
		{SetResolution(8), "s output res 8!"},
		{SetHDCP(HDCP_OFF), "s output hdcp 3!"},
		{SetWindowInput(2, 4), "s window 2 in 4!"},
		{SetPIPPosition(layout.PIPLeftBottom), "s PIP position 2!"},
		{SetPIPSize(layout.PIPLarge), "s PIP size 3!"},
		{SetSubMode(layout.ModeQuad, 3), "s quad mode 3!"},
		{SetAspect(layout.ModePBP, layout.AspectOriginal), "s PBP aspect 2!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}
}

func TestSplitCommandsEmptyForOtherModes(t *testing.T) {
	t.Parallel()

	for _, m := range []layout.Mode{layout.ModeSingle, layout.ModePIP} {
		assert.Empty(t, QuerySubMode(m))
		assert.Empty(t, QueryAspect(m))
		assert.Empty(t, SetSubMode(m, 1))
		assert.Empty(t, SetAspect(m, layout.AspectFullScreen))
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "r power!", Normalize("r power"))
	assert.Equal(t, "r power!", Normalize("  r power! "))
	assert.Empty(t, Normalize("   "))
}

func TestGeneratedSetCommandsValidate(t *testing.T) {
	t.Parallel()

	cmds := []string{
		SetPower(true), SetVolume(100), SetVolume(0), SetMute(false),
		SetAudioSource(4), SetMultiview(layout.ModeSingle), SetResolution(14),
		SetHDCP(HDCP_1_4), SetWindowInput(4, 1), SetPIPPosition(layout.PIPRightTop),
		SetPIPSize(layout.PIPSmall), SetSubMode(layout.ModeTriple, 2),
		SetAspect(layout.ModeQuad, layout.AspectFullScreen),
	}
	for _, c := range cmds {
		assert.Empty(t, ValidateCommand(c), c)
	}
}
