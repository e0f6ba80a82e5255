// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package orei

import (
	"strings"
	"testing"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestIsNoData(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNoData(""))
	assert.True(t, IsNoData("  "))
	assert.True(t, IsNoData(NO_RESPONSE))
	assert.False(t, IsNoData("power on"))
}

func TestParsePower(t *testing.T) {
	t.Parallel()

	tests := []struct {
		resp   string
		wantOn bool
		wantOK bool
	}{
		{"power on", true, true},
		{"r power! power on", true, true},
		{"power off", false, true},
		{"garbage", false, true},
		{NO_RESPONSE, false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		on, ok := ParsePower(tt.resp)
		assert.Equal(t, tt.wantOn, on, tt.resp)
		assert.Equal(t, tt.wantOK, ok, tt.resp)
	}
}

func TestParseAudioSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		resp   string
		want   int
		wantOK bool
	}{
		{"output audio: follow window 1", 0, true},
		{"output audio: HDMI 2", 2, true},
		{"output audio: HDMI 4 ", 4, true},
		{"output audio: optical", 0, false},
		{NO_RESPONSE, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAudioSource(tt.resp)
		assert.Equal(t, tt.want, got, tt.resp)
		assert.Equal(t, tt.wantOK, ok, tt.resp)
	}
}

func TestParseVolume(t *testing.T) {
	t.Parallel()

	v, ok := ParseVolume("audio volume: 57")
	assert.True(t, ok)
	assert.Equal(t, 57, v)

	v, ok = ParseVolume("output audio volume: 100")
	assert.True(t, ok)
	assert.Equal(t, 100, v)

	v, ok = ParseVolume("audio volume: 250")
	assert.True(t, ok)
	assert.Equal(t, 250, v, "parser does not clamp")

	_, ok = ParseVolume("audio vol unknown")
	assert.False(t, ok)
}

func TestParseMute(t *testing.T) {
	t.Parallel()

	muted, ok := ParseMute("output audio mute: on")
	assert.True(t, ok)
	assert.True(t, muted)

	muted, ok = ParseMute("output audio mute: off")
	assert.True(t, ok)
	assert.False(t, muted)

	_, ok = ParseMute("")
	assert.False(t, ok)
}

func TestParseMultiview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		resp   string
		want   layout.Mode
		wantOK bool
	}{
		{"multiview: single screen", layout.ModeSingle, true},
		{"multiview: PIP", layout.ModePIP, true},
		{"multiview: PBP", layout.ModePBP, true},
		{"multiview: triple", layout.ModeTriple, true},
		{"multiview: quad", layout.ModeQuad, true},
		{"quad after PIP", layout.ModePIP, true},
		{"single screen PBP quad", layout.ModeSingle, true},
		{"multiview: ???", layout.ModeSingle, false},
		{NO_RESPONSE, layout.ModeSingle, false},
	}
	for _, tt := range tests {
		got, ok := ParseMultiview(tt.resp)
		assert.Equal(t, tt.want, got, tt.resp)
		assert.Equal(t, tt.wantOK, ok, tt.resp)
	}
}

func TestParsePIP(t *testing.T) {
	t.Parallel()

	pos, ok := ParsePIPPosition("PIP position: right bottom")
	assert.True(t, ok)
	assert.Equal(t, layout.PIPRightBottom, pos)

	pos, ok = ParsePIPPosition("PIP position: left top")
	assert.True(t, ok)
	assert.Equal(t, layout.PIPLeftTop, pos)

	_, ok = ParsePIPPosition("PIP position: center")
	assert.False(t, ok)

	for resp, want := range map[string]layout.PIPSize{
		"PIP size: small":  layout.PIPSmall,
		"PIP size: middle": layout.PIPMedium,
		"PIP size: medium": layout.PIPMedium,
		"PIP size: large":  layout.PIPLarge,
	} {
		got, ok := ParsePIPSize(resp)
		assert.True(t, ok, resp)
		assert.Equal(t, want, got, resp)
	}
}

func TestParseSubModeAndAspect(t *testing.T) {
	t.Parallel()

	sub, ok := ParseSubMode("PBP mode 2")
	assert.True(t, ok)
	assert.Equal(t, 2, sub)

	_, ok = ParseSubMode("PBP mode")
	assert.False(t, ok)

	a, ok := ParseAspect("quad aspect: full screen")
	assert.True(t, ok)
	assert.Equal(t, layout.AspectFullScreen, a)

	a, ok = ParseAspect("quad aspect: 16:9")
	assert.True(t, ok)
	assert.Equal(t, layout.AspectOriginal, a)

	_, ok = ParseAspect(NO_RESPONSE)
	assert.False(t, ok)
}

func TestParseResolution(t *testing.T) {
	t.Parallel()

	code, ok := ParseResolution("output resolution: 3840x2160p60")
	assert.True(t, ok)
	assert.Equal(t, 3, code)

	code, ok = ParseResolution("output res: 1920x1200p60RB")
	assert.True(t, ok)
	assert.Equal(t, 7, code)

	_, ok = ParseResolution("output res: 640x480p60")
	assert.False(t, ok)
}

func TestParseHDCP(t *testing.T) {
	t.Parallel()

	h, ok := ParseHDCP("output hdcp: HDCP 2.2")
	assert.True(t, ok)
	assert.Equal(t, HDCP_2_2, h)

	h, ok = ParseHDCP("output hdcp: HDCP OFF")
	assert.True(t, ok)
	assert.Equal(t, HDCP_OFF, h)

	h, ok = ParseHDCP("HDCP 1.4")
	assert.True(t, ok)
	assert.Equal(t, HDCP_1_4, h)

	_, ok = ParseHDCP("hdcp: auto")
	assert.False(t, ok)
}

func TestParseWindowInput(t *testing.T) {
	t.Parallel()

	in, ok := ParseWindowInput("window 1 in: HDMI 3", 1)
	assert.True(t, ok)
	assert.Equal(t, 3, in)

	in, ok = ParseWindowInput(NO_RESPONSE, 2)
	assert.False(t, ok)
	assert.Equal(t, 2, in)

	in, ok = ParseWindowInput("window 4 in: ???", 4)
	assert.False(t, ok)
	assert.Equal(t, 4, in)
}

func TestParsePowerProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		prefix := rapid.String().Draw(t, "prefix")
		suffix := rapid.String().Draw(t, "suffix")
		resp := prefix + "power on" + suffix

		on, ok := ParsePower(resp)
		if !ok || !on {
			t.Fatalf("ParsePower(%q) = %v, %v", resp, on, ok)
		}
	})

	rapid.Check(t, func(t *rapid.T) {
		resp := rapid.StringMatching(`[a-z ]{1,40}`).Draw(t, "resp")
		if strings.Contains(resp, "power on") || IsNoData(resp) {
			return
		}
		on, ok := ParsePower(resp)
		if !ok || on {
			t.Fatalf("ParsePower(%q) = %v, %v", resp, on, ok)
		}
	})
}

func TestParseMultiviewPriorityProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		picked := rapid.SliceOfNDistinct(rapid.IntRange(0, len(multiviewKeywords)-1), 1, len(multiviewKeywords), rapid.ID[int]).Draw(t, "keywords")
		parts := make([]string, len(picked))
		best := len(multiviewKeywords)
		for i, idx := range picked {
			parts[i] = multiviewKeywords[idx].text
			best = min(best, idx)
		}
		resp := "multiview: " + strings.Join(parts, " / ")

		got, ok := ParseMultiview(resp)
		if !ok || got != multiviewKeywords[best].value {
			t.Fatalf("ParseMultiview(%q) = %v, %v; want %v", resp, got, ok, multiviewKeywords[best].value)
		}
	})
}

func TestParsersNeverPanic(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		resp := rapid.String().Draw(t, "resp")
		ParsePower(resp)
		ParseAudioSource(resp)
		ParseVolume(resp)
		ParseMute(resp)
		ParseMultiview(resp)
		ParsePIPPosition(resp)
		ParsePIPSize(resp)
		ParseSubMode(resp)
		ParseAspect(resp)
		ParseResolution(resp)
		ParseHDCP(resp)
		ParseWindowInput(resp, 1)
	})
}
