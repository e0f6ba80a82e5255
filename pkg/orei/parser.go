// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package orei

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Thermoquad/prism/pkg/layout"
)

// Each ParseX function takes a raw device response and reports the
// extracted value plus whether the response carried one. None of them
// panic on malformed text.

var (
	audioSourcePattern = regexp.MustCompile(`follow window (\d)|HDMI (\d)`)
	volumePattern      = regexp.MustCompile(`volume: (\d+)`)
	subModePattern     = regexp.MustCompile(`mode (\d)`)
	hdmiPattern        = regexp.MustCompile(`HDMI (\d)`)
)

type keyword[T any] struct {
	text  string
	value T
}

var multiviewKeywords = []keyword[layout.Mode]{
	{"single screen", layout.ModeSingle},
	{"PIP", layout.ModePIP},
	{"PBP", layout.ModePBP},
	{"triple", layout.ModeTriple},
	{"quad", layout.ModeQuad},
}

var pipPositionKeywords = []keyword[layout.PIPPosition]{
	{"left top", layout.PIPLeftTop},
	{"left bottom", layout.PIPLeftBottom},
	{"right top", layout.PIPRightTop},
	{"right bottom", layout.PIPRightBottom},
}

var pipSizeKeywords = []keyword[layout.PIPSize]{
	{"small", layout.PIPSmall},
	{"middle", layout.PIPMedium},
	{"medium", layout.PIPMedium},
	{"large", layout.PIPLarge},
}

var hdcpKeywords = []keyword[HDCP]{
	{"HDCP 2.2", HDCP_2_2},
	{"HDCP 1.4", HDCP_1_4},
	{"HDCP OFF", HDCP_OFF},
}

func firstKeyword[T any](resp string, table []keyword[T]) (T, bool) {
	for _, k := range table {
		if strings.Contains(resp, k.text) {
			return k.value, true
		}
	}
	var zero T
	return zero, false
}

// IsNoData reports whether resp is empty or the transport's no-response
// marker.
func IsNoData(resp string) bool {
	resp = strings.TrimSpace(resp)
	return resp == "" || resp == NO_RESPONSE
}

// ParsePower reports whether the device is on.
func ParsePower(resp string) (on, ok bool) {
	if IsNoData(resp) {
		return false, false
	}
	return strings.Contains(resp, "power on"), true
}

// ParseAudioSource returns the audio source: 0 when audio follows a window,
// otherwise the HDMI input number.
func ParseAudioSource(resp string) (int, bool) {
	if IsNoData(resp) {
		return 0, false
	}
	m := audioSourcePattern.FindStringSubmatch(resp)
	if m == nil {
		return 0, false
	}
	if m[1] != "" {
		return AUDIO_FOLLOW_WINDOW, true
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseVolume returns the output volume. The value is not clamped.
func ParseVolume(resp string) (int, bool) {
	if IsNoData(resp) {
		return 0, false
	}
	m := volumePattern.FindStringSubmatch(resp)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseMute reports whether output audio is muted.
func ParseMute(resp string) (muted, ok bool) {
	if IsNoData(resp) {
		return false, false
	}
	return strings.Contains(resp, "mute: on"), true
}

// ParseMultiview returns the display mode. Keywords are checked in device
// order and the first hit wins. Unrecognised text yields single screen with
// ok=false.
func ParseMultiview(resp string) (layout.Mode, bool) {
	if IsNoData(resp) {
		return layout.ModeSingle, false
	}
	if m, ok := firstKeyword(resp, multiviewKeywords); ok {
		return m, true
	}
	return layout.ModeSingle, false
}

func ParsePIPPosition(resp string) (layout.PIPPosition, bool) {
	if IsNoData(resp) {
		return 0, false
	}
	return firstKeyword(resp, pipPositionKeywords)
}

func ParsePIPSize(resp string) (layout.PIPSize, bool) {
	if IsNoData(resp) {
		return 0, false
	}
	return firstKeyword(resp, pipSizeKeywords)
}

// ParseSubMode returns the digit following "mode" in a PBP, triple or quad
// mode response.
func ParseSubMode(resp string) (int, bool) {
	if IsNoData(resp) {
		return 0, false
	}
	m := subModePattern.FindStringSubmatch(resp)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseAspect returns full screen when the response says so, and original
// for any other text.
func ParseAspect(resp string) (layout.Aspect, bool) {
	if IsNoData(resp) {
		return 0, false
	}
	if strings.Contains(resp, "full screen") {
		return layout.AspectFullScreen, true
	}
	return layout.AspectOriginal, true
}

// ParseResolution returns the output resolution code of the first known
// resolution token contained in resp.
func ParseResolution(resp string) (int, bool) {
	if IsNoData(resp) {
		return 0, false
	}
	for _, r := range resolutions {
		if strings.Contains(resp, r.Token) {
			return r.Code, true
		}
	}
	return 0, false
}

func ParseHDCP(resp string) (HDCP, bool) {
	if IsNoData(resp) {
		return 0, false
	}
	return firstKeyword(resp, hdcpKeywords)
}

// ParseWindowInput returns the input shown in window. When the response
// names no input, the window's own number is returned with ok=false.
func ParseWindowInput(resp string, window int) (int, bool) {
	if IsNoData(resp) {
		return window, false
	}
	m := hdmiPattern.FindStringSubmatch(resp)
	if m == nil {
		return window, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return window, false
	}
	return n, true
}
