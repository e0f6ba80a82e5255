// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/Thermoquad/prism/pkg/orei"
)

// Argument parsers for the set and remote commands. Each accepts the
// device's numeric code as well as a name.

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func parseIntIn(s, what string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s %d out of range %d-%d", what, n, lo, hi)
	}
	return n, nil
}

func parseAudioSource(s string) (int, error) {
	if strings.EqualFold(s, "follow") {
		return orei.AUDIO_FOLLOW_WINDOW, nil
	}
	return parseIntIn(strings.TrimPrefix(strings.ToLower(s), "hdmi"), "audio source", orei.AUDIO_FOLLOW_WINDOW, orei.AUDIO_SOURCE_MAX)
}

func parseResolution(s string) (int, error) {
	if code, ok := orei.ResolutionCode(s); ok {
		return code, nil
	}
	return parseIntIn(s, "resolution code", orei.RESOLUTION_MIN, orei.RESOLUTION_MAX)
}

func parseHDCP(s string) (orei.HDCP, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.ToLower(s), "hdcp")) {
	case "1.4", "14":
		return orei.HDCP_1_4, nil
	case "2.2", "22":
		return orei.HDCP_2_2, nil
	case "off":
		return orei.HDCP_OFF, nil
	}
	n, err := parseIntIn(s, "HDCP code", int(orei.HDCP_1_4), int(orei.HDCP_OFF))
	return orei.HDCP(n), err
}

func parsePIPPosition(s string) (layout.PIPPosition, error) {
	switch strings.ToLower(s) {
	case "lt", "left-top":
		return layout.PIPLeftTop, nil
	case "lb", "left-bottom":
		return layout.PIPLeftBottom, nil
	case "rt", "right-top":
		return layout.PIPRightTop, nil
	case "rb", "right-bottom":
		return layout.PIPRightBottom, nil
	}
	n, err := parseIntIn(s, "PIP position", int(layout.PIPLeftTop), int(layout.PIPRightBottom))
	return layout.PIPPosition(n), err
}

func parsePIPSize(s string) (layout.PIPSize, error) {
	switch strings.ToLower(s) {
	case "small":
		return layout.PIPSmall, nil
	case "medium":
		return layout.PIPMedium, nil
	case "large":
		return layout.PIPLarge, nil
	}
	n, err := parseIntIn(s, "PIP size", int(layout.PIPSmall), int(layout.PIPLarge))
	return layout.PIPSize(n), err
}

func parseAspect(s string) (layout.Aspect, error) {
	switch strings.ToLower(s) {
	case "full", "full-screen":
		return layout.AspectFullScreen, nil
	case "original":
		return layout.AspectOriginal, nil
	}
	n, err := parseIntIn(s, "aspect", int(layout.AspectFullScreen), int(layout.AspectOriginal))
	return layout.Aspect(n), err
}
