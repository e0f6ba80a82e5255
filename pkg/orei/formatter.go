// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package orei

import (
	"fmt"
	"strings"
	"time"
)

// FormatExchange renders one command and its response for logs and the
// debug console.
func FormatExchange(ts time.Time, cmd, resp string) string {
	if IsNoData(resp) {
		resp = NO_RESPONSE
	}
	stamp := ts.Format("15:04:05")
	return fmt.Sprintf("[%s] > %s\n%s   < %s", stamp, cmd, strings.Repeat(" ", len(stamp)), resp)
}

// FormatAudioSource returns the panel label for an audio source.
func FormatAudioSource(source int) string {
	if source == AUDIO_FOLLOW_WINDOW {
		return "Follow Window"
	}
	return fmt.Sprintf("HDMI %d", source)
}

func (h HDCP) String() string {
	switch h {
	case HDCP_1_4:
		return "HDCP 1.4"
	case HDCP_2_2:
		return "HDCP 2.2"
	case HDCP_OFF:
		return "HDCP OFF"
	default:
		return fmt.Sprintf("HDCP(%d)", int(h))
	}
}

// FormatVolume renders a volume with its mute flag.
func FormatVolume(volume int, muted bool) string {
	if muted {
		return fmt.Sprintf("%d (muted)", volume)
	}
	return fmt.Sprintf("%d", volume)
}
