// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package orei implements the ASCII control language of the Orei UHD-404MV
// multiviewer: command builders, response parsing and command validation.
package orei

// Framing
const (
	TERMINATOR  = "!"
	NO_RESPONSE = "No response"
)

// Query commands with no parameters
const (
	QUERY_POWER        = "r power!"
	QUERY_AUDIO_SOURCE = "r output audio!"
	QUERY_AUDIO_VOLUME = "r output audio vol!"
	QUERY_AUDIO_MUTE   = "r output audio mute!"
	QUERY_MULTIVIEW    = "r multiview!"
	QUERY_OUTPUT_RES   = "r output res!"
	QUERY_OUTPUT_HDCP  = "r output hdcp!"
	QUERY_PIP_POSITION = "r PIP position!"
	QUERY_PIP_SIZE     = "r PIP size!"
)

// Audio
const (
	AUDIO_FOLLOW_WINDOW = 0
	AUDIO_SOURCE_MAX    = 4
	VOLUME_MIN          = 0
	VOLUME_MAX          = 100
)

// HDCP is the output content-protection mode as coded by the device.
type HDCP int

const (
	HDCP_1_4 HDCP = 1
	HDCP_2_2 HDCP = 2
	HDCP_OFF HDCP = 3
)

// Valid reports whether h is a device HDCP code.
func (h HDCP) Valid() bool {
	return h >= HDCP_1_4 && h <= HDCP_OFF
}

// CompletionKeywords end a response read when a line contains one of them
// (case-insensitive).
var CompletionKeywords = []string{"on", "off", "hdmi", "mode", "screen", "finished", "ok"}
