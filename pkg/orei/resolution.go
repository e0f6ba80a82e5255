// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package orei

import "fmt"

// Resolution is an output timing the device can produce.
type Resolution struct {
	Code  int
	Token string
}

// Ordered: ParseResolution takes the first token contained in a response.
var resolutions = []Resolution{
	{1, "4096x2160p60"},
	{2, "4096x2160p50"},
	{3, "3840x2160p60"},
	{4, "3840x2160p50"},
	{5, "3840x2160p30"},
	{6, "3840x2160p25"},
	{7, "1920x1200p60RB"},
	{8, "1920x1080p60"},
	{9, "1920x1080p50"},
	{10, "1360x768p60"},
	{11, "1280x800p60"},
	{12, "1280x720p60"},
	{13, "1280x720p50"},
	{14, "1024x768p60"},
}

const (
	RESOLUTION_MIN = 1
	RESOLUTION_MAX = 14
)

// Resolutions returns the resolution table in code order.
func Resolutions() []Resolution {
	out := make([]Resolution, len(resolutions))
	copy(out, resolutions)
	return out
}

// ResolutionName returns the token for code, or a placeholder for unknown codes.
func ResolutionName(code int) string {
	for _, r := range resolutions {
		if r.Code == code {
			return r.Token
		}
	}
	return fmt.Sprintf("unknown(%d)", code)
}

// ResolutionCode looks up a token such as "1920x1080p60".
func ResolutionCode(token string) (int, bool) {
	for _, r := range resolutions {
		if r.Token == token {
			return r.Code, true
		}
	}
	return 0, false
}
