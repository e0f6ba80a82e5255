// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package companion

import (
	"fmt"
	"strings"
)

// Key is a remote button, named as the device's keypress endpoint expects.
type Key string

const (
	KeyPower      Key = "Power"
	KeyHome       Key = "Home"
	KeyBack       Key = "Back"
	KeyInfo       Key = "Info"
	KeyUp         Key = "Up"
	KeyDown       Key = "Down"
	KeyLeft       Key = "Left"
	KeyRight      Key = "Right"
	KeySelect     Key = "Select"
	KeyRev        Key = "Rev"
	KeyPlay       Key = "Play"
	KeyFwd        Key = "Fwd"
	KeyVolumeDown Key = "VolumeDown"
	KeyVolumeUp   Key = "VolumeUp"
	KeyVolumeMute Key = "VolumeMute"
)

var keys = []Key{
	KeyPower, KeyHome, KeyBack, KeyInfo,
	KeyUp, KeyDown, KeyLeft, KeyRight, KeySelect,
	KeyRev, KeyPlay, KeyFwd,
	KeyVolumeDown, KeyVolumeUp, KeyVolumeMute,
}

// Keys returns every remote button in panel order.
func Keys() []Key {
	return append([]Key(nil), keys...)
}

func (k Key) Valid() bool {
	for _, known := range keys {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKey matches a button name case-insensitively.
func ParseKey(s string) (Key, error) {
	for _, k := range keys {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
}
