// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Thermoquad/prism/pkg/orei"
)

var pipPositionNames = map[int]string{1: "left top", 2: "left bottom", 3: "right top", 4: "right bottom"}
var pipSizeNames = map[int]string{1: "small", 2: "middle", 3: "large"}
var multiviewNames = map[int]string{1: "single screen", 2: "PIP", 3: "PBP", 4: "triple", 5: "quad"}

// fakeDevice is an in-memory multiviewer that answers the query commands
// from its state and applies set commands to it.
type fakeDevice struct {
	mu sync.Mutex

	on       bool
	mode     int
	inputs   map[int]int
	pipPos   int
	pipSize  int
	subMode  map[string]int
	aspect   map[string]int
	audioSrc int
	volume   int
	muted    bool
	res      int
	hdcp     int

	// silent maps a command to how many more times it goes unanswered;
	// a negative count means forever.
	silent   map[string]int
	failures map[string]error
	sent     []string
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		on:       true,
		mode:     1,
		inputs:   map[int]int{1: 1, 2: 2, 3: 3, 4: 4},
		pipPos:   3,
		pipSize:  2,
		subMode:  map[string]int{"PBP": 1, "triple": 1, "quad": 1},
		aspect:   map[string]int{"PBP": 1, "triple": 1, "quad": 1},
		audioSrc: 0,
		volume:   30,
		res:      8,
		hdcp:     1,
		silent:   map[string]int{},
		failures: map[string]error{},
	}
}

func (d *fakeDevice) silence(cmd string, times int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.silent[cmd] = times
}

func (d *fakeDevice) fail(cmd string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[cmd] = err
}

func (d *fakeDevice) count(cmd string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.sent {
		if s == cmd {
			n++
		}
	}
	return n
}

func (d *fakeDevice) countPrefix(prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.sent {
		if strings.HasPrefix(s, prefix) {
			n++
		}
	}
	return n
}

func (d *fakeDevice) Send(_ context.Context, cmd string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd = orei.Normalize(cmd)
	d.sent = append(d.sent, cmd)

	if err, ok := d.failures[cmd]; ok {
		return "", err
	}
	if n, ok := d.silent[cmd]; ok && n != 0 {
		if n > 0 {
			d.silent[cmd] = n - 1
		}
		return orei.NO_RESPONSE, nil
	}
	if !d.on && cmd != orei.QUERY_POWER && !strings.HasPrefix(cmd, "power ") {
		return orei.NO_RESPONSE, nil
	}
	return d.handle(cmd), nil
}

func (d *fakeDevice) handle(cmd string) string {
	var a, b int
	var kw string

	switch {
	case cmd == orei.QUERY_POWER:
		if d.on {
			return "power on"
		}
		return "power off"
	case cmd == orei.QUERY_MULTIVIEW:
		return "multiview: " + multiviewNames[d.mode]
	case cmd == orei.QUERY_PIP_POSITION:
		return "PIP position: " + pipPositionNames[d.pipPos]
	case cmd == orei.QUERY_PIP_SIZE:
		return "PIP size: " + pipSizeNames[d.pipSize]
	case cmd == orei.QUERY_AUDIO_SOURCE:
		if d.audioSrc == 0 {
			return "output audio: follow window 1"
		}
		return fmt.Sprintf("output audio: HDMI %d", d.audioSrc)
	case cmd == orei.QUERY_AUDIO_VOLUME:
		return fmt.Sprintf("audio volume: %d", d.volume)
	case cmd == orei.QUERY_AUDIO_MUTE:
		if d.muted {
			return "output audio mute: on"
		}
		return "output audio mute: off"
	case cmd == orei.QUERY_OUTPUT_RES:
		return "output resolution: " + orei.ResolutionName(d.res)
	case cmd == orei.QUERY_OUTPUT_HDCP:
		return "output hdcp: " + orei.HDCP(d.hdcp).String()
	}

	if scan(cmd, "r window %d in!", &a) {
		return fmt.Sprintf("window %d in: HDMI %d", a, d.inputs[a])
	}
	if scan(cmd, "s window %d in %d!", &a, &b) {
		d.inputs[a] = b
		return fmt.Sprintf("window %d in: HDMI %d", a, b)
	}
	if scan(cmd, "power %d!", &a) {
		d.on = a == 1
		return "power " + map[bool]string{true: "on", false: "off"}[d.on]
	}
	if scan(cmd, "s multiview %d!", &a) {
		d.mode = a
		return "multiview: " + multiviewNames[a]
	}
	if scan(cmd, "s output audio vol %d!", &a) {
		d.volume = a
		return fmt.Sprintf("audio volume: %d", a)
	}
	if scan(cmd, "s output audio mute %d!", &a) {
		d.muted = a == 1
		return "ok"
	}
	if scan(cmd, "s output audio %d!", &a) {
		d.audioSrc = a
		return "ok"
	}
	if scan(cmd, "s output res %d!", &a) {
		d.res = a
		return "ok"
	}
	if scan(cmd, "s output hdcp %d!", &a) {
		d.hdcp = a
		return "ok"
	}
	if scan(cmd, "s PIP position %d!", &a) {
		d.pipPos = a
		return "ok"
	}
	if scan(cmd, "s PIP size %d!", &a) {
		d.pipSize = a
		return "ok"
	}
	if scan(cmd, "r %s mode!", &kw) {
		return fmt.Sprintf("%s mode %d", kw, d.subMode[kw])
	}
	if scan(cmd, "r %s aspect!", &kw) {
		if d.aspect[kw] == 1 {
			return kw + " aspect: full screen"
		}
		return kw + " aspect: 16:9"
	}
	if scan(cmd, "s %s mode %d!", &kw, &a) {
		d.subMode[kw] = a
		return "ok"
	}
	if scan(cmd, "s %s aspect %d!", &kw, &a) {
		d.aspect[kw] = a
		return "ok"
	}
	return "unknown command"
}

func scan(input, format string, args ...any) bool {
	n, err := fmt.Sscanf(input, format, args...)
	return err == nil && n == len(args)
}
