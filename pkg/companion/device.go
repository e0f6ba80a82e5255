// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package companion

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnmapped is returned when no companion device is assigned to an
	// HDMI input.
	ErrUnmapped = errors.New("no companion device mapped")
	// ErrUnknownKey is returned for a remote key outside the known set.
	ErrUnknownKey = errors.New("unknown remote key")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Device is a streaming box reachable on the network.
type Device struct {
	Address string `json:"ip" toml:"ip" validate:"required,ip|hostname_rfc1123"`
	Name    string `json:"name" toml:"name"`
	Model   string `json:"model" toml:"model"`
	Serial  string `json:"serial" toml:"serial"`
}

func (d Device) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid device %q: %w", d.Address, err)
	}
	return nil
}

// Label is the device's display name, or its address when it has none.
func (d Device) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Address
}

// App is a channel installed on a device.
type App struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Mappings assigns devices to HDMI inputs. Keys are the input number as a
// decimal string, as the backend stores them.
type Mappings map[string]Device

// HDMIKey is the Mappings key for input hdmi.
func HDMIKey(hdmi int) string {
	return strconv.Itoa(hdmi)
}

// ParseHDMIKey returns the input number of a Mappings key.
func ParseHDMIKey(key string) (int, error) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > layout.MaxInputs {
		return 0, fmt.Errorf("HDMI input %q out of range 1-%d", key, layout.MaxInputs)
	}
	return n, nil
}

func (m Mappings) Get(hdmi int) (Device, bool) {
	d, ok := m[HDMIKey(hdmi)]
	return d, ok
}

func (m Mappings) Clone() Mappings {
	if m == nil {
		return Mappings{}
	}
	return maps.Clone(m)
}

// Inputs returns the mapped HDMI inputs in ascending order. Keys that are
// not valid inputs are skipped.
func (m Mappings) Inputs() []int {
	out := make([]int, 0, len(m))
	for k := range m {
		if n, err := ParseHDMIKey(k); err == nil {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}

// Validate checks every key and device.
func (m Mappings) Validate() error {
	var errs []error
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if _, err := ParseHDMIKey(k); err != nil {
			errs = append(errs, err)
			continue
		}
		if err := m[k].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("HDMI %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

// Store persists mappings.
type Store interface {
	Load(ctx context.Context) (Mappings, error)
	Save(ctx context.Context, m Mappings) error
}

// Discoverer finds candidate devices on the network.
type Discoverer interface {
	Discover(ctx context.Context) ([]Device, error)
}

// Remote delivers a key press to the device mapped to an HDMI input.
type Remote interface {
	SendKey(ctx context.Context, hdmi int, key Key) error
}

// AppLauncher lists and starts channels on the device mapped to an HDMI
// input.
type AppLauncher interface {
	Apps(ctx context.Context, hdmi int) ([]App, error)
	Launch(ctx context.Context, hdmi int, appID string) error
}
