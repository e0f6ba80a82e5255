// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package companion

import (
	"context"
	"fmt"
	"slices"

	"github.com/Thermoquad/prism/pkg/layout"
	"github.com/Thermoquad/prism/pkg/session"
	"github.com/Thermoquad/prism/pkg/syncutil"
	"github.com/rs/zerolog/log"
)

// VisibleFor returns the HDMI inputs whose remotes belong on screen: those
// shown in some window of mode and mapped to a device. The result is in
// window order without duplicates.
func VisibleFor(mode layout.Mode, inputs layout.Inputs, m Mappings) []int {
	var out []int
	for _, in := range inputs.Visible(mode) {
		if _, ok := m.Get(in); ok {
			out = append(out, in)
		}
	}
	return out
}

// Mapper owns the HDMI to device mapping and the set of remotes currently
// visible.
type Mapper struct {
	mu       syncutil.RWMutex
	store    Store
	remote   Remote
	mappings Mappings
	mode     layout.Mode
	inputs   layout.Inputs
	visible  []int
}

// NewMapper returns an empty mapper. remote may be nil, in which case Press
// always fails.
func NewMapper(store Store, remote Remote) *Mapper {
	return &Mapper{
		store:    store,
		remote:   remote,
		mappings: Mappings{},
		mode:     layout.ModeSingle,
		inputs:   layout.Inputs{},
	}
}

// Load replaces the mappings with the store's and recomputes visibility.
func (m *Mapper) Load(ctx context.Context) error {
	loaded, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load companion mappings: %w", err)
	}

	m.mu.Lock()
	m.mappings = loaded.Clone()
	m.recomputeLocked()
	m.mu.Unlock()

	log.Info().Int("mappings", len(loaded)).Msg("loaded companion mappings")
	return nil
}

func (m *Mapper) Mappings() Mappings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mappings.Clone()
}

// Assign maps d to input hdmi, replacing any previous device, then
// persists.
func (m *Mapper) Assign(ctx context.Context, hdmi int, d Device) error {
	if _, err := ParseHDMIKey(HDMIKey(hdmi)); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.mappings[HDMIKey(hdmi)] = d
	m.recomputeLocked()
	snapshot := m.mappings.Clone()
	m.mu.Unlock()

	log.Info().Int("hdmi", hdmi).Str("device", d.Address).Msg("companion device assigned")
	return m.persist(ctx, snapshot)
}

// Remove drops the mapping for hdmi, then persists. Removing an unmapped
// input is not an error.
func (m *Mapper) Remove(ctx context.Context, hdmi int) error {
	m.mu.Lock()
	delete(m.mappings, HDMIKey(hdmi))
	m.recomputeLocked()
	snapshot := m.mappings.Clone()
	m.mu.Unlock()

	log.Info().Int("hdmi", hdmi).Msg("companion device removed")
	return m.persist(ctx, snapshot)
}

func (m *Mapper) persist(ctx context.Context, snapshot Mappings) error {
	if err := m.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save companion mappings: %w", err)
	}
	return nil
}

// Recompute records the current layout and returns the visible inputs.
func (m *Mapper) Recompute(mode layout.Mode, inputs layout.Inputs) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	m.inputs = inputs.Clone()
	m.recomputeLocked()
	return slices.Clone(m.visible)
}

func (m *Mapper) recomputeLocked() {
	m.visible = VisibleFor(m.mode, m.inputs, m.mappings)
}

// Visible returns the inputs whose remotes are shown.
func (m *Mapper) Visible() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.visible)
}

// Press sends key to the device mapped to hdmi.
func (m *Mapper) Press(ctx context.Context, hdmi int, key Key) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	m.mu.RLock()
	_, ok := m.mappings.Get(hdmi)
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w to HDMI %d", ErrUnmapped, hdmi)
	}
	if m.remote == nil {
		return fmt.Errorf("no remote available for HDMI %d", hdmi)
	}

	log.Debug().Int("hdmi", hdmi).Str("key", string(key)).Msg("remote key press")
	if err := m.remote.SendKey(ctx, hdmi, key); err != nil {
		return fmt.Errorf("failed to send %s to HDMI %d: %w", key, hdmi, err)
	}
	return nil
}

// Watch recomputes visibility on every layout event until ctx ends or
// events is closed.
func (m *Mapper) Watch(ctx context.Context, events <-chan session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if !e.LayoutEvent() {
				continue
			}
			before := m.Visible()
			after := m.Recompute(e.State.Mode, e.State.Inputs)
			if !slices.Equal(before, after) {
				log.Debug().Ints("visible", after).Msg("companion remotes changed")
			}
		}
	}
}
