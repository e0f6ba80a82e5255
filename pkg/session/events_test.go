// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherFanOut(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	a, idA := d.Subscribe(4)
	b, idB := d.Subscribe(4)
	assert.NotEqual(t, idA, idB)

	d.Publish(Event{Type: EventModeChanged})

	assert.Equal(t, EventModeChanged, (<-a).Type)
	assert.Equal(t, EventModeChanged, (<-b).Type)
	d.Close()
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	ch, id := d.Subscribe(1)

	d.Publish(Event{Type: EventBusy})
	d.Publish(Event{Type: EventIdle})

	assert.Equal(t, EventBusy, (<-ch).Type)
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %s", e.Type)
	default:
	}
	d.Unsubscribe(id)
}

func TestDispatcherUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	d := NewDispatcher()
	ch, id := d.Subscribe(1)
	d.Unsubscribe(id)
	d.Unsubscribe(id)

	_, ok := <-ch
	require.False(t, ok)

	// Publishing with no subscribers is a no-op.
	d.Publish(Event{Type: EventNotice})
}

func TestLayoutEvent(t *testing.T) {
	t.Parallel()

	for _, typ := range []EventType{EventModeChanged, EventWindowInputsChanged, EventRefreshCompleted} {
		assert.True(t, Event{Type: typ}.LayoutEvent(), typ)
	}
	for _, typ := range []EventType{EventPowerChanged, EventAudioChanged, EventBusy, EventNotice} {
		assert.False(t, Event{Type: typ}.LayoutEvent(), typ)
	}
}
