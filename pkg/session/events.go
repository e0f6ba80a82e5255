// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"github.com/Thermoquad/prism/pkg/syncutil"
	"github.com/rs/zerolog/log"
)

// EventType names something that happened to the session.
type EventType string

const (
	EventModeChanged         EventType = "modeChanged"
	EventWindowInputsChanged EventType = "windowInputsChanged"
	EventRefreshCompleted    EventType = "refreshCompleted"
	EventPowerChanged        EventType = "powerChanged"
	EventConnectionChanged   EventType = "connectionChanged"
	EventSettingsChanged     EventType = "settingsChanged"
	EventAudioChanged        EventType = "audioChanged"
	EventOutputChanged       EventType = "outputChanged"
	EventBusy                EventType = "busy"
	EventIdle                EventType = "idle"
	EventNotice              EventType = "notice"
)

// Level grades a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Event carries the session state as of the moment it was published.
type Event struct {
	Type    EventType
	State   State
	Level   Level
	Message string
}

// LayoutEvent reports whether e changes what is on screen.
func (e Event) LayoutEvent() bool {
	switch e.Type {
	case EventModeChanged, EventWindowInputsChanged, EventRefreshCompleted:
		return true
	default:
		return false
	}
}

// Dispatcher fans events out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Dispatcher struct {
	mu          syncutil.RWMutex
	subscribers map[int]chan Event
	nextID      int
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{subscribers: make(map[int]chan Event)}
}

// Publish delivers e to every subscriber.
func (d *Dispatcher) Publish(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for id, ch := range d.subscribers {
		select {
		case ch <- e:
		default:
			log.Warn().
				Int("subscriber_id", id).
				Str("event", string(e.Type)).
				Msg("subscriber channel full, dropping event")
		}
	}
}

// Subscribe registers a subscriber with the given buffer size and returns
// its channel and an ID for Unsubscribe.
func (d *Dispatcher) Subscribe(bufferSize int) (<-chan Event, int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	ch := make(chan Event, bufferSize)
	d.subscribers[id] = ch
	return ch, id
}

// Unsubscribe removes a subscriber and closes its channel. Repeated calls
// are harmless.
func (d *Dispatcher) Unsubscribe(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if ch, ok := d.subscribers[id]; ok {
		delete(d.subscribers, id)
		close(ch)
	}
}

// Close closes every subscriber channel.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, ch := range d.subscribers {
		close(ch)
		delete(d.subscribers, id)
	}
}
