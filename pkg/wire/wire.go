// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

// Package wire simulates a single electrical line shared by several
// drivers.
//
// Each push-pull or open-drain pin connected to a Wire owns one driver
// slot. The level of the wire is resolved from all slots: floating slots
// are ignored, the remaining slots must agree, and when all slots float
// the wire takes its pull. Two drivers disagreeing is a short circuit,
// which panics with a *ShortCircuitError.
package wire

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/binkynet/PinSim/pkg/pins"
)

// PinID identifies a driver slot of a wire.
type PinID int

// Observer is called with the resolved level of a wire each time that
// level changes. It is called while the wire is locked, so it must not
// call back into the wire.
type Observer func(name string, level pins.State)

// Wire is a shared electrical line.
type Wire struct {
	mutex     sync.Mutex
	name      string
	state     []pins.State
	pull      pins.State
	level     pins.State
	observers []Observer
}

// Option configures a Wire.
type Option func(*Wire)

// WithPull sets the state the wire settles to when no driver drives it.
func WithPull(pull pins.State) Option {
	return func(w *Wire) {
		w.pull = pull
	}
}

// WithName sets the name of the wire, used in errors and observers.
func WithName(name string) Option {
	return func(w *Wire) {
		w.name = name
	}
}

// WithObserver adds an observer of level changes.
func WithObserver(o Observer) Option {
	return func(w *Wire) {
		if o != nil {
			w.observers = append(w.observers, o)
		}
	}
}

// New creates a wire without drivers.
// Unless configured otherwise, the wire floats.
func New(opts ...Option) *Wire {
	w := &Wire{pull: pins.Floating}
	for _, opt := range opts {
		opt(w)
	}
	if !w.pull.IsValid() {
		panic("invalid pull state " + w.pull.String())
	}
	w.level = w.pull
	return w
}

// Name returns the name of the wire.
func (w *Wire) Name() string {
	return w.name
}

// Pull returns the state the wire settles to when no driver drives it.
func (w *Wire) Pull() pins.State {
	return w.pull
}

// DriverCount returns the number of connected driver slots.
func (w *Wire) DriverCount() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.state)
}

// SetState sets the state of the driver with given id.
// Panics on an invalid state. Panics with a *ShortCircuitError when the new state conflicts with
// another driver.
func (w *Wire) SetState(id PinID, state pins.State) {
	mustBeValid(state)
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.state[id] = state
	w.changed()
}

// UpdatePinState replaces the state of the driver with given id by
// f(current state).
// Panics on an invalid state, leaving the driver untouched. Panics with a *ShortCircuitError when the new state conflicts with
// another driver.
func (w *Wire) UpdatePinState(id PinID, f func(pins.State) pins.State) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	next := f(w.state[id])
	mustBeValid(next)
	w.state[id] = next
	w.changed()
}

// PinState returns the state of the driver with given id, which is the
// value the driver was last set to, not the level of the wire.
func (w *Wire) PinState(id PinID) pins.State {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.state[id]
}

// State returns the resolved level of the wire.
// Panics with a *ShortCircuitError when drivers conflict.
func (w *Wire) State() pins.State {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.resolve()
}

// Snapshot returns a copy of the wire state without resolving it.
func (w *Wire) Snapshot() Snapshot {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return Snapshot{
		Name:    w.name,
		Pull:    w.pull,
		Drivers: append([]pins.State(nil), w.state...),
	}
}

// Connect a new driver of given mode to the wire.
// The driver starts floating.
func (w *Wire) Connect(mode pins.Mode) *Pin {
	return &Pin{wire: w, id: w.attach(), mode: mode}
}

// ConnectPushPullPin connects a new push-pull driver to the wire.
func (w *Wire) ConnectPushPullPin() *Pin {
	return w.Connect(pins.PushPull)
}

// ConnectOpenDrainPin connects a new open-drain driver to the wire.
func (w *Wire) ConnectOpenDrainPin() *Pin {
	return w.Connect(pins.OpenDrain)
}

// ConnectInputPin connects a new input to the wire.
// Inputs do not take a driver slot.
func (w *Wire) ConnectInputPin() *InputPin {
	return &InputPin{wire: w}
}

func (w *Wire) attach() PinID {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	id := PinID(len(w.state))
	w.state = append(w.state, pins.Floating)
	return id
}

// changed resolves the wire (checking for a short circuit) and notifies
// observers when the level changed.
// Must be called while holding the mutex.
func (w *Wire) changed() {
	level := w.resolve()
	if level == w.level {
		return
	}
	w.level = level
	for _, o := range w.observers {
		o(w.name, level)
	}
}

// resolve the level of the wire.
// Must be called while holding the mutex.
func (w *Wire) resolve() pins.State {
	level, ok := resolveLevel(w.state, w.pull)
	if !ok {
		panic(&ShortCircuitError{
			Wire:    w.name,
			Drivers: append([]pins.State(nil), w.state...),
		})
	}
	return level
}

// resolveLevel resolves the level from the given driver states, in connection order.
// Returns false on a short circuit.
func resolveLevel(drivers []pins.State, pull pins.State) (pins.State, bool) {
	level := pins.Floating
	for _, state := range drivers {
		if state == pins.Floating {
			continue
		}
		if level != pins.Floating && state != level {
			return pins.Floating, false
		}
		level = state
	}
	if level == pins.Floating {
		return pull, true
	}
	return level, true
}

func mustBeValid(state pins.State) {
	if !state.IsValid() {
		panic(errors.Errorf("invalid pin state %d", uint8(state)))
	}
}
