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

// Package board manages a named set of wires, built from a configuration,
// and offers operations on them that report short circuits as errors
// instead of panicking.
package board

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/PinSim/pkg/pins"
	"github.com/binkynet/PinSim/pkg/wire"
)

// Change of the level of a wire.
type Change struct {
	Wire  string     `json:"wire"`
	Level pins.State `json:"level"`
}

// Board is a named set of wires.
type Board struct {
	name      string
	log       zerolog.Logger
	observers []wire.Observer

	mutex sync.RWMutex
	wires map[string]*boardWire
	order []string

	changes *notifier
}

type boardWire struct {
	wire    *wire.Wire
	drivers map[string]*wire.Pin
	order   []string
}

// Option configures a Board.
type Option func(*Board)

// WithObserver adds an observer to every wire of the board.
// See wire.Observer for the restrictions on observers.
func WithObserver(o wire.Observer) Option {
	return func(b *Board) {
		b.observers = append(b.observers, o)
	}
}

// New creates a board with all wires and drivers of the given config.
func New(cfg Config, log zerolog.Logger, opts ...Option) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		name:  cfg.Name,
		log:   log.With().Str("component", "board").Logger(),
		wires:   make(map[string]*boardWire),
		changes: newNotifier(),
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, wc := range cfg.Wires {
		if _, err := b.AddWire(wc); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Name returns the name of the board.
func (b *Board) Name() string {
	return b.name
}

// Run publishes level changes to subscribers until the given context is
// canceled.
func (b *Board) Run(ctx context.Context) error {
	if dropped := b.changes.run(ctx); dropped > 0 {
		b.log.Warn().Uint64("dropped", dropped).Msg("Dropped level changes")
	}
	return nil
}

// Subscribe to level changes of all wires.
// Changes are only delivered while Run is active. Every subscriber
// receives them in the order they happened, from a single goroutine, so
// callbacks must not block for long.
// A callback may still be called once while the returned cancel function
// runs.
func (b *Board) Subscribe(cb func(Change)) context.CancelFunc {
	return context.CancelFunc(b.changes.subscribe(cb))
}

// AddWire adds a wire with its drivers to the board.
func (b *Board) AddWire(cfg WireConfig) (*wire.Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if _, found := b.wires[cfg.Name]; found {
		return nil, errors.Wrapf(AlreadyExistsError, "wire '%s'", cfg.Name)
	}
	if err := checkInitialStates(cfg); err != nil {
		return nil, err
	}
	opts := []wire.Option{
		wire.WithName(cfg.Name),
		wire.WithPull(cfg.Pull),
		wire.WithObserver(b.onChange),
	}
	for _, o := range b.observers {
		opts = append(opts, wire.WithObserver(o))
	}
	bw := &boardWire{
		wire:    wire.New(opts...),
		drivers: make(map[string]*wire.Pin),
	}
	b.wires[cfg.Name] = bw
	b.order = append(b.order, cfg.Name)
	setLevelGauge(cfg.Name, cfg.Pull)

	log := b.log.With().Str("wire", cfg.Name).Logger()
	for _, dc := range cfg.Drivers {
		p := bw.connect(dc.Name, dc.Mode)
		if err := wire.Catch(func() { setInitial(p, dc.Initial) }); err != nil {
			delete(b.wires, cfg.Name)
			b.order = b.order[:len(b.order)-1]
			levelGauges.DeleteLabelValues(cfg.Name)
			return nil, errors.Wrapf(err, "initial state of driver '%s'", dc.Name)
		}
	}
	driverGauges.WithLabelValues(cfg.Name).Set(float64(len(cfg.Drivers)))
	log.Debug().
		Str("pull", cfg.Pull.String()).
		Int("drivers", len(cfg.Drivers)).
		Msg("Added wire")
	return bw.wire, nil
}

// AddDriver connects a new named driver to the wire with given name.
func (b *Board) AddDriver(wireName, driverName string, mode pins.Mode) (*wire.Pin, error) {
	if driverName == "" {
		return nil, errors.Wrap(InvalidArgumentError, "driver name missing")
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()

	bw, found := b.wires[wireName]
	if !found {
		return nil, errors.Wrapf(NotFoundError, "wire '%s'", wireName)
	}
	if _, found := bw.drivers[driverName]; found {
		return nil, errors.Wrapf(AlreadyExistsError, "driver '%s' on wire '%s'", driverName, wireName)
	}
	p := bw.connect(driverName, mode)
	driverGauges.WithLabelValues(wireName).Set(float64(len(bw.order)))
	b.log.Debug().
		Str("wire", wireName).
		Str("driver", driverName).
		Str("mode", mode.String()).
		Msg("Added driver")
	return p, nil
}

// Wire returns the wire with given name.
func (b *Board) Wire(name string) (*wire.Wire, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	bw, found := b.wires[name]
	if !found {
		return nil, errors.Wrapf(NotFoundError, "wire '%s'", name)
	}
	return bw.wire, nil
}

// Driver returns the driver with given name connected to the wire with
// given name.
func (b *Board) Driver(wireName, driverName string) (*wire.Pin, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	bw, found := b.wires[wireName]
	if !found {
		return nil, errors.Wrapf(NotFoundError, "wire '%s'", wireName)
	}
	p, found := bw.drivers[driverName]
	if !found {
		return nil, errors.Wrapf(NotFoundError, "driver '%s' on wire '%s'", driverName, wireName)
	}
	return p, nil
}

// WireNames returns the names of all wires, in the order they were added.
func (b *Board) WireNames() []string {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return append([]string(nil), b.order...)
}

// Level returns the resolved level of the wire with given name.
func (b *Board) Level(wireName string) (pins.State, error) {
	w, err := b.Wire(wireName)
	if err != nil {
		return pins.Floating, err
	}
	var level pins.State
	if err := wire.Catch(func() { level = w.State() }); err != nil {
		return pins.Floating, maskAny(err)
	}
	return level, nil
}

// Do performs the given action on a driver.
// A short circuit is returned as error; the driver keeps the state that
// caused it.
func (b *Board) Do(wireName, driverName string, action Action) error {
	p, err := b.Driver(wireName, driverName)
	if err != nil {
		return err
	}
	var f func() error
	switch action {
	case ActionHigh:
		f = p.SetHigh
	case ActionLow:
		f = p.SetLow
	case ActionToggle:
		f = p.Toggle
	case ActionRelease:
		f = p.Release
	default:
		return errors.Wrapf(InvalidArgumentError, "action '%s'", action)
	}
	driverActionCounters.WithLabelValues(wireName, string(action)).Inc()
	if err := wire.Catch(func() { f() }); err != nil {
		shortCircuitCounters.WithLabelValues(wireName).Inc()
		b.log.Warn().Err(err).
			Str("wire", wireName).
			Str("driver", driverName).
			Str("action", string(action)).
			Msg("Short circuit")
		return maskAny(err)
	}
	return nil
}

// onChange is the observer of every wire.
// It must not block, since it is called while the wire is locked.
func (b *Board) onChange(name string, level pins.State) {
	levelChangeCounters.WithLabelValues(name).Inc()
	setLevelGauge(name, level)
	b.changes.push(Change{Wire: name, Level: level})
}

// checkInitialStates applies the initial driver states of the given config
// to a scratch wire, so a conflicting config is rejected before any
// observer sees a change.
func checkInitialStates(cfg WireConfig) error {
	w := wire.New(wire.WithName(cfg.Name), wire.WithPull(cfg.Pull))
	for _, dc := range cfg.Drivers {
		p := w.Connect(dc.Mode)
		if err := wire.Catch(func() { setInitial(p, dc.Initial) }); err != nil {
			return errors.Wrapf(err, "initial state of driver '%s'", dc.Name)
		}
	}
	return nil
}

func setInitial(p *wire.Pin, initial pins.State) {
	switch initial {
	case pins.High:
		p.SetHigh()
	case pins.Low:
		p.SetLow()
	}
}

// connect a new named driver.
// Must be called while holding the board mutex.
func (bw *boardWire) connect(name string, mode pins.Mode) *wire.Pin {
	p := bw.wire.Connect(mode)
	bw.drivers[name] = p
	bw.order = append(bw.order, name)
	return p
}

func setLevelGauge(name string, level pins.State) {
	v := -1.0
	switch level {
	case pins.High:
		v = 1
	case pins.Low:
		v = 0
	}
	levelGauges.WithLabelValues(name).Set(v)
}

// Action on a driver.
type Action string

const (
	ActionHigh    Action = "high"
	ActionLow     Action = "low"
	ActionToggle  Action = "toggle"
	ActionRelease Action = "release"
)

// ParseAction parses a textual action.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionHigh, ActionLow, ActionToggle, ActionRelease:
		return a, nil
	}
	return "", errors.Wrapf(InvalidArgumentError, "action '%s'", s)
}
