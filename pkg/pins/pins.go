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

// Package pins provides digital pins backed by a single AtomicState, so
// they can be shared between goroutines. Especially useful for
// integration testing of code written against the hal interfaces.
//
// For lines with multiple drivers, see package wire.
package pins

import (
	"github.com/binkynet/PinSim/pkg/hal"
)

var (
	_ hal.InputPin = &InputPin{}
	_ hal.IOPin    = &OutputPin{}
)

// InputPin reads a shared AtomicState.
//
//	state := pins.NewAtomicState(pins.Low)
//	pin := pins.NewInputPin(state)
//	state.Store(pins.High)
//	high, _ := pin.IsHigh() // true
type InputPin struct {
	state *AtomicState
}

// NewInputPin creates a new input pin reading the given state.
func NewInputPin(state *AtomicState) *InputPin {
	return &InputPin{state: state}
}

// IsHigh returns true when the state is High.
func (p *InputPin) IsHigh() (bool, error) {
	return p.state.Load() == High, nil
}

// IsLow returns true when the state is Low.
func (p *InputPin) IsLow() (bool, error) {
	return p.state.Load() == Low, nil
}

// OutputPin writes a shared AtomicState using the mapping of its Mode.
// It can also read back the state, which for an open-drain pin is either
// Floating or Low.
type OutputPin struct {
	state *AtomicState
	mode  Mode
}

// NewPushPullPin creates an output pin in push-pull configuration.
func NewPushPullPin(state *AtomicState) *OutputPin {
	return &OutputPin{state: state, mode: PushPull}
}

// NewOpenDrainPin creates an output pin in open-drain configuration.
// The state is Floating when the pin is set low and Low ("pull to GND")
// when set high.
func NewOpenDrainPin(state *AtomicState) *OutputPin {
	return &OutputPin{state: state, mode: OpenDrain}
}

// Mode returns the drive mode of the pin.
func (p *OutputPin) Mode() Mode {
	return p.mode
}

// SetHigh sets the pin high.
func (p *OutputPin) SetHigh() error {
	p.state.Store(p.mode.HighState())
	return nil
}

// SetLow sets the pin low.
func (p *OutputPin) SetLow() error {
	p.state.Store(p.mode.LowState())
	return nil
}

// IsSetHigh returns true when the pin was last set high.
func (p *OutputPin) IsSetHigh() (bool, error) {
	return p.mode.IsSetHigh(p.state.Load()), nil
}

// IsSetLow returns true when the pin was last set low.
func (p *OutputPin) IsSetLow() (bool, error) {
	return p.mode.IsSetLow(p.state.Load()), nil
}

// Toggle the pin.
func (p *OutputPin) Toggle() error {
	p.state.Update(func(s State) (State, bool) {
		return p.mode.Toggle(s), true
	})
	return nil
}

// IsHigh returns true when the state is High.
func (p *OutputPin) IsHigh() (bool, error) {
	return p.state.Load() == High, nil
}

// IsLow returns true when the state is Low.
func (p *OutputPin) IsLow() (bool, error) {
	return p.state.Load() == Low, nil
}
