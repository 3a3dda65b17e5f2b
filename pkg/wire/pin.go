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

package wire

import (
	"github.com/binkynet/PinSim/pkg/hal"
	"github.com/binkynet/PinSim/pkg/pins"
)

var (
	_ hal.InputPin = &InputPin{}
	_ hal.IOPin    = &Pin{}
)

// InputPin reads the resolved level of a wire.
type InputPin struct {
	wire *Wire
}

// IsHigh returns true when the wire is high.
func (p *InputPin) IsHigh() (bool, error) {
	return p.wire.State() == pins.High, nil
}

// IsLow returns true when the wire is low.
func (p *InputPin) IsLow() (bool, error) {
	return p.wire.State() == pins.Low, nil
}

// Pin is a driver connected to a wire, in push-pull or open-drain
// configuration.
// Reading the pin returns the level of the wire, which may be imposed by
// another driver or by the pull of the wire.
type Pin struct {
	wire *Wire
	id   PinID
	mode pins.Mode
}

// ID returns the driver slot of this pin.
func (p *Pin) ID() PinID {
	return p.id
}

// Mode returns the drive mode of this pin.
func (p *Pin) Mode() pins.Mode {
	return p.mode
}

// Wire returns the wire this pin is connected to.
func (p *Pin) Wire() *Wire {
	return p.wire
}

// SetHigh sets the pin high.
func (p *Pin) SetHigh() error {
	p.wire.SetState(p.id, p.mode.HighState())
	return nil
}

// SetLow sets the pin low.
func (p *Pin) SetLow() error {
	p.wire.SetState(p.id, p.mode.LowState())
	return nil
}

// Release stops driving the wire.
func (p *Pin) Release() error {
	p.wire.SetState(p.id, pins.Floating)
	return nil
}

// IsSetHigh returns true when the pin was last set high.
func (p *Pin) IsSetHigh() (bool, error) {
	return p.mode.IsSetHigh(p.wire.PinState(p.id)), nil
}

// IsSetLow returns true when the pin was last set low.
func (p *Pin) IsSetLow() (bool, error) {
	return p.mode.IsSetLow(p.wire.PinState(p.id)), nil
}

// Toggle the pin.
func (p *Pin) Toggle() error {
	p.wire.UpdatePinState(p.id, p.mode.Toggle)
	return nil
}

// IsHigh returns true when the wire is high.
func (p *Pin) IsHigh() (bool, error) {
	return p.wire.State() == pins.High, nil
}

// IsLow returns true when the wire is low.
func (p *Pin) IsLow() (bool, error) {
	return p.wire.State() == pins.Low, nil
}
