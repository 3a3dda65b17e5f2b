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
package devices

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/binkynet/PinSim/pkg/service/bridge"
)

type localGPIO struct {
	mutex     sync.Mutex
	onActive  func()
	api       bridge.API
	activeLow bool
	inputs    []bridge.InputPin
	outputs   []bridge.OutputPin
}

// newLocalGPIO creates a GPIO instance for the GPIO pins of the bridge.
func newLocalGPIO(api bridge.API, activeLow bool, onActive func()) GPIO {
	return &localGPIO{
		onActive:  onActive,
		api:       api,
		activeLow: activeLow,
	}
}

// Configure is called once to put the device in the desired state.
func (d *localGPIO) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	d.inputs = make([]bridge.InputPin, d.PinCount())
	d.outputs = make([]bridge.OutputPin, d.PinCount())
	return nil
}

// Close brings the device back to a safe state.
// Outputs are switched to inputs, which releases the lines.
func (d *localGPIO) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.onActive()
	for i, p := range d.outputs {
		if p != nil {
			if _, err := d.api.Input(i+1, d.activeLow); err != nil {
				return errors.Wrapf(err, "release pin %d", i+1)
			}
		}
	}
	d.inputs = nil
	d.outputs = nil
	return nil
}

// PinCount returns the number of pins of the device
func (d *localGPIO) PinCount() uint {
	return uint(d.api.PinCount())
}

// Set the direction of the pin at given index (1...)
func (d *localGPIO) SetDirection(ctx context.Context, pin DeviceIndex, direction PinDirection) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.checkPin(pin); err != nil {
		return err
	}
	d.onActive()
	switch direction {
	case PinDirectionInput:
		p, err := d.api.Input(int(pin), d.activeLow)
		if err != nil {
			return err
		}
		d.inputs[pin-1] = p
		d.outputs[pin-1] = nil
	case PinDirectionOutput:
		p, err := d.api.Output(int(pin), d.activeLow, false)
		if err != nil {
			return err
		}
		d.inputs[pin-1] = nil
		d.outputs[pin-1] = p
	default:
		return errors.Wrapf(InvalidDirectionError, "direction %d", direction)
	}
	return nil
}

// Get the direction of the pin at given index (1...)
func (d *localGPIO) GetDirection(ctx context.Context, pin DeviceIndex) (PinDirection, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.checkPin(pin); err != nil {
		return PinDirectionInput, err
	}
	index := pin - 1
	if d.inputs[index] != nil {
		return PinDirectionInput, nil
	}
	if d.outputs[index] != nil {
		return PinDirectionOutput, nil
	}
	return PinDirectionInput, errors.Wrapf(InvalidDirectionError, "pin %d not configured", pin)
}

// Set the pin at given index (1...) to the given value
func (d *localGPIO) Set(ctx context.Context, pin DeviceIndex, value bool) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.checkPin(pin); err != nil {
		return err
	}
	if f := d.outputs[pin-1]; f != nil {
		return f.Write(value)
	}
	return errors.Wrapf(InvalidDirectionError, "pin %d does not have direction output", pin)
}

// Get the value of the pin at given index (1...)
func (d *localGPIO) Get(ctx context.Context, pin DeviceIndex) (bool, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.checkPin(pin); err != nil {
		return false, err
	}
	if f := d.inputs[pin-1]; f != nil {
		return f.Read()
	}
	return false, errors.Wrapf(InvalidDirectionError, "pin %d does not have direction input", pin)
}

// checkPin returns an error when the pin is out of range or the device
// is not configured.
// Must be called while holding the mutex.
func (d *localGPIO) checkPin(pin DeviceIndex) error {
	if pin < 1 || uint(pin) > uint(len(d.outputs)) {
		return errors.Wrapf(InvalidPinError, "Pin must be between 1 and %d, got %d", len(d.outputs), pin)
	}
	return nil
}
