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
)

// PinDirection is the direction of a GPIO pin.
type PinDirection uint8

const (
	// PinDirectionInput configures a pin as input
	PinDirectionInput PinDirection = iota
	// PinDirectionOutput configures a pin as output
	PinDirectionOutput
)

func (d PinDirection) String() string {
	switch d {
	case PinDirectionInput:
		return "input"
	case PinDirectionOutput:
		return "output"
	default:
		return "unknown"
	}
}

// GPIO contains the API that is supported by all general purpose I/O devices.
type GPIO interface {
	Device
	// PinCount returns the number of pins of the device
	PinCount() uint
	// Set the direction of the pin at given index (1...)
	SetDirection(ctx context.Context, index DeviceIndex, direction PinDirection) error
	// Get the direction of the pin at given index (1...)
	GetDirection(ctx context.Context, index DeviceIndex) (PinDirection, error)
	// Set the pin at given index (1...) to the given value
	Set(ctx context.Context, index DeviceIndex, value bool) error
	// Get the value of the pin at given index (1...)
	Get(ctx context.Context, index DeviceIndex) (bool, error)
}
