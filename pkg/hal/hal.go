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

// Package hal contains the digital pin interfaces that firmware code is
// written against.
//
// Every operation returns an error so real hardware backends can report
// failures. The simulated pins in this module never return one.
package hal

// InputPin is the interface satisfied by readable pins.
type InputPin interface {
	// IsHigh returns true when the line is high.
	IsHigh() (bool, error)
	// IsLow returns true when the line is low.
	IsLow() (bool, error)
}

// OutputPin is the interface satisfied by drivable pins.
type OutputPin interface {
	// SetHigh drives the pin high.
	SetHigh() error
	// SetLow drives the pin low.
	SetLow() error
}

// StatefulOutputPin is an output pin that remembers what it was set to.
type StatefulOutputPin interface {
	OutputPin
	// IsSetHigh returns true when the pin was last set high.
	IsSetHigh() (bool, error)
	// IsSetLow returns true when the pin was last set low.
	IsSetLow() (bool, error)
}

// ToggleableOutputPin is an output pin that can be toggled.
type ToggleableOutputPin interface {
	OutputPin
	// Toggle the pin.
	Toggle() error
}

// IOPin is a bidirectional pin.
type IOPin interface {
	InputPin
	StatefulOutputPin
	Toggle() error
}

// Set drives the pin high when value is true, low otherwise.
func Set(p OutputPin, value bool) error {
	if value {
		return p.SetHigh()
	}
	return p.SetLow()
}

// Read returns true when the pin is high.
func Read(p InputPin) (bool, error) {
	return p.IsHigh()
}
