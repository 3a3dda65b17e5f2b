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

// Package vcd converts pin states to and from Value Change Dump values and
// records wire levels into VCD files, readable by waveform viewers such
// as GTKWave.
package vcd

import (
	"github.com/binkynet/PinSim/pkg/pins"
)

// Value is a scalar VCD value.
type Value byte

const (
	V0 Value = '0'
	V1 Value = '1'
	X  Value = 'x'
	Z  Value = 'z'
)

func (v Value) String() string {
	return string(v)
}

// FromState converts a pin state into a VCD value.
func FromState(s pins.State) Value {
	switch s {
	case pins.High:
		return V1
	case pins.Low:
		return V0
	default:
		return Z
	}
}

// State converts a VCD value into a pin state.
// Unknown values are floating.
func (v Value) State() pins.State {
	switch v {
	case V0:
		return pins.Low
	case V1:
		return pins.High
	default:
		return pins.Floating
	}
}
