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

package board

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/binkynet/PinSim/pkg/pins"
)

// WireStatus is the status of a single wire.
type WireStatus struct {
	Name  string     `json:"name"`
	Pull  pins.State `json:"pull"`
	Level pins.State `json:"level"`
	// Set when drivers of the wire conflict; Level is meaningless then.
	ShortCircuit bool           `json:"short_circuit,omitempty"`
	Drivers      []DriverStatus `json:"drivers"`
}

// DriverStatus is the status of a single driver of a wire.
type DriverStatus struct {
	Name  string     `json:"name"`
	Mode  pins.Mode  `json:"mode"`
	State pins.State `json:"state"`
}

// Status returns the status of the wire with given name.
// It never panics, also not for shorted wires.
func (b *Board) Status(wireName string) (WireStatus, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	bw, found := b.wires[wireName]
	if !found {
		return WireStatus{}, errors.Wrapf(NotFoundError, "wire '%s'", wireName)
	}
	return bw.status(), nil
}

// Statuses returns the status of all wires, in the order they were added.
func (b *Board) Statuses() []WireStatus {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	result := make([]WireStatus, 0, len(b.order))
	for _, name := range b.order {
		result = append(result, b.wires[name].status())
	}
	return result
}

// status builds the status from a snapshot of the wire.
// Must be called while holding the board mutex.
func (bw *boardWire) status() WireStatus {
	snap := bw.wire.Snapshot()
	level, ok := snap.Level()
	ws := WireStatus{
		Name:         snap.Name,
		Pull:         snap.Pull,
		Level:        level,
		ShortCircuit: !ok,
		Drivers:      make([]DriverStatus, 0, len(snap.Drivers)),
	}
	named := make(map[int]string, len(bw.order))
	modes := make(map[int]pins.Mode, len(bw.order))
	for _, name := range bw.order {
		p := bw.drivers[name]
		named[int(p.ID())] = name
		modes[int(p.ID())] = p.Mode()
	}
	for id, state := range snap.Drivers {
		name, found := named[id]
		if !found {
			// Connected directly to the wire, not through the board
			name = "#" + strconv.Itoa(id)
		}
		ws.Drivers = append(ws.Drivers, DriverStatus{
			Name:  name,
			Mode:  modes[id],
			State: state,
		})
	}
	return ws
}
