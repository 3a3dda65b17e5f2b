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
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/binkynet/PinSim/pkg/pins"
)

// ShortCircuitError is the panic value raised when drivers of a wire
// disagree.
type ShortCircuitError struct {
	// Name of the wire
	Wire string
	// States of all drivers at the time of the short circuit
	Drivers []pins.State
}

func (e *ShortCircuitError) Error() string {
	states := make([]string, 0, len(e.Drivers))
	for _, s := range e.Drivers {
		states = append(states, s.String())
	}
	name := e.Wire
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("short circuit on wire %s: [%s]", name, strings.Join(states, ", "))
}

// IsShortCircuit returns true when the cause of err is a short circuit.
func IsShortCircuit(err error) bool {
	_, ok := errors.Cause(err).(*ShortCircuitError)
	return ok
}

// Catch calls f and returns the short circuit it panicked with, if any.
// Any other panic is passed on.
func Catch(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			sc, ok := r.(*ShortCircuitError)
			if !ok {
				panic(r)
			}
			err = sc
		}
	}()
	f()
	return nil
}
