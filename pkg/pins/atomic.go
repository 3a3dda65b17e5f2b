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

package pins

import (
	"fmt"
	"sync/atomic"
)

// AtomicState is a digital pin state that can be safely shared between
// goroutines.
// The zero value holds Floating.
//
// All operations are sequentially consistent, the only ordering
// sync/atomic offers.
type AtomicState struct {
	state atomic.Uint32
}

// NewAtomicState creates a new atomic pin state with a given state.
func NewAtomicState(initial State) *AtomicState {
	s := &AtomicState{}
	s.Store(initial)
	return s
}

// Load the current state.
func (s *AtomicState) Load() State {
	return State(s.state.Load())
}

// Store a state, overwriting the current one.
func (s *AtomicState) Store(state State) {
	mustBeValid(state)
	s.state.Store(uint32(state))
}

// Update the state based on the stored value.
// f is called with the current state. When it returns false, the state is
// left untouched. Otherwise the returned state is stored, unless another
// goroutine changed the state in between, in which case f is called again
// with the fresh state.
func (s *AtomicState) Update(f func(State) (State, bool)) {
	for {
		current := s.state.Load()
		next, ok := f(State(current))
		if !ok {
			return
		}
		mustBeValid(next)
		if s.state.CompareAndSwap(current, uint32(next)) {
			return
		}
	}
}

func mustBeValid(state State) {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid pin state %d", uint8(state)))
	}
}
