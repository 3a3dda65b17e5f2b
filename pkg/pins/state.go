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
	"strings"

	"github.com/pkg/errors"
)

// State is the logical state of a digital line.
type State uint8

const (
	// Floating potential (not connected / High-Z)
	Floating State = iota
	// Logical low
	Low
	// Logical high
	High
)

// IsValid returns true when s is one of the known states.
func (s State) IsValid() bool {
	return s <= High
}

func (s State) String() string {
	switch s {
	case Floating:
		return "floating"
	case Low:
		return "low"
	case High:
		return "high"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// ParseState parses a textual state.
func ParseState(str string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "high", "1", "h", "on":
		return High, nil
	case "low", "0", "l", "off":
		return Low, nil
	case "floating", "float", "z", "hi-z", "":
		return Floating, nil
	}
	return Floating, errors.Errorf("invalid pin state '%s'", str)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, errors.Errorf("invalid pin state %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	v, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
