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

// Mode describes how an output pin drives its line.
type Mode uint8

const (
	// PushPull drives the line actively high and low.
	PushPull Mode = iota
	// OpenDrain pulls the line low when set high and leaves it
	// floating when set low.
	OpenDrain
)

func (m Mode) String() string {
	switch m {
	case PushPull:
		return "push-pull"
	case OpenDrain:
		return "open-drain"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode parses a textual driver mode.
func ParseMode(str string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "push-pull", "pushpull", "pp", "":
		return PushPull, nil
	case "open-drain", "opendrain", "od":
		return OpenDrain, nil
	}
	return PushPull, errors.Errorf("invalid pin mode '%s'", str)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// HighState returns the state written to the line by set-high.
func (m Mode) HighState() State {
	if m == OpenDrain {
		return Low
	}
	return High
}

// LowState returns the state written to the line by set-low.
func (m Mode) LowState() State {
	if m == OpenDrain {
		return Floating
	}
	return Low
}

// IsSetHigh returns true when the given driver state is what set-high writes.
func (m Mode) IsSetHigh(s State) bool {
	return s == m.HighState()
}

// IsSetLow returns true when the given driver state is what set-low writes.
func (m Mode) IsSetLow(s State) bool {
	return s == m.LowState()
}

// Toggle returns the driver state that follows s when toggling.
// An open-drain driver found in the High state (which it never writes
// itself) goes to Floating.
func (m Mode) Toggle(s State) State {
	if m == OpenDrain {
		if s == Floating {
			return Low
		}
		return Floating
	}
	if s == Low {
		return High
	}
	return Low
}
