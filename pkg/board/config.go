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
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/binkynet/PinSim/pkg/pins"
)

// Config of a board.
//
// Example:
//
//	{
//	  "name": "i2c-test",
//	  "wires": [
//	    {"name": "sda", "pull": "high", "drivers": [
//	      {"name": "master", "mode": "open-drain"},
//	      {"name": "slave", "mode": "open-drain"}
//	    ]},
//	    {"name": "led", "drivers": [{"name": "mcu", "initial": "low"}]}
//	  ]
//	}
type Config struct {
	Name  string       `json:"name"`
	Wires []WireConfig `json:"wires"`
}

// WireConfig describes a single wire of a board.
type WireConfig struct {
	Name string `json:"name"`
	// State of the wire when no driver drives it
	Pull    pins.State     `json:"pull"`
	Drivers []DriverConfig `json:"drivers,omitempty"`
}

// DriverConfig describes a driver connected to a wire.
type DriverConfig struct {
	Name string    `json:"name"`
	Mode pins.Mode `json:"mode"`
	// Initial command: high calls SetHigh, low calls SetLow,
	// floating leaves the driver released.
	Initial pins.State `json:"initial,omitempty"`
}

// LoadConfig reads a board configuration from a JSON file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read board config %s", path)
	}
	if err := json.Unmarshal(content, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse board config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate the configuration.
func (c Config) Validate() error {
	wires := make(map[string]struct{}, len(c.Wires))
	for i, w := range c.Wires {
		if err := w.Validate(); err != nil {
			return errors.Wrapf(err, "wire %d", i)
		}
		if _, found := wires[w.Name]; found {
			return errors.Wrapf(InvalidArgumentError, "duplicate wire '%s'", w.Name)
		}
		wires[w.Name] = struct{}{}
	}
	return nil
}

// Validate the configuration.
func (c WireConfig) Validate() error {
	if c.Name == "" {
		return errors.Wrap(InvalidArgumentError, "wire name missing")
	}
	if !c.Pull.IsValid() {
		return errors.Wrapf(InvalidArgumentError, "invalid pull of wire '%s'", c.Name)
	}
	drivers := make(map[string]struct{}, len(c.Drivers))
	for _, d := range c.Drivers {
		if d.Name == "" {
			return errors.Wrapf(InvalidArgumentError, "driver name missing on wire '%s'", c.Name)
		}
		if _, found := drivers[d.Name]; found {
			return errors.Wrapf(InvalidArgumentError, "duplicate driver '%s' on wire '%s'", d.Name, c.Name)
		}
		if d.Mode != pins.PushPull && d.Mode != pins.OpenDrain {
			return errors.Wrapf(InvalidArgumentError, "invalid mode of driver '%s' on wire '%s'", d.Name, c.Name)
		}
		drivers[d.Name] = struct{}{}
	}
	return nil
}
