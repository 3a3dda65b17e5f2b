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

package bridge

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/binkynet/PinSim/pkg/board"
	"github.com/binkynet/PinSim/pkg/hal"
	"github.com/binkynet/PinSim/pkg/pins"
	"github.com/binkynet/PinSim/pkg/wire"
)

const (
	// DriverName is the name of the drivers the bridge connects to wires.
	DriverName = "bridge"
	// GreenLEDWire is the name of the wire of the green status led.
	GreenLEDWire = "led-green"
	// RedLEDWire is the name of the wire of the red status led.
	RedLEDWire = "led-red"
)

// PinWireName returns the name of the wire of the GPIO pin with given number.
func PinWireName(pinNumber int) string {
	return "gpio" + strconv.Itoa(pinNumber)
}

type virtualBridge struct {
	log      zerolog.Logger
	board    *board.Board
	pinCount int
	greenLed statusLed
	redLed   statusLed
}

// NewVirtualBridge implements the bridge on top of the wires of a board.
// GPIO pin N is wire "gpioN", which is created pulled-up when the board
// does not have it.
func NewVirtualBridge(b *board.Board, pinCount int, log zerolog.Logger) (API, error) {
	if pinCount < 0 {
		return nil, errors.Errorf("invalid pin count %d", pinCount)
	}
	p := &virtualBridge{
		log:      log.With().Str("component", "bridge").Logger(),
		board:    b,
		pinCount: pinCount,
	}
	green, err := p.output(GreenLEDWire, pins.Floating, false, false)
	if err != nil {
		return nil, errors.Wrap(err, "Output[greenLed] failed")
	}
	red, err := p.output(RedLEDWire, pins.Floating, false, false)
	if err != nil {
		return nil, errors.Wrap(err, "Output[redLed] failed")
	}
	p.greenLed.pin = green
	p.redLed.pin = red
	return p, nil
}

// Returns number of local pins
func (p *virtualBridge) PinCount() int {
	return p.pinCount
}

// Input initializes a GPIO input pin with the given pin number.
// A bridge driver left behind by an earlier Output is released.
func (p *virtualBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	if err := p.checkPin(pinNumber); err != nil {
		return nil, err
	}
	name := PinWireName(pinNumber)
	w, err := p.ensureWire(name, pins.High)
	if err != nil {
		return nil, err
	}
	if d, err := p.board.Driver(name, DriverName); err == nil {
		if err := wire.Catch(func() { d.Release() }); err != nil {
			return nil, maskAny(err)
		}
	}
	return &inputPin{
		pin:       w.ConnectInputPin(),
		label:     name,
		activeLow: activeLow,
	}, nil
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *virtualBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	if err := p.checkPin(pinNumber); err != nil {
		return nil, err
	}
	return p.output(PinWireName(pinNumber), pins.High, activeLow, initialValue)
}

// Turn Green status led on/off
func (p *virtualBridge) SetGreenLED(on bool) error {
	if err := p.greenLed.Set(on); err != nil {
		return errors.Wrap(err, "Set[greenLed] failed")
	}
	return nil
}

// Turn Red status led on/off
func (p *virtualBridge) SetRedLED(on bool) error {
	if err := p.redLed.Set(on); err != nil {
		return errors.Wrap(err, "Set[redLed] failed")
	}
	return nil
}

// Blink Green status led with given duration between on/off
func (p *virtualBridge) BlinkGreenLED(delay time.Duration) error {
	if err := p.greenLed.Blink(delay); err != nil {
		return errors.Wrap(err, "Blink[greenLed] failed")
	}
	return nil
}

// Blink Red status led with given duration between on/off
func (p *virtualBridge) BlinkRedLED(delay time.Duration) error {
	if err := p.redLed.Blink(delay); err != nil {
		return errors.Wrap(err, "Blink[redLed] failed")
	}
	return nil
}

// Close stops blinking leds.
// Pins stay connected, since the wires belong to the board.
func (p *virtualBridge) Close() error {
	p.greenLed.Stop()
	p.redLed.Stop()
	return nil
}

func (p *virtualBridge) checkPin(pinNumber int) error {
	if pinNumber < 1 || pinNumber > p.pinCount {
		return errors.Wrapf(InvalidPinError, "Pin must be between 1 and %d, got %d", p.pinCount, pinNumber)
	}
	return nil
}

// output connects (or reuses) the bridge driver of the wire with given name.
func (p *virtualBridge) output(name string, pull pins.State, activeLow, initialValue bool) (OutputPin, error) {
	if _, err := p.ensureWire(name, pull); err != nil {
		return nil, err
	}
	d, err := p.board.Driver(name, DriverName)
	if board.IsNotFound(err) {
		d, err = p.board.AddDriver(name, DriverName, pins.PushPull)
	}
	if err != nil {
		return nil, maskAny(err)
	}
	op := &outputPin{
		pin:       d,
		label:     name,
		activeLow: activeLow,
	}
	if err := op.Write(initialValue); err != nil {
		return nil, err
	}
	p.log.Debug().
		Str("wire", name).
		Bool("active-low", activeLow).
		Bool("initial", initialValue).
		Msg("Configured output")
	return op, nil
}

// ensureWire returns the wire with given name, adding it to the board
// when needed.
func (p *virtualBridge) ensureWire(name string, pull pins.State) (*wire.Wire, error) {
	for {
		w, err := p.board.Wire(name)
		if err == nil {
			return w, nil
		} else if !board.IsNotFound(err) {
			return nil, maskAny(err)
		}
		w, err = p.board.AddWire(board.WireConfig{Name: name, Pull: pull})
		if err == nil {
			return w, nil
		} else if errors.Cause(err) != board.AlreadyExistsError {
			return nil, maskAny(err)
		}
		// Added concurrently, try again
	}
}

type inputPin struct {
	pin       hal.InputPin
	label     string
	activeLow bool
}

// Read the logical value of the pin.
func (ip *inputPin) Read() (bool, error) {
	pinReadCounters.WithLabelValues(ip.label).Inc()
	var high bool
	var err error
	if serr := wire.Catch(func() { high, err = hal.Read(ip.pin) }); serr != nil {
		err = serr
	}
	if err != nil {
		pinErrorCounters.WithLabelValues(ip.label).Inc()
		return false, maskAny(err)
	}
	return high != ip.activeLow, nil
}

type outputPin struct {
	pin       hal.OutputPin
	label     string
	activeLow bool
}

// Write the logical value of the pin.
func (op *outputPin) Write(value bool) error {
	pinWriteCounters.WithLabelValues(op.label).Inc()
	var err error
	if serr := wire.Catch(func() { err = hal.Set(op.pin, value != op.activeLow) }); serr != nil {
		err = serr
	}
	if err != nil {
		pinErrorCounters.WithLabelValues(op.label).Inc()
		return errors.Wrapf(err, "write %t to %s", value, op.label)
	}
	return nil
}
