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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/binkynet/PinSim/pkg/board"
	"github.com/binkynet/PinSim/pkg/pins"
	"github.com/binkynet/PinSim/pkg/service/bridge"
	"github.com/binkynet/PinSim/pkg/wire"
)

func newTestBoard(t *testing.T) *board.Board {
	b, err := board.New(board.Config{
		Name: "test",
		Wires: []board.WireConfig{
			{Name: "sda", Pull: pins.High, Drivers: []board.DriverConfig{
				{Name: "master", Mode: pins.OpenDrain},
				{Name: "slave", Mode: pins.OpenDrain},
			}},
			{Name: "led", Drivers: []board.DriverConfig{
				{Name: "mcu", Mode: pins.PushPull, Initial: pins.Low},
				{Name: "other", Mode: pins.PushPull},
			}},
		},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("board.New failed: %v", err)
	}
	return b
}

func newTestGPIO(t *testing.T) (*board.Board, GPIO) {
	b := newTestBoard(t)
	api, err := bridge.NewVirtualBridge(b, 4, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewVirtualBridge failed: %v", err)
	}
	gpio := newLocalGPIO(api, false, func() {})
	if err := gpio.Configure(context.Background()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	return b, gpio
}

func TestLocalGPIO(t *testing.T) {
	ctx := context.Background()
	b, gpio := newTestGPIO(t)
	if gpio.PinCount() != 4 {
		t.Errorf("Expected 4 pins, got %d", gpio.PinCount())
	}

	if _, err := gpio.GetDirection(ctx, 1); !IsInvalidDirection(err) {
		t.Errorf("Expected invalid direction for unconfigured pin, got %v", err)
	}
	if err := gpio.SetDirection(ctx, 1, PinDirectionOutput); err != nil {
		t.Fatalf("SetDirection failed: %v", err)
	}
	if dir, err := gpio.GetDirection(ctx, 1); err != nil || dir != PinDirectionOutput {
		t.Errorf("Expected output, got %s, %v", dir, err)
	}
	if err := gpio.Set(ctx, 1, true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if level, _ := b.Level(bridge.PinWireName(1)); level != pins.High {
		t.Errorf("Expected high, got %s", level)
	}
	if _, err := gpio.Get(ctx, 1); !IsInvalidDirection(err) {
		t.Errorf("Expected invalid direction, got %v", err)
	}

	if err := gpio.SetDirection(ctx, 2, PinDirectionInput); err != nil {
		t.Fatalf("SetDirection failed: %v", err)
	}
	if v, err := gpio.Get(ctx, 2); err != nil || !v {
		t.Errorf("Expected pulled-up input to read true, got %t, %v", v, err)
	}
	if err := gpio.Set(ctx, 2, true); !IsInvalidDirection(err) {
		t.Errorf("Expected invalid direction, got %v", err)
	}

	for _, pin := range []DeviceIndex{0, 5} {
		if err := gpio.SetDirection(ctx, pin, PinDirectionInput); !IsInvalidPin(err) {
			t.Errorf("Expected invalid pin for %d, got %v", pin, err)
		}
	}
	if err := gpio.SetDirection(ctx, 3, PinDirection(7)); !IsInvalidDirection(err) {
		t.Errorf("Expected invalid direction, got %v", err)
	}

	// Close releases outputs
	if err := gpio.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if level, _ := b.Level(bridge.PinWireName(1)); level != pins.High {
		t.Errorf("Expected pulled-up level after close, got %s", level)
	}
	if d, err := b.Driver(bridge.PinWireName(1), bridge.DriverName); err != nil {
		t.Errorf("Driver failed: %v", err)
	} else if set, _ := d.IsSetHigh(); set {
		t.Error("Expected bridge driver to be released")
	}
}

type published struct {
	Topic   string
	Payload string
	Retain  bool
}

func newTestMirror(t *testing.T) (*board.Board, *mqttMirror, *[]published) {
	b := newTestBoard(t)
	d := newMQTTMirror(zerolog.Nop(), MQTTMirrorDeviceID, b, func() {}, "/pinsim", "localhost:1883")
	var messages []published
	d.publish = func(topic, payload string, retain bool) error {
		messages = append(messages, published{topic, payload, retain})
		return nil
	}
	return b, d, &messages
}

func TestMQTTMirrorPublish(t *testing.T) {
	b, d, messages := newTestMirror(t)
	if d.mqttClientID != "test-mqtt" {
		t.Errorf("Unexpected client ID %s", d.mqttClientID)
	}

	d.publishAll()
	d.onChange(board.Change{Wire: "sda", Level: pins.Low})
	expected := []published{
		{"/pinsim/sda/state", "ON", true},
		{"/pinsim/led/state", "OFF", true},
		{"/pinsim/sda/state", "OFF", true},
	}
	if diff := cmp.Diff(expected, *messages); diff != "" {
		t.Errorf("Unexpected messages (-want +got):\n%s", diff)
	}

	// Shorted wires are skipped
	*messages = nil
	b.Do("led", "other", board.ActionHigh)
	d.publishAll()
	if diff := cmp.Diff([]published{{"/pinsim/sda/state", "ON", true}}, *messages); diff != "" {
		t.Errorf("Unexpected messages (-want +got):\n%s", diff)
	}
}

func TestMQTTMirrorCommands(t *testing.T) {
	b, d, _ := newTestMirror(t)

	if err := d.handleCommand("/pinsim/sda/master/command", "ON"); err != nil {
		t.Fatalf("handleCommand failed: %v", err)
	}
	if level, _ := b.Level("sda"); level != pins.Low {
		t.Errorf("Expected open-drain set-high to pull sda low, got %s", level)
	}
	if err := d.handleCommand("/pinsim/sda/master/command", "toggle"); err != nil {
		t.Fatalf("handleCommand failed: %v", err)
	}
	if level, _ := b.Level("sda"); level != pins.High {
		t.Errorf("Expected sda high, got %s", level)
	}

	if err := d.handleCommand("/pinsim/led/other/command", "on"); !wire.IsShortCircuit(err) {
		t.Errorf("Expected short circuit, got %v", err)
	}
	if err := d.handleCommand("/pinsim/led/other/command", "RELEASE"); err != nil {
		t.Errorf("handleCommand failed: %v", err)
	}

	invalid := []struct {
		topic   string
		payload string
	}{
		{"/other/sda/master/command", "ON"},
		{"/pinsim/sda/master/state", "ON"},
		{"/pinsim/sda/command", "ON"},
		{"/pinsim/sda/master/command", "maybe"},
	}
	for _, tc := range invalid {
		if err := d.handleCommand(tc.topic, tc.payload); !IsInvalidArgument(err) {
			t.Errorf("%s %s: expected invalid argument, got %v", tc.topic, tc.payload, err)
		}
	}
	if err := d.handleCommand("/pinsim/missing/master/command", "ON"); !board.IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
}

func TestParseCommand(t *testing.T) {
	tests := map[string]board.Action{
		"ON":      board.ActionHigh,
		"1":       board.ActionHigh,
		"high":    board.ActionHigh,
		"OFF":     board.ActionLow,
		"false":   board.ActionLow,
		"TOGGLE":  board.ActionToggle,
		"release": board.ActionRelease,
		"FLOAT":   board.ActionRelease,
	}
	for payload, expected := range tests {
		if action, err := parseCommand(payload); err != nil || action != expected {
			t.Errorf("parseCommand(%s) = %s, %v; expected %s", payload, action, err, expected)
		}
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	b := newTestBoard(t)
	api, err := bridge.NewVirtualBridge(b, 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewVirtualBridge failed: %v", err)
	}
	s, err := NewService(Config{}, b, api, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if diff := cmp.Diff([]string{"gpio"}, s.GetUnconfiguredDeviceIDs()); diff != "" {
		t.Errorf("Unexpected unconfigured devices (-want +got):\n%s", diff)
	}
	if _, found := s.GPIOByID(LocalGPIODeviceID); found {
		t.Error("Expected unconfigured device not to be found")
	}
	if err := s.Configure(ctx); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if diff := cmp.Diff([]string{"gpio"}, s.GetConfiguredDeviceIDs()); diff != "" {
		t.Errorf("Unexpected configured devices (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{}, s.GetUnconfiguredDeviceIDs()); diff != "" {
		t.Errorf("Unexpected unconfigured devices (-want +got):\n%s", diff)
	}
	gpio, found := s.GPIOByID(LocalGPIODeviceID)
	if !found {
		t.Fatal("Expected gpio device")
	}
	if gpio.PinCount() != 2 {
		t.Errorf("Expected 2 pins, got %d", gpio.PinCount())
	}
	if _, found := s.DeviceByID(MQTTMirrorDeviceID); found {
		t.Error("Expected no mqtt device without broker")
	}
	if err := s.Close(ctx); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
