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
package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/binkynet/PinSim/pkg/board"
	"github.com/binkynet/PinSim/pkg/pins"
	"github.com/binkynet/PinSim/pkg/service/bridge"
)

const testBoardConfig = `{
  "name": "test",
  "wires": [
    {"name": "sda", "pull": "high", "drivers": [
      {"name": "master", "mode": "open-drain"}
    ]}
  ]
}`

func newTestService(t *testing.T) (Service, string) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "board.json")
	if err := os.WriteFile(configPath, []byte(testBoardConfig), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	vcdPath := filepath.Join(dir, "dump.vcd")
	s, err := NewService(Config{
		ProgramVersion:  "test",
		BoardConfigPath: configPath,
		VCDPath:         vcdPath,
		PinCount:        2,
	}, Dependencies{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return s, vcdPath
}

func TestNewService(t *testing.T) {
	s, vcdPath := newTestService(t)
	if s.Board().Name() != "test" {
		t.Errorf("Unexpected board name %s", s.Board().Name())
	}
	if s.Bridge().PinCount() != 2 {
		t.Errorf("Expected 2 pins, got %d", s.Bridge().PinCount())
	}
	if err := s.Board().Do("sda", "master", board.ActionHigh); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	out, err := s.Bridge().Output(1, false, true)
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	out.Write(false)
	// Not part of the dump
	if _, err := s.Board().AddWire(board.WireConfig{Name: "extra"}); err != nil {
		t.Fatalf("AddWire failed: %v", err)
	}
	d, _ := s.Board().AddDriver("extra", "x", pins.PushPull)
	d.SetHigh()

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Closing twice is fine
	if err := s.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}

	content, err := os.ReadFile(vcdPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	dump := string(content)
	for _, expected := range []string{
		"$version\n\tpinsim test\n$end",
		"$scope module test $end",
		" sda $end",
		" " + bridge.PinWireName(1) + " $end",
		" " + bridge.PinWireName(2) + " $end",
		" led-green $end",
		" led-red $end",
	} {
		if !strings.Contains(dump, expected) {
			t.Errorf("Expected dump to contain %q, got:\n%s", expected, dump)
		}
	}
	if strings.Contains(dump, "extra") {
		t.Errorf("Expected dump not to contain runtime wire, got:\n%s", dump)
	}
}

func TestNewServiceInvalidConfig(t *testing.T) {
	if _, err := NewService(Config{
		BoardConfigPath: filepath.Join(t.TempDir(), "missing.json"),
	}, Dependencies{Logger: zerolog.Nop()}); err == nil {
		t.Error("Expected error for missing board config")
	}
}

func TestRun(t *testing.T) {
	s, err := NewService(Config{PinCount: 1}, Dependencies{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if s.Board().Name() != defaultBoardName {
		t.Errorf("Unexpected board name %s", s.Board().Name())
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	// The green led is on once the devices are configured
	deadline := time.Now().Add(time.Second * 5)
	for {
		if _, found := s.Devices().GPIOByID("gpio"); found {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timeout waiting for devices")
		}
		time.Sleep(time.Millisecond * 10)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run failed: %v", err)
		}
	case <-time.After(time.Second * 5):
		t.Fatal("Timeout waiting for Run to return")
	}
}
