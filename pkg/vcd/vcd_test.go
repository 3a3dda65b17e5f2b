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

package vcd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/binkynet/PinSim/pkg/pins"
	"github.com/binkynet/PinSim/pkg/wire"
)

func TestValue(t *testing.T) {
	if v := FromState(pins.Low); v != V0 {
		t.Errorf("Expected V0, got %s", v)
	}
	if v := FromState(pins.High); v != V1 {
		t.Errorf("Expected V1, got %s", v)
	}
	if v := FromState(pins.Floating); v != Z {
		t.Errorf("Expected Z, got %s", v)
	}
	if s := V0.State(); s != pins.Low {
		t.Errorf("Expected low, got %s", s)
	}
	if s := V1.State(); s != pins.High {
		t.Errorf("Expected high, got %s", s)
	}
	if s := Z.State(); s != pins.Floating {
		t.Errorf("Expected floating, got %s", s)
	}
	if s := X.State(); s != pins.Floating {
		t.Errorf("Expected floating, got %s", s)
	}
}

func TestIdentifier(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		id := identifier(i)
		if seen[id] {
			t.Fatalf("Duplicate identifier %q at %d", id, i)
		}
		seen[id] = true
	}
	if id := identifier(0); id != "!" {
		t.Errorf("Expected '!', got %q", id)
	}
	if id := identifier(94); id != "!!" {
		t.Errorf("Expected '!!', got %q", id)
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, Header{
		Date:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Version: "test",
		Scope:   "board",
		Signals: []Signal{{Name: "sda", Initial: V1}, {Name: "led green"}},
	})
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}
	if err := w.Change(10*time.Nanosecond, "sda", V0); err != nil {
		t.Fatalf("Change failed: %v", err)
	}
	if err := w.Change(10*time.Nanosecond, "led green", V1); err != nil {
		t.Fatalf("Change failed: %v", err)
	}
	if err := w.Change(25*time.Nanosecond, "sda", Z); err != nil {
		t.Fatalf("Change failed: %v", err)
	}
	if err := w.Change(20*time.Nanosecond, "sda", V1); errors.Cause(err) != TimeError {
		t.Errorf("Expected TimeError, got %v", err)
	}
	if err := w.Change(30*time.Nanosecond, "scl", V1); errors.Cause(err) != UnknownSignalError {
		t.Errorf("Expected UnknownSignalError, got %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	expected := strings.Join([]string{
		"$date",
		"\tFri, 02 Jan 2026 03:04:05 UTC",
		"$end",
		"$version",
		"\ttest",
		"$end",
		"$timescale 1ns $end",
		"$scope module board $end",
		"$var wire 1 ! sda $end",
		"$var wire 1 \" led_green $end",
		"$upscope $end",
		"$enddefinitions $end",
		"#0",
		"$dumpvars",
		"1!",
		"x\"",
		"$end",
		"#10",
		"0!",
		"1\"",
		"#25",
		"z!",
		"",
	}, "\n")
	if diff := cmp.Diff(expected, buf.String()); diff != "" {
		t.Errorf("Unexpected dump (-want +got):\n%s", diff)
	}
}

func TestWriterDuplicateSignal(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewWriter(&buf, Header{Signals: []Signal{{Name: "a"}, {Name: "a"}}}); err == nil {
		t.Error("Expected error for duplicate signal")
	}
}

func TestRecorder(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRecorder(&buf, Header{Signals: []Signal{{Name: "bus", Initial: Z}}})
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	tick := time.Duration(0)
	r.since = func(time.Time) time.Duration {
		tick += 5
		return tick
	}
	w := wire.New(wire.WithName("bus"), wire.WithObserver(r.Observer()))
	pin := w.ConnectPushPullPin()
	pin.SetHigh()
	pin.SetLow()
	pin.Release()
	if err := r.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	out := buf.String()
	changes := out[strings.Index(out, "$end\n#5"):]
	expected := "$end\n#5\n1!\n#10\n0!\n#15\nz!\n"
	if diff := cmp.Diff(expected, changes); diff != "" {
		t.Errorf("Unexpected changes (-want +got):\n%s", diff)
	}
}

func TestRecorderUnknownWire(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRecorder(&buf, Header{Signals: []Signal{{Name: "bus"}}})
	if err != nil {
		t.Fatalf("NewRecorder failed: %v", err)
	}
	r.Observer()("other", pins.High)
	if err := r.Close(); errors.Cause(err) != UnknownSignalError {
		t.Errorf("Expected UnknownSignalError, got %v", err)
	}
}
