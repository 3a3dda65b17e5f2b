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
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/binkynet/PinSim/pkg/board"
	"github.com/binkynet/PinSim/pkg/pins"
)

func newTestRoot(t *testing.T) (*board.Board, Root) {
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
	u := New(b)
	t.Cleanup(u.Close)
	return b, NewRoot(u)
}

func press(r Root, keys ...string) Root {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ := r.Update(msg)
		r = m.(Root)
	}
	return r
}

func TestRootSelection(t *testing.T) {
	_, r := newTestRoot(t)
	r = press(r, "up", "left")
	if r.wire != 0 || r.driver != 0 {
		t.Errorf("Expected selection 0/0, got %d/%d", r.wire, r.driver)
	}
	r = press(r, "right", "right", "right")
	if r.driver != 1 {
		t.Errorf("Expected driver 1, got %d", r.driver)
	}
	r = press(r, "down")
	if r.wire != 1 || r.driver != 0 {
		t.Errorf("Expected selection 1/0, got %d/%d", r.wire, r.driver)
	}
	r = press(r, "down", "j")
	if r.wire != 1 {
		t.Errorf("Expected wire 1, got %d", r.wire)
	}
}

func TestRootActions(t *testing.T) {
	b, r := newTestRoot(t)

	// master sets high, which pulls the open-drain line low
	r = press(r, "h")
	if level, _ := b.Level("sda"); level != pins.Low {
		t.Errorf("Expected sda low, got %s", level)
	}
	r = press(r, "t")
	if level, _ := b.Level("sda"); level != pins.High {
		t.Errorf("Expected sda high, got %s", level)
	}

	// other drives high against mcu
	r = press(r, "down", "right", "h")
	if r.lastErr == "" {
		t.Error("Expected short circuit error to be shown")
	}
	if !strings.Contains(r.View(), "SHORT") {
		t.Error("Expected view to show short circuit")
	}
	r = press(r, "r")
	if r.lastErr != "" {
		t.Errorf("Expected error to be cleared, got %s", r.lastErr)
	}
	if level, _ := b.Level("led"); level != pins.Low {
		t.Errorf("Expected led low, got %s", level)
	}
	if strings.Contains(r.View(), "SHORT") {
		t.Error("Expected view not to show short circuit")
	}
}

func TestRootQuit(t *testing.T) {
	_, r := newTestRoot(t)
	_, cmd := r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected quit message")
	}
}
