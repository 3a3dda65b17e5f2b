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
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/binkynet/PinSim/pkg/board"
	"github.com/binkynet/PinSim/pkg/pins"
)

const (
	refreshInterval = time.Millisecond * 500
)

type Root struct {
	ui     *UI
	term   string
	width  int
	height int
	help   help.Model

	statuses []board.WireStatus
	wire     int
	driver   int
	lastErr  string
}

var _ tea.Model = Root{}

// NewRoot creates the root model of a session.
func NewRoot(u *UI) Root {
	r := Root{
		ui:   u,
		help: help.New(),
	}
	r.statuses = u.board.Statuses()
	return r
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (r Root) Init() tea.Cmd {
	return doRefresh()
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (r Root) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		r = r.refresh()
		return r, doRefresh()
	case tea.WindowSizeMsg:
		r.height = msg.Height
		r.width = msg.Width
		r.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return r, tea.Quit
		case key.Matches(msg, keys.Up):
			if r.wire > 0 {
				r.wire--
				r.driver = 0
			}
		case key.Matches(msg, keys.Down):
			if r.wire+1 < len(r.statuses) {
				r.wire++
				r.driver = 0
			}
		case key.Matches(msg, keys.Left):
			if r.driver > 0 {
				r.driver--
			}
		case key.Matches(msg, keys.Right):
			if ws, ok := r.selectedWire(); ok && r.driver+1 < len(ws.Drivers) {
				r.driver++
			}
		case key.Matches(msg, keys.High):
			r = r.do(board.ActionHigh)
		case key.Matches(msg, keys.Low):
			r = r.do(board.ActionLow)
		case key.Matches(msg, keys.Toggle):
			r = r.do(board.ActionToggle)
		case key.Matches(msg, keys.Release):
			r = r.do(board.ActionRelease)
		}
	}
	return r, nil
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (r Root) View() string {
	var sb strings.Builder
	sb.WriteString(r.headerView())
	sb.WriteString("\n\n")
	for i, ws := range r.statuses {
		sb.WriteString(r.wireView(i, ws))
		sb.WriteString("\n")
	}
	if len(r.statuses) == 0 {
		sb.WriteString(dimStyle.Render("No wires"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	if r.lastErr != "" {
		sb.WriteString(errorStyle.Render(r.lastErr))
		sb.WriteString("\n")
	}
	sb.WriteString(r.help.View(keys))
	sb.WriteString("\n")
	return sb.String()
}

func (r Root) headerView() string {
	changes := r.ui.changes.Load()
	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("PinSim "+r.ui.board.Name()),
		dimStyle.Render(fmt.Sprintf(" %s level changes, started %s",
			humanize.Comma(int64(changes)), humanize.Time(r.ui.startedAt))),
	)
}

func (r Root) wireView(index int, ws board.WireStatus) string {
	level := levelView(ws.Level)
	if ws.ShortCircuit {
		level = shortStyle.Render("SHORT")
	}
	name := fmt.Sprintf("%-12s", ws.Name)
	if index == r.wire {
		name = selectedStyle.Render(name)
	}
	parts := []string{name, fmt.Sprintf("%-8s", level), dimStyle.Render("pull " + ws.Pull.String())}
	for i, d := range ws.Drivers {
		dv := fmt.Sprintf("%s(%s)=%s", d.Name, d.Mode, d.State)
		if index == r.wire && i == r.driver {
			dv = selectedStyle.Render(dv)
		}
		parts = append(parts, dv)
	}
	return strings.Join(parts, "  ")
}

func levelView(level pins.State) string {
	switch level {
	case pins.High:
		return highStyle.Render("HIGH")
	case pins.Low:
		return lowStyle.Render("LOW")
	default:
		return floatingStyle.Render("Z")
	}
}

func (r Root) selectedWire() (board.WireStatus, bool) {
	if r.wire < 0 || r.wire >= len(r.statuses) {
		return board.WireStatus{}, false
	}
	return r.statuses[r.wire], true
}

// do performs an action on the selected driver.
func (r Root) do(action board.Action) Root {
	ws, ok := r.selectedWire()
	if !ok || r.driver >= len(ws.Drivers) {
		return r
	}
	d := ws.Drivers[r.driver]
	if err := r.ui.board.Do(ws.Name, d.Name, action); err != nil {
		r.lastErr = err.Error()
	} else {
		r.lastErr = ""
	}
	return r.refresh()
}

// refresh reloads the status of all wires, keeping the selection in range.
func (r Root) refresh() Root {
	r.statuses = r.ui.board.Statuses()
	if r.wire >= len(r.statuses) {
		r.wire = len(r.statuses) - 1
	}
	if r.wire < 0 {
		r.wire = 0
	}
	if ws, ok := r.selectedWire(); ok && r.driver >= len(ws.Drivers) {
		r.driver = 0
	}
	return r
}

type refreshMsg time.Time

func doRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}
