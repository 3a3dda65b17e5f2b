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
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"

	"github.com/binkynet/PinSim/pkg/board"
)

// UI serves a terminal UI of a board to SSH sessions.
type UI struct {
	board     *board.Board
	startedAt time.Time
	changes   atomic.Uint64
	cancel    func()
}

// New creates a UI for the given board.
// Level changes are counted while the board runs.
func New(b *board.Board) *UI {
	u := &UI{
		board:     b,
		startedAt: time.Now(),
	}
	u.cancel = b.Subscribe(func(board.Change) {
		u.changes.Add(1)
	})
	return u
}

// Close stops counting changes.
func (u *UI) Close() {
	u.cancel()
}

// Handler creates the model for a new SSH session.
func (u *UI) Handler(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := s.Pty()
	r := NewRoot(u)
	r.term = pty.Term
	r.width = pty.Window.Width
	r.height = pty.Window.Height
	return r, []tea.ProgramOption{tea.WithAltScreen()}
}
