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
	"io"
	"sync"
	"time"

	"github.com/binkynet/PinSim/pkg/pins"
	"github.com/binkynet/PinSim/pkg/wire"
)

// Recorder records level changes of wires into a dump.
// Times are relative to the creation of the recorder.
type Recorder struct {
	mutex  sync.Mutex
	writer *Writer
	start  time.Time
	since  func(time.Time) time.Duration
	err    error
}

// NewRecorder writes the header to w and returns a recorder for changes of
// the signals in the header.
func NewRecorder(w io.Writer, h Header) (*Recorder, error) {
	if h.Date.IsZero() {
		h.Date = time.Now()
	}
	vw, err := NewWriter(w, h)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		writer: vw,
		start:  time.Now(),
		since:  time.Since,
	}, nil
}

// Observer returns a wire observer that records level changes.
// The name of the wire must be one of the signals in the header.
func (r *Recorder) Observer() wire.Observer {
	return func(name string, level pins.State) {
		r.Record(name, FromState(level))
	}
}

// Record a new value of the named signal.
// Errors are kept and returned by Err and Close.
func (r *Recorder) Record(name string, v Value) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.err != nil {
		return
	}
	r.err = r.writer.Change(r.since(r.start), name, v)
}

// Err returns the first error that occurred while recording.
func (r *Recorder) Err() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.err
}

// Close flushes the dump.
func (r *Recorder) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.writer.Flush(); err != nil && r.err == nil {
		r.err = err
	}
	return r.err
}
