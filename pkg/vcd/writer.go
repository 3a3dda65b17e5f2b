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
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// UnknownSignalError is returned when changing a signal that was not
	// declared in the header.
	UnknownSignalError = errors.New("unknown signal")
	// TimeError is returned when a change is older than the previous one.
	TimeError = errors.New("time moved backwards")
	maskAny   = errors.WithStack
)

// Signal is a single bit signal in a dump.
type Signal struct {
	// Name of the signal
	Name string
	// Value at time 0
	Initial Value
}

// Header of a dump.
type Header struct {
	Date    time.Time
	Version string
	// Name of the module scope containing all signals
	Scope   string
	Signals []Signal
}

// Writer writes a value change dump with a 1ns timescale.
// A Writer is not safe for concurrent use.
type Writer struct {
	w    *bufio.Writer
	ids  map[string]string
	last time.Duration
}

// NewWriter writes the header and initial values to w and returns a
// Writer for the value changes that follow.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	vw := &Writer{
		w:   bufio.NewWriter(w),
		ids: make(map[string]string, len(h.Signals)),
	}
	scope := h.Scope
	if scope == "" {
		scope = "top"
	}
	b := vw.w
	fmt.Fprintf(b, "$date\n\t%s\n$end\n", h.Date.Format(time.RFC1123))
	if h.Version != "" {
		fmt.Fprintf(b, "$version\n\t%s\n$end\n", h.Version)
	}
	fmt.Fprintf(b, "$timescale 1ns $end\n")
	fmt.Fprintf(b, "$scope module %s $end\n", reference(scope))
	for i, s := range h.Signals {
		if _, found := vw.ids[s.Name]; found {
			return nil, errors.Errorf("duplicate signal '%s'", s.Name)
		}
		id := identifier(i)
		vw.ids[s.Name] = id
		fmt.Fprintf(b, "$var wire 1 %s %s $end\n", id, reference(s.Name))
	}
	fmt.Fprintf(b, "$upscope $end\n$enddefinitions $end\n#0\n$dumpvars\n")
	for _, s := range h.Signals {
		v := s.Initial
		if v == 0 {
			v = X
		}
		fmt.Fprintf(b, "%c%s\n", v, vw.ids[s.Name])
	}
	if _, err := fmt.Fprintf(b, "$end\n"); err != nil {
		return nil, maskAny(err)
	}
	return vw, nil
}

// Change records a new value of the named signal at time t.
func (vw *Writer) Change(t time.Duration, name string, v Value) error {
	id, found := vw.ids[name]
	if !found {
		return errors.Wrapf(UnknownSignalError, "signal '%s'", name)
	}
	if t < vw.last {
		return errors.Wrapf(TimeError, "%s < %s", t, vw.last)
	}
	if t > vw.last {
		fmt.Fprintf(vw.w, "#%d\n", t.Nanoseconds())
		vw.last = t
	}
	if _, err := fmt.Fprintf(vw.w, "%c%s\n", v, id); err != nil {
		return maskAny(err)
	}
	return nil
}

// Flush buffered output to the underlying writer.
func (vw *Writer) Flush() error {
	return maskAny(vw.w.Flush())
}

// identifier returns the short VCD identifier of the i'th signal, built
// from the printable ASCII characters.
func identifier(i int) string {
	const first, count = '!', '~' - '!' + 1
	var sb strings.Builder
	for {
		sb.WriteByte(byte(first + i%count))
		i /= count
		if i == 0 {
			return sb.String()
		}
		i--
	}
}

// reference makes a name usable as VCD reference.
func reference(name string) string {
	return strings.Join(strings.Fields(name), "_")
}
