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
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/binkynet/PinSim/pkg/board"
	"github.com/binkynet/PinSim/pkg/pins"
)

func newTestServer(t *testing.T) http.Handler {
	b, err := board.New(board.Config{
		Name: "test",
		Wires: []board.WireConfig{
			{Name: "sda", Pull: pins.High, Drivers: []board.DriverConfig{
				{Name: "master", Mode: pins.OpenDrain},
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
	s, err := New(Config{}, zerolog.Nop(), nil, b)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s.Handler()
}

func request(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode %q: %v", rec.Body.String(), err)
	}
	return result
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec := request(t, h, http.MethodGet, "/health")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "OK" {
		t.Errorf("Unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestListWires(t *testing.T) {
	h := newTestServer(t)
	rec := request(t, h, http.MethodGet, "/wires")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	expected := []board.WireStatus{
		{Name: "sda", Pull: pins.High, Level: pins.High, Drivers: []board.DriverStatus{
			{Name: "master", Mode: pins.OpenDrain, State: pins.Floating},
		}},
		{Name: "led", Pull: pins.Floating, Level: pins.Low, Drivers: []board.DriverStatus{
			{Name: "mcu", Mode: pins.PushPull, State: pins.Low},
			{Name: "other", Mode: pins.PushPull, State: pins.Floating},
		}},
	}
	if diff := cmp.Diff(expected, decode[[]board.WireStatus](t, rec)); diff != "" {
		t.Errorf("Unexpected wires (-want +got):\n%s", diff)
	}
}

func TestGetWire(t *testing.T) {
	h := newTestServer(t)
	rec := request(t, h, http.MethodGet, "/wires/sda")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ws := decode[board.WireStatus](t, rec); ws.Name != "sda" || ws.Level != pins.High {
		t.Errorf("Unexpected wire %+v", ws)
	}
	if rec := request(t, h, http.MethodGet, "/wires/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestDriverAction(t *testing.T) {
	h := newTestServer(t)

	rec := request(t, h, http.MethodPut, "/wires/sda/drivers/master/high")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ws := decode[board.WireStatus](t, rec); ws.Level != pins.Low {
		t.Errorf("Expected open-drain set-high to pull sda low, got %s", ws.Level)
	}

	rec = request(t, h, http.MethodPut, "/wires/led/drivers/other/high")
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decode[ErrorResponse](t, rec); !strings.Contains(resp.Error, "short circuit") {
		t.Errorf("Expected short circuit error, got %q", resp.Error)
	}
	if ws := decode[board.WireStatus](t, request(t, h, http.MethodGet, "/wires/led")); !ws.ShortCircuit {
		t.Error("Expected wire to report short circuit")
	}
	if rec := request(t, h, http.MethodPut, "/wires/led/drivers/other/release"); rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	if rec := request(t, h, http.MethodPut, "/wires/sda/drivers/master/blink"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if rec := request(t, h, http.MethodPut, "/wires/sda/drivers/missing/low"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}
