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
package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBackoffNext(t *testing.T) {
	b := Backoff{Initial: time.Millisecond, Max: time.Millisecond * 3, Factor: 2}
	delay := b.Initial
	var got []time.Duration
	for i := 0; i < 4; i++ {
		delay = b.next(delay)
		got = append(got, delay)
	}
	expected := []time.Duration{2 * time.Millisecond, 3 * time.Millisecond, 3 * time.Millisecond, 3 * time.Millisecond}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Delay %d: expected %s, got %s", i, expected[i], got[i])
		}
	}
}

func TestUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	b := Backoff{Initial: time.Microsecond, Max: time.Millisecond, Factor: 2}
	err := UntilCanceledWithBackoff(ctx, zerolog.Nop(), "test", b, func() error {
		calls++
		if calls == 5 {
			cancel()
			return nil
		}
		return errors.New("failure")
	})
	if err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
	if calls != 5 {
		t.Errorf("Expected 5 calls, got %d", calls)
	}

	// Canceled context does not call at all
	calls = 0
	UntilCanceled(ctx, zerolog.Nop(), "test", func() error {
		calls++
		return nil
	})
	if calls != 0 {
		t.Errorf("Expected no calls, got %d", calls)
	}
}
