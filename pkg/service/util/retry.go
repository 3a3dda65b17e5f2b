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
	"time"

	"github.com/rs/zerolog"
)

// Backoff controls the delay between calls of UntilCanceled.
type Backoff struct {
	// Delay after a successful call, and after the first failure
	Initial time.Duration
	// Upper bound of the delay after repeated failures
	Max time.Duration
	// Factor the delay grows with after every failure
	Factor float64
}

// DefaultBackoff is used by UntilCanceled.
var DefaultBackoff = Backoff{
	Initial: time.Millisecond * 10,
	Max:     time.Second * 5,
	Factor:  1.5,
}

// next returns the delay that follows the given delay after a failure.
func (b Backoff) next(delay time.Duration) time.Duration {
	delay = time.Duration(float64(delay) * b.Factor)
	if delay > b.Max {
		delay = b.Max
	}
	return delay
}

// UntilCanceled continues to call the given callback
// until the given context is canceled
func UntilCanceled(ctx context.Context, log zerolog.Logger, description string, cb func() error) error {
	return UntilCanceledWithBackoff(ctx, log, description, DefaultBackoff, cb)
}

// UntilCanceledWithBackoff continues to call the given callback until the
// given context is canceled, waiting longer after every failed call.
func UntilCanceledWithBackoff(ctx context.Context, log zerolog.Logger, description string, b Backoff, cb func() error) error {
	delay := b.Initial
	for {
		if ctx.Err() != nil {
			// Context canceled
			return nil
		}
		if err := cb(); err != nil {
			log.Warn().Err(err).Dur("delay", delay).Msgf("%s failed", description)
			delay = b.next(delay)
		} else {
			delay = b.Initial
		}
		select {
		case <-ctx.Done():
			// Context canceled
			log.Info().Msgf("Stopping %s; context canceled", description)
			return nil
		case <-time.After(delay):
			// Continue
		}
	}
}
