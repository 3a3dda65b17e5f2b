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

package board

import (
	"context"
	"sync"
)

// maxQueuedChanges bounds the number of changes waiting for delivery.
// When it is reached the oldest change is dropped.
const maxQueuedChanges = 4096

// notifier queues changes without blocking the caller and hands them to
// all subscribers from a single goroutine, in order.
type notifier struct {
	mutex       sync.Mutex
	queue       []Change
	signal      chan struct{}
	subscribers []subscriber
	lastID      uint64
	dropped     uint64
}

type subscriber struct {
	id uint64
	cb func(Change)
}

func newNotifier() *notifier {
	return &notifier{
		signal: make(chan struct{}, 1),
	}
}

// push queues a change for delivery.
// Changes are not queued while nobody is subscribed.
func (n *notifier) push(c Change) {
	n.mutex.Lock()
	if len(n.subscribers) == 0 {
		n.mutex.Unlock()
		return
	}
	if len(n.queue) >= maxQueuedChanges {
		n.queue = n.queue[1:]
		n.dropped++
	}
	n.queue = append(n.queue, c)
	n.mutex.Unlock()
	select {
	case n.signal <- struct{}{}:
	default:
		// Already signaled
	}
}

// subscribe adds a callback and returns the function that removes it.
func (n *notifier) subscribe(cb func(Change)) func() {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.lastID++
	id := n.lastID
	n.subscribers = append(n.subscribers, subscriber{id: id, cb: cb})
	return func() {
		n.mutex.Lock()
		defer n.mutex.Unlock()
		for i, s := range n.subscribers {
			if s.id == id {
				n.subscribers = append(n.subscribers[:i:i], n.subscribers[i+1:]...)
				return
			}
		}
	}
}

// run delivers queued changes until the given context is canceled.
// It returns the number of changes dropped because the queue was full.
func (n *notifier) run(ctx context.Context) uint64 {
	for {
		select {
		case <-n.signal:
		case <-ctx.Done():
			n.mutex.Lock()
			defer n.mutex.Unlock()
			return n.dropped
		}
		n.mutex.Lock()
		queue := n.queue
		n.queue = nil
		subscribers := n.subscribers
		n.mutex.Unlock()
		for _, c := range queue {
			for _, s := range subscribers {
				s.cb(c)
			}
		}
	}
}
