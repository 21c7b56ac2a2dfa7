// Package events fans out the ledger's narration to registered subscribers.
package events

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// messageBuffer is the per-subscriber buffer. A message is dropped for a
// subscriber whose buffer is full.
const messageBuffer = 100

// Events maintains a mapping of subscriber id and channels so goroutines
// can register and receive events.
type Events struct {
	mu       sync.RWMutex
	m        map[string]chan string
	dropped  map[string]int
	shutdown bool
}

// New constructs an Events value for registering and receiving events.
func New() *Events {
	return &Events{
		m:       make(map[string]chan string),
		dropped: make(map[string]int),
	}
}

// Shutdown closes and removes all channels that were provided by the calls
// to Acquire. Later calls to Acquire return a closed channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		delete(evt.dropped, id)
		close(ch)
	}

	evt.shutdown = true
}

// Acquire takes a subscriber id and returns a channel that can be used to
// receive events. An empty id gets a generated one, which is returned.
func (evt *Events) Acquire(id string) (string, <-chan string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}

	if evt.shutdown {
		ch := make(chan string)
		close(ch)
		return id, ch
	}

	if ch, exists := evt.m[id]; exists {
		return id, ch
	}

	ch := make(chan string, messageBuffer)
	evt.m[id] = ch

	return id, ch
}

// Release closes and removes the channel that was provided by the call to
// Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	delete(evt.dropped, id)
	close(ch)

	return nil
}

// Send signals a message to every registered channel. Send will not block
// waiting for a receiver on any given channel.
func (evt *Events) Send(s string) {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		select {
		case ch <- s:
		default:
			evt.dropped[id]++
		}
	}
}

// Dropped returns the number of messages dropped for the subscriber.
func (evt *Events) Dropped(id string) int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return evt.dropped[id]
}

// Subscribers returns the number of registered subscribers.
func (evt *Events) Subscribers() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}
