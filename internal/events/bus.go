// Package events carries job lifecycle notifications between the converter
// worker and in-process consumers such as the workflow synchronizer.
package events

import (
	"sync"
)

// Kind identifies the class of a bus event.
type Kind string

const (
	KindProgress           Kind = "progress"
	KindJobUpdated         Kind = "job_updated"
	KindConversionComplete Kind = "conversion_complete"
	KindConversionFailed   Kind = "conversion_failed"
	KindJobsCleared        Kind = "jobs_cleared"
)

// Event is a single bus notification. Seq is process-monotonic across all
// kinds; Revision is the job revision the publisher observed, so consumers
// can reject events that arrive after a newer update has already landed.
type Event struct {
	Seq      uint64
	Kind     Kind
	JobID    string
	Revision int64
	Percent  float64
	Message  string
}

// defaultBuffer is the per-subscriber channel capacity.
const defaultBuffer = 64

// Bus is an in-process publish/subscribe hub. Publishing never blocks: a
// subscriber that falls behind loses its oldest buffered events first.
type Bus struct {
	mu     sync.Mutex
	seq    uint64
	nextID int
	subs   map[int]chan Event
	closed bool
}

// NewBus returns an empty bus ready for subscribers.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a consumer and returns its event channel alongside a
// cancel function. The channel is closed on cancel and on bus Close.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	ch := make(chan Event, defaultBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish stamps the event with the next sequence number and delivers it to
// every subscriber without blocking. The assigned sequence is returned.
func (b *Bus) Publish(event Event) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return b.seq
	}

	b.seq++
	event.Seq = b.seq

	for _, ch := range b.subs {
		for {
			select {
			case ch <- event:
			default:
				// Full buffer: drop the oldest event and retry.
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
	return event.Seq
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
