package events_test

import (
	"testing"

	"convoy/internal/events"
)

func TestPublishAssignsMonotonicSequence(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	defer cancel()

	first := bus.Publish(events.Event{Kind: events.KindProgress, JobID: "a"})
	second := bus.Publish(events.Event{Kind: events.KindProgress, JobID: "a"})
	if second != first+1 {
		t.Fatalf("sequence not monotonic: %d then %d", first, second)
	}

	got := <-ch
	if got.Seq != first || got.JobID != "a" {
		t.Fatalf("unexpected event: %#v", got)
	}
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	defer cancel()

	// Overflow the buffer without draining; Publish must not block.
	total := 200
	for i := 0; i < total; i++ {
		bus.Publish(events.Event{Kind: events.KindProgress, JobID: "a", Percent: float64(i)})
	}

	var received []events.Event
	for {
		select {
		case evt := <-ch:
			received = append(received, evt)
			continue
		default:
		}
		break
	}

	if len(received) == 0 || len(received) >= total {
		t.Fatalf("expected a bounded suffix of events, got %d", len(received))
	}
	// The surviving events are the newest ones, in order.
	last := received[len(received)-1]
	if last.Seq != uint64(total) {
		t.Fatalf("newest event seq = %d, want %d", last.Seq, total)
	}
	for i := 1; i < len(received); i++ {
		if received[i].Seq != received[i-1].Seq+1 {
			t.Fatalf("gap inside surviving suffix: %d then %d", received[i-1].Seq, received[i].Seq)
		}
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	bus := events.NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	cancel()

	bus.Publish(events.Event{Kind: events.KindJobsCleared})
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after cancel")
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	bus := events.NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after bus close")
	}

	// Publishing after close is a no-op and does not advance the sequence.
	if seq := bus.Publish(events.Event{Kind: events.KindProgress}); seq != 0 {
		t.Fatalf("unexpected sequence after close: %d", seq)
	}

	late, lateCancel := bus.Subscribe()
	defer lateCancel()
	if _, ok := <-late; ok {
		t.Fatal("expected closed channel for post-close subscriber")
	}
}
