package broadcast

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysmonitor/internal/output"
)

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

func timeEvent(tick int) output.Event {
	return output.TimeEvent(tick, time.Duration(tick)*time.Second, 0)
}

func TestHub_FanOut(t *testing.T) {
	hub := newTestHub()
	a := hub.Subscribe(4)
	b := hub.Subscribe(4)

	assert.Equal(t, 2, hub.Publish(timeEvent(1)))

	for _, sub := range []*Subscription{a, b} {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, 1, ev.Time.Tick)
		default:
			t.Fatal("expected an event")
		}
	}
}

func TestHub_NoSubscribers(t *testing.T) {
	hub := newTestHub()
	assert.Equal(t, 0, hub.Publish(timeEvent(1)))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := newTestHub()
	slow := hub.Subscribe(1)
	fast := hub.Subscribe(8)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hub.Publish(timeEvent(i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Equal(t, uint64(4), slow.Dropped())
	assert.Equal(t, uint64(0), fast.Dropped())
	assert.Len(t, fast.Events(), 5)

	first := <-slow.Events()
	assert.Equal(t, 0, first.Time.Tick, "the buffered event is the oldest one")
}

func TestHub_LateSubscriberGetsNoReplay(t *testing.T) {
	hub := newTestHub()
	hub.Publish(timeEvent(1))

	late := hub.Subscribe(4)
	assert.Empty(t, late.Events())

	hub.Publish(timeEvent(2))
	ev := <-late.Events()
	assert.Equal(t, 2, ev.Time.Tick)
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := newTestHub()
	sub := hub.Subscribe(4)
	sub.Unsubscribe()
	sub.Unsubscribe()

	assert.Equal(t, 0, hub.Subscribers())
	_, open := <-sub.Events()
	assert.False(t, open)
	assert.Equal(t, 0, hub.Publish(timeEvent(1)))
}

func TestHub_Close(t *testing.T) {
	hub := newTestHub()
	sub := hub.Subscribe(4)
	hub.Close()
	hub.Close()

	_, open := <-sub.Events()
	assert.False(t, open)

	after := hub.Subscribe(4)
	_, open = <-after.Events()
	assert.False(t, open)
	sub.Unsubscribe()
}

func TestHub_ConcurrentUse(t *testing.T) {
	hub := newTestHub()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := hub.Subscribe(2)
			for j := 0; j < 10; j++ {
				hub.Publish(timeEvent(j))
			}
			sub.Unsubscribe()
		}()
	}
	wg.Wait()
	require.Equal(t, 0, hub.Subscribers())
}
