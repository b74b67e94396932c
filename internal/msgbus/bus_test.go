package msgbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventKind     Kind = "test-event"
	testBroadcastKind Kind = "test-broadcast"
)

type testEvent struct {
	EventTag
	Payload int
}

func (testEvent) Kind() Kind { return testEventKind }

func newTestEvent(payload int) testEvent {
	return testEvent{EventTag: NewEventTag(), Payload: payload}
}

type testBroadcast struct {
	Seq int
}

func (testBroadcast) Kind() Kind { return testBroadcastKind }

func TestBus_SendEventNoSubscriber(t *testing.T) {
	b := New()
	require.Nil(t, b.SendEvent(newTestEvent(1)), "event with no subscriber must return nil promise")
}

func TestBus_SendEventRoundRobin(t *testing.T) {
	b := New()
	b.Register("worker-1")
	b.Register("worker-2")
	b.SubscribeEvent(testEventKind, "worker-1")
	b.SubscribeEvent(testEventKind, "worker-2")

	for i := 0; i < 4; i++ {
		require.NotNil(t, b.SendEvent(newTestEvent(i)))
	}

	// Strict round-robin: each of the two workers got exactly two, in
	// posting order.
	for _, name := range []string{"worker-1", "worker-2"} {
		assert.Equal(t, 2, b.MailboxLen(name), "mailbox %s", name)
	}

	first, err := b.AwaitMessage("worker-1")
	require.NoError(t, err)
	second, err := b.AwaitMessage("worker-1")
	require.NoError(t, err)
	assert.Equal(t, 0, first.(testEvent).Payload)
	assert.Equal(t, 2, second.(testEvent).Payload)

	first, err = b.AwaitMessage("worker-2")
	require.NoError(t, err)
	second, err = b.AwaitMessage("worker-2")
	require.NoError(t, err)
	assert.Equal(t, 1, first.(testEvent).Payload)
	assert.Equal(t, 3, second.(testEvent).Payload)
}

func TestBus_SubscribeIdempotent(t *testing.T) {
	b := New()
	b.Register("worker-1")
	b.SubscribeEvent(testEventKind, "worker-1")
	b.SubscribeEvent(testEventKind, "worker-1")

	b.SendEvent(newTestEvent(1))
	b.SendEvent(newTestEvent(2))

	assert.Equal(t, 2, b.MailboxLen("worker-1"))
}

func TestBus_BroadcastFanOutOrder(t *testing.T) {
	b := New()
	b.Register("a")
	b.Register("b")
	b.SubscribeBroadcast(testBroadcastKind, "a")
	b.SubscribeBroadcast(testBroadcastKind, "b")

	for i := 1; i <= 3; i++ {
		b.SendBroadcast(testBroadcast{Seq: i})
	}

	for _, name := range []string{"a", "b"} {
		for i := 1; i <= 3; i++ {
			m, err := b.AwaitMessage(name)
			require.NoError(t, err)
			assert.Equal(t, i, m.(testBroadcast).Seq, "recipient %s", name)
		}
	}
}

func TestBus_CompleteResolvesPromise(t *testing.T) {
	b := New()
	b.Register("worker-1")
	b.SubscribeEvent(testEventKind, "worker-1")

	e := newTestEvent(7)
	p := b.SendEvent(e)
	require.NotNil(t, p)
	require.False(t, p.IsResolved())

	b.Complete(e, true)

	v, ok := p.AwaitFor(time.Second)
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestBus_CompleteUnknownEventIgnored(t *testing.T) {
	b := New()
	// Must not panic.
	b.Complete(newTestEvent(1), true)
}

func TestBus_UnregisterCleansUp(t *testing.T) {
	b := New()
	b.Register("worker-1")
	b.Register("worker-2")
	b.SubscribeEvent(testEventKind, "worker-1")
	b.SubscribeEvent(testEventKind, "worker-2")

	// A pending promise targeted at worker-1 is dropped on unregister.
	e := newTestEvent(1)
	p := b.SendEvent(e)
	require.NotNil(t, p)

	b.Unregister("worker-1")
	require.False(t, b.Registered("worker-1"))

	b.Complete(e, true)
	assert.False(t, p.IsResolved(), "promise for unregistered target must stay dropped")

	// All subsequent events land on the remaining subscriber.
	b.SendEvent(newTestEvent(2))
	b.SendEvent(newTestEvent(3))
	assert.Equal(t, 2, b.MailboxLen("worker-2"))
}

func TestBus_AwaitMessageBlocks(t *testing.T) {
	b := New()
	b.Register("worker-1")
	b.SubscribeBroadcast(testBroadcastKind, "worker-1")

	got := make(chan Message, 1)
	go func() {
		m, err := b.AwaitMessage("worker-1")
		if err == nil {
			got <- m
		}
	}()

	select {
	case <-got:
		t.Fatal("await returned before any message was sent")
	case <-time.After(20 * time.Millisecond):
	}

	b.SendBroadcast(testBroadcast{Seq: 1})

	select {
	case m := <-got:
		assert.Equal(t, 1, m.(testBroadcast).Seq)
	case <-time.After(time.Second):
		t.Fatal("await did not return after send")
	}
}

func TestBus_AwaitMessageUnregistered(t *testing.T) {
	b := New()
	_, err := b.AwaitMessage("ghost")
	assert.ErrorIs(t, err, ErrNotRegistered)
}
