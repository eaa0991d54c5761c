package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Tests that all current subscribers of a topic receive events in publish order
func TestNotifier_PublishReachesAllSubscribers(t *testing.T) {
	n := New()

	sub1 := n.Subscribe("auction1")
	sub2 := n.Subscribe("auction1")
	defer sub1.Close()
	defer sub2.Close()

	events := []BidEvent{
		{Amount: 150, Message: "mine", Bidder: "alice"},
		{Amount: 200, Message: "outbid", Bidder: "bob"},
		{Amount: 250, Message: "final", Bidder: "alice"},
	}
	for _, ev := range events {
		n.Publish("auction1", ev)
	}

	for _, sub := range []*Subscription{sub1, sub2} {
		for _, want := range events {
			select {
			case got := <-sub.C:
				require.Equal(t, want, got)
			case <-time.After(time.Second):
				t.Fatal("subscriber did not receive event")
			}
		}
	}
}

// Tests that topics for different auctions are independent
func TestNotifier_TopicsAreIndependent(t *testing.T) {
	n := New()

	sub1 := n.Subscribe("auction1")
	sub2 := n.Subscribe("auction2")
	defer sub1.Close()
	defer sub2.Close()

	n.Publish("auction1", BidEvent{Amount: 150, Bidder: "alice"})

	select {
	case ev := <-sub1.C:
		require.Equal(t, int64(150), ev.Amount)
	case <-time.After(time.Second):
		t.Fatal("subscriber of the published topic got nothing")
	}

	select {
	case ev := <-sub2.C:
		t.Fatalf("subscriber of another topic received event: %+v", ev)
	default:
	}
}

// Tests that a closed subscription no longer receives events
func TestNotifier_CloseLeavesTopic(t *testing.T) {
	n := New()

	sub := n.Subscribe("auction1")
	require.Equal(t, 1, n.Subscribers("auction1"))

	sub.Close()
	require.Equal(t, 0, n.Subscribers("auction1"))

	// Double close is safe.
	sub.Close()

	// Publishing to a topic with no subscribers is a no-op.
	n.Publish("auction1", BidEvent{Amount: 150, Bidder: "alice"})

	_, open := <-sub.C
	require.False(t, open, "channel should be closed after Close")
}

// Tests that a slow subscriber drops events instead of stalling the publisher
func TestNotifier_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	n := New()

	sub := n.Subscribe("auction1")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		// Publish well past the subscriber buffer without draining.
		for i := 0; i < subscriberBuffer*4; i++ {
			n.Publish("auction1", BidEvent{Amount: int64(i + 1), Bidder: "alice"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	// The subscriber keeps the oldest buffered events; the rest are dropped.
	require.Len(t, sub.C, subscriberBuffer)
	first := <-sub.C
	require.Equal(t, int64(1), first.Amount)
}
