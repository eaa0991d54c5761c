package notifier

import "sync"

// BidEvent is what watchers of an auction receive for every accepted bid.
type BidEvent struct {
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
	Bidder  string `json:"bidder"`
}

// subscriberBuffer bounds how far a slow subscriber may fall behind before
// events are dropped for it. Delivery is best-effort, at-most-once.
const subscriberBuffer = 16

// Notifier fans accepted-bid events out to subscribers, one topic per
// auction. Topics are independent; publishing never blocks.
type Notifier struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
}

// Subscription is one watcher's membership in an auction's topic.
// Events arrive on C in publish order until Close is called.
type Subscription struct {
	C chan BidEvent

	n         *Notifier
	auctionID string
	once      sync.Once
}

// New creates a Notifier with no topics
func New() *Notifier {
	return &Notifier{topics: make(map[string]map[*Subscription]struct{})}
}

// Subscribe joins the topic for auctionID, creating it on first interest.
func (n *Notifier) Subscribe(auctionID string) *Subscription {
	sub := &Subscription{
		C:         make(chan BidEvent, subscriberBuffer),
		n:         n,
		auctionID: auctionID,
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	subs, ok := n.topics[auctionID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		n.topics[auctionID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Close leaves the topic and closes the event channel. Safe to call more
// than once; events published after Close are not delivered.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.n.mu.Lock()
		if subs, ok := s.n.topics[s.auctionID]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.n.topics, s.auctionID)
			}
		}
		s.n.mu.Unlock()
		close(s.C)
	})
}

// Publish delivers ev to every current subscriber of auctionID's topic.
// Subscribers whose buffer is full miss the event rather than stall the
// publisher.
func (n *Notifier) Publish(auctionID string, ev BidEvent) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for sub := range n.topics[auctionID] {
		select {
		case sub.C <- ev:
		default:
		}
	}
}

// Subscribers returns the current subscriber count for an auction's topic.
func (n *Notifier) Subscribers(auctionID string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.topics[auctionID])
}
