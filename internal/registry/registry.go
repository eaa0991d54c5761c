package registry

import "sync"

// Registry hands out per-auction execution lanes. All state transitions for
// one auction (bid admission, settlement) must run inside that auction's
// lane; lanes for different auctions are fully independent. There is no
// global lock beyond the map guard, which is never held while a lane runs.
type Registry struct {
	mu    sync.Mutex
	lanes map[string]*lane
}

// lane is the serialization unit for a single auction. refs counts callers
// holding or waiting on the lane so idle entries can be dropped from the map.
type lane struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty lane registry
func New() *Registry {
	return &Registry{lanes: make(map[string]*lane)}
}

// WithLane runs work as the sole active unit of work for auctionID. Callers
// for the same auction block until the lane is free; callers for other
// auctions proceed concurrently. The lane is released even if work panics.
func (r *Registry) WithLane(auctionID string, work func() error) error {
	l := r.checkout(auctionID)
	l.mu.Lock()
	defer func() {
		l.mu.Unlock()
		r.checkin(auctionID, l)
	}()
	return work()
}

func (r *Registry) checkout(auctionID string) *lane {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.lanes[auctionID]
	if !ok {
		l = &lane{}
		r.lanes[auctionID] = l
	}
	l.refs++
	return l
}

func (r *Registry) checkin(auctionID string, l *lane) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(r.lanes, auctionID)
	}
}

// ActiveLanes returns how many auctions currently have a held or contended
// lane. Exposed for tests and operational logging.
func (r *Registry) ActiveLanes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lanes)
}
