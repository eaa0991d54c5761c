package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/registry"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// CloseScheduler guarantees exactly one settlement per auction, at or after
// its close time and never before. One timer is registered per auction ID;
// duplicate registrations are ignored, and settlement itself no-ops when the
// auction is already settled, so a misfiring timer cannot settle twice.
type CloseScheduler struct {
	listings repository.ListingStore
	bids     repository.BidStore
	ledger   repository.Ledger
	lanes    *registry.Registry

	mu      sync.Mutex
	pending map[string]*time.Timer
	quit    chan struct{}
	stopped bool

	now func() time.Time // swapped out by tests
}

// New creates a CloseScheduler with no pending close tasks.
func New(listings repository.ListingStore, bids repository.BidStore, ledger repository.Ledger, lanes *registry.Registry) *CloseScheduler {
	return &CloseScheduler{
		listings: listings,
		bids:     bids,
		ledger:   ledger,
		lanes:    lanes,
		pending:  make(map[string]*time.Timer),
		quit:     make(chan struct{}),
		now:      time.Now,
	}
}

// Schedule registers the close task for an auction. Scheduling the same
// auction twice is a no-op; a close time already in the past fires the task
// immediately.
func (s *CloseScheduler) Schedule(auctionID string, closeAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if _, ok := s.pending[auctionID]; ok {
		return
	}

	delay := closeAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}
	s.pending[auctionID] = time.AfterFunc(delay, func() {
		s.run(auctionID)
	})
}

// ResumePending re-registers the close task for every auction that has not
// been settled yet. Called once at process start; overdue auctions settle
// immediately.
func (s *CloseScheduler) ResumePending() error {
	auctions, err := s.listings.ListUnsettled()
	if err != nil {
		return fmt.Errorf("scheduler: failed to list unsettled auctions: %w", err)
	}

	for _, auction := range auctions {
		s.Schedule(auction.AuctionID, auction.CloseAt)
	}

	if len(auctions) > 0 {
		utils.Info("resumed pending auction close tasks", map[string]any{
			"count": len(auctions),
		})
	}
	return nil
}

// Stop cancels unfired timers and tells retry loops to give up. In-flight
// settlements finish their current attempt.
func (s *CloseScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	close(s.quit)
	for auctionID, timer := range s.pending {
		timer.Stop()
		delete(s.pending, auctionID)
	}
}

// run executes the fired close task, retrying infrastructure failures with
// exponential backoff until settlement completes or the scheduler stops.
// A settlement task is never silently dropped.
func (s *CloseScheduler) run(auctionID string) {
	defer func() {
		s.mu.Lock()
		delete(s.pending, auctionID)
		s.mu.Unlock()
	}()

	for attempt := 0; ; attempt++ {
		err := s.Settle(auctionID)
		if err == nil {
			return
		}

		utils.Error("settlement failed, retrying", map[string]any{
			"auction_id": auctionID,
			"attempt":    attempt,
			"backoff":    retryBackoff(attempt).String(),
			"error":      err.Error(),
		})

		select {
		case <-time.After(retryBackoff(attempt)):
		case <-s.quit:
			utils.Warn("scheduler stopped with settlement outstanding", map[string]any{
				"auction_id": auctionID,
			})
			return
		}
	}
}

// Settle runs the close transition for one auction inside its lane:
// determine the highest bid, assign the winner and debit their balance.
// Idempotent; concurrent invocations for the same auction settle once.
func (s *CloseScheduler) Settle(auctionID string) error {
	return s.lanes.WithLane(auctionID, func() error {
		auction, err := s.listings.GetAuction(auctionID)
		if err != nil {
			if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
				// Listing is gone; nothing left to settle.
				return nil
			}
			return fmt.Errorf("scheduler: failed to load auction %s: %w", auctionID, err)
		}
		if auction.Settled() {
			return nil
		}

		settledAt := s.now().UTC()

		highest, err := s.bids.GetHighestBid(auctionID)
		if errors.Is(err, auctionerrors.ErrNoBids) {
			if err := s.listings.MarkSettled(auctionID, settledAt); err != nil {
				return fmt.Errorf("scheduler: failed to mark auction %s settled: %w", auctionID, err)
			}
			utils.Info("auction closed with no bids", map[string]any{
				"auction_id": auctionID,
			})
			return nil
		}
		if err != nil {
			return fmt.Errorf("scheduler: failed to load highest bid for auction %s: %w", auctionID, err)
		}

		if err := s.listings.SetWinner(auctionID, highest.BidderID, settledAt); err != nil {
			return fmt.Errorf("scheduler: failed to set winner for auction %s: %w", auctionID, err)
		}

		// Known settlement anomaly: the winner keeps the win even when the
		// debit cannot be applied, and the balance may go negative.
		if err := s.ledger.Debit(highest.BidderID, highest.Amount); err != nil {
			utils.Warn("winner debit failed, winner assignment stands", map[string]any{
				"auction_id": auctionID,
				"winner_id":  highest.BidderID,
				"amount":     highest.Amount,
				"error":      err.Error(),
			})
			return nil
		}

		utils.Info("auction settled", map[string]any{
			"auction_id": auctionID,
			"winner_id":  highest.BidderID,
			"amount":     highest.Amount,
		})
		return nil
	})
}

// PendingCount returns how many close tasks are currently registered.
func (s *CloseScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
