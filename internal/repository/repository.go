package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
)

// ListingStore holds the auction listings and their settlement markers.
type ListingStore interface {
	CreateAuction(auction model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	ListOpen(now time.Time) ([]model.Auction, error)
	ListUnsettled() ([]model.Auction, error)
	SetWinner(auctionID, winnerID string, settledAt time.Time) error
	MarkSettled(auctionID string, settledAt time.Time) error
}

// BidStore is the append-only per-auction bid history.
type BidStore interface {
	AppendBid(bid model.Bid) error
	GetBidsByAuction(auctionID string) ([]model.Bid, error)
	GetHighestBid(auctionID string) (model.Bid, error)
}

// Ledger holds user balances and applies atomic debits.
type Ledger interface {
	GetUser(userID string) (model.User, error)
	Debit(userID string, amount int64) error
}

// MemoryRepo is a concurrency-safe in-memory implementation of
// ListingStore, BidStore and Ledger.
type MemoryRepo struct {
	mu       sync.RWMutex
	auctions map[string]model.Auction // key: auctionID
	bids     map[string][]model.Bid   // key: auctionID -> bids in append order
	users    map[string]model.User    // key: userID
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions: make(map[string]model.Auction),
		bids:     make(map[string][]model.Bid),
		users:    make(map[string]model.User),
	}
}

// CreateAuction stores a new auction listing
func (r *MemoryRepo) CreateAuction(auction model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.auctions[auction.AuctionID] = auction
	return nil
}

// GetAuction returns the auction with the given ID
func (r *MemoryRepo) GetAuction(auctionID string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return auction, nil
}

// ListOpen returns all auctions still accepting bids at the given instant
func (r *MemoryRepo) ListOpen(now time.Time) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	open := make([]model.Auction, 0)
	for _, a := range r.auctions {
		if a.Status(now) == model.StatusOpen {
			open = append(open, a)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].CreatedAt.Before(open[j].CreatedAt) })
	return open, nil
}

// ListUnsettled returns all auctions whose settlement has not run yet,
// regardless of whether their close time has passed.
func (r *MemoryRepo) ListUnsettled() ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := make([]model.Auction, 0)
	for _, a := range r.auctions {
		if !a.Settled() {
			pending = append(pending, a)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CloseAt.Before(pending[j].CloseAt) })
	return pending, nil
}

// SetWinner records the winning bidder and settlement time for an auction
func (r *MemoryRepo) SetWinner(auctionID, winnerID string, settledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return fmt.Errorf("set winner for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	auction.WinnerID = &winnerID
	auction.SettledAt = &settledAt
	r.auctions[auctionID] = auction
	return nil
}

// MarkSettled stamps an auction as settled without a winner (no bids)
func (r *MemoryRepo) MarkSettled(auctionID string, settledAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return fmt.Errorf("mark settled for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	auction.SettledAt = &settledAt
	r.auctions[auctionID] = auction
	return nil
}

// AppendBid records a user's bid on an auction
func (r *MemoryRepo) AppendBid(bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[bid.AuctionID]; !ok {
		return fmt.Errorf("append bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}

	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)
	return nil
}

// GetBidsByAuction returns all bids for an auction, highest amount first,
// ties broken by earliest creation time
func (r *MemoryRepo) GetBidsByAuction(auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids, ok := r.bids[auctionID]
	if !ok || len(bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	sorted := append([]model.Bid(nil), bids...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Amount != sorted[j].Amount {
			return sorted[i].Amount > sorted[j].Amount
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted, nil
}

// GetHighestBid returns the highest bid for an auction
func (r *MemoryRepo) GetHighestBid(auctionID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids, ok := r.bids[auctionID]
	if !ok || len(bids) == 0 {
		return model.Bid{}, fmt.Errorf("get highest bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > highest.Amount || (b.Amount == highest.Amount && b.CreatedAt.Before(highest.CreatedAt)) {
			highest = b
		}
	}
	return highest, nil
}

// GetUser returns the user with the given ID
func (r *MemoryRepo) GetUser(userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return user, nil
}

// Debit subtracts amount from the user's balance in a single atomic step.
// The balance is allowed to go negative; settlement owns that anomaly.
func (r *MemoryRepo) Debit(userID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("debit user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	user.Balance -= amount
	r.users[userID] = user
	return nil
}

// AddUser seeds a user account. Used by main for demo data and by tests.
func (r *MemoryRepo) AddUser(user model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
}
