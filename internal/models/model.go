package models

import "time"

// AuctionStatus is the lifecycle phase of an auction, derived from its
// winner/settled markers and the clock rather than stored explicitly.
type AuctionStatus string

const (
	StatusOpen    AuctionStatus = "open"    // accepting bids
	StatusClosing AuctionStatus = "closing" // past close time, settlement not yet run
	StatusClosed  AuctionStatus = "closed"  // settled
)

// User represents a participant in the auction house.
// Balance is in minor currency units and may go negative after settlement.
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Balance  int64  `json:"balance"`
}

// Auction represents a listed good with its bidding window.
// WinnerID and SettledAt are written at most once, by settlement only.
type Auction struct {
	AuctionID   string     `json:"auction_id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FloorPrice  int64      `json:"floor_price"`
	CreatedAt   time.Time  `json:"created_at"`
	CloseAt     time.Time  `json:"close_at"`
	WinnerID    *string    `json:"winner_id,omitempty"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
}

// Settled reports whether settlement has already run for this auction.
func (a Auction) Settled() bool {
	return a.WinnerID != nil || a.SettledAt != nil
}

// Status derives the auction phase at the given instant.
func (a Auction) Status(now time.Time) AuctionStatus {
	switch {
	case a.Settled():
		return StatusClosed
	case !now.Before(a.CloseAt):
		return StatusClosing
	default:
		return StatusOpen
	}
}

// Bid represents a user's bid on an auction. Bids are append-only and
// immutable once recorded. Amount is in minor currency units.
type Bid struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
