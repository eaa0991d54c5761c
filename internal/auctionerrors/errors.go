package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoBids          = errors.New("no bids recorded for auction")
)

// business logic errors
var (
	ErrInvalidBid     = errors.New("invalid bid")
	ErrInvalidListing = errors.New("invalid listing")
	ErrBelowFloor     = errors.New("bid must exceed the floor price")
	ErrNotHighEnough  = errors.New("bid must exceed the current highest bid")
	ErrAuctionClosed  = errors.New("auction has already closed")
)

// IsRejection reports whether err is one of the expected bid-rejection
// outcomes, as opposed to an infrastructure failure worth retrying.
func IsRejection(err error) bool {
	return errors.Is(err, ErrBelowFloor) ||
		errors.Is(err, ErrNotHighEnough) ||
		errors.Is(err, ErrAuctionClosed) ||
		errors.Is(err, ErrAuctionNotFound) ||
		errors.Is(err, ErrInvalidBid)
}
