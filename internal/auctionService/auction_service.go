package auction

import (
	"errors"
	"fmt"
	"time"

	"auction-engine/internal/auctionerrors"
	"auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/internal/registry"
	"auction-engine/internal/repository"
	"auction-engine/utils"
)

// CloseRegistrar receives the close task for every newly listed auction.
// Implemented by the scheduler package.
type CloseRegistrar interface {
	Schedule(auctionID string, closeAt time.Time)
}

// AuctionService defines the business logic for listing auctions and
// admitting bids. Every state-mutating step for one auction runs inside that
// auction's lane, which makes the read-validate-append sequence atomic with
// respect to concurrent bids and settlement.
type AuctionService struct {
	listings repository.ListingStore
	bids     repository.BidStore
	ledger   repository.Ledger
	lanes    *registry.Registry
	events   *notifier.Notifier
	closer   CloseRegistrar
	window   time.Duration

	now func() time.Time // swapped out by tests
}

// NewAuctionService creates a new AuctionService instance. window is the
// bidding window applied to every new listing.
func NewAuctionService(
	listings repository.ListingStore,
	bids repository.BidStore,
	ledger repository.Ledger,
	lanes *registry.Registry,
	events *notifier.Notifier,
	closer CloseRegistrar,
	window time.Duration,
) *AuctionService {
	return &AuctionService{
		listings: listings,
		bids:     bids,
		ledger:   ledger,
		lanes:    lanes,
		events:   events,
		closer:   closer,
		window:   window,
		now:      time.Now,
	}
}

// ListAuction creates a new auction for ownerID's good and registers its
// close task at createdAt + window.
func (s *AuctionService) ListAuction(ownerID, title, description string, floorPrice int64) (models.Auction, error) {
	if ownerID == "" || title == "" {
		return models.Auction{}, fmt.Errorf("service: %w - missing ownerID or title", auctionerrors.ErrInvalidListing)
	}
	if floorPrice <= 0 {
		return models.Auction{}, fmt.Errorf("service: %w - non-positive floor price", auctionerrors.ErrInvalidListing)
	}

	now := s.now().UTC()
	auction := models.Auction{
		AuctionID:   utils.GenerateID(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		FloorPrice:  floorPrice,
		CreatedAt:   now,
		CloseAt:     now.Add(s.window),
	}

	if err := s.listings.CreateAuction(auction); err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction for owner %s: %w", ownerID, err)
	}

	s.closer.Schedule(auction.AuctionID, auction.CloseAt)
	return auction, nil
}

// SubmitBid validates and records a bid inside the auction's lane. A bid is
// admitted only if the auction exists, its close time has not passed, the
// amount exceeds the floor price and the amount exceeds the current highest
// bid. On admission the accepted-bid event is published to the auction's
// topic; watchers see events in admission order.
func (s *AuctionService) SubmitBid(auctionID, bidderID string, amount int64, message string) (models.Bid, error) {
	if auctionID == "" || bidderID == "" {
		return models.Bid{}, fmt.Errorf("service: %w - missing auctionID or bidderID", auctionerrors.ErrInvalidBid)
	}
	if amount <= 0 {
		return models.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidBid)
	}

	bidder := s.displayName(bidderID)

	var bid models.Bid
	err := s.lanes.WithLane(auctionID, func() error {
		auction, err := s.listings.GetAuction(auctionID)
		if err != nil {
			return fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
		}

		// Time is the authority here, not scheduler state: a bid arriving
		// past close time is rejected even if settlement has not run yet.
		now := s.now()
		if !now.Before(auction.CloseAt) {
			return fmt.Errorf("service: %w - bidding ended at %s", auctionerrors.ErrAuctionClosed, auction.CloseAt.UTC().Format(time.RFC3339))
		}
		if amount <= auction.FloorPrice {
			return fmt.Errorf("service: %w - floor price is %d", auctionerrors.ErrBelowFloor, auction.FloorPrice)
		}

		highest, err := s.bids.GetHighestBid(auctionID)
		if err == nil {
			if amount <= highest.Amount {
				return fmt.Errorf("service: %w - current highest bid is %d", auctionerrors.ErrNotHighEnough, highest.Amount)
			}
		} else if !errors.Is(err, auctionerrors.ErrNoBids) {
			return fmt.Errorf("service: failed to check highest bid for auction %s: %w", auctionID, err)
		}

		bid = models.Bid{
			BidID:     utils.GenerateID(),
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			Message:   message,
			CreatedAt: now.UTC(),
		}
		if err := s.bids.AppendBid(bid); err != nil {
			return fmt.Errorf("service: failed to record bid for auction %s by user %s: %w", auctionID, bidderID, err)
		}

		// Publish never blocks, and doing it before the lane is released
		// keeps per-auction event order equal to admission order.
		s.events.Publish(auctionID, notifier.BidEvent{
			Amount:  amount,
			Message: message,
			Bidder:  bidder,
		})
		return nil
	})
	if err != nil {
		return models.Bid{}, err
	}
	return bid, nil
}

// GetAuctionState returns the auction and its bids, highest amount first.
func (s *AuctionService) GetAuctionState(auctionID string) (models.Auction, []models.Bid, error) {
	if auctionID == "" {
		return models.Auction{}, nil, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidBid)
	}

	auction, err := s.listings.GetAuction(auctionID)
	if err != nil {
		return models.Auction{}, nil, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}

	bids, err := s.bids.GetBidsByAuction(auctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrNoBids) {
			return auction, []models.Bid{}, nil
		}
		return models.Auction{}, nil, fmt.Errorf("service: failed to load bids for auction %s: %w", auctionID, err)
	}
	return auction, bids, nil
}

// ListOpenAuctions returns all auctions still accepting bids.
func (s *AuctionService) ListOpenAuctions() ([]models.Auction, error) {
	auctions, err := s.listings.ListOpen(s.now())
	if err != nil {
		return nil, fmt.Errorf("service: failed to list open auctions: %w", err)
	}
	return auctions, nil
}

// GetBalance returns the ledger account for a user.
func (s *AuctionService) GetBalance(userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, fmt.Errorf("service: %w: empty user ID", auctionerrors.ErrUserNotFound)
	}

	user, err := s.ledger.GetUser(userID)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to load user %s: %w", userID, err)
	}
	return user, nil
}

// displayName resolves the bidder's public name for broadcast, falling back
// to the raw ID when the ledger has no account for it.
func (s *AuctionService) displayName(bidderID string) string {
	if user, err := s.ledger.GetUser(bidderID); err == nil && user.Username != "" {
		return user.Username
	}
	return bidderID
}
