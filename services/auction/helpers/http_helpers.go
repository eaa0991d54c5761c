package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message.
// The three bid rejections answer 403, matching the behavior bidders expect.
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidListing):
		return http.StatusBadRequest, "invalid listing details"
	case errors.Is(err, auctionerrors.ErrBelowFloor):
		return http.StatusForbidden, "bid must exceed the floor price"
	case errors.Is(err, auctionerrors.ErrNotHighEnough):
		return http.StatusForbidden, "bid must exceed the current highest bid"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return http.StatusForbidden, "auction has already closed"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusOK, "no bids recorded for auction"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// ToAuctionResponse converts an auction entity into its HTTP representation
func ToAuctionResponse(auction model.Auction, now time.Time) AuctionResponse {
	return AuctionResponse{
		AuctionID:   auction.AuctionID,
		OwnerID:     auction.OwnerID,
		Title:       auction.Title,
		Description: auction.Description,
		FloorPrice:  auction.FloorPrice,
		CreatedAt:   auction.CreatedAt.UTC().Format(time.RFC3339),
		CloseAt:     auction.CloseAt.UTC().Format(time.RFC3339),
		Status:      string(auction.Status(now)),
		WinnerID:    auction.WinnerID,
	}
}

// ToBidResponse converts a bid entity into its HTTP representation
func ToBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		Message:   bid.Message,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
