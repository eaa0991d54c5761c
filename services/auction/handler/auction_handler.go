package handler

import (
	"fmt"
	"net/http"
	"time"

	model "auction-engine/internal/models"
	"auction-engine/internal/notifier"
	"auction-engine/services/auction/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	ListAuction(ownerID, title, description string, floorPrice int64) (model.Auction, error)
	SubmitBid(auctionID, bidderID string, amount int64, message string) (model.Bid, error)
	GetAuctionState(auctionID string) (model.Auction, []model.Bid, error)
	ListOpenAuctions() ([]model.Auction, error)
	GetBalance(userID string) (model.User, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
	events  *notifier.Notifier
}

func NewAuctionHandler(service AuctionServiceInterface, events *notifier.Notifier) *AuctionHandler {
	return &AuctionHandler{service: service, events: events}
}

// CreateAuctionHandler handles POST /auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auction, err := h.service.ListAuction(req.OwnerID, req.Title, req.Description, req.FloorPrice)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateAuctionHandler: failed to create auction", map[string]any{
			"handler":  "CreateAuctionHandler",
			"owner_id": req.OwnerID,
			"error":    err.Error(),
		})
		return
	}

	resp := helpers.ToAuctionResponse(auction, time.Now())

	utils.JSONResponse(c, http.StatusCreated, resp, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id":  auction.AuctionID,
		"owner_id":    auction.OwnerID,
		"floor_price": auction.FloorPrice,
		"close_at":    resp.CloseAt,
	})
}

// SubmitBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) SubmitBidHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SubmitBidHandler", err)
		return
	}

	bid, err := h.service.SubmitBid(auctionID, req.BidderID, req.Amount, req.Message)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("SubmitBidHandler: bid not admitted", map[string]any{
			"handler":    "SubmitBidHandler",
			"auction_id": auctionID,
			"bidder_id":  req.BidderID,
			"amount":     req.Amount,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.ToBidResponse(bid), "bid admitted successfully")
	helpers.LogSuccess("SubmitBidHandler", "bid admitted successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": bid.AuctionID,
		"bidder_id":  bid.BidderID,
		"amount":     bid.Amount,
	})
}

// GetAuctionStateHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionStateHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	auction, bids, err := h.service.GetAuctionState(auctionID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetAuctionStateHandler: error retrieving auction", map[string]any{"auction_id": auctionID, "error": err.Error()})
		return
	}

	resp := helpers.AuctionStateResponse{
		Auction: helpers.ToAuctionResponse(auction, time.Now()),
		Bids:    make([]helpers.BidResponse, 0, len(bids)),
	}
	for _, bid := range bids {
		resp.Bids = append(resp.Bids, helpers.ToBidResponse(bid))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "auction state retrieved successfully")
	helpers.LogSuccess("GetAuctionStateHandler", "auction state retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"bid_count":  len(bids),
	})
}

// ListOpenAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListOpenAuctionsHandler(c *gin.Context) {
	auctions, err := h.service.ListOpenAuctions()
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListOpenAuctionsHandler: error listing auctions", map[string]any{"error": err.Error()})
		return
	}

	now := time.Now()
	resp := make([]helpers.AuctionResponse, 0, len(auctions))
	for _, auction := range auctions {
		resp = append(resp, helpers.ToAuctionResponse(auction, now))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "open auctions retrieved successfully")
	helpers.LogSuccess("ListOpenAuctionsHandler", "open auctions retrieved successfully", map[string]any{
		"count": len(resp),
	})
}

// GetBalanceHandler handles GET /users/:user_id/balance
func (h *AuctionHandler) GetBalanceHandler(c *gin.Context) {
	userID := c.Param("user_id")

	user, err := h.service.GetBalance(userID)
	if err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetBalanceHandler: error retrieving balance", map[string]any{"user_id": userID, "error": err.Error()})
		return
	}

	resp := helpers.BalanceResponse{
		UserID:   user.UserID,
		Username: user.Username,
		Balance:  user.Balance,
	}

	utils.JSONResponse(c, http.StatusOK, resp, "balance retrieved successfully")
	helpers.LogSuccess("GetBalanceHandler", "balance retrieved successfully", map[string]any{
		"user_id": userID,
	})
}

// StreamBidsHandler handles GET /auctions/:auction_id/events. It streams
// accepted-bid events for one auction as server-sent events, in admission
// order, until the client disconnects. Events published while a client is
// not connected are not replayed.
func (h *AuctionHandler) StreamBidsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	// Reject streams for unknown auctions up front.
	if _, _, err := h.service.GetAuctionState(auctionID); err != nil {
		status, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)
		return
	}

	sub := h.events.Subscribe(auctionID)
	defer sub.Close()

	helpers.LogSuccess("StreamBidsHandler", "subscriber joined", map[string]any{
		"auction_id": auctionID,
	})

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			c.SSEvent("bid", ev)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
